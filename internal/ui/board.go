package ui

import (
	"time"

	"ompscope/internal/pipeline"
)

type rowState uint8

const (
	rowQueued rowState = iota
	rowLoading
	rowLoaded
	rowAnalyzing
	rowDone
	rowFailed
)

var rowLabels = [...]string{
	rowQueued:    "queued",
	rowLoading:   "loading",
	rowLoaded:    "loaded",
	rowAnalyzing: "analyzing",
	rowDone:      "done",
	rowFailed:    "error",
}

// rowWeight is the share of a file's work finished in each state.
var rowWeight = [...]float64{
	rowQueued:    0,
	rowLoading:   0.1,
	rowLoaded:    0.4,
	rowAnalyzing: 0.5,
	rowDone:      1,
	rowFailed:    1,
}

func (s rowState) String() string { return rowLabels[s] }

func (s rowState) terminal() bool { return s == rowDone || s == rowFailed }

// stateOf maps a pipeline event onto a row state. Events that do not move
// a row (report stage, unknown statuses) yield false.
func stateOf(stage pipeline.Stage, status pipeline.Status) (rowState, bool) {
	switch status {
	case pipeline.StatusQueued:
		return rowQueued, true
	case pipeline.StatusError:
		return rowFailed, true
	}
	switch stage {
	case pipeline.StageLoad:
		if status == pipeline.StatusDone {
			return rowLoaded, true
		}
		return rowLoading, true
	case pipeline.StageAnalyze:
		if status == pipeline.StatusDone {
			return rowDone, true
		}
		return rowAnalyzing, true
	}
	return rowQueued, false
}

type row struct {
	path  string
	state rowState
	took  time.Duration
	err   error
}

// board is the per-file state behind the progress view.
type board struct {
	rows   []row
	byPath map[string]int
}

func newBoard(files []string) board {
	b := board{rows: make([]row, len(files)), byPath: make(map[string]int, len(files))}
	for i, f := range files {
		b.rows[i].path = f
		b.byPath[f] = i
	}
	return b
}

// apply records ev and reports whether any row changed. A finished row
// ignores late events.
func (b *board) apply(ev pipeline.Event) bool {
	i, ok := b.byPath[ev.File]
	if !ok || b.rows[i].state.terminal() {
		return false
	}
	state, ok := stateOf(ev.Stage, ev.Status)
	if !ok {
		return false
	}
	r := &b.rows[i]
	r.state = state
	switch ev.Status {
	case pipeline.StatusError:
		r.err = ev.Err
		r.took += ev.Elapsed
	case pipeline.StatusDone:
		r.took += ev.Elapsed
	}
	return true
}

func (b *board) tally() (finished, failed int) {
	for _, r := range b.rows {
		if r.state.terminal() {
			finished++
		}
		if r.state == rowFailed {
			failed++
		}
	}
	return finished, failed
}

// fraction is the overall completion in [0, 1].
func (b *board) fraction() float64 {
	if len(b.rows) == 0 {
		return 1
	}
	var sum float64
	for _, r := range b.rows {
		sum += rowWeight[r.state]
	}
	return sum / float64(len(b.rows))
}
