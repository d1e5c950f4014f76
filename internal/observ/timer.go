// Package observ measures how long the pipeline spends per stage and per
// routine, for the --timings output.
package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Phase is one measured interval.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

func (p Phase) end() time.Time { return p.Start.Add(p.Dur) }

// Timer collects phases. It is safe for concurrent use and a nil *Timer
// ignores every call, so callers need not check whether timings are on.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
}

func NewTimer() *Timer { return &Timer{} }

// Begin opens a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase at idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Dur = time.Since(t.phases[idx].Start)
	t.phases[idx].Note = note
}

// Track opens a phase and returns the function that closes it.
//
//	done := timer.Track("load")
//	defer done("")
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// PhaseReport is the serialisable form of a phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists the phases in start order. TotalMS is the wall time from the
// first start to the last end, so phases of files analysed in parallel are
// not counted twice.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	phases := slices.Clone(t.phases)
	t.mu.Unlock()
	if len(phases) == 0 {
		return Report{}
	}

	slices.SortStableFunc(phases, func(a, b Phase) int { return a.Start.Compare(b.Start) })
	last := slices.MaxFunc(phases, func(a, b Phase) int { return a.end().Compare(b.end()) })
	r := Report{
		TotalMS: millis(last.end().Sub(phases[0].Start)),
		Phases:  make([]PhaseReport, len(phases)),
	}
	for i, p := range phases {
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note}
	}
	return r
}

// Slowest returns up to n phases with the longest durations, longest first.
func (r Report) Slowest(n int) []PhaseReport {
	out := slices.Clone(r.Phases)
	slices.SortStableFunc(out, func(a, b PhaseReport) int { return cmp.Compare(b.DurationMS, a.DurationMS) })
	return out[:min(n, len(out))]
}

// Summary renders the report as an aligned table followed by the total.
func (t *Timer) Summary() string {
	r := t.Report()
	width := len("total")
	for _, p := range r.Phases {
		width = max(width, len(p.Name))
	}
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-*s %9.2f ms", width, p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-*s %9.2f ms\n", width, "total", r.TotalMS)
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
