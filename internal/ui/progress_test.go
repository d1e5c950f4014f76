package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ompscope/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	m := NewProgressModel("analyze", []string{"a.omps", "b.omps"}, nil).(*model)

	m.board.apply(pipeline.Event{File: "a.omps", Stage: pipeline.StageLoad, Status: pipeline.StatusDone})
	if m.board.rows[0].state != rowLoaded {
		t.Fatalf("after load: %+v", m.board.rows[0])
	}
	m.board.apply(pipeline.Event{File: "a.omps", Stage: pipeline.StageAnalyze, Status: pipeline.StatusDone, Elapsed: 3 * time.Millisecond})
	m.board.apply(pipeline.Event{File: "b.omps", Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: errors.New("bad magic")})
	// поздние события не меняют завершённый файл
	if m.board.apply(pipeline.Event{File: "b.omps", Stage: pipeline.StageAnalyze, Status: pipeline.StatusWorking}) {
		t.Fatalf("finished row accepted a late event")
	}
	if m.board.apply(pipeline.Event{File: "unknown.omps", Stage: pipeline.StageLoad, Status: pipeline.StatusDone}) {
		t.Fatalf("unknown file accepted")
	}

	finished, failed := m.board.tally()
	if finished != 2 || failed != 1 {
		t.Fatalf("finished=%d failed=%d", finished, failed)
	}
	if r := m.board.rows[1]; r.state != rowFailed || r.err == nil {
		t.Fatalf("b row %+v", r)
	}
	if m.board.fraction() != 1 {
		t.Fatalf("fraction = %v", m.board.fraction())
	}

	view := m.View()
	for _, want := range []string{"analyze 2/2, 1 with errors", "a.omps", "b.omps", "3ms"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view does not contain %q:\n%s", want, view)
		}
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		stage  pipeline.Stage
		status pipeline.Status
		want   string
	}{
		{pipeline.StageLoad, pipeline.StatusQueued, "queued"},
		{pipeline.StageLoad, pipeline.StatusWorking, "loading"},
		{pipeline.StageLoad, pipeline.StatusDone, "loaded"},
		{pipeline.StageAnalyze, pipeline.StatusWorking, "analyzing"},
		{pipeline.StageAnalyze, pipeline.StatusDone, "done"},
		{pipeline.StageAnalyze, pipeline.StatusError, "error"},
	}
	for _, tt := range tests {
		got, ok := stateOf(tt.stage, tt.status)
		if !ok || got.String() != tt.want {
			t.Errorf("stateOf(%s, %s) = %s,%v, want %q", tt.stage, tt.status, got, ok, tt.want)
		}
	}
	if _, ok := stateOf(pipeline.StageReport, pipeline.StatusWorking); ok {
		t.Fatalf("report stage must not move rows")
	}
}

func TestBoardFraction(t *testing.T) {
	b := newBoard([]string{"x", "y"})
	if b.fraction() != 0 {
		t.Fatalf("fresh board fraction = %v", b.fraction())
	}
	b.apply(pipeline.Event{File: "x", Stage: pipeline.StageLoad, Status: pipeline.StatusDone})
	if got := b.fraction(); got != 0.2 {
		t.Fatalf("fraction = %v, want 0.2", got)
	}
	empty := newBoard(nil)
	if empty.fraction() != 1 {
		t.Fatalf("empty board must be complete")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "ab..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("got %q", got)
	}
}
