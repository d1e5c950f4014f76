package pipeline

import (
	"testing"
	"time"
)

func TestTimings(t *testing.T) {
	var tm Timings
	if tm.Has(StageLoad) || tm.Total() != 0 {
		t.Fatalf("zero Timings must be empty")
	}
	tm.Set(StageLoad, 2*time.Millisecond)
	tm.Set(StageReport, 3*time.Millisecond)
	tm.Set(Stage(0), time.Hour)
	tm.Set(Stage(42), time.Hour)
	if !tm.Has(StageLoad) || tm.Has(StageAnalyze) {
		t.Fatalf("unexpected recorded stages: %+v", tm)
	}
	if got := tm.Total(); got != 5*time.Millisecond {
		t.Fatalf("total = %v", got)
	}
	if tm.Duration(Stage(42)) != 0 {
		t.Fatalf("unknown stage must report zero")
	}
	var nilTimings *Timings
	nilTimings.Set(StageLoad, time.Second) // не паникует
}

func TestStageNames(t *testing.T) {
	want := []string{"load", "analyze", "report"}
	for i, s := range Stages() {
		if s.String() != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s, want[i])
		}
	}
	if Stage(0).String() != "unknown" || StatusError.String() != "error" {
		t.Fatalf("unexpected fallback names")
	}
}
