package pipeline

import "time"

// Stage is a step a snapshot goes through in one run.
type Stage uint8

const (
	StageLoad Stage = iota + 1
	StageAnalyze
	StageReport

	stageLimit
)

var stageNames = [stageLimit]string{
	StageLoad:    "load",
	StageAnalyze: "analyze",
	StageReport:  "report",
}

// Stages lists every stage in execution order.
func Stages() []Stage { return []Stage{StageLoad, StageAnalyze, StageReport} }

func (s Stage) String() string {
	if s > 0 && s < stageLimit {
		return stageNames[s]
	}
	return "unknown"
}

// Status is the state of one file within a stage.
type Status uint8

const (
	StatusQueued Status = iota + 1
	StatusWorking
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusWorking:
		return "working"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Event reports that File entered Status within Stage. Err is set only
// with StatusError; Elapsed is measured from the start of the stage.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// Sink receives progress events from worker goroutines, so OnEvent must
// tolerate concurrent calls.
type Sink interface {
	OnEvent(Event)
}

// Timings records wall time per stage. The zero value is ready to use.
type Timings struct {
	took     [stageLimit]time.Duration
	recorded [stageLimit]bool
}

// Set records d for stage; out-of-range stages are ignored.
func (t *Timings) Set(stage Stage, d time.Duration) {
	if t == nil || stage == 0 || stage >= stageLimit {
		return
	}
	t.took[stage] = d
	t.recorded[stage] = true
}

func (t Timings) Has(stage Stage) bool {
	return stage < stageLimit && t.recorded[stage]
}

func (t Timings) Duration(stage Stage) time.Duration {
	if !t.Has(stage) {
		return 0
	}
	return t.took[stage]
}

// Total sums every recorded stage.
func (t Timings) Total() time.Duration {
	var sum time.Duration
	for _, d := range t.took {
		sum += d
	}
	return sum
}
