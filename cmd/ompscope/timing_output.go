package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"ompscope/internal/observ"
	"ompscope/internal/pipeline"
)

// maxListedPhases bounds the per-routine table; larger runs list only the
// slowest routines.
const maxListedPhases = 20

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range pipeline.Stages() {
		if timings.Has(stage) {
			fmt.Fprintf(out, "%-8s %8.1f ms\n", stage, toMillis(timings.Duration(stage)))
		}
	}
	fmt.Fprintf(out, "%-8s %8.1f ms\n", "total", toMillis(timings.Total()))
}

// printPhaseTimings writes the phases collected by timer, as JSON when
// asJSON is set.
func printPhaseTimings(out io.Writer, timer *observ.Timer, asJSON bool) error {
	if out == nil || timer == nil {
		return nil
	}
	report := timer.Report()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	if len(report.Phases) <= maxListedPhases {
		_, err := io.WriteString(out, timer.Summary())
		return err
	}
	if _, err := fmt.Fprintf(out, "slowest of %d phases (total %.2f ms):\n", len(report.Phases), report.TotalMS); err != nil {
		return err
	}
	for _, p := range report.Slowest(maxListedPhases) {
		if _, err := fmt.Fprintf(out, "  %-40s %9.2f ms\n", p.Name, p.DurationMS); err != nil {
			return err
		}
	}
	return nil
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
