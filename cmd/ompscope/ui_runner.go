package main

import (
	"context"
	"os"

	"ompscope/internal/pipeline"
	"ompscope/internal/ui"
)

type analyzeOutcome struct {
	result *pipeline.Result
	err    error
}

// runAnalyzeWithUI runs the pipeline in the background and drives the
// progress view from its events until the run finishes.
func runAnalyzeWithUI(ctx context.Context, title string, req pipeline.Request) (*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		req.Sink = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.AnalyzeFiles(ctx, req)
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	uiErr := ui.Run(os.Stdout, title, req.Files, events)
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
