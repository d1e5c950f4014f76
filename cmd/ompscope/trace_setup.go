package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ompscope/internal/config"
	"ompscope/internal/trace"
)

// traceConfig turns the merged settings plus the ring and heartbeat flags
// into a trace.Config.
func traceConfig(cmd *cobra.Command, settings config.Trace) (trace.Config, error) {
	var cfg trace.Config
	flags := cmd.Root().PersistentFlags()

	var err error
	if cfg.Level, err = trace.ParseLevel(settings.Level); err != nil {
		return cfg, fmt.Errorf("invalid trace level: %w", err)
	}
	if cfg.Mode, err = trace.ParseMode(settings.Mode); err != nil {
		return cfg, fmt.Errorf("invalid trace mode: %w", err)
	}
	if cfg.RingSize, err = flags.GetInt("trace-ring-size"); err != nil {
		return cfg, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	if cfg.Heartbeat, err = flags.GetDuration("trace-heartbeat"); err != nil {
		return cfg, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}
	cfg.OutputPath = settings.Output
	if cfg.OutputPath == "" {
		cfg.OutputPath = "-"
	}
	return cfg, nil
}

// setupTracing installs the tracer into the command context. The returned
// cleanup stops the heartbeat and flushes buffered events.
func setupTracing(cmd *cobra.Command, settings config.Trace) (func(), error) {
	cfg, err := traceConfig(cmd, settings)
	if err != nil {
		return nil, err
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	if !tracer.Enabled() {
		return func() {}, nil
	}

	var hb *trace.Heartbeat
	if cfg.Heartbeat > 0 {
		hb = trace.StartHeartbeat(tracer, cfg.Heartbeat)
	}
	errOut := cmd.ErrOrStderr()
	return func() {
		hb.Stop()
		report(errOut, "flush", tracer.Flush())
		report(errOut, "close", tracer.Close())
	}, nil
}

func report(w io.Writer, what string, err error) {
	if err != nil {
		fmt.Fprintf(w, "trace: %s error: %v\n", what, err)
	}
}

// dumpTraceRing prints the in-memory events after a failed run. Only
// --trace-mode ring|both keep such a buffer.
func dumpTraceRing(cmd *cobra.Command) {
	ring, ok := trace.RingOf(trace.FromContext(cmd.Context()))
	if !ok || ring.Len() == 0 {
		return
	}
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "trace: last %d events\n", ring.Len())
	report(out, "dump", ring.Dump(out, trace.FormatText))
}
