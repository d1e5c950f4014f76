// Package trace records where ompscope spends its time.
//
// Analysing a large snapshot can stall in the task-pair check, which is
// quadratic in the number of tasks of a serial region. Tracing makes such
// stalls visible:
//
//	ompscope analyze --trace=- --trace-level=detail kernels.omps
//
// # Tracers
//
//   - Nop: disabled tracing, zero overhead
//   - StreamTracer: writes every event to a file or stderr
//   - RingTracer: keeps the last events in memory for a dump after a failure
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// A level selects the scopes that are emitted:
//
//   - LevelPhase: ScopeDriver and ScopePass (files, analysis passes)
//   - LevelDetail: adds ScopeRegion (one span per directive)
//   - LevelDebug: adds ScopeNode
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithFile(ctx, "kernels.omps")
//	span, ctx := trace.Start(ctx, trace.ScopePass, "omp_analyze")
//	defer span.End("")
//
// Spans started from a context inherit its file, so events of files analysed
// in parallel can be told apart.
package trace
