// Package diag defines the diagnostic model shared by the snapshot loader,
// the OpenMP analyzer and the CLI.
//
// Diagnostic is the central record: a Severity (Info, Warning, Error), a
// numeric Code with a stable string form (see codes.go), a short Message, the
// primary source.Span and optional Notes pointing at related statements.
//
// Producers emit through a Reporter, usually with the ReportError /
// ReportWarning / ReportInfo builders:
//
//	diag.ReportError(r, diag.OmpUnprovableDependency, span, msg).
//		WithNote(other, "conflicting task").
//		Emit()
//
// BagReporter collects into a Bag, which supports limits, sorting, merging
// and filtering; DedupReporter drops repeated reports before they reach it.
// Rendering lives in internal/diagfmt.
package diag
