package diag

import "ompscope/internal/source"

type dedupKey struct {
	code    Code
	sev     Severity
	primary source.Span
	msg     string
}

// DedupReporter forwards each distinct diagnostic once. Notes do not take
// part in the comparison.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(d Diagnostic) {
	if r == nil || r.next == nil {
		return
	}
	key := dedupKey{code: d.Code, sev: d.Severity, primary: d.Primary, msg: d.Message}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.next.Report(d)
}

// Distinct reports how many different diagnostics have been forwarded.
func (r *DedupReporter) Distinct() int {
	if r == nil {
		return 0
	}
	return len(r.seen)
}
