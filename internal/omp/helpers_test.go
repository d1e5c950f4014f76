package omp

import (
	"testing"

	"ompscope/internal/ast"
	"ompscope/internal/testkit"
)

func newAnalyzer(tr *testkit.Tree) *Analyzer {
	return New(tr.B, tr.Syms, Options{})
}

func clauseStrings(tr *testkit.Tree, c *Clauses) map[string]string {
	return map[string]string{
		"private":      tr.Exprs(c.Private),
		"firstprivate": tr.Exprs(c.Firstprivate),
		"shared":       tr.Exprs(c.Shared),
		"in":           tr.Exprs(c.DependIn),
		"out":          tr.Exprs(c.DependOut),
	}
}

func checkClauses(t *testing.T, tr *testkit.Tree, c *Clauses, want map[string]string) {
	t.Helper()
	got := clauseStrings(tr, c)
	for k, w := range want {
		if got[k] != w {
			t.Errorf("%s: got %q, want %q", k, got[k], w)
		}
	}
}

func wantKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	oe, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if oe.Kind != kind {
		t.Fatalf("expected %s, got %s: %s", kind, oe.Kind, oe.Msg)
	}
	return oe
}

// region wraps body as parallel > single > body inside a routine and
// returns the parallel directive.
func region(tr *testkit.Tree, body ...ast.StmtID) (parallel, single ast.StmtID) {
	single = tr.Dir(ast.DirSingle, body...)
	parallel = tr.Dir(ast.DirParallel, single)
	tr.Routine(parallel)
	return parallel, single
}
