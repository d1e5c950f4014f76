package omp

import (
	"testing"

	"ompscope/internal/ast"
	"ompscope/internal/testkit"
)

func TestRegionPrivateClause(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	i, j, s, n := tr.Scalar("i"), tr.Scalar("j"), tr.Scalar("s"), tr.Scalar("n")
	once := tr.Scalar("once")
	a := tr.Array("a", 1)

	// s is written before any loop, so it stays shared even though it is
	// written again inside one.
	body := []ast.StmtID{
		tr.Assign(tr.Ref(s), tr.Int(0)),
		tr.Do(j, tr.Int(1), tr.Ref(n), tr.Int(1),
			tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(1),
				tr.Assign(tr.At(a, tr.Ref(i)), tr.Ref(once)),
				tr.Assign(tr.Ref(s), tr.Ref(i)),
			),
		),
	}
	par := tr.Dir(ast.DirParallel, body...)
	tr.Routine(par)

	an := newAnalyzer(tr)
	got, err := an.RegionPrivateClause(par)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := tr.Exprs(got); s != "i,j" {
		t.Fatalf("private = %q, want %q", s, "i,j")
	}
	again, err := an.RegionPrivateClause(par)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if tr.Exprs(again) != tr.Exprs(got) {
		t.Fatalf("second call differs: %q vs %q", tr.Exprs(again), tr.Exprs(got))
	}
	for sym, want := range map[string]bool{"i": true, "j": true, "s": false, "n": false, "once": false, "a": false} {
		id, _ := tr.Syms.Lookup(tr.Scope, sym)
		ok, err := an.IsRegionPrivate(par, id)
		if err != nil {
			t.Fatalf("IsRegionPrivate(%s): %v", sym, err)
		}
		if ok != want {
			t.Errorf("IsRegionPrivate(%s) = %v, want %v", sym, ok, want)
		}
	}
}

func TestRegionPrivateClauseFollowsTreeChanges(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	i, k := tr.Scalar("i"), tr.Scalar("k")
	a := tr.Array("a", 1)
	loop := tr.Do(i, tr.Int(1), tr.Int(8), tr.Int(1), tr.Assign(tr.At(a, tr.Ref(i)), tr.Int(0)))
	par := tr.Dir(ast.DirParallel, loop)
	tr.Routine(par)

	an := newAnalyzer(tr)
	got, err := an.RegionPrivateClause(par)
	if err != nil || tr.Exprs(got) != "i" {
		t.Fatalf("before: %q, %v", tr.Exprs(got), err)
	}

	if err := tr.B.Stmts.Append(loop, tr.Assign(tr.Ref(k), tr.Ref(i))); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tr.B.Stmts.Append(loop, tr.Assign(tr.At(a, tr.Ref(i)), tr.Ref(k))); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err = an.RegionPrivateClause(par)
	if err != nil {
		t.Fatalf("after: %v", err)
	}
	if s := tr.Exprs(got); s != "i,k" {
		t.Fatalf("after append private = %q, want %q", s, "i,k")
	}
}

func TestRegionPrivateKernelLocals(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	tr.Scalar("tmp")
	tr.Scalar("w")
	call := tr.Call("compute_cell", true, nil, "W", "tmp")
	par := tr.Dir(ast.DirParallel, call)
	tr.Routine(par)

	got, err := newAnalyzer(tr).RegionPrivateClause(par)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := tr.Exprs(got); s != "tmp,w" {
		t.Fatalf("private = %q, want %q", s, "tmp,w")
	}
}

func TestRegionPrivateKernelLocalErrors(t *testing.T) {
	tests := []struct {
		name  string
		local string
	}{
		{"empty name", ""},
		{"undeclared", "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			call := tr.Call("compute_cell", true, nil, tt.local)
			par := tr.Dir(ast.DirParallel, call)
			tr.Routine(par)
			_, err := newAnalyzer(tr).RegionPrivateClause(par)
			oe := wantKind(t, err, InternalError)
			if oe.Node != call {
				t.Fatalf("error node = %d, want the call %d", oe.Node, call)
			}
		})
	}
}

func TestRegionPrivateRejectsNonParallel(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	single := tr.Dir(ast.DirSingle)
	tr.Routine(tr.Dir(ast.DirParallel, single))
	_, err := newAnalyzer(tr).RegionPrivateClause(single)
	wantKind(t, err, InternalError)
}
