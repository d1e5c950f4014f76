package omp

import (
	"testing"

	"ompscope/internal/ast"
	"ompscope/internal/testkit"
)

func TestTaskClausesChunkedLoop(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	i, ii, j := tr.Scalar("i"), tr.Scalar("ii"), tr.Scalar("j")
	n, m := tr.Scalar("n"), tr.Scalar("m")
	a, b := tr.Array("a", 2), tr.Array("b", 2)

	task := tr.Dir(ast.DirTask,
		tr.Do(ii, tr.Ref(i), tr.Add(i, 31), tr.Int(1),
			tr.Do(j, tr.Int(1), tr.Ref(m), tr.Int(1),
				tr.Assign(tr.At(a, tr.Add(ii, 1), tr.Ref(j)), tr.At(b, tr.Ref(ii), tr.Ref(j))),
			),
		),
	)
	region(tr, tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(32), task))

	c, err := newAnalyzer(tr).TaskClauses(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkClauses(t, tr, c, map[string]string{
		"private":      "ii,j",
		"firstprivate": "i,m",
		"shared":       "a,b",
		"in":           "b(i, lbound(b, 2):ubound(b, 2))",
		"out":          "a(i + 32, lbound(a, 2):ubound(a, 2)),a(i, lbound(a, 2):ubound(a, 2))",
	})
}

func TestTaskClausesOffsetWindow(t *testing.T) {
	tests := []struct {
		name   string
		step   int64
		offset int64
		want   string
	}{
		{"no offset", 4, 0, "a(i)"},
		{"unit step", 1, 1, "a(i + 1)"},
		{"offset below step", 32, 1, "a(i + 32),a(i)"},
		{"offset spans two chunks", 2, 3, "a(i + 4),a(i + 2)"},
		{"multiple of step", 2, 4, "a(i + 4)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			i, ii, n := tr.Scalar("i"), tr.Scalar("ii"), tr.Scalar("n")
			a, x := tr.Array("a", 1), tr.Scalar("x")
			task := tr.Dir(ast.DirTask,
				tr.Do(ii, tr.Ref(i), tr.Ref(n), tr.Int(1),
					tr.Assign(tr.Ref(x), tr.At(a, tr.Add(ii, tt.offset))),
					tr.Assign(tr.At(a, tr.Ref(ii)), tr.Ref(x)),
				),
			)
			region(tr, tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(tt.step), task))
			c, err := newAnalyzer(tr).TaskClauses(task)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := tr.Exprs(c.DependIn); got != tt.want {
				t.Fatalf("depend(in) = %q, want %q", got, tt.want)
			}
			if got := tr.Exprs(c.Private); got != "ii,x" {
				t.Fatalf("private = %q", got)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		offset, step    int64
		divisor, modulo int64
	}{
		{3, 2, 2, 1},
		{1, 32, 1, 1},
		{4, 2, 2, 0},
		{5, 1, 5, 0},
	}
	for _, tt := range tests {
		d, m := Window(tt.offset, tt.step)
		if d != tt.divisor || m != tt.modulo {
			t.Errorf("Window(%d, %d) = (%d, %d), want (%d, %d)", tt.offset, tt.step, d, m, tt.divisor, tt.modulo)
		}
	}
}

func TestTaskClausesParentVariableWithoutProxy(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	i, j, n := tr.Scalar("i"), tr.Scalar("j"), tr.Scalar("n")
	a := tr.Array("a", 2)
	task := tr.Dir(ast.DirTask,
		tr.Do(j, tr.Int(1), tr.Ref(n), tr.Int(1),
			tr.Assign(tr.At(a, tr.Ref(i), tr.Ref(j)), tr.At(a, tr.Add(i, 1), tr.Ref(j))),
		),
	)
	region(tr, tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(1), task))

	c, err := newAnalyzer(tr).TaskClauses(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkClauses(t, tr, c, map[string]string{
		"private":      "j",
		"firstprivate": "n,i",
		"shared":       "a",
		"in":           "a(i + 1, lbound(a, 2):ubound(a, 2))",
		"out":          "a(i, lbound(a, 2):ubound(a, 2))",
	})
}

func TestTaskClausesScalars(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	i, j, n := tr.Scalar("i"), tr.Scalar("j"), tr.Scalar("n")
	total, tmp := tr.Scalar("total"), tr.Scalar("tmp")
	a := tr.Array("a", 1)

	task := tr.Dir(ast.DirTask,
		tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
			tr.Assign(tr.Ref(tmp), tr.At(a, tr.Ref(i))),
			tr.Assign(tr.Ref(total), tr.Ref(tmp)),
		),
	)
	region(tr,
		tr.Assign(tr.Ref(total), tr.Int(0)),
		tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(1),
			tr.Assign(tr.Ref(tmp), tr.Int(0)),
			task,
		),
	)
	c, err := newAnalyzer(tr).TaskClauses(task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkClauses(t, tr, c, map[string]string{
		"private":      "j,tmp",
		"firstprivate": "i",
		"shared":       "a,total",
		"in":           "a(i)",
		"out":          "total",
	})
}

func TestTaskClausesRejections(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		body func(tr *testkit.Tree) ast.StmtID
	}{
		{
			name: "shared index",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, n, a := tr.Scalar("j"), tr.Scalar("n"), tr.Array("a", 1)
				return tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, tr.Ref(n)), tr.Int(0)))
			},
		},
		{
			name: "multiplied index",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, a := tr.Scalar("j"), tr.Array("a", 1)
				idx := tr.B.Bin(ast.ExprBinaryMul, tr.Ref(j), tr.Int(2))
				return tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, idx), tr.Int(0)))
			},
		},
		{
			name: "negative offset",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, a := tr.Scalar("j"), tr.Array("a", 1)
				return tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, tr.Add(j, -1)), tr.Int(0)))
			},
		},
		{
			name: "literal minus reference",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, a := tr.Scalar("j"), tr.Array("a", 1)
				idx := tr.B.Bin(ast.ExprBinarySub, tr.Int(8), tr.Ref(j))
				return tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, idx), tr.Int(0)))
			},
		},
		{
			name: "rank mismatch",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, a := tr.Scalar("j"), tr.Array("a", 2)
				return tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, tr.Ref(j)), tr.Int(0)))
			},
		},
		{
			name: "array in loop bound",
			kind: UnsupportedIndexExpression,
			body: func(tr *testkit.Tree) ast.StmtID {
				j, a, x := tr.Scalar("j"), tr.Array("a", 1), tr.Scalar("x")
				return tr.Do(j, tr.Int(1), tr.At(a, tr.Int(1)), tr.Int(1), tr.Assign(tr.Ref(x), tr.Ref(j)))
			},
		},
		{
			name: "body is not a loop",
			kind: StructuralViolation,
			body: func(tr *testkit.Tree) ast.StmtID {
				x := tr.Scalar("x")
				return tr.Assign(tr.Ref(x), tr.Int(1))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			task := tr.Dir(ast.DirTask, tt.body(tr))
			region(tr, task)
			c, err := newAnalyzer(tr).TaskClauses(task)
			wantKind(t, err, tt.kind)
			if c != nil {
				t.Fatalf("partial clauses returned alongside %v", err)
			}
		})
	}
}

func TestTaskClausesSharedLoopVariable(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	k, a := tr.Scalar("k"), tr.Array("a", 1)
	loop := tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, tr.Ref(k)), tr.Int(0)))
	task := tr.Dir(ast.DirTask, loop)
	region(tr, tr.Assign(tr.Ref(k), tr.Int(0)), task)

	_, err := newAnalyzer(tr).TaskClauses(task)
	oe := wantKind(t, err, SharedLoopVariable)
	if oe.Node != loop {
		t.Fatalf("error node = %d, want loop %d", oe.Node, loop)
	}
}

func TestTaskClausesOutsideParallel(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	j, a := tr.Scalar("j"), tr.Array("a", 1)
	task := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1), tr.Assign(tr.At(a, tr.Ref(j)), tr.Int(0))))
	tr.Routine(tr.Dir(ast.DirSingle, task))
	_, err := newAnalyzer(tr).TaskClauses(task)
	wantKind(t, err, StructuralViolation)
}
