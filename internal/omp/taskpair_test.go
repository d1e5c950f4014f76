package omp

import (
	"testing"

	"ompscope/internal/ast"
	"ompscope/internal/testkit"
)

// pairTree builds
//
//	do i = 1, n, 1
//	  <before>
//	  task: do j = 1, 4, 1; a(i) = a(i) + 1
//	  <between>
//	  task: do k = 1, 4, 1; b(k) = a(<second>)
//
// inside a single region.
func pairTree(t *testing.T, second func(tr *testkit.Tree, i ast.ExprID) ast.ExprID, before, between func(tr *testkit.Tree) []ast.StmtID) (*testkit.Tree, ast.StmtID, ast.StmtID, ast.StmtID) {
	tr := testkit.NewTree(t, "work")
	i, j, k, n := tr.Scalar("i"), tr.Scalar("j"), tr.Scalar("k"), tr.Scalar("n")
	a, b := tr.Array("a", 1), tr.Array("b", 1)

	t1 := tr.Dir(ast.DirTask,
		tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
			tr.Assign(tr.At(a, tr.Ref(i)), tr.B.Bin(ast.ExprBinaryAdd, tr.At(a, tr.Ref(i)), tr.Int(1))),
		),
	)
	t2 := tr.Dir(ast.DirTask,
		tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
			tr.Assign(tr.At(b, tr.Ref(k)), tr.At(a, second(tr, tr.Ref(i)))),
		),
	)
	var body []ast.StmtID
	if before != nil {
		body = append(body, before(tr)...)
	}
	body = append(body, t1)
	if between != nil {
		body = append(body, between(tr)...)
	}
	body = append(body, t2)
	_, single := region(tr, tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(1), body...))
	return tr, single, t1, t2
}

func sameIndex(_ *testkit.Tree, i ast.ExprID) ast.ExprID { return i }

func TestValidateTaskPairsSameIndex(t *testing.T) {
	tr, single, _, _ := pairTree(t, sameIndex, nil, nil)
	if err := newAnalyzer(tr).ValidateTaskPairs(single); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateTaskPairsShiftedIndex(t *testing.T) {
	shifted := func(tr *testkit.Tree, i ast.ExprID) ast.ExprID {
		return tr.B.Bin(ast.ExprBinaryAdd, i, tr.Int(1))
	}
	tr, single, t1, t2 := pairTree(t, shifted, nil, nil)
	err := newAnalyzer(tr).ValidateTaskPairs(single)
	oe := wantKind(t, err, UnprovableDependency)
	if oe.Node != t1 || oe.Related != t2 {
		t.Fatalf("error between %d and %d, want %d and %d", oe.Node, oe.Related, t1, t2)
	}
}

func TestValidateTaskPairsCodeBlock(t *testing.T) {
	between := func(tr *testkit.Tree) []ast.StmtID {
		return []ast.StmtID{tr.CodeBlock("call mpi_barrier(comm, ierr)")}
	}
	tr, single, _, _ := pairTree(t, sameIndex, nil, between)
	err := newAnalyzer(tr).ValidateTaskPairs(single)
	oe := wantKind(t, err, UnprovableDependency)
	if !tr.B.Stmts.Is(oe.Node, ast.StmtCodeBlock) {
		t.Fatalf("error should point at the code block, got statement %d", oe.Node)
	}
}

func TestValidateTaskPairsCalls(t *testing.T) {
	opaque := func(tr *testkit.Tree) []ast.StmtID {
		return []ast.StmtID{tr.Call("halo_exchange", false, nil)}
	}
	tr, single, _, _ := pairTree(t, sameIndex, opaque, nil)
	wantKind(t, newAnalyzer(tr).ValidateTaskPairs(single), UnprovableDependency)

	// A transparent call is the last write seen by both tasks.
	tr, single, _, _ = pairTree(t, sameIndex, opaque, nil)
	an := New(tr.B, tr.Syms, Options{TransparentCalls: []string{"HALO_EXCHANGE"}})
	if err := an.ValidateTaskPairs(single); err != nil {
		t.Fatalf("transparent call rejected: %v", err)
	}
}

func TestValidateTaskPairsLiterals(t *testing.T) {
	tests := []struct {
		name    string
		lit     int64
		wantErr bool
	}{
		{"equal", 1, false},
		{"different", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			j, k, x := tr.Scalar("j"), tr.Scalar("k"), tr.Scalar("x")
			a := tr.Array("a", 1)
			t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.At(a, tr.Int(1)), tr.Ref(j))))
			t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.Ref(x), tr.At(a, tr.Int(tt.lit)))))
			_, single := region(tr, t1, t2)
			err := newAnalyzer(tr).ValidateTaskPairs(single)
			if tt.wantErr {
				wantKind(t, err, UnprovableDependency)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTaskPairsAssignedIndex(t *testing.T) {
	tests := []struct {
		name    string
		first   int64
		second  int64
		wantErr bool
	}{
		{"same value", 3, 3, false},
		{"different values", 3, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			p, q, n := tr.Scalar("p"), tr.Scalar("q"), tr.Scalar("n")
			j, k := tr.Scalar("j"), tr.Scalar("k")
			a, x := tr.Array("a", 1), tr.Scalar("x")
			t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.At(a, tr.Ref(p)), tr.Ref(j))))
			t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.Ref(x), tr.At(a, tr.Ref(p)))))
			_, single := region(tr, tr.Do(q, tr.Int(1), tr.Ref(n), tr.Int(1),
				tr.Assign(tr.Ref(p), tr.Int(tt.first)),
				t1,
				tr.Assign(tr.Ref(p), tr.Int(tt.second)),
				t2,
			))
			err := newAnalyzer(tr).ValidateTaskPairs(single)
			if tt.wantErr {
				wantKind(t, err, UnprovableDependency)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTaskPairsDistinctLoops(t *testing.T) {
	tests := []struct {
		name    string
		start   int64
		step    int64
		wantErr bool
	}{
		{"same start and step", 1, 1, false},
		{"different step", 1, 2, true},
		{"different start", 2, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			i, j, k, n := tr.Scalar("i"), tr.Scalar("j"), tr.Scalar("k"), tr.Scalar("n")
			a, x := tr.Array("a", 1), tr.Scalar("x")
			t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.At(a, tr.Ref(i)), tr.Ref(j))))
			t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.Ref(x), tr.At(a, tr.Ref(i)))))
			_, single := region(tr,
				tr.Do(i, tr.Int(1), tr.Ref(n), tr.Int(1), t1),
				tr.Do(i, tr.Int(tt.start), tr.Ref(n), tr.Int(tt.step), t2),
			)
			err := newAnalyzer(tr).ValidateTaskPairs(single)
			if tt.wantErr {
				wantKind(t, err, UnprovableDependency)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTaskPairsComputedIndex(t *testing.T) {
	tests := []struct {
		name       string
		reassigned bool
		wantErr    bool
	}{
		{"single assignment", false, false},
		{"reassigned between tasks", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := testkit.NewTree(t, "work")
			p, q, n := tr.Scalar("p"), tr.Scalar("q"), tr.Scalar("n")
			j, k := tr.Scalar("j"), tr.Scalar("k")
			a, x := tr.Array("a", 1), tr.Scalar("x")
			t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.At(a, tr.Ref(p)), tr.Ref(j))))
			t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
				tr.Assign(tr.Ref(x), tr.At(a, tr.Ref(p)))))
			body := []ast.StmtID{tr.Assign(tr.Ref(p), tr.Add(q, 1)), t1}
			if tt.reassigned {
				// то же выражение, но другая инструкция
				body = append(body, tr.Assign(tr.Ref(p), tr.Add(q, 1)))
			}
			body = append(body, t2)
			_, single := region(tr, tr.Do(q, tr.Int(1), tr.Ref(n), tr.Int(1), body...))
			err := newAnalyzer(tr).ValidateTaskPairs(single)
			if tt.wantErr {
				wantKind(t, err, UnprovableDependency)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTaskPairsKernelCalls(t *testing.T) {
	tests := []struct {
		name    string
		between bool
		wantErr bool
	}{
		{"same call", false, false},
		{"different calls", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := func(tr *testkit.Tree) []ast.StmtID {
				return []ast.StmtID{tr.Call("advance", true, nil)}
			}
			var between func(tr *testkit.Tree) []ast.StmtID
			if tt.between {
				between = before
			}
			tr, single, _, _ := pairTree(t, sameIndex, before, between)
			err := newAnalyzer(tr).ValidateTaskPairs(single)
			if tt.wantErr {
				wantKind(t, err, UnprovableDependency)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTaskPairsOneSidedWrite(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	p, q, n := tr.Scalar("p"), tr.Scalar("q"), tr.Scalar("n")
	j, k := tr.Scalar("j"), tr.Scalar("k")
	a, x := tr.Array("a", 1), tr.Scalar("x")
	t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
		tr.Assign(tr.At(a, tr.Ref(p)), tr.Ref(j))))
	t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
		tr.Assign(tr.Ref(x), tr.At(a, tr.Ref(p)))))
	// p впервые записывается между задачами
	_, single := region(tr, tr.Do(q, tr.Int(1), tr.Ref(n), tr.Int(1),
		t1, tr.Assign(tr.Ref(p), tr.Int(3)), t2))
	wantKind(t, newAnalyzer(tr).ValidateTaskPairs(single), UnprovableDependency)
}

func TestValidateTaskPairsIndexCountMismatch(t *testing.T) {
	tr := testkit.NewTree(t, "work")
	j, k, x := tr.Scalar("j"), tr.Scalar("k"), tr.Scalar("x")
	// без объявленных размерностей ранг неизвестен
	a := tr.Scalar("a")
	t1 := tr.Dir(ast.DirTask, tr.Do(j, tr.Int(1), tr.Int(4), tr.Int(1),
		tr.Assign(tr.At(a, tr.Int(1)), tr.Ref(j))))
	t2 := tr.Dir(ast.DirTask, tr.Do(k, tr.Int(1), tr.Int(4), tr.Int(1),
		tr.Assign(tr.Ref(x), tr.At(a, tr.Int(1), tr.Int(1)))))
	_, single := region(tr, t1, t2)
	oe := wantKind(t, newAnalyzer(tr).ValidateTaskPairs(single), UnsupportedIndexExpression)
	if oe.Node != t1 {
		t.Fatalf("error at %d, want the first task %d", oe.Node, t1)
	}
}
