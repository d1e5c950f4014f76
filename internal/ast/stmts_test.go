package ast

import (
	"slices"
	"strings"
	"testing"
)

func TestAppendSetsParentAndGeneration(t *testing.T) {
	f := newFixture(t)
	a := f.array(t, "a", 1)
	i := f.scalar(t, "i")
	b := f.b

	assign := b.Assign(b.Index(a, b.Ref(i)), b.Int(0))
	loop := b.Loop(i, b.Int(1), b.Int(10), b.Int(1))
	gen := b.Stmts.Generation()
	if err := b.Stmts.Append(loop, assign); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if b.Stmts.Parent(assign) != loop {
		t.Fatalf("parent = %d, want %d", b.Stmts.Parent(assign), loop)
	}
	if b.Stmts.Generation() == gen {
		t.Fatalf("generation not bumped by Append")
	}
	if err := b.Stmts.Append(assign, loop); err == nil {
		t.Fatalf("appending to an assignment should fail")
	}
	if err := b.Stmts.Append(loop, loop); err == nil {
		t.Fatalf("self-append should fail")
	}
}

func TestAppendRejectsCycles(t *testing.T) {
	f := newFixture(t)
	outer := f.b.Directive(DirParallel)
	inner := f.b.Directive(DirSingle)
	if err := f.b.Stmts.Append(outer, inner); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := f.b.Stmts.Append(inner, outer); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestReattachMovesNode(t *testing.T) {
	f := newFixture(t)
	first := f.b.Directive(DirTask)
	second := f.b.Directive(DirTask)
	child := f.b.Stmts.NewCodeBlock(sp(), "x = 1")
	if err := f.b.Stmts.Append(first, child); err != nil {
		t.Fatal(err)
	}
	if err := f.b.Stmts.Append(second, child); err != nil {
		t.Fatal(err)
	}
	if len(f.b.Stmts.Body(first)) != 0 {
		t.Fatalf("child still listed under first parent")
	}
	if !slices.Equal(f.b.Stmts.Body(second), []StmtID{child}) {
		t.Fatalf("body(second) = %v", f.b.Stmts.Body(second))
	}
}

func TestReplaceAndDetach(t *testing.T) {
	f := newFixture(t)
	b := f.b
	x := b.Stmts.NewCodeBlock(sp(), "x")
	y := b.Stmts.NewCodeBlock(sp(), "y")
	z := b.Stmts.NewCodeBlock(sp(), "z")
	region := b.Directive(DirParallel, x, y)

	gen := b.Stmts.Generation()
	if err := b.Stmts.Replace(x, z); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if !slices.Equal(b.Stmts.Body(region), []StmtID{z, y}) {
		t.Fatalf("body = %v", b.Stmts.Body(region))
	}
	if b.Stmts.Parent(x) != NoStmtID {
		t.Fatalf("replaced node keeps parent")
	}
	if b.Stmts.Generation() == gen {
		t.Fatalf("generation not bumped by Replace")
	}
	if err := b.Stmts.Replace(x, y); err == nil {
		t.Fatalf("replacing a detached node should fail")
	}

	gen = b.Stmts.Generation()
	b.Stmts.Detach(y)
	if !slices.Equal(b.Stmts.Body(region), []StmtID{z}) || b.Stmts.Generation() == gen {
		t.Fatalf("Detach did not update the tree")
	}
	gen = b.Stmts.Generation()
	b.Stmts.Detach(region)
	if b.Stmts.Generation() != gen {
		t.Fatalf("detaching a root must not bump the generation")
	}
}

func TestSetClausesKeepsGeneration(t *testing.T) {
	f := newFixture(t)
	task := f.b.Directive(DirTask)
	gen := f.b.Stmts.Generation()
	if err := f.b.Stmts.SetClauses(task, []Clause{{Kind: ClausePrivate}}); err != nil {
		t.Fatal(err)
	}
	if f.b.Stmts.Generation() != gen {
		t.Fatalf("SetClauses changed the generation")
	}
	if err := f.b.Stmts.SetClauses(f.b.Stmts.NewCodeBlock(sp(), ""), nil); err == nil {
		t.Fatalf("SetClauses on a non-directive should fail")
	}
}

func TestPreorderAndAncestors(t *testing.T) {
	f := newFixture(t)
	i := f.scalar(t, "i")
	b := f.b

	leaf := b.Stmts.NewCodeBlock(sp(), "leaf")
	loop := b.Loop(i, b.Int(1), b.Int(4), b.Int(1), leaf)
	task := b.Directive(DirTask, loop)
	single := b.Directive(DirSingle, task)
	par := b.Directive(DirParallel, single)

	order := b.Stmts.Preorder(par)
	if !slices.Equal(order, []StmtID{par, single, task, loop, leaf}) {
		t.Fatalf("preorder = %v", order)
	}
	if got := b.Stmts.AncestorDirective(leaf, []DirectiveKind{DirSingle, DirMaster}); got != single {
		t.Fatalf("serial ancestor = %d, want %d", got, single)
	}
	if got := b.Stmts.AncestorDirective(single, []DirectiveKind{DirSingle}); got != NoStmtID {
		t.Fatalf("a node is not its own ancestor")
	}
	if b.Stmts.Root(leaf) != par {
		t.Fatalf("root mismatch")
	}
	loops := b.Stmts.Collect(par, func(id StmtID) bool { return b.Stmts.Is(id, StmtLoop) })
	if !slices.Equal(loops, []StmtID{loop}) {
		t.Fatalf("loops = %v", loops)
	}
}

func TestIfChildrenOrder(t *testing.T) {
	f := newFixture(t)
	b := f.b
	c := b.Exprs.NewLiteral(sp(), ExprLitLogical, b.Strings.Intern(".true."))
	thenS := b.Stmts.NewCodeBlock(sp(), "then")
	elseS := b.Stmts.NewCodeBlock(sp(), "else")
	cond := b.Stmts.NewIf(sp(), c, []StmtID{thenS}, []StmtID{elseS})
	if !slices.Equal(b.Stmts.Children(cond), []StmtID{thenS, elseS}) {
		t.Fatalf("children = %v", b.Stmts.Children(cond))
	}
	b.Stmts.Detach(elseS)
	data, _ := b.Stmts.If(cond)
	if len(data.Else) != 0 {
		t.Fatalf("else-branch not cleared")
	}
}

func TestDump(t *testing.T) {
	f := newFixture(t)
	a := f.array(t, "a", 1)
	i := f.scalar(t, "i")
	b := f.b
	loop := b.Loop(i, b.Int(1), b.Int(8), b.Int(1), b.Assign(b.Index(a, b.Ref(i)), b.Int(0)))
	par := b.Directive(DirParallel, loop)

	var sb strings.Builder
	if err := NewPrinter(b, f.syms).Dump(&sb, par); err != nil {
		t.Fatal(err)
	}
	want := "!$omp parallel\n  do i = 1, 8, 1\n    a(i) = 0\n"
	if sb.String() != want {
		t.Fatalf("dump:\n%s\nwant:\n%s", sb.String(), want)
	}
}
