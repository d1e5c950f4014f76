package testkit

import (
	"testing"

	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Tree builds routine trees for tests in a Fortran-like shorthand.
type Tree struct {
	tb      testing.TB
	B       *ast.Builder
	Syms    *symbols.Table
	Strings *source.Interner
	Scope   symbols.ScopeID
	name    string
}

// NewTree creates an empty routine scope called name.
func NewTree(tb testing.TB, name string) *Tree {
	tb.Helper()
	strings := source.NewInterner()
	syms := symbols.NewTable(symbols.Hints{}, strings)
	scope := syms.NewScope(symbols.ScopeRoutine, symbols.NoScopeID, name, source.Span{})
	return &Tree{
		tb:      tb,
		B:       ast.NewBuilder(ast.Hints{}, strings),
		Syms:    syms,
		Strings: strings,
		Scope:   scope,
		name:    name,
	}
}

func (t *Tree) declare(name string, sym symbols.Symbol) symbols.SymbolID {
	t.tb.Helper()
	id, err := t.Syms.Declare(t.Scope, name, sym)
	if err != nil {
		t.tb.Fatalf("declare %s: %v", name, err)
	}
	return id
}

// Scalar declares an integer scalar.
func (t *Tree) Scalar(name string) symbols.SymbolID {
	t.tb.Helper()
	return t.declare(name, symbols.Symbol{})
}

// Array declares an array of the given rank with deferred bounds.
func (t *Tree) Array(name string, rank int) symbols.SymbolID {
	t.tb.Helper()
	return t.declare(name, symbols.Symbol{Dims: make([]symbols.Dim, rank)})
}

// Structure declares a derived-type variable.
func (t *Tree) Structure(name string) symbols.SymbolID {
	t.tb.Helper()
	return t.declare(name, symbols.Symbol{Kind: symbols.SymbolStructure})
}

// Routine wraps body into the routine root.
func (t *Tree) Routine(body ...ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewRoutine(source.Span{}, t.Strings.InternName(t.name), t.Scope, body)
}

func (t *Tree) Ref(sym symbols.SymbolID) ast.ExprID { return t.B.Ref(sym) }

func (t *Tree) Int(v int64) ast.ExprID { return t.B.Int(v) }

// Add returns sym + n.
func (t *Tree) Add(sym symbols.SymbolID, n int64) ast.ExprID {
	return t.B.Bin(ast.ExprBinaryAdd, t.B.Ref(sym), t.B.Int(n))
}

// Sub returns sym - n.
func (t *Tree) Sub(sym symbols.SymbolID, n int64) ast.ExprID {
	return t.B.Bin(ast.ExprBinarySub, t.B.Ref(sym), t.B.Int(n))
}

// At returns sym(indices...).
func (t *Tree) At(sym symbols.SymbolID, indices ...ast.ExprID) ast.ExprID {
	return t.B.Index(sym, indices...)
}

func (t *Tree) Assign(target, value ast.ExprID) ast.StmtID { return t.B.Assign(target, value) }

// Do returns do v = start, stop, step.
func (t *Tree) Do(v symbols.SymbolID, start, stop, step ast.ExprID, body ...ast.StmtID) ast.StmtID {
	return t.B.Loop(v, start, stop, step, body...)
}

func (t *Tree) Dir(kind ast.DirectiveKind, body ...ast.StmtID) ast.StmtID {
	return t.B.Directive(kind, body...)
}

// If returns if (cond) then ... end if.
func (t *Tree) If(cond ast.ExprID, then ...ast.StmtID) ast.StmtID {
	return t.B.Stmts.NewIf(source.Span{}, cond, then, nil)
}

// Call returns a call statement; kernel calls carry locals.
func (t *Tree) Call(name string, kernel bool, args []ast.ExprID, locals ...string) ast.StmtID {
	ids := make([]source.StringID, 0, len(locals))
	for _, l := range locals {
		ids = append(ids, t.Strings.Intern(l))
	}
	return t.B.Stmts.NewCall(source.Span{}, t.Strings.InternName(name), args, kernel, ids)
}

// CodeBlock returns an opaque statement.
func (t *Tree) CodeBlock(text string) ast.StmtID {
	return t.B.Stmts.NewCodeBlock(source.Span{}, text)
}

// Printer returns a printer resolving names through the tree's table.
func (t *Tree) Printer() *ast.Printer { return ast.NewPrinter(t.B, t.Syms) }

// Exprs renders ids joined by ",".
func (t *Tree) Exprs(ids []ast.ExprID) string {
	return t.Printer().ExprList(ids)
}
