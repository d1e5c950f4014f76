package ast

import (
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

type Hints struct{ Stmts, Exprs uint }

// Builder bundles the statement and expression arenas of one tree.
type Builder struct {
	Stmts   *Stmts
	Exprs   *Exprs
	Strings *source.Interner
}

func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Stmts:   NewStmts(hints.Stmts),
		Exprs:   NewExprs(hints.Exprs, strings),
		Strings: strings,
	}
}

// Int creates an integer literal.
func (b *Builder) Int(v int64) ExprID {
	return b.Exprs.NewIntLiteral(source.Span{}, v)
}

// Ref creates a scalar reference to sym.
func (b *Builder) Ref(sym symbols.SymbolID) ExprID {
	return b.Exprs.NewRef(source.Span{}, sym)
}

// Index creates sym(indices...).
func (b *Builder) Index(sym symbols.SymbolID, indices ...ExprID) ExprID {
	return b.Exprs.NewArrayRef(source.Span{}, sym, indices)
}

// Bin creates left op right.
func (b *Builder) Bin(op ExprBinaryOp, left, right ExprID) ExprID {
	return b.Exprs.NewBinary(source.Span{}, op, left, right)
}

// Assign creates target = value.
func (b *Builder) Assign(target, value ExprID) StmtID {
	return b.Stmts.NewAssign(source.Span{}, target, value)
}

// Loop creates do v = start, stop, step.
func (b *Builder) Loop(v symbols.SymbolID, start, stop, step ExprID, body ...StmtID) StmtID {
	return b.Stmts.NewLoop(source.Span{}, v, start, stop, step, body)
}

// Directive creates a directive of kind owning body.
func (b *Builder) Directive(kind DirectiveKind, body ...StmtID) StmtID {
	return b.Stmts.NewDirective(source.Span{}, kind, body)
}

// Span returns the span of a statement.
func (b *Builder) Span(id StmtID) source.Span {
	if st := b.Stmts.Get(id); st != nil {
		return st.Span
	}
	return source.Span{}
}

// ExprSpan returns the span of an expression.
func (b *Builder) ExprSpan(id ExprID) source.Span {
	if e := b.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}
