package ast

import (
	"strconv"

	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena     *Arena[Expr]
	Refs      *Arena[ExprRefData]
	ArrayRefs *Arena[ExprArrayRefData]
	Structs   *Arena[ExprStructRefData]
	Literals  *Arena[ExprLiteralData]
	Binaries  *Arena[ExprBinaryData]
	Unaries   *Arena[ExprUnaryData]
	Calls     *Arena[ExprCallData]
	Ranges    *Arena[ExprRangeData]
	Bounds    *Arena[ExprBoundData]
	Strings   *source.Interner
}

// NewExprs creates a new Exprs with per-kind arenas preallocated using capHint as the initial capacity.
func NewExprs(capHint uint, strings *source.Interner) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	small := capHint/4 + 1
	return &Exprs{
		Arena:     NewArena[Expr](capHint),
		Refs:      NewArena[ExprRefData](capHint),
		ArrayRefs: NewArena[ExprArrayRefData](small),
		Structs:   NewArena[ExprStructRefData](small),
		Literals:  NewArena[ExprLiteralData](capHint),
		Binaries:  NewArena[ExprBinaryData](small),
		Unaries:   NewArena[ExprUnaryData](small),
		Calls:     NewArena[ExprCallData](small),
		Ranges:    NewArena[ExprRangeData](small),
		Bounds:    NewArena[ExprBoundData](small),
		Strings:   strings,
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: PayloadID(payload),
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// Kind returns the kind of id; ok is false for unknown IDs.
func (e *Exprs) Kind(id ExprID) (ExprKind, bool) {
	expr := e.Get(id)
	if expr == nil {
		return 0, false
	}
	return expr.Kind, true
}

func (e *Exprs) payload(id ExprID, kind ExprKind) (uint32, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return 0, false
	}
	return uint32(expr.Payload), true
}

// NewRef creates a scalar reference.
func (e *Exprs) NewRef(span source.Span, sym symbols.SymbolID) ExprID {
	return e.new(ExprRef, span, e.Refs.Allocate(ExprRefData{Symbol: sym}))
}

// Ref returns the reference data for the given expression ID.
func (e *Exprs) Ref(id ExprID) (*ExprRefData, bool) {
	p, ok := e.payload(id, ExprRef)
	if !ok {
		return nil, false
	}
	return e.Refs.Get(p), true
}

// NewArrayRef creates a subscripted array access.
func (e *Exprs) NewArrayRef(span source.Span, sym symbols.SymbolID, indices []ExprID) ExprID {
	payload := e.ArrayRefs.Allocate(ExprArrayRefData{
		Symbol:  sym,
		Indices: append([]ExprID(nil), indices...),
	})
	return e.new(ExprArrayRef, span, payload)
}

// ArrayRef returns the array access data for the given expression ID.
func (e *Exprs) ArrayRef(id ExprID) (*ExprArrayRefData, bool) {
	p, ok := e.payload(id, ExprArrayRef)
	if !ok {
		return nil, false
	}
	return e.ArrayRefs.Get(p), true
}

// NewStructRef creates a member access chain rooted at sym.
func (e *Exprs) NewStructRef(span source.Span, sym symbols.SymbolID, indices []ExprID, members []StructMember) ExprID {
	copied := make([]StructMember, len(members))
	for i, m := range members {
		copied[i] = StructMember{Name: m.Name, Indices: append([]ExprID(nil), m.Indices...)}
	}
	payload := e.Structs.Allocate(ExprStructRefData{
		Symbol:  sym,
		Indices: append([]ExprID(nil), indices...),
		Members: copied,
	})
	return e.new(ExprStructRef, span, payload)
}

// StructRef returns the structure access data for the given expression ID.
func (e *Exprs) StructRef(id ExprID) (*ExprStructRefData, bool) {
	p, ok := e.payload(id, ExprStructRef)
	if !ok {
		return nil, false
	}
	return e.Structs.Get(p), true
}

// NewLiteral creates a new literal expression.
func (e *Exprs) NewLiteral(span source.Span, kind ExprLitKind, value source.StringID) ExprID {
	return e.new(ExprLit, span, e.Literals.Allocate(ExprLiteralData{Kind: kind, Value: value}))
}

// NewIntLiteral creates an integer literal with value v.
func (e *Exprs) NewIntLiteral(span source.Span, v int64) ExprID {
	return e.NewLiteral(span, ExprLitInt, e.Strings.Intern(strconv.FormatInt(v, 10)))
}

// Literal returns the literal data for the given expression ID.
func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

// IntValue returns the value of an integer literal.
func (e *Exprs) IntValue(id ExprID) (int64, bool) {
	lit, ok := e.Literal(id)
	if !ok || lit.Kind != ExprLitInt {
		return 0, false
	}
	text, ok := e.Strings.Lookup(lit.Value)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NewBinary creates a new binary expression.
func (e *Exprs) NewBinary(span source.Span, op ExprBinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, span, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

// Binary returns the binary data for the given expression ID.
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

// NewUnary creates a new unary expression.
func (e *Exprs) NewUnary(span source.Span, op ExprUnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, span, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

// Unary returns the unary data for the given expression ID.
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

// NewCall creates a function call expression.
func (e *Exprs) NewCall(span source.Span, name source.StringID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Name: name, Args: append([]ExprID(nil), args...)})
	return e.new(ExprCall, span, payload)
}

// Call returns the call data for the given expression ID.
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

// NewRange creates lower:upper[:step].
func (e *Exprs) NewRange(span source.Span, lower, upper, step ExprID) ExprID {
	return e.new(ExprRange, span, e.Ranges.Allocate(ExprRangeData{Lower: lower, Upper: upper, Step: step}))
}

// Range returns the range data for the given expression ID.
func (e *Exprs) Range(id ExprID) (*ExprRangeData, bool) {
	p, ok := e.payload(id, ExprRange)
	if !ok {
		return nil, false
	}
	return e.Ranges.Get(p), true
}

// NewBound creates lbound(array, dim) or ubound(array, dim).
func (e *Exprs) NewBound(span source.Span, kind BoundKind, array symbols.SymbolID, dim uint32) ExprID {
	return e.new(ExprBound, span, e.Bounds.Allocate(ExprBoundData{Kind: kind, Array: array, Dim: dim}))
}

// Bound returns the bound data for the given expression ID.
func (e *Exprs) Bound(id ExprID) (*ExprBoundData, bool) {
	p, ok := e.payload(id, ExprBound)
	if !ok {
		return nil, false
	}
	return e.Bounds.Get(p), true
}

// NewFullRange creates lbound(array, dim):ubound(array, dim).
func (e *Exprs) NewFullRange(span source.Span, array symbols.SymbolID, dim uint32) ExprID {
	lower := e.NewBound(span, BoundLower, array, dim)
	upper := e.NewBound(span, BoundUpper, array, dim)
	return e.NewRange(span, lower, upper, NoExprID)
}
