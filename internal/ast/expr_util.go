package ast

import (
	"ompscope/internal/symbols"
)

// Symbol returns the symbol touched by a reference expression.
func (e *Exprs) Symbol(id ExprID) (symbols.SymbolID, bool) {
	expr := e.Get(id)
	if expr == nil {
		return symbols.NoSymbolID, false
	}
	switch expr.Kind {
	case ExprRef:
		return e.Refs.Get(uint32(expr.Payload)).Symbol, true
	case ExprArrayRef:
		return e.ArrayRefs.Get(uint32(expr.Payload)).Symbol, true
	case ExprStructRef:
		return e.Structs.Get(uint32(expr.Payload)).Symbol, true
	}
	return symbols.NoSymbolID, false
}

// IsReference reports whether id is a scalar, array or structure reference.
func (e *Exprs) IsReference(id ExprID) bool {
	expr := e.Get(id)
	return expr != nil && expr.Kind.IsReference()
}

// Children returns the direct sub-expressions of id in source order.
func (e *Exprs) Children(id ExprID) []ExprID {
	expr := e.Get(id)
	if expr == nil {
		return nil
	}
	p := uint32(expr.Payload)
	switch expr.Kind {
	case ExprRef, ExprLit, ExprBound:
		return nil
	case ExprArrayRef:
		return e.ArrayRefs.Get(p).Indices
	case ExprStructRef:
		data := e.Structs.Get(p)
		out := append([]ExprID(nil), data.Indices...)
		for _, m := range data.Members {
			out = append(out, m.Indices...)
		}
		return out
	case ExprBinary:
		data := e.Binaries.Get(p)
		return []ExprID{data.Left, data.Right}
	case ExprUnary:
		return []ExprID{e.Unaries.Get(p).Operand}
	case ExprCall:
		return e.Calls.Get(p).Args
	case ExprRange:
		data := e.Ranges.Get(p)
		out := []ExprID{data.Lower, data.Upper}
		if data.Step.IsValid() {
			out = append(out, data.Step)
		}
		return out
	}
	return nil
}

// Walk visits id and its sub-expressions in preorder. Returning false from
// fn skips the children of the current node.
func (e *Exprs) Walk(id ExprID, fn func(ExprID) bool) {
	if !id.IsValid() || !fn(id) {
		return
	}
	for _, child := range e.Children(id) {
		e.Walk(child, fn)
	}
}

// References collects every reference node under id in preorder, including
// references nested inside subscripts.
func (e *Exprs) References(id ExprID) []ExprID {
	var out []ExprID
	e.Walk(id, func(cur ExprID) bool {
		if e.IsReference(cur) {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// Indices returns the subscripts that make id an array access: the indices of
// an ArrayRef or of the base of an array-of-structures access.
func (e *Exprs) Indices(id ExprID) ([]ExprID, bool) {
	if data, ok := e.ArrayRef(id); ok {
		return data.Indices, true
	}
	if data, ok := e.StructRef(id); ok && len(data.Indices) > 0 {
		return data.Indices, true
	}
	return nil, false
}

// Clone deep-copies the expression tree rooted at id.
func (e *Exprs) Clone(id ExprID) ExprID {
	expr := e.Get(id)
	if expr == nil {
		return NoExprID
	}
	span := expr.Span
	p := uint32(expr.Payload)
	switch expr.Kind {
	case ExprRef:
		return e.NewRef(span, e.Refs.Get(p).Symbol)
	case ExprArrayRef:
		data := *e.ArrayRefs.Get(p)
		return e.NewArrayRef(span, data.Symbol, e.cloneList(data.Indices))
	case ExprStructRef:
		data := *e.Structs.Get(p)
		members := make([]StructMember, len(data.Members))
		for i, m := range data.Members {
			members[i] = StructMember{Name: m.Name, Indices: e.cloneList(m.Indices)}
		}
		return e.NewStructRef(span, data.Symbol, e.cloneList(data.Indices), members)
	case ExprLit:
		data := *e.Literals.Get(p)
		return e.NewLiteral(span, data.Kind, data.Value)
	case ExprBinary:
		data := *e.Binaries.Get(p)
		return e.NewBinary(span, data.Op, e.Clone(data.Left), e.Clone(data.Right))
	case ExprUnary:
		data := *e.Unaries.Get(p)
		return e.NewUnary(span, data.Op, e.Clone(data.Operand))
	case ExprCall:
		data := *e.Calls.Get(p)
		return e.NewCall(span, data.Name, e.cloneList(data.Args))
	case ExprRange:
		data := *e.Ranges.Get(p)
		return e.NewRange(span, e.Clone(data.Lower), e.Clone(data.Upper), e.Clone(data.Step))
	case ExprBound:
		data := *e.Bounds.Get(p)
		return e.NewBound(span, data.Kind, data.Array, data.Dim)
	}
	return NoExprID
}

func (e *Exprs) cloneList(ids []ExprID) []ExprID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ExprID, len(ids))
	for i, id := range ids {
		out[i] = e.Clone(id)
	}
	return out
}
