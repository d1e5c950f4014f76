package ast

// Equal reports whether a and b are structurally identical: same kinds,
// same symbols, same literal text and operators, recursively.
// Node identity and spans are ignored.
func (e *Exprs) Equal(a, b ExprID) bool {
	if a == b {
		return true
	}
	ea, eb := e.Get(a), e.Get(b)
	if ea == nil || eb == nil || ea.Kind != eb.Kind {
		return false
	}
	pa, pb := uint32(ea.Payload), uint32(eb.Payload)
	switch ea.Kind {
	case ExprRef:
		return e.Refs.Get(pa).Symbol == e.Refs.Get(pb).Symbol
	case ExprArrayRef:
		da, db := e.ArrayRefs.Get(pa), e.ArrayRefs.Get(pb)
		return da.Symbol == db.Symbol && e.equalList(da.Indices, db.Indices)
	case ExprStructRef:
		da, db := e.Structs.Get(pa), e.Structs.Get(pb)
		if da.Symbol != db.Symbol || len(da.Members) != len(db.Members) || !e.equalList(da.Indices, db.Indices) {
			return false
		}
		for i := range da.Members {
			if da.Members[i].Name != db.Members[i].Name || !e.equalList(da.Members[i].Indices, db.Members[i].Indices) {
				return false
			}
		}
		return true
	case ExprLit:
		return *e.Literals.Get(pa) == *e.Literals.Get(pb)
	case ExprBinary:
		da, db := e.Binaries.Get(pa), e.Binaries.Get(pb)
		return da.Op == db.Op && e.Equal(da.Left, db.Left) && e.Equal(da.Right, db.Right)
	case ExprUnary:
		da, db := e.Unaries.Get(pa), e.Unaries.Get(pb)
		return da.Op == db.Op && e.Equal(da.Operand, db.Operand)
	case ExprCall:
		da, db := e.Calls.Get(pa), e.Calls.Get(pb)
		return da.Name == db.Name && e.equalList(da.Args, db.Args)
	case ExprRange:
		da, db := e.Ranges.Get(pa), e.Ranges.Get(pb)
		return e.Equal(da.Lower, db.Lower) && e.Equal(da.Upper, db.Upper) && e.Equal(da.Step, db.Step)
	case ExprBound:
		return *e.Bounds.Get(pa) == *e.Bounds.Get(pb)
	}
	return false
}

func (e *Exprs) equalList(a, b []ExprID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !e.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of the first element of list structurally
// equal to id, or -1.
func (e *Exprs) IndexOf(list []ExprID, id ExprID) int {
	for i, cur := range list {
		if e.Equal(cur, id) {
			return i
		}
	}
	return -1
}

// Contains reports whether list holds an element structurally equal to id.
func (e *Exprs) Contains(list []ExprID, id ExprID) bool {
	return e.IndexOf(list, id) >= 0
}
