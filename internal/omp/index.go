package omp

import (
	"fortio.org/safecast"

	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// array records an array access: one dependency per combination of the
// per-dimension index candidates goes to deps, the array itself to shared.
func (s *synth) array(stmt ast.StmtID, ref ast.ExprID, deps refList) error {
	ex := s.a.b.Exprs
	sym, _ := ex.Symbol(ref)
	indices, _ := ex.Indices(ref)
	if rank := s.a.syms.Rank(sym); rank > 0 && rank != len(indices) {
		return newError(UnsupportedIndexExpression, stmt,
			"array %s has rank %d but is accessed with %d subscripts", s.a.name(sym), rank, len(indices)).at(ref)
	}

	candidates := make([][]ast.ExprID, 0, len(indices))
	for d, idx := range indices {
		dim, err := safecast.Conv[uint32](d + 1)
		if err != nil {
			return newError(InternalError, stmt, "dimension overflow: %v", err)
		}
		cands, err := s.index(stmt, sym, dim, idx)
		if err != nil {
			return err
		}
		candidates = append(candidates, cands)
	}

	for _, combo := range product(candidates) {
		subs := make([]ast.ExprID, len(combo))
		for i, c := range combo {
			subs[i] = ex.Clone(c)
		}
		deps.addOwned(ex.NewArrayRef(source.Span{}, sym, subs))
	}
	s.shared.addOwned(s.a.b.Ref(sym))
	return nil
}

// product returns the Cartesian product of lists, first list varying slowest.
func product(lists [][]ast.ExprID) [][]ast.ExprID {
	out := [][]ast.ExprID{nil}
	for _, l := range lists {
		next := make([][]ast.ExprID, 0, len(out)*len(l))
		for _, prefix := range out {
			for _, item := range l {
				combo := make([]ast.ExprID, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, item))
			}
		}
		out = next
	}
	return out
}

// index resolves the subscript of one dimension into dependency candidates.
func (s *synth) index(stmt ast.StmtID, array symbols.SymbolID, dim uint32, idx ast.ExprID) ([]ast.ExprID, error) {
	ex := s.a.b.Exprs
	kind, _ := ex.Kind(idx)
	switch kind {
	case ast.ExprLit:
		if _, ok := ex.IntValue(idx); !ok {
			break
		}
		return []ast.ExprID{ex.Clone(idx)}, nil
	case ast.ExprRef:
		return s.indexRef(stmt, array, dim, idx)
	case ast.ExprBinary:
		return s.indexBinary(stmt, array, dim, idx)
	}
	return nil, newError(UnsupportedIndexExpression, stmt,
		"unsupported array index in task region: %s", s.a.exprName(idx)).at(idx)
}

func (s *synth) fullRange(array symbols.SymbolID, dim uint32) ast.ExprID {
	return s.a.b.Exprs.NewFullRange(source.Span{}, array, dim)
}

func (s *synth) indexRef(stmt ast.StmtID, array symbols.SymbolID, dim uint32, idx ast.ExprID) ([]ast.ExprID, error) {
	ref, _ := s.a.b.Exprs.Ref(idx)
	sym := ref.Symbol
	if !s.regionPriv[sym] {
		return nil, newError(UnsupportedIndexExpression, stmt,
			"shared variable access used as an index inside a task is not supported, variable name is %s", s.a.name(sym)).at(idx)
	}
	if !s.private.has(idx) && !s.firstprivate.has(idx) {
		s.firstprivate.add(idx)
	}
	switch {
	case s.isChildLoopVar(sym):
		return []ast.ExprID{s.fullRange(array, dim)}, nil
	case s.hasProxy(sym):
		return []ast.ExprID{s.a.b.Ref(s.proxies[sym].parentVar)}, nil
	case s.private.hasSymbol(sym):
		// Written inside the task: its value at the access is unknown.
		return []ast.ExprID{s.fullRange(array, dim)}, nil
	}
	return []ast.ExprID{s.a.b.Exprs.Clone(idx)}, nil
}

func (s *synth) hasProxy(sym symbols.SymbolID) bool {
	_, ok := s.proxies[sym]
	return ok
}

// indexBinary handles ref + lit, lit + ref and ref - lit subscripts.
func (s *synth) indexBinary(stmt ast.StmtID, array symbols.SymbolID, dim uint32, idx ast.ExprID) ([]ast.ExprID, error) {
	b := s.a.b
	bin, _ := b.Exprs.Binary(idx)
	if bin.Op != ast.ExprBinaryAdd && bin.Op != ast.ExprBinarySub {
		return nil, newError(UnsupportedIndexExpression, stmt,
			"binary operator %s used as an index inside a task is not supported", bin.Op).at(idx)
	}
	refExpr, litExpr := bin.Left, bin.Right
	if _, ok := b.Exprs.Ref(refExpr); !ok && bin.Op == ast.ExprBinaryAdd {
		refExpr, litExpr = litExpr, refExpr
	}
	ref, okRef := b.Exprs.Ref(refExpr)
	offset, okLit := b.Exprs.IntValue(litExpr)
	if !okRef || !okLit {
		return nil, newError(UnsupportedIndexExpression, stmt,
			"expected a reference and an integer literal in the index %s inside a task", s.a.exprName(idx)).at(idx)
	}
	if offset < 0 {
		return nil, newError(UnsupportedIndexExpression, stmt,
			"negative offset in the index %s inside a task is not supported", s.a.exprName(idx)).at(idx)
	}
	sym := ref.Symbol

	if p, ok := s.proxies[sym]; ok {
		step, err := s.loopStep(stmt, p.parentLoop, idx)
		if err != nil {
			return nil, err
		}
		return s.window(b.Ref(p.parentVar), bin.Op, offset, step), nil
	}
	if !s.regionPriv[sym] {
		return nil, newError(UnsupportedIndexExpression, stmt,
			"shared variable access used as an index inside a task is not supported, variable name is %s", s.a.name(sym)).at(idx)
	}
	if s.private.hasSymbol(sym) {
		// Child loop variable or a value written inside the task.
		return []ast.ExprID{s.fullRange(array, dim)}, nil
	}
	if !s.firstprivate.has(refExpr) {
		s.firstprivate.add(refExpr)
	}
	if i := s.parentIndex(sym); i >= 0 {
		step, err := s.loopStep(stmt, s.parentLoops[i], idx)
		if err != nil {
			return nil, err
		}
		return s.window(b.Ref(sym), bin.Op, offset, step), nil
	}
	return []ast.ExprID{b.Exprs.NewBinary(source.Span{}, bin.Op, b.Exprs.Clone(refExpr), b.Exprs.Clone(litExpr))}, nil
}

// loopStep returns the positive literal step of loop.
func (s *synth) loopStep(stmt, loop ast.StmtID, idx ast.ExprID) (int64, error) {
	data, _ := s.a.b.Stmts.Loop(loop)
	step, ok := s.a.b.Exprs.IntValue(data.Step)
	if !ok || step <= 0 {
		return 0, newError(UnsupportedIndexExpression, stmt,
			"loop over %s needs a positive integer literal step to resolve the index %s inside a task",
			s.a.name(data.Var), s.a.exprName(idx)).at(idx)
	}
	return step, nil
}

// window returns the dependency candidates of ref op offset when ref moves
// in chunks of step: ref op divisor*step, plus ref op (divisor-1)*step when
// offset is not a multiple of step.
func (s *synth) window(ref ast.ExprID, op ast.ExprBinaryOp, offset, step int64) []ast.ExprID {
	if offset == 0 {
		return []ast.ExprID{ref}
	}
	divisor, modulo := Window(offset, step)
	b := s.a.b
	out := []ast.ExprID{b.Bin(op, b.Exprs.Clone(ref), b.Int(divisor*step))}
	if modulo != 0 {
		if divisor > 1 {
			out = append(out, b.Bin(op, b.Exprs.Clone(ref), b.Int((divisor-1)*step)))
		} else {
			out = append(out, b.Exprs.Clone(ref))
		}
	}
	return out
}

// Window returns ceil(offset/step) and offset mod step for a positive step
// and a non-negative offset.
func Window(offset, step int64) (divisor, modulo int64) {
	return (offset + step - 1) / step, offset % step
}
