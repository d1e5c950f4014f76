package omp

import (
	"ompscope/internal/ast"
	"ompscope/internal/symbols"
)

// proxy binds a task loop variable that iterates over a chunk of an
// enclosing parallel loop to that loop.
type proxy struct {
	parentVar  symbols.SymbolID
	loop       ast.StmtID
	parentLoop ast.StmtID
}

// synth carries the state of one task clause computation.
type synth struct {
	a    *Analyzer
	task ast.StmtID

	region      ast.StmtID
	regionPriv  map[symbols.SymbolID]bool
	parentVars  []symbols.SymbolID
	parentLoops []ast.StmtID
	proxies     map[symbols.SymbolID]proxy

	out          Clauses
	private      refList
	firstprivate refList
	shared       refList
	in           refList
	outDeps      refList
}

// TaskClauses computes the private, firstprivate, shared and dependency
// lists of a task directive whose body is a single loop. Either every list
// is returned or an *Error; a partial result is never produced.
func (a *Analyzer) TaskClauses(task ast.StmtID) (*Clauses, error) {
	d, ok := a.b.Stmts.Directive(task)
	if !ok || d.Kind != ast.DirTask {
		return nil, newError(InternalError, task, "statement %d is not a task directive", task)
	}
	if len(d.Body) != 1 {
		return nil, newError(StructuralViolation, task, "task must have exactly one loop child, found %d children", len(d.Body))
	}
	body := d.Body[0]
	if !a.b.Stmts.Is(body, ast.StmtLoop) {
		kind, _ := a.b.Stmts.Kind(body)
		return nil, newError(StructuralViolation, task, "task must have exactly one loop child, found %s", kind)
	}

	s := &synth{a: a, task: task, proxies: make(map[symbols.SymbolID]proxy)}
	if err := s.findParentLoops(); err != nil {
		return nil, err
	}
	s.bind()
	if err := s.stmt(body); err != nil {
		return nil, err
	}
	return &s.out, nil
}

func (s *synth) bind() {
	ex := s.a.b.Exprs
	s.private = refList{exprs: ex, items: &s.out.Private}
	s.firstprivate = refList{exprs: ex, items: &s.out.Firstprivate}
	s.shared = refList{exprs: ex, items: &s.out.Shared}
	s.in = refList{exprs: ex, items: &s.out.DependIn}
	s.outDeps = refList{exprs: ex, items: &s.out.DependOut}
}

// findParentLoops records the loops between the task and its parallel
// region, innermost first.
func (s *synth) findParentLoops() error {
	st := s.a.b.Stmts
	isLoopOrParallel := func(id ast.StmtID) bool {
		return st.Is(id, ast.StmtLoop) || st.IsDirective(id, ast.DirParallel, ast.DirParallelDo)
	}
	anc := st.NearestAncestor(s.task, isLoopOrParallel)
	for st.Is(anc, ast.StmtLoop) {
		data, _ := st.Loop(anc)
		s.parentVars = append(s.parentVars, data.Var)
		s.parentLoops = append(s.parentLoops, anc)
		anc = st.NearestAncestor(anc, isLoopOrParallel)
	}
	if !anc.IsValid() {
		return newError(StructuralViolation, s.task, "task is not inside a parallel region")
	}
	entry, err := s.a.regionPrivate(anc)
	if err != nil {
		return err
	}
	s.region = anc
	s.regionPriv = entry.symbols
	return nil
}

func (s *synth) parentIndex(sym symbols.SymbolID) int {
	for i, v := range s.parentVars {
		if v == sym {
			return i
		}
	}
	return -1
}

// isChildLoopVar reports whether sym drives a loop inside the task that is
// not currently a proxy.
func (s *synth) isChildLoopVar(sym symbols.SymbolID) bool {
	if _, ok := s.proxies[sym]; ok {
		return false
	}
	found := false
	s.a.b.Stmts.Walk(s.task, func(id ast.StmtID) bool {
		if data, ok := s.a.b.Stmts.Loop(id); ok && data.Var == sym {
			found = true
		}
		return !found
	})
	return found
}

func (s *synth) stmt(id ast.StmtID) error {
	st := s.a.b.Stmts
	kind, _ := st.Kind(id)
	switch kind {
	case ast.StmtAssign:
		data, _ := st.Assign(id)
		if err := s.write(id, data.Target); err != nil {
			return err
		}
		return s.readAll(id, data.Value)
	case ast.StmtLoop:
		return s.loop(id)
	case ast.StmtIf:
		data, _ := st.If(id)
		if err := s.readAll(id, data.Cond); err != nil {
			return err
		}
		for _, child := range st.Children(id) {
			if err := s.stmt(child); err != nil {
				return err
			}
		}
	}
	// Other statements carry no accesses the clauses depend on.
	return nil
}

func (s *synth) loop(id ast.StmtID) error {
	b := s.a.b
	data, _ := b.Stmts.Loop(id)

	var bound *proxy
	if ref, ok := b.Exprs.Ref(data.Start); ok {
		if i := s.parentIndex(ref.Symbol); i >= 0 {
			bound = &proxy{parentVar: ref.Symbol, loop: id, parentLoop: s.parentLoops[i]}
		}
	}
	if bound != nil {
		prev, had := s.proxies[data.Var]
		s.proxies[data.Var] = *bound
		defer func() {
			if had {
				s.proxies[data.Var] = prev
			} else {
				delete(s.proxies, data.Var)
			}
		}()
	}

	if !s.regionPriv[data.Var] {
		return newError(SharedLoopVariable, id,
			"found shared loop variable which is not allowed in a task, variable name is %s", s.a.name(data.Var))
	}
	if !s.firstprivate.hasSymbol(data.Var) && !s.private.hasSymbol(data.Var) {
		s.private.addOwned(b.Ref(data.Var))
	}
	if bound != nil && !s.firstprivate.hasSymbol(bound.parentVar) {
		s.firstprivate.addOwned(b.Ref(bound.parentVar))
	}

	for _, part := range []struct {
		name string
		expr ast.ExprID
	}{{"start", data.Start}, {"stop", data.Stop}, {"step", data.Step}} {
		for _, ref := range b.Exprs.References(part.expr) {
			if _, indexed := b.Exprs.Indices(ref); indexed {
				return newError(UnsupportedIndexExpression, id,
					"%s is not supported in the %s expression of a loop in a task", s.a.exprName(ref), part.name).at(ref)
			}
			if !s.firstprivate.has(ref) && !s.private.has(ref) && !s.shared.has(ref) {
				s.firstprivate.add(ref)
			}
		}
	}

	for _, child := range b.Stmts.Body(id) {
		if err := s.stmt(child); err != nil {
			return err
		}
	}
	return nil
}

// readAll classifies every reference in e, subscripts included, as a read.
func (s *synth) readAll(stmt ast.StmtID, e ast.ExprID) error {
	for _, ref := range s.a.b.Exprs.References(e) {
		if err := s.read(stmt, ref); err != nil {
			return err
		}
	}
	return nil
}

func (s *synth) read(stmt ast.StmtID, ref ast.ExprID) error {
	return s.access(stmt, ref, false)
}

func (s *synth) write(stmt ast.StmtID, ref ast.ExprID) error {
	return s.access(stmt, ref, true)
}

func (s *synth) access(stmt ast.StmtID, ref ast.ExprID, isWrite bool) error {
	ex := s.a.b.Exprs
	if _, indexed := ex.Indices(ref); indexed {
		deps := s.in
		if isWrite {
			deps = s.outDeps
		}
		return s.array(stmt, ref, deps)
	}
	sym, ok := ex.Symbol(ref)
	if !ok {
		return newError(InternalError, stmt, "%s is not a reference", s.a.exprName(ref)).at(ref)
	}
	// Structure accesses are tracked through their base variable.
	base := ref
	if _, isStruct := ex.StructRef(ref); isStruct {
		base = s.a.b.Ref(sym)
	}
	if isWrite {
		s.writeBase(sym, base)
	} else {
		s.readBase(sym, base)
	}
	return nil
}

func (s *synth) writeBase(sym symbols.SymbolID, ref ast.ExprID) {
	if s.regionPriv[sym] {
		s.private.add(ref)
		return
	}
	s.shared.add(ref)
	s.outDeps.add(ref)
}

func (s *synth) readBase(sym symbols.SymbolID, ref ast.ExprID) {
	if s.regionPriv[sym] {
		if !s.private.has(ref) && !s.firstprivate.has(ref) {
			s.firstprivate.add(ref)
		}
		return
	}
	s.in.add(ref)
}
