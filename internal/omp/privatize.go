package omp

import (
	"slices"

	"ompscope/internal/access"
	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// RegionPrivateClause returns the variables that must be private to every
// thread of a parallel region, sorted by name. Locals of kernels called in
// the region are always private. A scalar accessed more than once is private
// when its first access is a write whose nearest enclosing loop lies inside
// the region. Arrays stay shared.
//
// Results are memoized per region until the tree changes.
func (a *Analyzer) RegionPrivateClause(region ast.StmtID) ([]ast.ExprID, error) {
	entry, err := a.regionPrivate(region)
	if err != nil {
		return nil, err
	}
	return slices.Clone(entry.refs), nil
}

// IsRegionPrivate reports whether sym is private in the parallel region.
func (a *Analyzer) IsRegionPrivate(region ast.StmtID, sym symbols.SymbolID) (bool, error) {
	entry, err := a.regionPrivate(region)
	if err != nil {
		return false, err
	}
	return entry.symbols[sym], nil
}

func (a *Analyzer) regionPrivate(region ast.StmtID) (*privateEntry, error) {
	if !a.b.Stmts.IsDirective(region, ast.DirParallel, ast.DirParallelDo) {
		return nil, newError(InternalError, region, "statement %d is not a parallel region", region)
	}
	gen := a.b.Stmts.Generation()
	if entry, ok := a.private[region]; ok && entry.generation == gen {
		return entry, nil
	}

	found := make(map[access.Signature]symbols.SymbolID)
	if err := a.kernelLocals(region, found); err != nil {
		return nil, err
	}

	info, err := access.Collect(a.b, a.syms, region)
	if err != nil {
		return nil, newError(InternalError, region, "collecting accesses: %v", err)
	}
	for _, sig := range info.Signatures() {
		v, _ := info.Get(sig)
		if v.IsArray() || len(v.Accesses) < 2 {
			continue
		}
		if sym := a.syms.Symbol(v.Symbol); sym != nil && sym.IsArray() && !sig.IsStructure() {
			continue
		}
		first := v.Accesses[0]
		if first.Kind != access.Write {
			continue
		}
		if a.writtenInLoop(first.Stmt, region) {
			found[sig] = v.Symbol
		}
	}

	sigs := make([]access.Signature, 0, len(found))
	for sig := range found {
		sigs = append(sigs, sig)
	}
	slices.SortFunc(sigs, access.Compare)

	entry := &privateEntry{generation: gen, symbols: make(map[symbols.SymbolID]bool, len(sigs))}
	for _, sig := range sigs {
		ref := a.signatureRef(found[sig], sig)
		entry.refs = append(entry.refs, ref)
		if !sig.IsStructure() {
			entry.symbols[found[sig]] = true
		}
	}
	a.private[region] = entry
	return entry, nil
}

// kernelLocals adds the local variables of every kernel called in region.
func (a *Analyzer) kernelLocals(region ast.StmtID, found map[access.Signature]symbols.SymbolID) error {
	scope := a.routineScope(region)
	calls := a.b.Stmts.Collect(region, func(id ast.StmtID) bool {
		data, ok := a.b.Stmts.Call(id)
		return ok && data.Kernel
	})
	for _, call := range calls {
		data, _ := a.b.Stmts.Call(call)
		callName, _ := a.b.Strings.Lookup(data.Name)
		for _, local := range data.Locals {
			name, _ := a.b.Strings.Lookup(local)
			if local == source.NoStringID || name == "" {
				return newError(InternalError, call, "call '%s' has a local variable but its name is not set", callName)
			}
			sym, ok := a.syms.Lookup(scope, name)
			if !ok {
				return newError(InternalError, call, "local variable '%s' of call '%s' is not declared", source.FoldName(name), callName)
			}
			found[access.New(source.FoldName(name))] = sym
		}
	}
	return nil
}

// writtenInLoop reports whether the nearest loop-or-region ancestor of stmt
// (stmt itself included) is a loop.
func (a *Analyzer) writtenInLoop(stmt, region ast.StmtID) bool {
	for cur := stmt; cur.IsValid() && cur != region; cur = a.b.Stmts.Parent(cur) {
		if a.b.Stmts.Is(cur, ast.StmtLoop) {
			return true
		}
	}
	return false
}

// signatureRef builds a reference for sig rooted at base.
func (a *Analyzer) signatureRef(base symbols.SymbolID, sig access.Signature) ast.ExprID {
	parts := sig.Components()
	if len(parts) <= 1 {
		return a.b.Ref(base)
	}
	members := make([]ast.StructMember, 0, len(parts)-1)
	for _, p := range parts[1:] {
		members = append(members, ast.StructMember{Name: a.b.Strings.InternName(p)})
	}
	return a.b.Exprs.NewStructRef(source.Span{}, base, nil, members)
}
