package omp

import (
	"ompscope/internal/ast"
	"ompscope/internal/symbols"
)

// Clauses holds the data-sharing and dependency lists of one task. Each list
// is de-duplicated by structural equality and keeps insertion order.
type Clauses struct {
	Private      []ast.ExprID
	Firstprivate []ast.ExprID
	Shared       []ast.ExprID
	DependIn     []ast.ExprID
	DependOut    []ast.ExprID
}

// List returns the list for clause kind k.
func (c *Clauses) List(k ast.ClauseKind) []ast.ExprID {
	switch k {
	case ast.ClausePrivate:
		return c.Private
	case ast.ClauseFirstprivate:
		return c.Firstprivate
	case ast.ClauseShared:
		return c.Shared
	case ast.ClauseDependIn:
		return c.DependIn
	case ast.ClauseDependOut:
		return c.DependOut
	}
	return nil
}

// Directive converts c into the clause representation stored on directives.
func (c *Clauses) Directive() []ast.Clause {
	kinds := []ast.ClauseKind{ast.ClausePrivate, ast.ClauseFirstprivate, ast.ClauseShared, ast.ClauseDependIn, ast.ClauseDependOut}
	out := make([]ast.Clause, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, ast.Clause{Kind: k, Items: c.List(k)})
	}
	return out
}

// Dependencies returns the in and out lists joined.
func (c *Clauses) Dependencies() []ast.ExprID {
	out := make([]ast.ExprID, 0, len(c.DependIn)+len(c.DependOut))
	out = append(out, c.DependIn...)
	return append(out, c.DependOut...)
}

// refList is an ordered set of expressions under structural equality.
type refList struct {
	exprs *ast.Exprs
	items *[]ast.ExprID
}

func (l refList) has(id ast.ExprID) bool {
	return l.exprs.Contains(*l.items, id)
}

// hasSymbol reports whether the list holds a plain reference to sym.
func (l refList) hasSymbol(sym symbols.SymbolID) bool {
	for _, item := range *l.items {
		if data, ok := l.exprs.Ref(item); ok && data.Symbol == sym {
			return true
		}
	}
	return false
}

// add appends a copy of id unless an equal item is present.
func (l refList) add(id ast.ExprID) bool {
	if l.has(id) {
		return false
	}
	*l.items = append(*l.items, l.exprs.Clone(id))
	return true
}

// addOwned appends id itself; it must be a freshly built node.
func (l refList) addOwned(id ast.ExprID) bool {
	if l.has(id) {
		return false
	}
	*l.items = append(*l.items, id)
	return true
}
