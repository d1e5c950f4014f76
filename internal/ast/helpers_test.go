package ast

import (
	"testing"

	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

type fixture struct {
	b     *Builder
	syms  *symbols.Table
	scope symbols.ScopeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	strings := source.NewInterner()
	syms := symbols.NewTable(symbols.Hints{}, strings)
	scope := syms.NewScope(symbols.ScopeRoutine, symbols.NoScopeID, "work", source.Span{})
	return &fixture{b: NewBuilder(Hints{}, strings), syms: syms, scope: scope}
}

func (f *fixture) scalar(t *testing.T, name string) symbols.SymbolID {
	t.Helper()
	id, err := f.syms.Declare(f.scope, name, symbols.Symbol{})
	if err != nil {
		t.Fatalf("declare %s: %v", name, err)
	}
	return id
}

func (f *fixture) array(t *testing.T, name string, rank int) symbols.SymbolID {
	t.Helper()
	dims := make([]symbols.Dim, rank)
	for i := range dims {
		dims[i] = symbols.Dim{Lower: symbols.Extent{Known: true, Value: 1}}
	}
	id, err := f.syms.Declare(f.scope, name, symbols.Symbol{Dims: dims})
	if err != nil {
		t.Fatalf("declare %s: %v", name, err)
	}
	return id
}

func sp() source.Span { return source.Span{} }
