package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"ompscope/internal/source"
)

// ErrDuplicateSymbol is returned when a name is declared twice in one scope.
var ErrDuplicateSymbol = errors.New("duplicate symbol")

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
	}
}

// NewScope opens a scope named name under parent.
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, name string, span source.Span) ScopeID {
	return t.Scopes.New(kind, parent, t.Strings.InternName(name), span)
}

// Declare adds sym to scope under name. The stored name is case-folded.
func (t *Table) Declare(scope ScopeID, name string, sym Symbol) (SymbolID, error) {
	sc := t.Scopes.Get(scope)
	if sc == nil {
		return NoSymbolID, fmt.Errorf("declare %q: unknown scope %d", name, scope)
	}
	if name == "" {
		return NoSymbolID, fmt.Errorf("declare: empty name in scope %d", scope)
	}
	key := t.Strings.InternName(name)
	if prev, ok := sc.NameIndex[key]; ok {
		return prev, fmt.Errorf("%w: %q in scope %d", ErrDuplicateSymbol, name, scope)
	}
	sym.Name = key
	sym.Scope = scope
	if sym.Kind == SymbolInvalid {
		sym.Kind = SymbolScalar
		if len(sym.Dims) > 0 {
			sym.Kind = SymbolArray
		}
	}
	id := t.Symbols.New(&sym)
	sc = t.Scopes.Get(scope) // arena may have grown
	sc.NameIndex[key] = id
	sc.Symbols = append(sc.Symbols, id)
	return id, nil
}

// Lookup resolves name starting at scope and walking outwards.
func (t *Table) Lookup(scope ScopeID, name string) (SymbolID, bool) {
	key, ok := t.Strings.LookupName(name)
	if !ok {
		return NoSymbolID, false
	}
	for id := scope; id.IsValid(); {
		sc := t.Scopes.Get(id)
		if sc == nil {
			break
		}
		if sym, found := sc.NameIndex[key]; found {
			return sym, true
		}
		id = sc.Parent
	}
	return NoSymbolID, false
}

// Symbol returns the symbol for id or nil.
func (t *Table) Symbol(id SymbolID) *Symbol {
	return t.Symbols.Get(id)
}

// Name returns the declared (folded) name of id.
func (t *Table) Name(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return ""
	}
	name, _ := t.Strings.Lookup(sym.Name)
	return name
}

// Rank returns the declared rank of id, zero for scalars.
func (t *Table) Rank(id SymbolID) int {
	return t.Symbols.Get(id).Rank()
}

// DeclaredBound returns the declared lower or upper bound of dimension dim (1-based).
// ok is false when dim is out of range.
func (t *Table) DeclaredBound(id SymbolID, dim int, upper bool) (Extent, bool) {
	sym := t.Symbols.Get(id)
	if sym == nil || dim < 1 || dim > len(sym.Dims) {
		return Extent{}, false
	}
	d := sym.Dims[dim-1]
	if upper {
		return d.Upper, true
	}
	return d.Lower, true
}
