package symbols

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"ompscope/internal/source"
)

// slab is a 1-based append-only store; slot 0 is the "no value" sentinel.
type slab[T any] struct {
	what  string
	items []T
}

func newSlab[T any](what string, capacity, fallback uint32) slab[T] {
	if capacity == 0 {
		capacity = fallback
	}
	return slab[T]{what: what, items: make([]T, 1, capacity+1)}
}

func (s *slab[T]) push(v T) uint32 {
	id, err := safecast.Conv[uint32](len(s.items))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", s.what, err))
	}
	s.items = append(s.items, v)
	return id
}

func (s *slab[T]) at(id uint32) *T {
	if id == 0 || int(id) >= len(s.items) {
		return nil
	}
	return &s.items[id]
}

func (s *slab[T]) count() int { return len(s.items) - 1 }

// all yields live slots in allocation order.
func (s *slab[T]) all() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for i := 1; i < len(s.items); i++ {
			if !yield(uint32(i), &s.items[i]) { // #nosec G115 -- bounded by push
				return
			}
		}
	}
}

// Scopes owns every scope of a table.
type Scopes struct{ slab slab[Scope] }

// NewScopes creates a scope arena; capacity is a hint.
func NewScopes(capacity uint32) *Scopes {
	return &Scopes{slab: newSlab[Scope]("scopes", capacity, 8)}
}

// New opens a scope and registers it as a child of parent.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, name source.StringID, span source.Span) ScopeID {
	id := ScopeID(s.slab.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Name:      name,
		Span:      span,
		NameIndex: make(map[source.StringID]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns nil for NoScopeID and unknown IDs.
func (s *Scopes) Get(id ScopeID) *Scope { return s.slab.at(uint32(id)) }

func (s *Scopes) Len() int { return s.slab.count() }

// All iterates scopes in the order they were opened.
func (s *Scopes) All() iter.Seq2[ScopeID, *Scope] {
	return func(yield func(ScopeID, *Scope) bool) {
		for id, sc := range s.slab.all() {
			if !yield(ScopeID(id), sc) {
				return
			}
		}
	}
}

// Symbols owns every declared symbol of a table.
type Symbols struct{ slab slab[Symbol] }

// NewSymbols creates a symbol arena; capacity is a hint.
func NewSymbols(capacity uint32) *Symbols {
	return &Symbols{slab: newSlab[Symbol]("symbols", capacity, 32)}
}

// New stores a copy of sym.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return SymbolID(s.slab.push(*sym))
}

// Get returns nil for NoSymbolID and unknown IDs.
func (s *Symbols) Get(id SymbolID) *Symbol { return s.slab.at(uint32(id)) }

func (s *Symbols) Len() int { return s.slab.count() }

// All iterates symbols in declaration order.
func (s *Symbols) All() iter.Seq2[SymbolID, *Symbol] {
	return func(yield func(SymbolID, *Symbol) bool) {
		for id, sym := range s.slab.all() {
			if !yield(SymbolID(id), sym) {
				return
			}
		}
	}
}
