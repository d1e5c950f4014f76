package symbols

import (
	"ompscope/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid   ScopeKind = iota
	ScopeContainer           // module or program unit holding routines
	ScopeRoutine             // subroutine or function body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeContainer:
		return "container"
	case ScopeRoutine:
		return "routine"
	default:
		return "invalid"
	}
}

// Scope models a declaration scope with a parent-child hierarchy.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Name      source.StringID
	Span      source.Span
	NameIndex map[source.StringID]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
