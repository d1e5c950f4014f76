package symbols

import (
	"strconv"

	"ompscope/internal/source"
)

// SymbolKind is the type descriptor the analyzer cares about.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolScalar
	SymbolArray
	SymbolStructure
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolScalar:
		return "scalar"
	case SymbolArray:
		return "array"
	case SymbolStructure:
		return "structure"
	default:
		return "invalid"
	}
}

// Interface records where the storage of a symbol comes from.
type Interface uint8

const (
	InterfaceLocal Interface = iota
	InterfaceArgument
	InterfaceImported
)

func (i Interface) String() string {
	switch i {
	case InterfaceArgument:
		return "argument"
	case InterfaceImported:
		return "imported"
	default:
		return "local"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	// SymbolFlagParameter marks named constants.
	SymbolFlagParameter SymbolFlags = 1 << iota
	// SymbolFlagKernelLocal marks storage owned by a called kernel.
	SymbolFlagKernelLocal
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 2)
	if f&SymbolFlagParameter != 0 {
		labels = append(labels, "parameter")
	}
	if f&SymbolFlagKernelLocal != 0 {
		labels = append(labels, "kernel-local")
	}
	return labels
}

// Extent is one declared array bound. Deferred bounds (":" or "*") are not Known.
type Extent struct {
	Known bool
	Value int64
}

func (e Extent) String() string {
	if !e.Known {
		return "*"
	}
	return strconv.FormatInt(e.Value, 10)
}

// Dim is the declared shape of one array dimension.
type Dim struct {
	Lower Extent
	Upper Extent
}

// Symbol is a declared name as produced by the front end.
type Symbol struct {
	Name      source.StringID
	Kind      SymbolKind
	Interface Interface
	Scope     ScopeID
	Span      source.Span
	Dims      []Dim
	Flags     SymbolFlags
}

// Rank returns the number of declared dimensions.
func (s *Symbol) Rank() int {
	if s == nil {
		return 0
	}
	return len(s.Dims)
}

// IsArray reports whether the symbol is an array.
func (s *Symbol) IsArray() bool {
	return s != nil && s.Kind == SymbolArray
}
