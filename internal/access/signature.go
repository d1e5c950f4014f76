package access

import (
	"fmt"
	"strings"

	"ompscope/internal/ast"
)

const sep = "%"

// Signature identifies an accessed entity by its component names, e.g.
// ("a", "b", "c") for a%b%c. The zero value is the empty signature.
// Signatures are comparable and can be used as map keys.
type Signature struct {
	key string
}

// New builds a signature from already folded component names.
func New(parts ...string) Signature {
	return Signature{key: strings.Join(parts, sep)}
}

// Compose returns outer extended by inner.
func Compose(outer, inner Signature) Signature {
	switch {
	case outer.key == "":
		return inner
	case inner.key == "":
		return outer
	}
	return Signature{key: outer.key + sep + inner.key}
}

func (s Signature) IsZero() bool { return s.key == "" }

// Components returns the names making up s.
func (s Signature) Components() []string {
	if s.key == "" {
		return nil
	}
	return strings.Split(s.key, sep)
}

func (s Signature) Len() int { return len(s.Components()) }

// VarName returns the name of the base variable.
func (s Signature) VarName() string {
	base, _, _ := strings.Cut(s.key, sep)
	return base
}

// IsStructure reports whether s has member components.
func (s Signature) IsStructure() bool {
	return strings.Contains(s.key, sep)
}

func (s Signature) String() string { return s.key }

// Less orders signatures lexicographically by component.
func (s Signature) Less(o Signature) bool {
	return Compare(s, o) < 0
}

// Compare orders signatures lexicographically by component.
func Compare(a, b Signature) int {
	ac, bc := a.Components(), b.Components()
	for i := 0; i < len(ac) && i < len(bc); i++ {
		if c := strings.Compare(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	return len(ac) - len(bc)
}

// Of returns the signature of a reference expression together with the
// subscripts of each component (nil for components without one).
func Of(exprs *ast.Exprs, names ast.SymbolNamer, id ast.ExprID) (Signature, [][]ast.ExprID, error) {
	kind, ok := exprs.Kind(id)
	if !ok {
		return Signature{}, nil, fmt.Errorf("signature: unknown expression %d", id)
	}
	switch kind {
	case ast.ExprRef:
		data, _ := exprs.Ref(id)
		return New(names.Name(data.Symbol)), [][]ast.ExprID{nil}, nil
	case ast.ExprArrayRef:
		data, _ := exprs.ArrayRef(id)
		return New(names.Name(data.Symbol)), [][]ast.ExprID{data.Indices}, nil
	case ast.ExprStructRef:
		data, _ := exprs.StructRef(id)
		parts := make([]string, 0, len(data.Members)+1)
		indices := make([][]ast.ExprID, 0, len(data.Members)+1)
		parts = append(parts, names.Name(data.Symbol))
		indices = append(indices, data.Indices)
		for _, m := range data.Members {
			name, _ := exprs.Strings.Lookup(m.Name)
			parts = append(parts, name)
			indices = append(indices, m.Indices)
		}
		return New(parts...), indices, nil
	}
	return Signature{}, nil, fmt.Errorf("signature: %s is not a reference", kind)
}
