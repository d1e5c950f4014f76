package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate walks internal arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for scopeID, scope := range t.Scopes.All() {
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			if parent == nil || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
			} else if !containsScope(parent.Children, scopeID) {
				errs = append(errs, fmt.Errorf("scope %d parent %d missing backlink", scopeID, scope.Parent))
			}
		}
		for _, child := range scope.Children {
			cs := t.Scopes.Get(child)
			if cs == nil || cs.Parent != scopeID {
				errs = append(errs, fmt.Errorf("scope %d child %d missing parent backlink", scopeID, child))
			}
		}
		if len(scope.NameIndex) != len(scope.Symbols) {
			errs = append(errs, fmt.Errorf("scope %d indexes %d names for %d symbols", scopeID, len(scope.NameIndex), len(scope.Symbols)))
		}
		for name, symID := range scope.NameIndex {
			sym := t.Symbols.Get(symID)
			switch {
			case sym == nil:
				errs = append(errs, fmt.Errorf("scope %d indexes unknown symbol %d", scopeID, symID))
			case sym.Name != name:
				errs = append(errs, fmt.Errorf("symbol %d indexed under foreign name %d", symID, name))
			case sym.Scope != scopeID:
				errs = append(errs, fmt.Errorf("symbol %d owned by scope %d but indexed in %d", symID, sym.Scope, scopeID))
			}
		}
	}

	for idx, sym := range t.Symbols.All() {
		if sym.Kind == SymbolArray && len(sym.Dims) == 0 {
			errs = append(errs, fmt.Errorf("array symbol %d has no dimensions", idx))
		}
		if sym.Kind != SymbolArray && len(sym.Dims) != 0 {
			errs = append(errs, fmt.Errorf("%s symbol %d carries %d dimensions", sym.Kind, idx, len(sym.Dims)))
		}
	}

	return errors.Join(errs...)
}

func containsScope(list []ScopeID, id ScopeID) bool {
	return slices.Contains(list, id)
}
