package source

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps strings to dense IDs. byID[0] is reserved for NoStringID.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID of s, inserting it when absent.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	// собственная копия, чтобы не держать исходный буфер
	cpy := strings.Clone(s)
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// InternName interns the case-folded form of a source identifier.
// Identifiers are case-insensitive, so "NX" and "nx" share one ID.
func (i *Interner) InternName(name string) StringID {
	return i.Intern(FoldName(name))
}

// LookupName returns the ID of an already interned identifier.
func (i *Interner) LookupName(name string) (StringID, bool) {
	id, ok := i.index[FoldName(name)]
	return id, ok
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup returns the string for id and panics on an unknown ID.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len counts interned strings including NoStringID.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of all strings ordered by ID.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}

// FoldName normalizes an identifier to NFC and lower case.
func FoldName(name string) string {
	name = strings.TrimSpace(name)
	if !norm.NFC.IsNormalString(name) {
		name = norm.NFC.String(name)
	}
	return strings.ToLower(name)
}
