package access

import (
	"slices"

	"ompscope/internal/ast"
	"ompscope/internal/symbols"
)

// Kind classifies a single access.
type Kind uint8

const (
	Read Kind = iota
	Write
	// ReadWrite is used for call arguments whose intent is unknown.
	ReadWrite
)

func (k Kind) String() string {
	switch k {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case ReadWrite:
		return "READWRITE"
	default:
		return "?"
	}
}

// Access is one touch of a signature.
type Access struct {
	Kind Kind
	// Stmt is the statement performing the access.
	Stmt ast.StmtID
	// Expr is the reference node, NoExprID for loop variables.
	Expr ast.ExprID
	// Indexed is set when the access carries subscripts.
	Indexed bool
	// Location is the program-order position of the statement.
	Location uint32
}

// VarInfo collects the accesses to one signature in program order.
type VarInfo struct {
	Signature Signature
	Symbol    symbols.SymbolID
	Accesses  []Access
}

// IsArray reports whether the first access is subscripted.
func (v *VarInfo) IsArray() bool {
	return len(v.Accesses) > 0 && v.Accesses[0].Indexed
}

// IsWritten reports whether any access writes the entity.
func (v *VarInfo) IsWritten() bool {
	return slices.ContainsFunc(v.Accesses, func(a Access) bool { return a.Kind != Read })
}

// Info maps signatures to their accesses. Signatures keep first-seen order.
type Info struct {
	vars  map[Signature]*VarInfo
	order []Signature
}

func newInfo() *Info {
	return &Info{vars: make(map[Signature]*VarInfo)}
}

func (in *Info) add(sig Signature, sym symbols.SymbolID, a Access) {
	v, ok := in.vars[sig]
	if !ok {
		v = &VarInfo{Signature: sig, Symbol: sym}
		in.vars[sig] = v
		in.order = append(in.order, sig)
	}
	v.Accesses = append(v.Accesses, a)
}

// Get returns the accesses of sig.
func (in *Info) Get(sig Signature) (*VarInfo, bool) {
	v, ok := in.vars[sig]
	return v, ok
}

// Signatures returns every accessed signature in first-seen order.
func (in *Info) Signatures() []Signature {
	return slices.Clone(in.order)
}

// Sorted returns every accessed signature in lexicographic order.
func (in *Info) Sorted() []Signature {
	out := slices.Clone(in.order)
	slices.SortFunc(out, Compare)
	return out
}

func (in *Info) Len() int { return len(in.order) }
