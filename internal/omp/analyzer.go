package omp

import (
	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Options tune the analysis.
type Options struct {
	// TransparentCalls names non-kernel calls the task-pair check may treat
	// as a known write, like a kernel call.
	TransparentCalls []string
}

// Analyzer computes region private clauses and task clauses and validates
// directives of one tree. It is not safe for concurrent use.
type Analyzer struct {
	b           *ast.Builder
	syms        *symbols.Table
	transparent map[string]bool
	private     map[ast.StmtID]*privateEntry
}

type privateEntry struct {
	generation uint64
	refs       []ast.ExprID
	symbols    map[symbols.SymbolID]bool
}

// New creates an analyzer over b. Symbol IDs in b must come from syms.
func New(b *ast.Builder, syms *symbols.Table, opts Options) *Analyzer {
	transparent := make(map[string]bool, len(opts.TransparentCalls))
	for _, name := range opts.TransparentCalls {
		transparent[source.FoldName(name)] = true
	}
	return &Analyzer{
		b:           b,
		syms:        syms,
		transparent: transparent,
		private:     make(map[ast.StmtID]*privateEntry),
	}
}

// Builder returns the tree the analyzer works on.
func (a *Analyzer) Builder() *ast.Builder { return a.b }

func (a *Analyzer) name(sym symbols.SymbolID) string {
	return a.syms.Name(sym)
}

func (a *Analyzer) exprName(id ast.ExprID) string {
	return ast.NewPrinter(a.b, a.syms).Expr(id)
}

func (a *Analyzer) span(id ast.StmtID) source.Span {
	return a.b.Span(id)
}

// routineScope returns the scope of the routine owning id.
func (a *Analyzer) routineScope(id ast.StmtID) symbols.ScopeID {
	if data, ok := a.b.Stmts.Routine(a.b.Stmts.Root(id)); ok {
		return data.Scope
	}
	return symbols.NoScopeID
}
