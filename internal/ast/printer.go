package ast

import (
	"fmt"
	"io"
	"strings"

	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// SymbolNamer resolves symbol names for printing; *symbols.Table implements it.
type SymbolNamer interface {
	Name(id symbols.SymbolID) string
}

// Printer renders expressions in Fortran-like syntax and dumps statement trees.
type Printer struct {
	b     *Builder
	names SymbolNamer
}

func NewPrinter(b *Builder, names SymbolNamer) *Printer {
	return &Printer{b: b, names: names}
}

func (p *Printer) symbol(id symbols.SymbolID) string {
	if p.names == nil {
		return fmt.Sprintf("sym#%d", id)
	}
	if name := p.names.Name(id); name != "" {
		return name
	}
	return fmt.Sprintf("sym#%d", id)
}

func (p *Printer) str(id source.StringID) string {
	s, _ := p.b.Strings.Lookup(id)
	return s
}

// Expr renders a single expression, e.g. a(i + 1, j) or lbound(a, 1):ubound(a, 1).
func (p *Printer) Expr(id ExprID) string {
	var sb strings.Builder
	p.expr(&sb, id)
	return sb.String()
}

// ExprList renders a list of expressions joined by ",".
func (p *Printer) ExprList(ids []ExprID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, p.Expr(id))
	}
	return strings.Join(parts, ",")
}

func (p *Printer) list(sb *strings.Builder, ids []ExprID) {
	sb.WriteByte('(')
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		p.expr(sb, id)
	}
	sb.WriteByte(')')
}

func (p *Printer) expr(sb *strings.Builder, id ExprID) {
	ex := p.b.Exprs
	expr := ex.Get(id)
	if expr == nil {
		sb.WriteString("<nil>")
		return
	}
	switch expr.Kind {
	case ExprRef:
		data, _ := ex.Ref(id)
		sb.WriteString(p.symbol(data.Symbol))
	case ExprArrayRef:
		data, _ := ex.ArrayRef(id)
		sb.WriteString(p.symbol(data.Symbol))
		p.list(sb, data.Indices)
	case ExprStructRef:
		data, _ := ex.StructRef(id)
		sb.WriteString(p.symbol(data.Symbol))
		if len(data.Indices) > 0 {
			p.list(sb, data.Indices)
		}
		for _, m := range data.Members {
			sb.WriteByte('%')
			sb.WriteString(p.str(m.Name))
			if len(m.Indices) > 0 {
				p.list(sb, m.Indices)
			}
		}
	case ExprLit:
		data, _ := ex.Literal(id)
		v := p.str(data.Value)
		if data.Kind == ExprLitString {
			v = "'" + v + "'"
		}
		sb.WriteString(v)
	case ExprBinary:
		data, _ := ex.Binary(id)
		p.operand(sb, data.Left)
		sb.WriteString(" " + data.Op.String() + " ")
		p.operand(sb, data.Right)
	case ExprUnary:
		data, _ := ex.Unary(id)
		sb.WriteString(data.Op.String())
		p.operand(sb, data.Operand)
	case ExprCall:
		data, _ := ex.Call(id)
		sb.WriteString(p.str(data.Name))
		p.list(sb, data.Args)
	case ExprRange:
		data, _ := ex.Range(id)
		p.expr(sb, data.Lower)
		sb.WriteByte(':')
		p.expr(sb, data.Upper)
		if data.Step.IsValid() {
			sb.WriteByte(':')
			p.expr(sb, data.Step)
		}
	case ExprBound:
		data, _ := ex.Bound(id)
		name := "lbound"
		if data.Kind == BoundUpper {
			name = "ubound"
		}
		fmt.Fprintf(sb, "%s(%s, %d)", name, p.symbol(data.Array), data.Dim)
	}
}

// operand parenthesizes nested operations.
func (p *Printer) operand(sb *strings.Builder, id ExprID) {
	if k, ok := p.b.Exprs.Kind(id); ok && (k == ExprBinary || k == ExprUnary) {
		sb.WriteByte('(')
		p.expr(sb, id)
		sb.WriteByte(')')
		return
	}
	p.expr(sb, id)
}

// Dump writes an indented outline of the tree rooted at root.
func (p *Printer) Dump(w io.Writer, root StmtID) error {
	return p.dump(w, root, 0)
}

func (p *Printer) dump(w io.Writer, id StmtID, depth int) error {
	if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), p.Stmt(id)); err != nil {
		return err
	}
	if data, ok := p.b.Stmts.If(id); ok {
		for _, child := range data.Then {
			if err := p.dump(w, child, depth+1); err != nil {
				return err
			}
		}
		if len(data.Else) > 0 {
			if _, err := fmt.Fprintf(w, "%selse\n", strings.Repeat("  ", depth)); err != nil {
				return err
			}
			for _, child := range data.Else {
				if err := p.dump(w, child, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, child := range p.b.Stmts.Body(id) {
		if err := p.dump(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Stmt renders the one-line header of a statement.
func (p *Printer) Stmt(id StmtID) string {
	st := p.b.Stmts
	kind, ok := st.Kind(id)
	if !ok {
		return "<nil>"
	}
	switch kind {
	case StmtRoutine:
		data, _ := st.Routine(id)
		return "routine " + p.str(data.Name)
	case StmtAssign:
		data, _ := st.Assign(id)
		return p.Expr(data.Target) + " = " + p.Expr(data.Value)
	case StmtLoop:
		data, _ := st.Loop(id)
		return fmt.Sprintf("do %s = %s, %s, %s", p.symbol(data.Var), p.Expr(data.Start), p.Expr(data.Stop), p.Expr(data.Step))
	case StmtIf:
		data, _ := st.If(id)
		return "if (" + p.Expr(data.Cond) + ")"
	case StmtCall:
		data, _ := st.Call(id)
		prefix := "call "
		if data.Kernel {
			prefix = "call kernel "
		}
		var sb strings.Builder
		sb.WriteString(prefix + p.str(data.Name))
		p.list(&sb, data.Args)
		return sb.String()
	case StmtCodeBlock:
		data, _ := st.CodeBlock(id)
		return "codeblock " + strings.TrimSpace(data.Text)
	case StmtDirective:
		data, _ := st.Directive(id)
		return "!$omp " + data.Kind.String()
	}
	return kind.String()
}
