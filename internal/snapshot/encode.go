package snapshot

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Encode writes prog as a msgpack document.
func Encode(w io.Writer, prog *Program) error {
	doc, err := Snapshot(prog)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(doc)
}

// Snapshot converts prog back into a document. Clauses attached by the
// analyzer are not part of the document.
func Snapshot(prog *Program) (*Document, error) {
	e := &encoder{b: prog.Builder, syms: prog.Symbols, strs: prog.Strings}
	doc := &Document{Schema: SchemaVersion, Source: prog.Source}
	if unit := prog.Symbols.Scopes.Get(prog.Unit); unit != nil {
		doc.Unit = e.str(unit.Name)
		doc.Symbols = e.symbols(unit.Symbols)
	}
	for _, id := range prog.Routines {
		r, ok := prog.Builder.Stmts.Routine(id)
		if !ok {
			return nil, fmt.Errorf("%w: statement %d is not a routine", ErrInvalidTree, id)
		}
		out := Routine{
			Name: e.str(r.Name),
			Span: e.span(prog.Builder.Span(id)),
		}
		if sc := prog.Symbols.Scopes.Get(r.Scope); sc != nil {
			out.Symbols = e.symbols(sc.Symbols)
		}
		body, err := e.stmts(r.Body)
		if err != nil {
			return nil, err
		}
		out.Body = body
		doc.Routines = append(doc.Routines, out)
	}
	return doc, nil
}

type encoder struct {
	b    *ast.Builder
	syms *symbols.Table
	strs *source.Interner
}

func (e *encoder) str(id source.StringID) string {
	s, _ := e.strs.Lookup(id)
	return s
}

func (e *encoder) span(sp source.Span) *Span {
	if sp.Start == 0 && sp.End == 0 {
		return nil
	}
	return &Span{Start: sp.Start, End: sp.End}
}

func (e *encoder) symbols(ids []symbols.SymbolID) []Symbol {
	out := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		sym := e.syms.Symbol(id)
		if sym == nil {
			continue
		}
		s := Symbol{
			Name:        e.str(sym.Name),
			Kind:        sym.Kind.String(),
			Interface:   sym.Interface.String(),
			Parameter:   sym.Flags&symbols.SymbolFlagParameter != 0,
			KernelLocal: sym.Flags&symbols.SymbolFlagKernelLocal != 0,
			Span:        e.span(sym.Span),
		}
		for _, d := range sym.Dims {
			s.Dims = append(s.Dims, Dim{Lower: bound(d.Lower), Upper: bound(d.Upper)})
		}
		out = append(out, s)
	}
	return out
}

func bound(x symbols.Extent) *int64 {
	if !x.Known {
		return nil
	}
	v := x.Value
	return &v
}

func (e *encoder) stmts(ids []ast.StmtID) ([]Node, error) {
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, err := e.stmt(id)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (e *encoder) stmt(id ast.StmtID) (Node, error) {
	st := e.b.Stmts.Get(id)
	if st == nil {
		return Node{}, fmt.Errorf("%w: unknown statement %d", ErrInvalidTree, id)
	}
	n := Node{Span: e.span(st.Span)}
	var err error
	switch st.Kind {
	case ast.StmtAssign:
		data, _ := e.b.Stmts.Assign(id)
		n.Kind = "assign"
		n.Target = e.expr(data.Target)
		n.Value = e.expr(data.Value)
	case ast.StmtLoop:
		data, _ := e.b.Stmts.Loop(id)
		n.Kind = "loop"
		n.Var = e.syms.Name(data.Var)
		n.Start = e.expr(data.Start)
		n.Stop = e.expr(data.Stop)
		n.Step = e.expr(data.Step)
		n.Body, err = e.stmts(data.Body)
	case ast.StmtIf:
		data, _ := e.b.Stmts.If(id)
		n.Kind = "if"
		n.Cond = e.expr(data.Cond)
		if n.Body, err = e.stmts(data.Then); err == nil {
			n.Else, err = e.stmts(data.Else)
		}
	case ast.StmtCall:
		data, _ := e.b.Stmts.Call(id)
		n.Kind = "call"
		n.Name = e.str(data.Name)
		n.Args = e.exprList(data.Args)
		n.Kernel = data.Kernel
		for _, l := range data.Locals {
			n.Locals = append(n.Locals, e.str(l))
		}
	case ast.StmtCodeBlock:
		data, _ := e.b.Stmts.CodeBlock(id)
		n.Kind = "codeblock"
		n.Text = data.Text
	case ast.StmtDirective:
		data, _ := e.b.Stmts.Directive(id)
		n.Kind = "directive"
		n.Directive = data.Kind.String()
		n.Nowait = data.Nowait
		n.Nogroup = data.Nogroup
		n.Collapse = data.Collapse
		n.Schedule = data.Schedule
		n.Grainsize = e.expr(data.Grainsize)
		n.NumTasks = e.expr(data.NumTasks)
		n.Body, err = e.stmts(data.Body)
	default:
		return Node{}, fmt.Errorf("%w: statement %d of kind %s cannot be nested", ErrInvalidTree, id, st.Kind)
	}
	return n, err
}

func (e *encoder) exprList(ids []ast.ExprID) []Expr {
	out := make([]Expr, 0, len(ids))
	for _, id := range ids {
		if x := e.expr(id); x != nil {
			out = append(out, *x)
		}
	}
	return out
}

var litKinds = [...]string{
	ast.ExprLitInt:     "int",
	ast.ExprLitReal:    "real",
	ast.ExprLitLogical: "logical",
	ast.ExprLitString:  "string",
}

func (e *encoder) expr(id ast.ExprID) *Expr {
	node := e.b.Exprs.Get(id)
	if node == nil {
		return nil
	}
	x := &Expr{Span: e.span(node.Span)}
	ex := e.b.Exprs
	switch node.Kind {
	case ast.ExprRef:
		data, _ := ex.Ref(id)
		x.Kind = "ref"
		x.Name = e.syms.Name(data.Symbol)
	case ast.ExprArrayRef:
		data, _ := ex.ArrayRef(id)
		x.Kind = "index"
		x.Name = e.syms.Name(data.Symbol)
		x.Indices = e.exprList(data.Indices)
	case ast.ExprStructRef:
		data, _ := ex.StructRef(id)
		x.Kind = "member"
		x.Name = e.syms.Name(data.Symbol)
		x.Indices = e.exprList(data.Indices)
		for _, m := range data.Members {
			x.Members = append(x.Members, Member{Name: e.str(m.Name), Indices: e.exprList(m.Indices)})
		}
	case ast.ExprLit:
		data, _ := ex.Literal(id)
		x.Kind = "lit"
		x.Lit = litKinds[data.Kind]
		x.Value = e.str(data.Value)
	case ast.ExprBinary:
		data, _ := ex.Binary(id)
		x.Kind = "binary"
		x.Op = data.Op.String()
		x.Left = e.expr(data.Left)
		x.Right = e.expr(data.Right)
	case ast.ExprUnary:
		data, _ := ex.Unary(id)
		x.Kind = "unary"
		x.Op = data.Op.String()
		x.Left = e.expr(data.Operand)
	case ast.ExprCall:
		data, _ := ex.Call(id)
		x.Kind = "call"
		x.Name = e.str(data.Name)
		x.Args = e.exprList(data.Args)
	case ast.ExprRange:
		data, _ := ex.Range(id)
		x.Kind = "range"
		x.Left = e.expr(data.Lower)
		x.Right = e.expr(data.Upper)
		x.Step = e.expr(data.Step)
	case ast.ExprBound:
		data, _ := ex.Bound(id)
		x.Kind = "bound"
		x.Name = e.syms.Name(data.Array)
		x.Bound = "lbound"
		if data.Kind == ast.BoundUpper {
			x.Bound = "ubound"
		}
		x.Dim = data.Dim
	}
	return x
}
