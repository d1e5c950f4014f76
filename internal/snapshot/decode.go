package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Program is a decoded program unit ready for analysis.
type Program struct {
	Builder  *ast.Builder
	Symbols  *symbols.Table
	Strings  *source.Interner
	Unit     symbols.ScopeID
	Routines []ast.StmtID
	File     source.FileID
	// Source is the Fortran path recorded by the front end, if any.
	Source string
}

// RoutineName returns the folded name of a decoded routine.
func (p *Program) RoutineName(id ast.StmtID) string {
	r, ok := p.Builder.Stmts.Routine(id)
	if !ok {
		return ""
	}
	name, _ := p.Strings.Lookup(r.Name)
	return name
}

// Options control how spans are attributed.
type Options struct {
	// File is stamped into every decoded span.
	File source.FileID
}

// Decode reads one msgpack document from r and builds the tree it describes.
func Decode(r io.Reader, opts Options) (*Program, error) {
	var doc Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return Build(&doc, opts)
}

// Build turns an in-memory document into a program.
func Build(doc *Document, opts Options) (*Program, error) {
	if doc == nil {
		return nil, ErrMalformed
	}
	if doc.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersion, doc.Schema, SchemaVersion)
	}
	strs := source.NewInterner()
	d := &decoder{
		file: opts.File,
		b:    ast.NewBuilder(ast.Hints{}, strs),
		syms: symbols.NewTable(symbols.Hints{}, strs),
	}
	prog := &Program{
		Builder: d.b,
		Symbols: d.syms,
		Strings: strs,
		File:    opts.File,
		Source:  doc.Source,
	}
	prog.Unit = d.syms.NewScope(symbols.ScopeContainer, symbols.NoScopeID, doc.Unit, source.Span{})
	if err := d.declare(prog.Unit, doc.Symbols); err != nil {
		return nil, err
	}
	for i := range doc.Routines {
		id, err := d.routine(prog.Unit, &doc.Routines[i])
		if err != nil {
			return nil, err
		}
		prog.Routines = append(prog.Routines, id)
	}
	return prog, nil
}

type decoder struct {
	file        source.FileID
	b           *ast.Builder
	syms        *symbols.Table
	scope       symbols.ScopeID
	routineName string
}

func (d *decoder) errorf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if d.routineName != "" {
		msg = d.routineName + ": " + msg
	}
	return fmt.Errorf("%w: %s", ErrInvalidTree, msg)
}

func (d *decoder) span(s *Span) source.Span {
	if s == nil {
		return source.Span{File: d.file}
	}
	return source.Span{File: d.file, Start: s.Start, End: s.End}
}

func (d *decoder) routine(unit symbols.ScopeID, r *Routine) (ast.StmtID, error) {
	if r.Name == "" {
		return ast.NoStmtID, d.errorf("routine without a name")
	}
	d.routineName = r.Name
	defer func() { d.routineName = "" }()

	sp := d.span(r.Span)
	d.scope = d.syms.NewScope(symbols.ScopeRoutine, unit, r.Name, sp)
	if err := d.declare(d.scope, r.Symbols); err != nil {
		return ast.NoStmtID, err
	}
	body, err := d.stmts(r.Body)
	if err != nil {
		return ast.NoStmtID, err
	}
	return d.b.Stmts.NewRoutine(sp, d.b.Strings.InternName(r.Name), d.scope, body), nil
}

func (d *decoder) declare(scope symbols.ScopeID, list []Symbol) error {
	for i := range list {
		s := &list[i]
		sym := symbols.Symbol{Span: d.span(s.Span)}
		switch strings.ToLower(s.Kind) {
		case "":
		case "scalar":
			sym.Kind = symbols.SymbolScalar
		case "array":
			sym.Kind = symbols.SymbolArray
		case "structure":
			sym.Kind = symbols.SymbolStructure
		default:
			return d.errorf("symbol %q: unknown kind %q", s.Name, s.Kind)
		}
		switch strings.ToLower(s.Interface) {
		case "", "local":
			sym.Interface = symbols.InterfaceLocal
		case "argument":
			sym.Interface = symbols.InterfaceArgument
		case "imported":
			sym.Interface = symbols.InterfaceImported
		default:
			return d.errorf("symbol %q: unknown interface %q", s.Name, s.Interface)
		}
		for _, dim := range s.Dims {
			sym.Dims = append(sym.Dims, symbols.Dim{Lower: extent(dim.Lower), Upper: extent(dim.Upper)})
		}
		if s.Parameter {
			sym.Flags |= symbols.SymbolFlagParameter
		}
		if s.KernelLocal {
			sym.Flags |= symbols.SymbolFlagKernelLocal
		}
		if _, err := d.syms.Declare(scope, s.Name, sym); err != nil {
			return d.errorf("%v", err)
		}
	}
	return nil
}

func extent(v *int64) symbols.Extent {
	if v == nil {
		return symbols.Extent{}
	}
	return symbols.Extent{Known: true, Value: *v}
}

func (d *decoder) symbol(name string) (symbols.SymbolID, error) {
	if name == "" {
		return symbols.NoSymbolID, d.errorf("reference without a name")
	}
	id, ok := d.syms.Lookup(d.scope, name)
	if !ok {
		return symbols.NoSymbolID, d.errorf("undeclared symbol %q", name)
	}
	return id, nil
}

func (d *decoder) stmts(list []Node) ([]ast.StmtID, error) {
	out := make([]ast.StmtID, 0, len(list))
	for i := range list {
		id, err := d.stmt(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) stmt(n *Node) (ast.StmtID, error) {
	sp := d.span(n.Span)
	st := d.b.Stmts
	switch n.Kind {
	case "assign":
		target, err := d.expr(n.Target)
		if err != nil {
			return ast.NoStmtID, err
		}
		value, err := d.expr(n.Value)
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewAssign(sp, target, value), nil

	case "loop":
		v, err := d.symbol(n.Var)
		if err != nil {
			return ast.NoStmtID, err
		}
		start, err := d.expr(n.Start)
		if err != nil {
			return ast.NoStmtID, err
		}
		stop, err := d.expr(n.Stop)
		if err != nil {
			return ast.NoStmtID, err
		}
		var step ast.ExprID
		if n.Step == nil {
			step = d.b.Exprs.NewIntLiteral(sp, 1)
		} else if step, err = d.expr(n.Step); err != nil {
			return ast.NoStmtID, err
		}
		body, err := d.stmts(n.Body)
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewLoop(sp, v, start, stop, step, body), nil

	case "if":
		cond, err := d.expr(n.Cond)
		if err != nil {
			return ast.NoStmtID, err
		}
		then, err := d.stmts(n.Body)
		if err != nil {
			return ast.NoStmtID, err
		}
		els, err := d.stmts(n.Else)
		if err != nil {
			return ast.NoStmtID, err
		}
		return st.NewIf(sp, cond, then, els), nil

	case "call":
		if n.Name == "" {
			return ast.NoStmtID, d.errorf("call without a name")
		}
		args, err := d.exprs(n.Args)
		if err != nil {
			return ast.NoStmtID, err
		}
		locals := make([]source.StringID, 0, len(n.Locals))
		for _, l := range n.Locals {
			locals = append(locals, d.b.Strings.Intern(l))
		}
		return st.NewCall(sp, d.b.Strings.InternName(n.Name), args, n.Kernel, locals), nil

	case "codeblock":
		return st.NewCodeBlock(sp, n.Text), nil

	case "directive":
		return d.directive(sp, n)
	}
	return ast.NoStmtID, d.errorf("unknown statement kind %q", n.Kind)
}

var directiveKinds = func() map[string]ast.DirectiveKind {
	m := make(map[string]ast.DirectiveKind)
	for k := ast.DirParallel; k <= ast.DirTaskwait; k++ {
		m[k.String()] = k
	}
	return m
}()

func (d *decoder) directive(sp source.Span, n *Node) (ast.StmtID, error) {
	kind, ok := directiveKinds[strings.ToLower(strings.TrimSpace(n.Directive))]
	if !ok {
		return ast.NoStmtID, d.errorf("unknown directive %q", n.Directive)
	}
	grainsize, err := d.exprOpt(n.Grainsize)
	if err != nil {
		return ast.NoStmtID, err
	}
	numTasks, err := d.exprOpt(n.NumTasks)
	if err != nil {
		return ast.NoStmtID, err
	}
	body, err := d.stmts(n.Body)
	if err != nil {
		return ast.NoStmtID, err
	}
	id := d.b.Stmts.NewDirective(sp, kind, body)
	dir, _ := d.b.Stmts.Directive(id)
	dir.Nowait = n.Nowait
	dir.Nogroup = n.Nogroup
	dir.Collapse = n.Collapse
	dir.Grainsize = grainsize
	dir.NumTasks = numTasks
	if n.Schedule != "" {
		dir.Schedule = n.Schedule
	}
	return id, nil
}

var binaryOps = func() map[string]ast.ExprBinaryOp {
	m := make(map[string]ast.ExprBinaryOp)
	for op := ast.ExprBinaryAdd; op <= ast.ExprBinaryOr; op++ {
		m[op.String()] = op
	}
	return m
}()

func (d *decoder) exprOpt(e *Expr) (ast.ExprID, error) {
	if e == nil {
		return ast.NoExprID, nil
	}
	return d.expr(e)
}

func (d *decoder) exprs(list []Expr) ([]ast.ExprID, error) {
	out := make([]ast.ExprID, 0, len(list))
	for i := range list {
		id, err := d.expr(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func (d *decoder) expr(e *Expr) (ast.ExprID, error) {
	if e == nil {
		return ast.NoExprID, d.errorf("missing expression")
	}
	sp := d.span(e.Span)
	ex := d.b.Exprs
	switch e.Kind {
	case "ref":
		sym, err := d.symbol(e.Name)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewRef(sp, sym), nil

	case "index":
		sym, err := d.symbol(e.Name)
		if err != nil {
			return ast.NoExprID, err
		}
		indices, err := d.exprs(e.Indices)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewArrayRef(sp, sym, indices), nil

	case "member":
		sym, err := d.symbol(e.Name)
		if err != nil {
			return ast.NoExprID, err
		}
		indices, err := d.exprs(e.Indices)
		if err != nil {
			return ast.NoExprID, err
		}
		members := make([]ast.StructMember, 0, len(e.Members))
		for _, m := range e.Members {
			if m.Name == "" {
				return ast.NoExprID, d.errorf("member of %q without a name", e.Name)
			}
			idx, err := d.exprs(m.Indices)
			if err != nil {
				return ast.NoExprID, err
			}
			members = append(members, ast.StructMember{Name: d.b.Strings.InternName(m.Name), Indices: idx})
		}
		return ex.NewStructRef(sp, sym, indices, members), nil

	case "lit":
		var kind ast.ExprLitKind
		switch e.Lit {
		case "", "int":
			kind = ast.ExprLitInt
		case "real":
			kind = ast.ExprLitReal
		case "logical":
			kind = ast.ExprLitLogical
		case "string":
			kind = ast.ExprLitString
		default:
			return ast.NoExprID, d.errorf("unknown literal kind %q", e.Lit)
		}
		return ex.NewLiteral(sp, kind, d.b.Strings.Intern(e.Value)), nil

	case "binary":
		op, ok := binaryOps[strings.ToLower(e.Op)]
		if !ok {
			return ast.NoExprID, d.errorf("unknown binary operator %q", e.Op)
		}
		left, err := d.expr(e.Left)
		if err != nil {
			return ast.NoExprID, err
		}
		right, err := d.expr(e.Right)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewBinary(sp, op, left, right), nil

	case "unary":
		var op ast.ExprUnaryOp
		switch strings.ToLower(e.Op) {
		case "-":
			op = ast.ExprUnaryNeg
		case ".not.":
			op = ast.ExprUnaryNot
		default:
			return ast.NoExprID, d.errorf("unknown unary operator %q", e.Op)
		}
		operand, err := d.expr(e.Left)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewUnary(sp, op, operand), nil

	case "call":
		if e.Name == "" {
			return ast.NoExprID, d.errorf("function call without a name")
		}
		args, err := d.exprs(e.Args)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewCall(sp, d.b.Strings.InternName(e.Name), args), nil

	case "range":
		lower, err := d.expr(e.Left)
		if err != nil {
			return ast.NoExprID, err
		}
		upper, err := d.expr(e.Right)
		if err != nil {
			return ast.NoExprID, err
		}
		step, err := d.exprOpt(e.Step)
		if err != nil {
			return ast.NoExprID, err
		}
		return ex.NewRange(sp, lower, upper, step), nil

	case "bound":
		sym, err := d.symbol(e.Name)
		if err != nil {
			return ast.NoExprID, err
		}
		var kind ast.BoundKind
		switch strings.ToLower(e.Bound) {
		case "lbound":
			kind = ast.BoundLower
		case "ubound":
			kind = ast.BoundUpper
		default:
			return ast.NoExprID, d.errorf("unknown bound %q", e.Bound)
		}
		if e.Dim == 0 {
			return ast.NoExprID, d.errorf("%s(%s) without a dimension", e.Bound, e.Name)
		}
		return ex.NewBound(sp, kind, sym, e.Dim), nil
	}
	return ast.NoExprID, d.errorf("unknown expression kind %q", e.Kind)
}
