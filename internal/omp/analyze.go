package omp

import (
	"context"
	"errors"
	"fmt"

	"ompscope/internal/ast"
	"ompscope/internal/diag"
	"ompscope/internal/trace"
)

// DirectiveResult is the outcome for one directive of a routine.
type DirectiveResult struct {
	Node  ast.StmtID
	Kind  ast.DirectiveKind
	Begin string
	End   string
	Err   error
}

// Result summarises the analysis of one routine.
type Result struct {
	Routine    ast.StmtID
	Directives []DirectiveResult
}

// Failed returns the number of rejected directives.
func (r *Result) Failed() int {
	n := 0
	for _, d := range r.Directives {
		if d.Err != nil {
			n++
		}
	}
	return n
}

// AnalyzeRoutine validates every directive under root in program order,
// attaches the computed clauses and reports rejections to reporter.
func (a *Analyzer) AnalyzeRoutine(ctx context.Context, root ast.StmtID, reporter diag.Reporter) (*Result, error) {
	st := a.b.Stmts
	if st.Get(root) == nil {
		return nil, fmt.Errorf("analyze: unknown statement %d", root)
	}
	span, ctx := trace.Start(ctx, trace.ScopePass, "omp_analyze")
	defer span.End("")

	res := &Result{Routine: root}
	dirs := st.Collect(root, func(id ast.StmtID) bool { return st.IsDirective(id) })
	rejected := make(map[ast.StmtID]error)
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var r DirectiveResult
		if serial, err := a.rejectedSerial(dir, rejected); err != nil {
			r = a.skipDirective(ctx, dir, serial, err, reporter)
		} else {
			r = a.analyzeDirective(ctx, dir, reporter)
		}
		if r.Err != nil && r.Kind.IsSerial() {
			rejected[dir] = r.Err
		}
		res.Directives = append(res.Directives, r)
	}
	span.WithExtra("directives", fmt.Sprint(len(dirs)))
	span.WithExtra("rejected", fmt.Sprint(res.Failed()))
	return res, nil
}

func (a *Analyzer) analyzeDirective(ctx context.Context, dir ast.StmtID, reporter diag.Reporter) DirectiveResult {
	d, _ := a.b.Stmts.Directive(dir)
	out := DirectiveResult{Node: dir, Kind: d.Kind}
	span, ctx := trace.Start(ctx, trace.ScopeRegion, "omp:"+d.Kind.String())
	defer func() {
		detail := "ok"
		if out.Err != nil {
			detail = out.Err.Error()
		}
		span.End(detail)
	}()

	fail := func(err error) DirectiveResult {
		out.Err = err
		a.Report(reporter, err)
		return out
	}
	if err := runPhase(ctx, "validate", func() error { return a.validateStructure(dir) }); err != nil {
		return fail(err)
	}
	if d.Kind.IsSerial() {
		if err := runPhase(ctx, "taskpair", func() error { return a.ValidateTaskPairs(dir) }); err != nil {
			return fail(err)
		}
	}
	if d.Kind.IsParallel() {
		err := runPhase(ctx, "privatize", func() error {
			_, err := a.RegionPrivateClause(dir)
			return err
		})
		if err != nil {
			return fail(err)
		}
	}
	var begin string
	err := runPhase(ctx, "synthesize", func() (err error) {
		begin, err = a.BeginString(dir)
		return err
	})
	if err != nil {
		return fail(err)
	}
	out.Begin = begin
	out.End = a.EndString(dir)

	if d.Kind == ast.DirParallel && !a.EnclosesDirective(dir) {
		diag.ReportInfo(reporter, diag.OmpRegionWithoutDirectives, a.span(dir),
			"parallel region does not enclose any other omp directive").Emit()
	}
	if d.Kind == ast.DirTask || d.Kind.IsParallel() {
		diag.ReportInfo(reporter, diag.OmpClausesComputed, a.span(dir), begin).Emit()
	}
	return out
}

// rejectedSerial returns the enclosing serial region of a task or taskloop
// when that region was already rejected.
func (a *Analyzer) rejectedSerial(dir ast.StmtID, rejected map[ast.StmtID]error) (ast.StmtID, error) {
	if len(rejected) == 0 || !a.b.Stmts.IsDirective(dir, ast.DirTask, ast.DirTaskloop) {
		return ast.NoStmtID, nil
	}
	serial := a.b.Stmts.AncestorDirective(dir, serialKinds)
	if err, ok := rejected[serial]; ok {
		return serial, err
	}
	return ast.NoStmtID, nil
}

// skipDirective rejects dir without computing clauses because its serial
// region failed. The error keeps the kind of the region's rejection.
func (a *Analyzer) skipDirective(ctx context.Context, dir, serial ast.StmtID, cause error, reporter diag.Reporter) DirectiveResult {
	d, _ := a.b.Stmts.Directive(dir)
	span, _ := trace.Start(ctx, trace.ScopeRegion, "omp:"+d.Kind.String())
	kind, ok := KindOf(cause)
	if !ok {
		kind = InternalError
	}
	sd, _ := a.b.Stmts.Directive(serial)
	e := newError(kind, dir, "enclosing %s region was rejected", sd.Kind)
	e.Related = serial
	span.End(e.Error())
	a.Report(reporter, e)
	return DirectiveResult{Node: dir, Kind: d.Kind, Err: e}
}

// runPhase wraps fn in a node-level span named after the phase.
func runPhase(ctx context.Context, name string, fn func() error) error {
	span, _ := trace.Start(ctx, trace.ScopeNode, name)
	err := fn()
	if err != nil {
		span.End(err.Error())
	} else {
		span.End("")
	}
	return err
}

// Report converts err into a diagnostic. Errors that are not *Error are
// reported as internal.
func (a *Analyzer) Report(reporter diag.Reporter, err error) {
	if reporter == nil || err == nil {
		return
	}
	var oe *Error
	if !errors.As(err, &oe) {
		diag.ReportError(reporter, diag.OmpInternal, a.b.Span(ast.NoStmtID), err.Error()).Emit()
		return
	}
	primary := a.span(oe.Node)
	if oe.Expr.IsValid() {
		if sp := a.b.ExprSpan(oe.Expr); !sp.Empty() {
			primary = sp
		}
	}
	rb := diag.ReportError(reporter, oe.Kind.Code(), primary, oe.Msg)
	if oe.Expr.IsValid() && primary != a.span(oe.Node) {
		rb.WithNote(a.span(oe.Node), "in this statement")
	}
	if oe.Related.IsValid() {
		note := "conflicting task"
		if a.b.Stmts.IsDirective(oe.Related, serialKinds...) {
			note = "rejected region"
		}
		rb.WithNote(a.span(oe.Related), note)
	}
	rb.Emit()
}
