package omp

import (
	"fmt"
	"strings"

	"ompscope/internal/ast"
)

// BeginString renders the opening line of a directive without the sentinel,
// e.g. "omp task private(i), depend(in: a(i))". Computed clauses are attached
// to the directive on the way.
func (a *Analyzer) BeginString(dir ast.StmtID) (string, error) {
	d, ok := a.b.Stmts.Directive(dir)
	if !ok {
		return "", newError(InternalError, dir, "statement %d is not a directive", dir)
	}
	switch d.Kind {
	case ast.DirParallel, ast.DirParallelDo, ast.DirTask:
		if err := a.AttachClauses(dir); err != nil {
			return "", err
		}
		d, _ = a.b.Stmts.Directive(dir)
	}
	p := ast.NewPrinter(a.b, a.syms)
	switch d.Kind {
	case ast.DirParallel:
		items := clauseItems(d, ast.ClausePrivate)
		return fmt.Sprintf("omp parallel default(shared), private(%s)", p.ExprList(items)), nil
	case ast.DirParallelDo:
		return "omp parallel do", nil
	case ast.DirTask:
		parts := []string{"omp task"}
		var clauses []string
		for _, c := range d.Clauses {
			if len(c.Items) == 0 {
				continue
			}
			switch c.Kind {
			case ast.ClauseDependIn:
				clauses = append(clauses, "depend(in: "+p.ExprList(c.Items)+")")
			case ast.ClauseDependOut:
				clauses = append(clauses, "depend(out: "+p.ExprList(c.Items)+")")
			default:
				clauses = append(clauses, c.Kind.String()+"("+p.ExprList(c.Items)+")")
			}
		}
		if len(clauses) > 0 {
			parts = append(parts, strings.Join(clauses, ", "))
		}
		return strings.Join(parts, " "), nil
	case ast.DirTaskloop:
		var opts []string
		switch {
		case d.Grainsize.IsValid():
			opts = append(opts, "grainsize("+p.Expr(d.Grainsize)+")")
		case d.NumTasks.IsValid():
			opts = append(opts, "num_tasks("+p.Expr(d.NumTasks)+")")
		}
		if d.Nogroup {
			opts = append(opts, "nogroup")
		}
		if len(opts) == 0 {
			return "omp taskloop", nil
		}
		return "omp taskloop " + strings.Join(opts, ", "), nil
	case ast.DirDo:
		return fmt.Sprintf("omp do schedule(%s)", d.Schedule), nil
	case ast.DirLoop:
		if d.Collapse > 0 {
			return fmt.Sprintf("omp loop collapse(%d)", d.Collapse), nil
		}
		return "omp loop", nil
	}
	return "omp " + d.Kind.String(), nil
}

// EndString renders the closing line of a directive; standalone directives
// have none.
func (a *Analyzer) EndString(dir ast.StmtID) string {
	d, ok := a.b.Stmts.Directive(dir)
	if !ok || d.Kind.IsStandalone() {
		return ""
	}
	if d.Kind == ast.DirSingle && d.Nowait {
		return "omp end single nowait"
	}
	return "omp end " + d.Kind.String()
}

// AttachClauses stores the computed clauses on a parallel or task directive.
// Existing clauses are replaced only when they differ.
func (a *Analyzer) AttachClauses(dir ast.StmtID) error {
	d, ok := a.b.Stmts.Directive(dir)
	if !ok {
		return newError(InternalError, dir, "statement %d is not a directive", dir)
	}
	var clauses []ast.Clause
	switch d.Kind {
	case ast.DirParallel, ast.DirParallelDo:
		private, err := a.RegionPrivateClause(dir)
		if err != nil {
			return err
		}
		clauses = []ast.Clause{{Kind: ast.ClausePrivate, Items: private}}
	case ast.DirTask:
		c, err := a.TaskClauses(dir)
		if err != nil {
			return err
		}
		clauses = c.Directive()
	default:
		return nil
	}
	if a.sameClauses(d.Clauses, clauses) {
		return nil
	}
	return a.b.Stmts.SetClauses(dir, clauses)
}

func (a *Analyzer) sameClauses(x, y []ast.Clause) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i].Kind != y[i].Kind || len(x[i].Items) != len(y[i].Items) {
			return false
		}
		for j := range x[i].Items {
			if !a.b.Exprs.Equal(x[i].Items[j], y[i].Items[j]) {
				return false
			}
		}
	}
	return true
}

func clauseItems(d *ast.StmtDirectiveData, k ast.ClauseKind) []ast.ExprID {
	c, _ := d.Clause(k)
	return c.Items
}
