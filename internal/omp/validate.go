package omp

import (
	"ompscope/internal/ast"
)

var (
	parallelKinds = []ast.DirectiveKind{ast.DirParallel, ast.DirParallelDo}
	serialKinds   = []ast.DirectiveKind{ast.DirSingle, ast.DirMaster}
)

// ValidateRegion checks the structural rules of a directive. Single and
// master regions additionally run the task-pair check over their tasks.
func (a *Analyzer) ValidateRegion(dir ast.StmtID) error {
	if err := a.validateStructure(dir); err != nil {
		return err
	}
	if d, _ := a.b.Stmts.Directive(dir); d.Kind.IsSerial() {
		return a.ValidateTaskPairs(dir)
	}
	return nil
}

func (a *Analyzer) validateStructure(dir ast.StmtID) error {
	st := a.b.Stmts
	d, ok := st.Directive(dir)
	if !ok {
		return newError(InternalError, dir, "statement %d is not a directive", dir)
	}
	switch d.Kind {
	case ast.DirTask:
		if !st.AncestorDirective(dir, serialKinds).IsValid() {
			return newError(StructuralViolation, dir, "task must be inside an omp serial region but could not find an ancestor node")
		}
	case ast.DirTaskloop:
		if !st.AncestorDirective(dir, serialKinds).IsValid() {
			return newError(StructuralViolation, dir, "taskloop must be inside an omp serial region but could not find an ancestor node")
		}
		if d.Grainsize.IsValid() && d.NumTasks.IsValid() {
			return newError(StructuralViolation, dir, "taskloop must not have both grainsize and num_tasks clauses specified")
		}
	case ast.DirParallel:
		if st.AncestorDirective(dir, parallelKinds).IsValid() {
			return newError(StructuralViolation, dir, "cannot nest omp parallel regions")
		}
	case ast.DirParallelDo:
		if st.AncestorDirective(dir, parallelKinds).IsValid() {
			return newError(StructuralViolation, dir, "cannot nest omp parallel regions")
		}
		return a.singleLoop(dir, d)
	case ast.DirSingle, ast.DirMaster:
		if !st.AncestorDirective(dir, []ast.DirectiveKind{ast.DirParallel}).IsValid() {
			return newError(StructuralViolation, dir, "%s must be inside an omp parallel region but could not find an ancestor parallel node", d.Kind)
		}
		if st.AncestorDirective(dir, serialKinds).IsValid() {
			return newError(StructuralViolation, dir, "%s must not be inside another omp serial region", d.Kind)
		}
	case ast.DirDo:
		if !st.AncestorDirective(dir, []ast.DirectiveKind{ast.DirParallel}).IsValid() {
			return newError(StructuralViolation, dir, "do must be inside an omp parallel region but could not find an ancestor parallel node")
		}
		return a.singleLoop(dir, d)
	case ast.DirLoop:
		if err := a.singleLoop(dir, d); err != nil {
			return err
		}
		if !st.AncestorDirective(dir, []ast.DirectiveKind{ast.DirTarget, ast.DirParallel, ast.DirParallelDo}).IsValid() {
			return newError(StructuralViolation, dir, "loop must be inside an omp target or omp parallel region")
		}
		return a.collapse(dir, d)
	case ast.DirTaskwait:
		if !st.AncestorDirective(dir, []ast.DirectiveKind{ast.DirParallel}).IsValid() {
			return newError(StructuralViolation, dir, "taskwait must be inside an omp parallel region but could not find an ancestor parallel node")
		}
		if len(d.Body) > 0 {
			return newError(StructuralViolation, dir, "taskwait is a standalone directive and cannot have a body")
		}
	case ast.DirTarget:
	}
	return nil
}

func (a *Analyzer) singleLoop(dir ast.StmtID, d *ast.StmtDirectiveData) error {
	if len(d.Body) != 1 {
		return newError(StructuralViolation, dir, "%s can only be applied to a single loop but has %d children", d.Kind, len(d.Body))
	}
	if !a.b.Stmts.Is(d.Body[0], ast.StmtLoop) {
		kind, _ := a.b.Stmts.Kind(d.Body[0])
		return newError(StructuralViolation, dir, "%s can only be applied to a loop but has a child of type %s", d.Kind, kind)
	}
	return nil
}

// collapse requires as many immediately nested loops as the collapse value.
func (a *Analyzer) collapse(dir ast.StmtID, d *ast.StmtDirectiveData) error {
	cursor := d.Body[0]
	for depth := uint32(0); depth < d.Collapse; depth++ {
		if !a.b.Stmts.Is(cursor, ast.StmtLoop) {
			kind, _ := a.b.Stmts.Kind(cursor)
			return newError(StructuralViolation, dir,
				"loop has collapse(%d) but the nested statement at depth %d is a %s rather than a loop", d.Collapse, depth, kind)
		}
		body := a.b.Stmts.Body(cursor)
		if len(body) == 0 {
			cursor = ast.NoStmtID
			continue
		}
		cursor = body[0]
	}
	return nil
}

// EnclosesDirective reports whether region has any directive below it.
func (a *Analyzer) EnclosesDirective(region ast.StmtID) bool {
	st := a.b.Stmts
	return len(st.Collect(region, func(id ast.StmtID) bool { return st.IsDirective(id) })) > 0
}
