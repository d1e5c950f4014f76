package omp

import (
	"ompscope/internal/ast"
	"ompscope/internal/source"
)

// pairCheck proves that the dependency clauses of the tasks of one serial
// region are sufficient for the runtime to order them.
type pairCheck struct {
	a      *Analyzer
	serial ast.StmtID
	nodes  []ast.StmtID
	pos    map[ast.StmtID]int
}

type taskInfo struct {
	id   ast.StmtID
	deps []ast.ExprID
}

// ValidateTaskPairs checks every pair of tasks inside a serial region. For
// each array touched by both tasks the subscripts of each dimension must be
// provably the same: equal literals, equal ranges, or references whose last
// writes before each task are the same statement or equivalent loops.
func (a *Analyzer) ValidateTaskPairs(serial ast.StmtID) error {
	st := a.b.Stmts
	taskIDs := st.Collect(serial, func(id ast.StmtID) bool { return st.IsDirective(id, ast.DirTask) })
	if len(taskIDs) < 2 {
		return nil
	}
	tasks := make([]taskInfo, 0, len(taskIDs))
	for _, id := range taskIDs {
		c, err := a.TaskClauses(id)
		if err != nil {
			return err
		}
		tasks = append(tasks, taskInfo{id: id, deps: c.Dependencies()})
	}

	pc := &pairCheck{a: a, serial: serial, nodes: st.Preorder(serial), pos: make(map[ast.StmtID]int)}
	for i, id := range pc.nodes {
		pc.pos[id] = i
	}
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			if err := pc.pair(tasks[i], tasks[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (pc *pairCheck) reject(t1, t2 ast.StmtID, expr ast.ExprID, format string, args ...any) *Error {
	e := newError(UnprovableDependency, t1, format, args...).at(expr)
	e.Related = t2
	return e
}

func (pc *pairCheck) pair(t1, t2 taskInfo) error {
	ex := pc.a.b.Exprs
	for _, v1 := range t1.deps {
		idx1, ok := ex.Indices(v1)
		if !ok {
			continue
		}
		sym1, _ := ex.Symbol(v1)
		for _, v2 := range t2.deps {
			sym2, _ := ex.Symbol(v2)
			if sym1 != sym2 {
				continue
			}
			idx2, ok := ex.Indices(v2)
			if !ok {
				continue
			}
			if len(idx1) != len(idx2) {
				return newError(UnsupportedIndexExpression, t1.id,
					"%s is accessed with %d and %d indices", pc.a.exprName(v1), len(idx1), len(idx2)).at(v1)
			}
			for d := range idx1 {
				if err := pc.index(t1.id, t2.id, v1, idx1[d], idx2[d]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (pc *pairCheck) index(t1, t2 ast.StmtID, v1, i1, i2 ast.ExprID) error {
	ex := pc.a.b.Exprs
	k1, _ := ex.Kind(i1)
	k2, _ := ex.Kind(i2)
	name := pc.a.exprName(v1)
	switch {
	case k1 == ast.ExprLit || k2 == ast.ExprLit:
		if k1 != k2 || !ex.Equal(i1, i2) {
			return pc.reject(t1, t2, v1, "cannot prove that the accesses to %s use the same index (%s vs %s)",
				name, pc.a.exprName(i1), pc.a.exprName(i2))
		}
		return nil
	case k1 == ast.ExprRange || k2 == ast.ExprRange:
		if !ex.Equal(i1, i2) {
			return pc.reject(t1, t2, v1, "cannot prove that the ranges used to access %s match", name)
		}
		return nil
	case k1 == ast.ExprBinary || k2 == ast.ExprBinary:
		b1, ok1 := ex.Binary(i1)
		b2, ok2 := ex.Binary(i2)
		if !ok1 || !ok2 || b1.Op != b2.Op || !ex.Equal(b1.Right, b2.Right) {
			return pc.reject(t1, t2, v1, "cannot prove that the accesses to %s use the same index (%s vs %s)",
				name, pc.a.exprName(i1), pc.a.exprName(i2))
		}
		return pc.refs(t1, t2, v1, b1.Left, b2.Left)
	case k1 == ast.ExprRef && k2 == ast.ExprRef:
		return pc.refs(t1, t2, v1, i1, i2)
	}
	return pc.reject(t1, t2, v1, "unsupported index comparison for %s (%s vs %s)",
		name, pc.a.exprName(i1), pc.a.exprName(i2))
}

// refs compares two symbolic indices through their last writes.
func (pc *pairCheck) refs(t1, t2 ast.StmtID, v1, r1, r2 ast.ExprID) error {
	ex := pc.a.b.Exprs
	st := pc.a.b.Stmts
	if _, ok := ex.Ref(r1); !ok {
		return pc.reject(t1, t2, v1, "unsupported index %s", pc.a.exprName(r1))
	}
	if _, ok := ex.Ref(r2); !ok {
		return pc.reject(t1, t2, v1, "unsupported index %s", pc.a.exprName(r2))
	}
	w1, err := pc.lastWrite(t1, t2, t1, r1)
	if err != nil {
		return err
	}
	w2, err := pc.lastWrite(t1, t2, t2, r2)
	if err != nil {
		return err
	}
	name := pc.a.exprName(v1)

	switch {
	case !w1.IsValid() && !w2.IsValid():
		if !ex.Equal(r1, r2) {
			return pc.reject(t1, t2, v1, "indices %s and %s of %s are never written and differ",
				pc.a.exprName(r1), pc.a.exprName(r2), name)
		}
		return nil
	case !w1.IsValid() || !w2.IsValid():
		return pc.reject(t1, t2, v1, "only one of the indices %s and %s of %s is written before its task",
			pc.a.exprName(r1), pc.a.exprName(r2), name)
	}

	k1, _ := st.Kind(w1)
	k2, _ := st.Kind(w2)
	switch {
	case k1 == ast.StmtAssign || k2 == ast.StmtAssign:
		a1, ok1 := st.Assign(w1)
		a2, ok2 := st.Assign(w2)
		if !ok1 || !ok2 {
			return pc.reject(t1, t2, v1, "indices of %s are set by different kinds of statements", name)
		}
		if len(ex.References(a1.Value)) > 0 || len(ex.References(a2.Value)) > 0 {
			if w1 != w2 {
				return pc.reject(t1, t2, v1, "indices of %s are assigned by different statements", name)
			}
			return nil
		}
		if !ex.Equal(a1.Value, a2.Value) {
			return pc.reject(t1, t2, v1, "indices of %s are assigned different values (%s vs %s)",
				name, pc.a.exprName(a1.Value), pc.a.exprName(a2.Value))
		}
		return nil
	case k1 == ast.StmtCall || k2 == ast.StmtCall:
		if w1 != w2 || !ex.Equal(r1, r2) {
			return pc.reject(t1, t2, v1, "indices of %s are set by different calls", name)
		}
		return nil
	case k1 == ast.StmtLoop && k2 == ast.StmtLoop:
		l1, _ := st.Loop(w1)
		l2, _ := st.Loop(w2)
		s1, ok1 := ex.IntValue(l1.Start)
		s2, ok2 := ex.IntValue(l2.Start)
		if !ok1 || !ok2 {
			return pc.reject(t1, t2, v1, "loops setting the indices of %s need literal start values", name)
		}
		p1, ok1 := ex.IntValue(l1.Step)
		p2, ok2 := ex.IntValue(l2.Step)
		if !ok1 || !ok2 {
			return pc.reject(t1, t2, v1, "loops setting the indices of %s need literal steps", name)
		}
		if s1 != s2 || p1 != p2 {
			return pc.reject(t1, t2, v1, "loops setting the indices of %s start or step differently", name)
		}
		return nil
	}
	return pc.reject(t1, t2, v1, "indices of %s are set by different kinds of statements", name)
}

// lastWrite walks backwards from task over the preorder list of the serial
// region and returns the last statement writing ref. Opaque code and calls
// that are neither kernels nor known to be transparent stop the walk with an
// error.
func (pc *pairCheck) lastWrite(t1, t2, task ast.StmtID, ref ast.ExprID) (ast.StmtID, error) {
	st := pc.a.b.Stmts
	ex := pc.a.b.Exprs
	sym, _ := ex.Symbol(ref)
	for k := pc.pos[task] - 1; k >= 0; k-- {
		node := pc.nodes[k]
		kind, _ := st.Kind(node)
		switch kind {
		case ast.StmtAssign:
			data, _ := st.Assign(node)
			if ex.Equal(data.Target, ref) {
				return node, nil
			}
		case ast.StmtLoop:
			data, _ := st.Loop(node)
			if data.Var == sym {
				return node, nil
			}
		case ast.StmtCodeBlock:
			e := pc.reject(t1, t2, ref, "cannot trace %s past an unanalysed code block", pc.a.exprName(ref))
			e.Node = node
			return ast.NoStmtID, e
		case ast.StmtCall:
			data, _ := st.Call(node)
			name, _ := pc.a.b.Strings.Lookup(data.Name)
			if !data.Kernel && !pc.a.transparent[source.FoldName(name)] {
				e := pc.reject(t1, t2, ref, "cannot trace %s past the call to %s", pc.a.exprName(ref), name)
				e.Node = node
				return ast.NoStmtID, e
			}
			return node, nil
		}
	}
	return ast.NoStmtID, nil
}
