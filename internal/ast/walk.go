package ast

// Walk visits root and its descendants in preorder. Returning false from fn
// skips the children of the current statement.
func (s *Stmts) Walk(root StmtID, fn func(StmtID) bool) {
	if !root.IsValid() || !fn(root) {
		return
	}
	for _, child := range s.Children(root) {
		s.Walk(child, fn)
	}
}

// Preorder returns root followed by all of its descendants in preorder.
// The position of a node in this list is its position relative to root.
func (s *Stmts) Preorder(root StmtID) []StmtID {
	var out []StmtID
	s.Walk(root, func(id StmtID) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Collect returns the descendants of root (root excluded) matching keep, in preorder.
func (s *Stmts) Collect(root StmtID, keep func(StmtID) bool) []StmtID {
	var out []StmtID
	s.Walk(root, func(id StmtID) bool {
		if id != root && keep(id) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// NearestAncestor returns the closest proper ancestor of id accepted by match.
func (s *Stmts) NearestAncestor(id StmtID, match func(StmtID) bool) StmtID {
	for cur := s.Parent(id); cur.IsValid(); cur = s.Parent(cur) {
		if match(cur) {
			return cur
		}
	}
	return NoStmtID
}

// AncestorDirective returns the closest enclosing directive of one of kinds.
// Directives of a kind listed in excluding are skipped over.
func (s *Stmts) AncestorDirective(id StmtID, kinds []DirectiveKind, excluding ...DirectiveKind) StmtID {
	return s.NearestAncestor(id, func(cur StmtID) bool {
		if len(excluding) > 0 && s.IsDirective(cur, excluding...) {
			return false
		}
		return s.IsDirective(cur, kinds...)
	})
}

// Root returns the topmost ancestor of id (id itself for roots).
func (s *Stmts) Root(id StmtID) StmtID {
	for p := s.Parent(id); p.IsValid(); p = s.Parent(p) {
		id = p
	}
	return id
}

// Kind returns the kind of id; ok is false for unknown IDs.
func (s *Stmts) Kind(id StmtID) (StmtKind, bool) {
	st := s.Get(id)
	if st == nil {
		return 0, false
	}
	return st.Kind, true
}

// Is reports whether id is a statement of kind k.
func (s *Stmts) Is(id StmtID, k StmtKind) bool {
	kind, ok := s.Kind(id)
	return ok && kind == k
}
