package testkit

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"ompscope/internal/ast"
)

// CheckTreeInvariants verifies the parent links of every statement reachable
// from root:
// 1) each child names its container as parent
// 2) no statement is listed twice
// 3) a non-empty child span lies inside its parent's span when both are set
func CheckTreeInvariants(b *ast.Builder, root ast.StmtID) error {
	if b == nil {
		return fmt.Errorf("nil builder")
	}
	if b.Stmts.Get(root) == nil {
		return fmt.Errorf("root %d not found", root)
	}
	total, err := safecast.Conv[uint32](b.Stmts.Arena.Len())
	if err != nil {
		return fmt.Errorf("statement count overflow: %w", err)
	}
	seen := make(map[ast.StmtID]bool)
	var visit func(id ast.StmtID) error
	visit = func(id ast.StmtID) error {
		if uint32(id) > total {
			return fmt.Errorf("statement %d beyond arena length %d", id, total)
		}
		if seen[id] {
			return fmt.Errorf("statement %d reachable twice", id)
		}
		seen[id] = true
		parent := b.Stmts.Get(id)
		for _, child := range b.Stmts.Children(id) {
			st := b.Stmts.Get(child)
			if st == nil {
				return fmt.Errorf("nil statement for id=%d", child)
			}
			if st.Parent != id {
				return fmt.Errorf("statement %d lists child %d whose parent is %d", id, child, st.Parent)
			}
			if !st.Span.Empty() && !parent.Span.Empty() &&
				(st.Span.Start < parent.Span.Start || st.Span.End > parent.Span.End) {
				return fmt.Errorf("child span %v is outside parent span %v", st.Span, parent.Span)
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return err
	}
	if !slices.Equal(b.Stmts.Preorder(root), preorderKeys(b, root)) {
		return fmt.Errorf("preorder walk disagrees with child lists")
	}
	return nil
}

func preorderKeys(b *ast.Builder, root ast.StmtID) []ast.StmtID {
	out := []ast.StmtID{root}
	for _, child := range b.Stmts.Children(root) {
		out = append(out, preorderKeys(b, child)...)
	}
	return out
}
