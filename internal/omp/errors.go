package omp

import (
	"errors"
	"fmt"

	"ompscope/internal/ast"
	"ompscope/internal/diag"
)

// Kind classifies why a transformation was rejected.
type Kind uint8

const (
	// StructuralViolation: a directive nesting or arity rule is broken.
	StructuralViolation Kind = iota + 1
	// UnsupportedIndexExpression: a subscript, loop bound or dependency
	// comparison uses a shape the analysis cannot reason about.
	UnsupportedIndexExpression
	// UnprovableDependency: two sibling tasks may touch the same data under
	// indices that cannot be shown to match.
	UnprovableDependency
	// SharedLoopVariable: a task loop iterates over a variable shared in the
	// enclosing parallel region.
	SharedLoopVariable
	// InternalError: the tree is in a state the front end should never produce.
	InternalError
)

func (k Kind) String() string {
	switch k {
	case StructuralViolation:
		return "StructuralViolation"
	case UnsupportedIndexExpression:
		return "UnsupportedIndexExpression"
	case UnprovableDependency:
		return "UnprovableDependency"
	case SharedLoopVariable:
		return "SharedLoopVariable"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Code maps k to its diagnostic code.
func (k Kind) Code() diag.Code {
	switch k {
	case StructuralViolation:
		return diag.OmpStructuralViolation
	case UnsupportedIndexExpression:
		return diag.OmpUnsupportedIndex
	case UnprovableDependency:
		return diag.OmpUnprovableDependency
	case SharedLoopVariable:
		return diag.OmpSharedLoopVariable
	default:
		return diag.OmpInternal
	}
}

// Error is a rejected transformation. Node is the offending statement; Expr
// and Related narrow it down when known.
type Error struct {
	Kind    Kind
	Msg     string
	Node    ast.StmtID
	Expr    ast.ExprID
	Related ast.StmtID
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind Kind, node ast.StmtID, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Node: node}
}

func (e *Error) at(expr ast.ExprID) *Error {
	e.Expr = expr
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
