package ast

import (
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// ExprKind enumerates the expression node kinds.
type ExprKind uint8

const (
	// ExprRef is a scalar reference to a symbol.
	ExprRef ExprKind = iota
	// ExprArrayRef is a subscripted array access.
	ExprArrayRef
	// ExprStructRef is a derived-type member access a%b%c.
	ExprStructRef
	ExprLit
	ExprBinary
	ExprUnary
	// ExprCall is a function or intrinsic call inside an expression.
	ExprCall
	// ExprRange is a lower:upper[:step] section.
	ExprRange
	// ExprBound is lbound(a, dim) or ubound(a, dim).
	ExprBound
)

func (k ExprKind) String() string {
	switch k {
	case ExprRef:
		return "Reference"
	case ExprArrayRef:
		return "ArrayReference"
	case ExprStructRef:
		return "StructureReference"
	case ExprLit:
		return "Literal"
	case ExprBinary:
		return "BinaryOperation"
	case ExprUnary:
		return "UnaryOperation"
	case ExprCall:
		return "Call"
	case ExprRange:
		return "Range"
	case ExprBound:
		return "Bound"
	default:
		return "Expr?"
	}
}

// IsReference reports whether k is one of the reference kinds.
func (k ExprKind) IsReference() bool {
	return k == ExprRef || k == ExprArrayRef || k == ExprStructRef
}

// Expr is the common header of every expression node.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

// ExprLitKind classifies literal values.
type ExprLitKind uint8

const (
	ExprLitInt ExprLitKind = iota
	ExprLitReal
	ExprLitLogical
	ExprLitString
)

// ExprBinaryOp enumerates binary operator kinds.
type ExprBinaryOp uint8

const (
	ExprBinaryAdd ExprBinaryOp = iota
	ExprBinarySub
	ExprBinaryMul
	ExprBinaryDiv
	ExprBinaryPow
	ExprBinaryEq
	ExprBinaryNe
	ExprBinaryLt
	ExprBinaryLe
	ExprBinaryGt
	ExprBinaryGe
	ExprBinaryAnd
	ExprBinaryOr
)

func (op ExprBinaryOp) String() string {
	switch op {
	case ExprBinaryAdd:
		return "+"
	case ExprBinarySub:
		return "-"
	case ExprBinaryMul:
		return "*"
	case ExprBinaryDiv:
		return "/"
	case ExprBinaryPow:
		return "**"
	case ExprBinaryEq:
		return "=="
	case ExprBinaryNe:
		return "/="
	case ExprBinaryLt:
		return "<"
	case ExprBinaryLe:
		return "<="
	case ExprBinaryGt:
		return ">"
	case ExprBinaryGe:
		return ">="
	case ExprBinaryAnd:
		return ".and."
	case ExprBinaryOr:
		return ".or."
	default:
		return "?"
	}
}

// ExprUnaryOp enumerates unary operator kinds.
type ExprUnaryOp uint8

const (
	ExprUnaryNeg ExprUnaryOp = iota
	ExprUnaryNot
)

func (op ExprUnaryOp) String() string {
	if op == ExprUnaryNot {
		return ".not."
	}
	return "-"
}

// BoundKind selects lbound or ubound.
type BoundKind uint8

const (
	BoundLower BoundKind = iota
	BoundUpper
)

type ExprRefData struct {
	Symbol symbols.SymbolID
}

type ExprArrayRefData struct {
	Symbol  symbols.SymbolID
	Indices []ExprID
}

// StructMember is one component of a structure access chain.
type StructMember struct {
	Name    source.StringID
	Indices []ExprID
}

// ExprStructRefData describes base[(indices)]%m1[(...)]%m2...
// Indices on the base make it an array-of-structures access.
type ExprStructRefData struct {
	Symbol  symbols.SymbolID
	Indices []ExprID
	Members []StructMember
}

type ExprLiteralData struct {
	Kind  ExprLitKind
	Value source.StringID
}

type ExprBinaryData struct {
	Op    ExprBinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      ExprUnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Name source.StringID
	Args []ExprID
}

// ExprRangeData is lower:upper[:step]; Step may be NoExprID.
type ExprRangeData struct {
	Lower ExprID
	Upper ExprID
	Step  ExprID
}

type ExprBoundData struct {
	Kind  BoundKind
	Array symbols.SymbolID
	Dim   uint32 // 1-based
}
