package ast

import (
	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// StmtKind enumerates statement node kinds.
type StmtKind uint8

const (
	// StmtRoutine is the root of one subroutine or function body.
	StmtRoutine StmtKind = iota
	StmtAssign
	StmtLoop
	StmtIf
	// StmtCall is a subroutine call; kernel calls carry their local variables.
	StmtCall
	// StmtCodeBlock is source the front end could not translate.
	StmtCodeBlock
	StmtDirective
)

func (k StmtKind) String() string {
	switch k {
	case StmtRoutine:
		return "Routine"
	case StmtAssign:
		return "Assignment"
	case StmtLoop:
		return "Loop"
	case StmtIf:
		return "IfBlock"
	case StmtCall:
		return "Call"
	case StmtCodeBlock:
		return "CodeBlock"
	case StmtDirective:
		return "Directive"
	default:
		return "Stmt?"
	}
}

// Stmt is the common header of every statement node.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Parent  StmtID
	Payload PayloadID
}

type StmtRoutineData struct {
	Name  source.StringID
	Scope symbols.ScopeID
	Body  []StmtID
}

type StmtAssignData struct {
	Target ExprID
	Value  ExprID
}

// StmtLoopData is do var = start, stop, step.
type StmtLoopData struct {
	Var   symbols.SymbolID
	Start ExprID
	Stop  ExprID
	Step  ExprID
	Body  []StmtID
}

type StmtIfData struct {
	Cond ExprID
	Then []StmtID
	Else []StmtID
}

// StmtCallData describes a call statement. Kernel calls are opaque
// computational kernels whose only visible effect is their argument list;
// Locals names the kernel's private working storage.
type StmtCallData struct {
	Name   source.StringID
	Args   []ExprID
	Kernel bool
	Locals []source.StringID
}

type StmtCodeBlockData struct {
	Text string
}
