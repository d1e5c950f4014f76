// Package snapshot reads and writes the msgpack documents a Fortran front end
// hands over: the typed tree of one program unit with its symbols.
package snapshot

import "errors"

// SchemaVersion is the document layout this package understands.
// Increment when Document changes incompatibly.
const SchemaVersion uint16 = 1

var (
	// ErrMalformed is returned when the bytes are not a snapshot document.
	ErrMalformed = errors.New("malformed snapshot")
	// ErrVersion is returned for documents of another schema version.
	ErrVersion = errors.New("unsupported snapshot schema version")
	// ErrInvalidTree is returned when the document describes an inconsistent tree.
	ErrInvalidTree = errors.New("invalid snapshot tree")
)

// Document is the top-level snapshot of one program unit.
type Document struct {
	Schema   uint16    `msgpack:"schema"`
	Source   string    `msgpack:"source,omitempty"` // Fortran file the spans point into
	Unit     string    `msgpack:"unit"`
	Symbols  []Symbol  `msgpack:"symbols,omitempty"` // module-level declarations
	Routines []Routine `msgpack:"routines"`
}

// Span is a byte range in Document.Source.
type Span struct {
	Start uint32 `msgpack:"s"`
	End   uint32 `msgpack:"e"`
}

// Symbol is one declaration. Kind is "scalar", "array" or "structure";
// an empty kind is inferred from Dims.
type Symbol struct {
	Name        string `msgpack:"name"`
	Kind        string `msgpack:"kind,omitempty"`
	Interface   string `msgpack:"interface,omitempty"` // local, argument, imported
	Dims        []Dim  `msgpack:"dims,omitempty"`
	Parameter   bool   `msgpack:"parameter,omitempty"`
	KernelLocal bool   `msgpack:"kernel_local,omitempty"`
	Span        *Span  `msgpack:"span,omitempty"`
}

// Dim holds declared bounds; nil means deferred.
type Dim struct {
	Lower *int64 `msgpack:"lo,omitempty"`
	Upper *int64 `msgpack:"hi,omitempty"`
}

// Routine is one subroutine or function with its local declarations.
type Routine struct {
	Name    string   `msgpack:"name"`
	Span    *Span    `msgpack:"span,omitempty"`
	Symbols []Symbol `msgpack:"symbols,omitempty"`
	Body    []Node   `msgpack:"body"`
}

// Node is a statement. Kind selects the fields in use:
//
//	assign     Target, Value
//	loop       Var, Start, Stop, Step (default 1), Body
//	if         Cond, Body (then), Else
//	call       Name, Args, Kernel, Locals
//	codeblock  Text
//	directive  Directive, Body, Nowait, Nogroup, Grainsize, NumTasks, Collapse, Schedule
type Node struct {
	Kind string `msgpack:"kind"`
	Span *Span  `msgpack:"span,omitempty"`

	Target *Expr `msgpack:"target,omitempty"`
	Value  *Expr `msgpack:"value,omitempty"`

	Var   string `msgpack:"var,omitempty"`
	Start *Expr  `msgpack:"start,omitempty"`
	Stop  *Expr  `msgpack:"stop,omitempty"`
	Step  *Expr  `msgpack:"step,omitempty"`

	Cond *Expr  `msgpack:"cond,omitempty"`
	Body []Node `msgpack:"body,omitempty"`
	Else []Node `msgpack:"else,omitempty"`

	Name   string   `msgpack:"name,omitempty"`
	Args   []Expr   `msgpack:"args,omitempty"`
	Kernel bool     `msgpack:"kernel,omitempty"`
	Locals []string `msgpack:"locals,omitempty"`

	Text string `msgpack:"text,omitempty"`

	Directive string `msgpack:"directive,omitempty"`
	Nowait    bool   `msgpack:"nowait,omitempty"`
	Nogroup   bool   `msgpack:"nogroup,omitempty"`
	Grainsize *Expr  `msgpack:"grainsize,omitempty"`
	NumTasks  *Expr  `msgpack:"num_tasks,omitempty"`
	Collapse  uint32 `msgpack:"collapse,omitempty"`
	Schedule  string `msgpack:"schedule,omitempty"`
}

// Expr is an expression. Kind selects the fields in use:
//
//	ref     Name
//	index   Name, Indices
//	member  Name, Indices (on the base), Members
//	lit     Lit (int, real, logical, string), Value
//	binary  Op, Left, Right
//	unary   Op, Left
//	call    Name, Args
//	range   Left (lower), Right (upper), Step
//	bound   Name (array), Bound (lbound, ubound), Dim
type Expr struct {
	Kind    string   `msgpack:"kind"`
	Span    *Span    `msgpack:"span,omitempty"`
	Name    string   `msgpack:"name,omitempty"`
	Indices []Expr   `msgpack:"indices,omitempty"`
	Members []Member `msgpack:"members,omitempty"`
	Lit     string   `msgpack:"lit,omitempty"`
	Value   string   `msgpack:"value,omitempty"`
	Op      string   `msgpack:"op,omitempty"`
	Left    *Expr    `msgpack:"left,omitempty"`
	Right   *Expr    `msgpack:"right,omitempty"`
	Step    *Expr    `msgpack:"step,omitempty"`
	Args    []Expr   `msgpack:"args,omitempty"`
	Bound   string   `msgpack:"bound,omitempty"`
	Dim     uint32   `msgpack:"dim,omitempty"`
}

// Member is one component of a structure access.
type Member struct {
	Name    string `msgpack:"name"`
	Indices []Expr `msgpack:"indices,omitempty"`
}
