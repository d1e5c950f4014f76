package ast

import (
	"fmt"
	"slices"

	"ompscope/internal/source"
	"ompscope/internal/symbols"
)

// Stmts manages allocation of statements and the parent links between them.
type Stmts struct {
	Arena      *Arena[Stmt]
	Routines   *Arena[StmtRoutineData]
	Assigns    *Arena[StmtAssignData]
	Loops      *Arena[StmtLoopData]
	Ifs        *Arena[StmtIfData]
	Calls      *Arena[StmtCallData]
	CodeBlocks *Arena[StmtCodeBlockData]
	Directives *Arena[StmtDirectiveData]

	// generation растёт при каждом изменении структуры дерева
	generation uint64
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	small := capHint/4 + 1
	return &Stmts{
		Arena:      NewArena[Stmt](capHint),
		Routines:   NewArena[StmtRoutineData](1),
		Assigns:    NewArena[StmtAssignData](capHint),
		Loops:      NewArena[StmtLoopData](small),
		Ifs:        NewArena[StmtIfData](small),
		Calls:      NewArena[StmtCallData](small),
		CodeBlocks: NewArena[StmtCodeBlockData](1),
		Directives: NewArena[StmtDirectiveData](small),
	}
}

// Generation changes whenever a statement is attached, detached or replaced.
func (s *Stmts) Generation() uint64 { return s.generation }

func (s *Stmts) new(kind StmtKind, span source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// Parent returns the parent of id or NoStmtID for roots and detached nodes.
func (s *Stmts) Parent(id StmtID) StmtID {
	st := s.Get(id)
	if st == nil {
		return NoStmtID
	}
	return st.Parent
}

func (s *Stmts) payload(id StmtID, kind StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return 0, false
	}
	return uint32(st.Payload), true
}

// NewRoutine creates a routine root owning body.
func (s *Stmts) NewRoutine(span source.Span, name source.StringID, scope symbols.ScopeID, body []StmtID) StmtID {
	id := s.new(StmtRoutine, span, s.Routines.Allocate(StmtRoutineData{Name: name, Scope: scope}))
	s.adopt(id, body)
	return id
}

// Routine returns the routine data for the given statement ID.
func (s *Stmts) Routine(id StmtID) (*StmtRoutineData, bool) {
	p, ok := s.payload(id, StmtRoutine)
	if !ok {
		return nil, false
	}
	return s.Routines.Get(p), true
}

// NewAssign creates target = value.
func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	return s.new(StmtAssign, span, s.Assigns.Allocate(StmtAssignData{Target: target, Value: value}))
}

// Assign returns the assignment data for the given statement ID.
func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	p, ok := s.payload(id, StmtAssign)
	if !ok {
		return nil, false
	}
	return s.Assigns.Get(p), true
}

// NewLoop creates do v = start, stop, step with the given body.
func (s *Stmts) NewLoop(span source.Span, v symbols.SymbolID, start, stop, step ExprID, body []StmtID) StmtID {
	id := s.new(StmtLoop, span, s.Loops.Allocate(StmtLoopData{Var: v, Start: start, Stop: stop, Step: step}))
	s.adopt(id, body)
	return id
}

// Loop returns the loop data for the given statement ID.
func (s *Stmts) Loop(id StmtID) (*StmtLoopData, bool) {
	p, ok := s.payload(id, StmtLoop)
	if !ok {
		return nil, false
	}
	return s.Loops.Get(p), true
}

// NewIf creates if (cond) then ... else ... end if.
func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els []StmtID) StmtID {
	id := s.new(StmtIf, span, s.Ifs.Allocate(StmtIfData{Cond: cond}))
	s.adopt(id, then)
	for _, child := range els {
		if err := s.AppendElse(id, child); err != nil {
			panic(err)
		}
	}
	return id
}

// If returns the conditional data for the given statement ID.
func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

// NewCall creates a call statement.
func (s *Stmts) NewCall(span source.Span, name source.StringID, args []ExprID, kernel bool, locals []source.StringID) StmtID {
	payload := s.Calls.Allocate(StmtCallData{
		Name:   name,
		Args:   append([]ExprID(nil), args...),
		Kernel: kernel,
		Locals: append([]source.StringID(nil), locals...),
	})
	return s.new(StmtCall, span, payload)
}

// Call returns the call data for the given statement ID.
func (s *Stmts) Call(id StmtID) (*StmtCallData, bool) {
	p, ok := s.payload(id, StmtCall)
	if !ok {
		return nil, false
	}
	return s.Calls.Get(p), true
}

// NewCodeBlock creates an opaque code block.
func (s *Stmts) NewCodeBlock(span source.Span, text string) StmtID {
	return s.new(StmtCodeBlock, span, s.CodeBlocks.Allocate(StmtCodeBlockData{Text: text}))
}

// CodeBlock returns the code block data for the given statement ID.
func (s *Stmts) CodeBlock(id StmtID) (*StmtCodeBlockData, bool) {
	p, ok := s.payload(id, StmtCodeBlock)
	if !ok {
		return nil, false
	}
	return s.CodeBlocks.Get(p), true
}

// NewDirective creates a directive of kind owning body.
func (s *Stmts) NewDirective(span source.Span, kind DirectiveKind, body []StmtID) StmtID {
	schedule := ""
	if kind == DirDo || kind == DirParallelDo {
		schedule = "static"
	}
	id := s.new(StmtDirective, span, s.Directives.Allocate(StmtDirectiveData{Kind: kind, Schedule: schedule}))
	s.adopt(id, body)
	return id
}

// Directive returns the directive data for the given statement ID.
func (s *Stmts) Directive(id StmtID) (*StmtDirectiveData, bool) {
	p, ok := s.payload(id, StmtDirective)
	if !ok {
		return nil, false
	}
	return s.Directives.Get(p), true
}

// IsDirective reports whether id is a directive of one of kinds
// (any directive when kinds is empty).
func (s *Stmts) IsDirective(id StmtID, kinds ...DirectiveKind) bool {
	d, ok := s.Directive(id)
	if !ok {
		return false
	}
	return len(kinds) == 0 || slices.Contains(kinds, d.Kind)
}

// SetClauses replaces the clauses attached to a directive. Clause items are
// not part of the statement tree, so the generation is left unchanged.
func (s *Stmts) SetClauses(id StmtID, clauses []Clause) error {
	d, ok := s.Directive(id)
	if !ok {
		return fmt.Errorf("set clauses: statement %d is not a directive", id)
	}
	d.Clauses = clauses
	return nil
}

// body returns the primary child list of id: the routine, loop or directive
// body, or the then-branch of a conditional.
func (s *Stmts) body(id StmtID) *[]StmtID {
	st := s.Get(id)
	if st == nil {
		return nil
	}
	p := uint32(st.Payload)
	switch st.Kind {
	case StmtRoutine:
		return &s.Routines.Get(p).Body
	case StmtLoop:
		return &s.Loops.Get(p).Body
	case StmtIf:
		return &s.Ifs.Get(p).Then
	case StmtDirective:
		return &s.Directives.Get(p).Body
	}
	return nil
}

// lists returns every child list of id in order.
func (s *Stmts) lists(id StmtID) []*[]StmtID {
	if data, ok := s.If(id); ok {
		return []*[]StmtID{&data.Then, &data.Else}
	}
	if b := s.body(id); b != nil {
		return []*[]StmtID{b}
	}
	return nil
}

// Body returns the primary child list of id.
func (s *Stmts) Body(id StmtID) []StmtID {
	if b := s.body(id); b != nil {
		return *b
	}
	return nil
}

// Children returns all child statements of id in source order.
func (s *Stmts) Children(id StmtID) []StmtID {
	lists := s.lists(id)
	if len(lists) == 1 {
		return *lists[0]
	}
	var out []StmtID
	for _, l := range lists {
		out = append(out, *l...)
	}
	return out
}

func (s *Stmts) adopt(parent StmtID, children []StmtID) {
	for _, child := range children {
		if err := s.Append(parent, child); err != nil {
			panic(err)
		}
	}
}

// Append attaches child at the end of parent's primary body. A child that
// already has a parent is detached first.
func (s *Stmts) Append(parent, child StmtID) error {
	return s.attach(parent, child, s.body)
}

// AppendElse attaches child at the end of a conditional's else-branch.
func (s *Stmts) AppendElse(parent, child StmtID) error {
	return s.attach(parent, child, func(id StmtID) *[]StmtID {
		if data, ok := s.If(id); ok {
			return &data.Else
		}
		return nil
	})
}

func (s *Stmts) attach(parent, child StmtID, slot func(StmtID) *[]StmtID) error {
	b := slot(parent)
	if b == nil {
		return fmt.Errorf("append: statement %d cannot own children", parent)
	}
	st := s.Get(child)
	if st == nil {
		return fmt.Errorf("append: unknown statement %d", child)
	}
	if child == parent || s.IsAncestor(child, parent) {
		return fmt.Errorf("append: statement %d would become its own ancestor", child)
	}
	s.detach(child)
	b = slot(parent)
	*b = append(*b, child)
	st.Parent = parent
	s.generation++
	return nil
}

// Detach removes id from its parent. Detaching a root is a no-op.
func (s *Stmts) Detach(id StmtID) {
	if s.detach(id) {
		s.generation++
	}
}

func (s *Stmts) detach(id StmtID) bool {
	st := s.Get(id)
	if st == nil || !st.Parent.IsValid() {
		return false
	}
	for _, l := range s.lists(st.Parent) {
		if i := slices.Index(*l, id); i >= 0 {
			*l = slices.Delete(*l, i, i+1)
			break
		}
	}
	st.Parent = NoStmtID
	return true
}

// Replace puts replacement into the slot held by old and detaches old.
func (s *Stmts) Replace(old, replacement StmtID) error {
	st := s.Get(old)
	if st == nil || !st.Parent.IsValid() {
		return fmt.Errorf("replace: statement %d has no parent", old)
	}
	if s.Get(replacement) == nil {
		return fmt.Errorf("replace: unknown statement %d", replacement)
	}
	parent := st.Parent
	if replacement == parent || s.IsAncestor(replacement, parent) {
		return fmt.Errorf("replace: statement %d would become its own ancestor", replacement)
	}
	s.detach(replacement)
	for _, l := range s.lists(parent) {
		if i := slices.Index(*l, old); i >= 0 {
			(*l)[i] = replacement
			break
		}
	}
	st.Parent = NoStmtID
	s.Get(replacement).Parent = parent
	s.generation++
	return nil
}

// IsAncestor reports whether anc is a proper ancestor of id.
func (s *Stmts) IsAncestor(anc, id StmtID) bool {
	for cur := s.Parent(id); cur.IsValid(); cur = s.Parent(cur) {
		if cur == anc {
			return true
		}
	}
	return false
}
