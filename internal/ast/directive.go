package ast

// DirectiveKind enumerates the OpenMP directives the tree can carry.
type DirectiveKind uint8

const (
	DirParallel DirectiveKind = iota
	DirParallelDo
	DirSingle
	DirMaster
	DirTask
	DirTaskloop
	DirDo
	DirTarget
	DirLoop
	DirTaskwait
)

func (k DirectiveKind) String() string {
	switch k {
	case DirParallel:
		return "parallel"
	case DirParallelDo:
		return "parallel do"
	case DirSingle:
		return "single"
	case DirMaster:
		return "master"
	case DirTask:
		return "task"
	case DirTaskloop:
		return "taskloop"
	case DirDo:
		return "do"
	case DirTarget:
		return "target"
	case DirLoop:
		return "loop"
	case DirTaskwait:
		return "taskwait"
	default:
		return "directive?"
	}
}

// IsParallel reports whether k opens a parallel region.
func (k DirectiveKind) IsParallel() bool { return k == DirParallel || k == DirParallelDo }

// IsSerial reports whether k is a serial region (single or master).
func (k DirectiveKind) IsSerial() bool { return k == DirSingle || k == DirMaster }

// IsStandalone reports whether k has no body.
func (k DirectiveKind) IsStandalone() bool { return k == DirTaskwait }

// ClauseKind enumerates data-sharing and dependency clauses.
type ClauseKind uint8

const (
	ClausePrivate ClauseKind = iota
	ClauseFirstprivate
	ClauseShared
	ClauseDependIn
	ClauseDependOut
)

func (k ClauseKind) String() string {
	switch k {
	case ClausePrivate:
		return "private"
	case ClauseFirstprivate:
		return "firstprivate"
	case ClauseShared:
		return "shared"
	case ClauseDependIn:
		return "depend(in)"
	case ClauseDependOut:
		return "depend(out)"
	default:
		return "clause?"
	}
}

// Clause is one attached clause with its list items.
type Clause struct {
	Kind  ClauseKind
	Items []ExprID
}

// StmtDirectiveData holds a directive, its body and its attached clauses.
type StmtDirectiveData struct {
	Kind      DirectiveKind
	Body      []StmtID
	Clauses   []Clause
	Nowait    bool
	Nogroup   bool
	Grainsize ExprID
	NumTasks  ExprID
	Collapse  uint32
	Schedule  string
}

// Clause returns the attached clause of kind k.
func (d *StmtDirectiveData) Clause(k ClauseKind) (Clause, bool) {
	for _, c := range d.Clauses {
		if c.Kind == k {
			return c, true
		}
	}
	return Clause{}, false
}
