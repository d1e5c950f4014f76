package diag

import "fmt"

// Code identifies the kind of a diagnostic. The thousands digit selects the
// family that prefixes the printed ID.
type Code uint16

const (
	UnknownCode Code = 0

	// Загрузка снапшотов
	IOLoadFileError       Code = 1001
	IOSnapshotDecode      Code = 1002
	IOSnapshotVersion     Code = 1003
	IOSnapshotInvalidTree Code = 1004

	// Анализ OpenMP
	OmpStructuralViolation  Code = 3001
	OmpUnsupportedIndex     Code = 3002
	OmpUnprovableDependency Code = 3003
	OmpSharedLoopVariable   Code = 3004
	OmpInternal             Code = 3005

	// Информационные сообщения анализатора
	OmpRegionWithoutDirectives Code = 3100
	OmpClausesComputed         Code = 3101
)

var codeTitles = map[Code]string{
	UnknownCode:                "Unknown error",
	IOLoadFileError:            "Cannot read input file",
	IOSnapshotDecode:           "Malformed tree snapshot",
	IOSnapshotVersion:          "Unsupported snapshot schema version",
	IOSnapshotInvalidTree:      "Snapshot describes an inconsistent tree",
	OmpStructuralViolation:     "Directive placement or shape is invalid",
	OmpUnsupportedIndex:        "Index expression cannot be analysed",
	OmpUnprovableDependency:    "Task dependencies cannot be proven",
	OmpSharedLoopVariable:      "Task loop iterates over a shared variable",
	OmpInternal:                "Internal analysis error",
	OmpRegionWithoutDirectives: "Parallel region encloses no directive",
	OmpClausesComputed:         "Clauses computed",
}

var familyPrefix = map[int]string{
	1: "IO",
	3: "OMP",
}

// ID returns the printed form, e.g. OMP3002. Codes outside a known family
// print as E0000.
func (c Code) ID() string {
	if prefix, ok := familyPrefix[int(c)/1000]; ok {
		return fmt.Sprintf("%s%04d", prefix, int(c))
	}
	return "E0000"
}

// Title is the one-line description of the code.
func (c Code) Title() string {
	if t, ok := codeTitles[c]; ok {
		return t
	}
	return codeTitles[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
