package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ompscope/internal/diag"
	"ompscope/internal/observ"
	"ompscope/internal/omp"
	"ompscope/internal/snapshot"
	"ompscope/internal/source"
	"ompscope/internal/trace"
)

// Request describes one batch run.
type Request struct {
	Files []string
	// FileSet receives the loaded files; a fresh one is used when nil.
	FileSet        *source.FileSet
	Jobs           int
	MaxDiagnostics int
	Analysis       omp.Options
	Sink           Sink
	// Timer, when set, records a phase per stage and per routine.
	Timer *observ.Timer
}

// FileResult holds the outcome for a single snapshot.
type FileResult struct {
	Path     string
	Program  *snapshot.Program // nil when loading failed
	Bag      *diag.Bag
	Routines []*omp.Result
}

// Result aggregates a batch run. Files keep the order of Request.Files.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timings Timings
}

// HasErrors reports whether any file produced an error diagnostic.
func (r *Result) HasErrors() bool {
	for i := range r.Files {
		if r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Diagnostics returns the diagnostics of every file in file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for i := range r.Files {
		out = append(out, r.Files[i].Bag.Items()...)
	}
	return out
}

// AnalyzeFiles loads every snapshot of req and analyses all routines in them.
// Load and analysis failures become diagnostics; the returned error is only
// set when ctx is cancelled.
func AnalyzeFiles(ctx context.Context, req Request) (*Result, error) {
	fileSet := req.FileSet
	if fileSet == nil {
		fileSet = source.NewFileSet()
	}
	res := &Result{FileSet: fileSet, Files: make([]FileResult, len(req.Files))}
	if len(req.Files) == 0 {
		return res, nil
	}

	tracer := trace.FromContext(ctx)
	span, ctx := trace.Start(ctx, trace.ScopeDriver, "analyze_files")
	span.WithExtra("files", strconv.Itoa(len(req.Files)))
	defer span.End("")

	for _, path := range req.Files {
		emit(req.Sink, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// FileSet не потокобезопасен, поэтому загрузка последовательная
	programs := make([]*snapshot.Program, len(req.Files))
	loadErrs := make([]error, len(req.Files))
	loadFiles := make([]source.FileID, len(req.Files))
	loadStart := time.Now()
	doneLoad := req.Timer.Track("load")
	for i, path := range req.Files {
		if err := ctx.Err(); err != nil {
			doneLoad("cancelled")
			return res, err
		}
		started := time.Now()
		emit(req.Sink, Event{File: path, Stage: StageLoad, Status: StatusWorking})
		prog, err := snapshot.ReadFile(fileSet, path)
		if err != nil {
			loadErrs[i] = err
			loadFiles[i] = fileSet.AddVirtual(path, nil)
			trace.Point(tracer, trace.ScopePass, "load_failed", span.ID(), err.Error())
			emit(req.Sink, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(started)})
			continue
		}
		programs[i] = prog
		emit(req.Sink, Event{File: path, Stage: StageLoad, Status: StatusDone, Elapsed: time.Since(started)})
	}
	doneLoad(fmt.Sprintf("%d files", len(req.Files)))
	res.Timings.Set(StageLoad, time.Since(loadStart))

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты пишутся по индексу, мьютекс не нужен
	analyzeStart := time.Now()
	doneAnalyze := req.Timer.Track("analyze")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(req.MaxDiagnostics)
			res.Files[i] = FileResult{Path: path, Program: programs[i], Bag: bag}
			if loadErrs[i] != nil {
				bag.Add(loadDiagnostic(loadFiles[i], loadErrs[i]))
				return nil
			}

			started := time.Now()
			emit(req.Sink, Event{File: path, Stage: StageAnalyze, Status: StatusWorking})
			routines, err := analyzeProgram(gctx, path, programs[i], req, bag)
			res.Files[i].Routines = routines
			if err != nil {
				emit(req.Sink, Event{File: path, Stage: StageAnalyze, Status: StatusError, Err: err, Elapsed: time.Since(started)})
				return err
			}
			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
			}
			emit(req.Sink, Event{File: path, Stage: StageAnalyze, Status: status, Elapsed: time.Since(started)})
			return nil
		})
	}
	err := g.Wait()
	doneAnalyze("")
	res.Timings.Set(StageAnalyze, time.Since(analyzeStart))
	for i := range res.Files {
		if res.Files[i].Bag == nil {
			res.Files[i] = FileResult{Path: req.Files[i], Program: programs[i], Bag: diag.NewBag(req.MaxDiagnostics)}
		}
	}
	return res, err
}

func analyzeProgram(ctx context.Context, path string, prog *snapshot.Program, req Request, bag *diag.Bag) ([]*omp.Result, error) {
	span, ctx := trace.Start(trace.WithFile(ctx, path), trace.ScopeDriver, "analyze_file")

	a := omp.New(prog.Builder, prog.Symbols, req.Analysis)
	// одинаковые отчёты об одном узле выводятся один раз
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	out := make([]*omp.Result, 0, len(prog.Routines))
	rejected := 0
	for _, root := range prog.Routines {
		done := req.Timer.Track(path + ":" + prog.RoutineName(root))
		r, err := a.AnalyzeRoutine(ctx, root, reporter)
		if err != nil {
			done("cancelled")
			span.End(err.Error())
			return out, err
		}
		done(fmt.Sprintf("%d directives", len(r.Directives)))
		rejected += r.Failed()
		out = append(out, r)
	}
	bag.Sort()
	span.WithExtra("rejected", strconv.Itoa(rejected))
	span.End("")
	return out, nil
}

func loadDiagnostic(file source.FileID, err error) diag.Diagnostic {
	code := diag.IOLoadFileError
	switch {
	case errors.Is(err, snapshot.ErrVersion):
		code = diag.IOSnapshotVersion
	case errors.Is(err, snapshot.ErrInvalidTree):
		code = diag.IOSnapshotInvalidTree
	case errors.Is(err, snapshot.ErrMalformed):
		code = diag.IOSnapshotDecode
	}
	return diag.Diagnostic{
		Severity: diag.SevError,
		Code:     code,
		Message:  "failed to load snapshot: " + err.Error(),
		Primary:  source.Span{File: file},
	}
}
