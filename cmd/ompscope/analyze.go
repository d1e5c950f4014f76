package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ompscope/internal/config"
	"ompscope/internal/diag"
	"ompscope/internal/diagfmt"
	"ompscope/internal/observ"
	"ompscope/internal/omp"
	"ompscope/internal/pipeline"
	"ompscope/internal/version"
)

// errDiagnostics signals that error diagnostics were printed; main turns it
// into exit status 1 without printing anything else.
var errDiagnostics = errors.New("analysis reported errors")

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <snapshot|dir>...",
	Short: "Validate directives and compute data-sharing clauses",
	Long: `Analyze loads tree snapshots (` + pipeline.SnapshotExt + ` files, directories are searched
recursively), validates every OpenMP directive and computes the clauses of
parallel regions and tasks`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "pretty", "output format (pretty|json|short|sarif)")
	analyzeCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	analyzeCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	analyzeCmd.Flags().Bool("emit-clauses", false, "report the computed directive strings as info diagnostics")
	analyzeCmd.Flags().Bool("with-notes", true, "include notes pointing at related nodes")
	analyzeCmd.Flags().Int8("context", 1, "source lines shown before each diagnostic (pretty format)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	defer cleanup()

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	contextLines, err := cmd.Flags().GetInt8("context")
	if err != nil {
		return fmt.Errorf("failed to get context flag: %w", err)
	}

	files, err := pipeline.Expand(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found in %v", pipeline.SnapshotExt, args)
	}

	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}
	req := pipeline.Request{
		Files:          files,
		Jobs:           cfg.Analysis.Jobs,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
		Analysis:       omp.Options{TransparentCalls: cfg.Analysis.TransparentCalls},
		Timer:          timer,
	}

	var res *pipeline.Result
	// Прогресс рисуем только для текстового вывода
	if cfg.Output.Format == "pretty" && shouldUseTUI(mode) {
		res, err = runAnalyzeWithUI(cmd.Context(), "analyzing", req)
	} else {
		res, err = pipeline.AnalyzeFiles(cmd.Context(), req)
	}
	if err != nil {
		dumpTraceRing(cmd)
		return err
	}

	reportStart := time.Now()
	bag := mergeResults(res, cfg.Output.EmitClauses)
	if err := writeReport(cmd, cfg, res, bag, withNotes, contextLines); err != nil {
		return err
	}
	res.Timings.Set(pipeline.StageReport, time.Since(reportStart))

	if showTimings {
		out := cmd.ErrOrStderr()
		printStageTimings(out, res.Timings)
		if err := printPhaseTimings(out, timer, cfg.Output.Format == "json"); err != nil {
			return err
		}
	}

	if bag.HasErrors() {
		dumpTraceRing(cmd)
		cmd.SilenceErrors = true
		return errDiagnostics
	}
	return nil
}

// mergeResults collects the diagnostics of every file into one bag. The
// computed directive strings are kept only when emitClauses is set.
func mergeResults(res *pipeline.Result, emitClauses bool) *diag.Bag {
	bag := diag.NewBag(0)
	for i := range res.Files {
		bag.Merge(res.Files[i].Bag)
	}
	if !emitClauses {
		bag.Filter(func(d diag.Diagnostic) bool {
			return d.Code != diag.OmpClausesComputed
		})
	}
	return bag
}

func writeReport(cmd *cobra.Command, cfg config.Config, res *pipeline.Result, bag *diag.Bag, withNotes bool, contextLines int8) error {
	out := cmd.OutOrStdout()
	colored := useColor(cfg.Output.Color)

	switch cfg.Output.Format {
	case "pretty":
		diagfmt.Pretty(out, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       colored,
			Context:     contextLines,
			PathMode:    diagfmt.PathModeAuto,
			ShowNotes:   withNotes,
			ShowPreview: true,
		})
		if bag.Len() > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%d files: %s\n", len(res.Files), diagfmt.Summary(bag))
	case "short":
		return diagfmt.Short(out, bag, res.FileSet, withNotes)
	case "json":
		return diagfmt.JSON(out, bag, res.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(out, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "ompscope",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown format: %s", cfg.Output.Format)
	}
	return nil
}
