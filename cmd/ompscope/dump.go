package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ompscope/internal/ast"
	"ompscope/internal/snapshot"
	"ompscope/internal/source"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <snapshot>",
	Short: "Print the statement tree of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("out", "", "re-encode the decoded tree into this snapshot file")
}

func runDump(cmd *cobra.Command, args []string) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	prog, err := snapshot.ReadFile(source.NewFileSet(), args[0])
	if err != nil {
		return err
	}

	printer := ast.NewPrinter(prog.Builder, prog.Symbols)
	out := cmd.OutOrStdout()
	for _, routine := range prog.Routines {
		if err := printer.Dump(out, routine); err != nil {
			return err
		}
	}

	if outPath != "" {
		if err := snapshot.WriteFile(outPath, prog); err != nil {
			return fmt.Errorf("failed to write %s: %w", outPath, err)
		}
	}
	return nil
}
