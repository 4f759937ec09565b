package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latex-builder/internal/report"
	"latex-builder/internal/structure"
)

var structureCmd = &cobra.Command{
	Use:   "structure [dir]",
	Short: "Scan a source tree and report document structure counts",
	Long: `Scan all .tex files under the given directory (default: the current one)
and report equation, figure, table, plot and graphics counts without
compiling anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStructure,
}

func runStructure(_ *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}

	p := report.NewPrinter(color.Output)
	p.Statusf("📊 Analyzing document structure...")

	doc := structure.NewScanner(root).Scan()
	if doc.FilesScanned == 0 {
		p.Warnf("No .tex files found under %s", root)
		return nil
	}

	p.EquationBreakdown(doc)
	p.StructureBreakdown(doc)
	p.Statusf("Total equations: %d", doc.TotalEquations())
	if doc.FilesSkipped > 0 {
		p.Skipf("Skipped %d unreadable files", doc.FilesSkipped)
	}
	return nil
}
