package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latex-builder/internal/report"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the build output directory",
	Long:  "Remove the output directory holding the compiled PDF, the latexmk log and all build artifacts.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := report.NewPrinter(color.Output)

	info, err := os.Stat(cfg.OutputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			p.Skipf("Output directory not found - nothing to clean")
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", cfg.OutputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", cfg.OutputDir)
	}

	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cfg.OutputDir, err)
	}
	p.Successf("Removed %s", cfg.OutputDir)
	return nil
}
