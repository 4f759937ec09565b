package main

import (
	"errors"
	"io/fs"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latex-builder/internal/report"
	"latex-builder/internal/texlog"
)

var logscanCmd = &cobra.Command{
	Use:   "logscan [logfile]",
	Short: "Analyze an existing compilation log",
	Long: `Classify the lines of a latexmk log (default: output/main.log) into
warnings and layout notifications and print the same diagnostics sections
the full run shows.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogscan,
}

func runLogscan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logPath := cfg.LogPath()
	if len(args) > 0 && args[0] != "" {
		logPath = args[0]
	}

	p := report.NewPrinter(color.Output)

	analysis, err := texlog.AnalyzeFile(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.Warnf("Log file not found - cannot analyze warnings")
			return nil
		}
		return err
	}

	p.Diagnostics(analysis)
	p.Statusf("Warnings: %d", analysis.WarningCount())
	p.Statusf("Layout notifications: %d", analysis.AuxiliaryCount())
	return nil
}
