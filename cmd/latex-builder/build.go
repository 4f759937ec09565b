// Package main implements the latex-builder CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latex-builder/internal/compiler"
	"latex-builder/internal/config"
	"latex-builder/internal/logger"
	"latex-builder/internal/pdfa"
	"latex-builder/internal/report"
	"latex-builder/internal/structure"
	"latex-builder/internal/texlog"
	"latex-builder/internal/types"
)

// runBuild drives the full run in the current directory: structure scan,
// supervised compilation, log analysis and the optional PDF/A conversion.
// Exit codes: 0 on success (a failed conversion does not revoke it), 1 on
// compilation failure, 130 on Ctrl+C.
func runBuild(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	pdfaRequested, err := cmd.Flags().GetBool("pdfa")
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(cmd, cfg)
	defer logger.Close()

	p := report.NewPrinter(color.Output)
	sup := compiler.New(cfg, "")
	watchInterrupts(p, sup)

	p.Header("LaTeX Main Document Compiler")

	p.Statusf("📊 Analyzing document structure...")
	doc := structure.NewScanner(".").Scan()
	p.EquationBreakdown(doc)
	p.StructureBreakdown(doc)

	start := time.Now()
	outcome := compileStage(p, cfg, sup)
	totalTime := time.Since(start)

	p.Warnf("Analyzing compilation output...")
	analysis := analyzeLog(p, cfg)

	success := outcome != nil && outcome.Success()
	p.Summary(&report.Summary{
		MainTexFile:  cfg.MainTexFile,
		TotalTime:    totalTime,
		Success:      success,
		Equations:    doc.TotalEquations(),
		Structure:    doc,
		WarningCount: analysis.WarningCount(),
		LayoutCount:  analysis.AuxiliaryCount(),
	})

	if success && pdfaRequested {
		convertStage(p, cfg)
	}

	if !success {
		_ = logger.Close()
		os.Exit(1)
	}
	return nil
}

// loadConfig builds the run profile, honoring the persistent --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	manager := config.NewConfigManager(path)
	if err := manager.Load(); err != nil {
		return nil, err
	}
	return manager.GetConfig(), nil
}

// initLogging opens the structured log under the output directory. A failed
// open leaves the no-op logger in place; console reporting is unaffected.
func initLogging(cmd *cobra.Command, cfg *config.Config) {
	lcfg := logger.DefaultConfig()
	lcfg.LogFilePath = cfg.BuilderLogPath()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lcfg.Level = logger.LevelDebug
		lcfg.EnableConsole = true
	}
	if err := logger.Init(lcfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: structured logging unavailable: %v\n", err)
	}
}

// watchInterrupts installs the Ctrl+C handler. With a compilation in flight it
// tears the process down and lets the compile path report the cancellation and
// exit; otherwise it exits 130 directly.
func watchInterrupts(p *report.Printer, sup *compiler.Supervisor) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		<-sigCh
		p.Blank()
		p.Warnf("Received interrupt signal (Ctrl+C)")
		if sup.Running() {
			p.Statusf("🔄 Terminating compilation process...")
			if sup.Cancel() {
				p.Successf("Process terminated")
			}
			return
		}
		p.Failf("Compilation cancelled by user")
		_ = logger.Close()
		os.Exit(130)
	}()
}

// compileStage runs the supervised latexmk invocation and prints the per-state
// status lines. A nil outcome means no process was ever spawned.
func compileStage(p *report.Printer, cfg *config.Config, sup *compiler.Supervisor) *types.CompilationOutcome {
	if _, err := os.Stat(cfg.MainTexFile); err != nil {
		p.Failf("%s not found in current directory", cfg.MainTexFile)
		return nil
	}

	p.Statusf("Starting compilation of %s...", cfg.MainTexFile)
	p.Statusf("💡 Press Ctrl+C to cancel compilation at any time")

	outcome, err := sup.Compile(context.Background())

	switch outcome.State {
	case types.StateCompleted:
		p.Successf("Successfully compiled %s", cfg.MainTexFile)
		if outcome.PDFCreated {
			p.Successf("PDF created: %s", cfg.PDFPath())
		} else {
			p.Warnf("PDF file not found in output directory")
		}
	case types.StateTimedOut:
		p.Failf("Timeout compiling %s", cfg.MainTexFile)
	case types.StateCancelled:
		p.Failf("Compilation cancelled by user")
		_ = logger.Close()
		os.Exit(130)
	case types.StateFailed:
		if outcome.ExitCode != 0 {
			p.Failf("Failed to compile %s", cfg.MainTexFile)
			if outcome.Stderr != "" {
				p.Statusf("Error output:")
				p.Raw(outcome.Stderr)
			}
		} else {
			p.Failf("Exception compiling %s: %v", cfg.MainTexFile, err)
		}
	}
	return outcome
}

// analyzeLog classifies the latexmk log and prints the diagnostics sections.
// A missing log is reported and mapped to zero counts, never a failure.
func analyzeLog(p *report.Printer, cfg *config.Config) *texlog.Analysis {
	analysis, err := texlog.AnalyzeFile(cfg.LogPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.Warnf("Log file not found - cannot analyze warnings")
		} else {
			p.Warnf("Error analyzing warnings: %v", err)
		}
		return &texlog.Analysis{}
	}
	p.Diagnostics(analysis)
	return analysis
}

// convertStage runs the PDF/A conversion. Failures are reported but never
// revoke the compilation result.
func convertStage(p *report.Printer, cfg *config.Config) {
	p.Statusf("Pre-Converting to PDF/A...")
	if mb, ok := fileSizeMB(cfg.PDFPath()); ok {
		p.Statusf("🔄 Starting PDF/A-3b conversion (input: %.2f MB)", mb)
	}

	result, err := pdfa.NewConverter(cfg, "").Convert(context.Background())
	if err != nil {
		p.ConversionFailed(err)
		p.Failf("PDF/A pre-conversion failed!")
		return
	}

	p.Conversion(result)
	p.Successf("PDF/A pre-conversion completed successfully!")
	p.Statusf("📄 For PDF/A-1/2/3a/b/u conversion -> https://www.pdfforge.org/online/en/pdf-to-pdfa")
}

func fileSizeMB(path string) (float64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	return float64(info.Size()) / (1024 * 1024), true
}
