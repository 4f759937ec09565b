package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"latex-builder/internal/logger"
	"latex-builder/internal/pdfa"
	"latex-builder/internal/report"
)

var pdfaCmd = &cobra.Command{
	Use:   "pdfa [pdf]",
	Short: "Convert a compiled PDF to PDF/A-3b",
	Long: `Run the fixed Ghostscript PDF/A-3b profile on a compiled PDF (default:
output/main.pdf) and validate the produced file. The archival output is
written to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPDFA,
}

func runPDFA(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(cmd, cfg)
	defer logger.Close()

	conv := pdfa.NewConverter(cfg, "")
	input := cfg.PDFPath()
	if len(args) > 0 && args[0] != "" {
		input = args[0]
		conv.SetInput(input)
	}

	p := report.NewPrinter(color.Output)
	if mb, ok := fileSizeMB(input); ok {
		p.Statusf("🔄 Starting PDF/A-3b conversion (input: %.2f MB)", mb)
	}

	result, err := conv.Convert(context.Background())
	if err != nil {
		p.ConversionFailed(err)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return err
	}

	p.Conversion(result)
	return nil
}
