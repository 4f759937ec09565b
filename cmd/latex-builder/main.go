package main

import (
	"os"

	"github.com/spf13/cobra"

	"latex-builder/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "latex-builder",
	Short: "Compile a LaTeX document and report on the result",
	Long: `latex-builder compiles the document rooted at main.tex with latexmk,
scans the source tree for structural statistics, classifies the compilation
log into warnings and layout notices, and can convert the compiled PDF to
PDF/A-3b with Ghostscript.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

// main wires the command tree and executes it. The full build run owns its
// exit codes (0/1/130); everything else follows the usual cobra convention.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(logscanCmd)
	rootCmd.AddCommand(pdfaCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a JSON build profile override")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.Flags().Bool("pdfa", false, "convert to PDF/A-3b after successful compilation")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
