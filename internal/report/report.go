// Package report renders the user-facing build output: timestamped status
// lines with colorized glyphs, the structure breakdown, the diagnostic
// listing and the final summary block.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"latex-builder/internal/pdfa"
	"latex-builder/internal/structure"
	"latex-builder/internal/texlog"
	"latex-builder/internal/types"
)

// Layout detail records are only listed when the total stays at or below
// this; larger sets are summarized per bucket.
const layoutDetailLimit = 5

// Records shown per bucket before the overflow line.
const recordsPerBucket = 2

// Printer writes timestamped lines to one destination. Status glyphs are
// colorized; everything else is plain text.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer. Pass color.Output for a colorized terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) line(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%s] %s\n", time.Now().Format("15:04:05.000"), msg)
}

// Statusf prints a timestamped line without a glyph.
func (p *Printer) Statusf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

// Successf prints a timestamped line behind a green check.
func (p *Printer) Successf(format string, args ...any) {
	p.line(color.GreenString("✓") + " " + fmt.Sprintf(format, args...))
}

// Failf prints a timestamped line behind a red cross.
func (p *Printer) Failf(format string, args ...any) {
	p.line(color.RedString("✗") + " " + fmt.Sprintf(format, args...))
}

// Warnf prints a timestamped line behind a yellow warning sign.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(color.YellowString("⚠") + " " + fmt.Sprintf(format, args...))
}

// Skipf prints a timestamped line behind a blue skip marker.
func (p *Printer) Skipf(format string, args ...any) {
	p.line(color.BlueString("⏭") + " " + fmt.Sprintf(format, args...))
}

// Raw writes text without timestamp or glyph, for captured tool output.
func (p *Printer) Raw(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, text)
}

// Blank prints an empty separator line.
func (p *Printer) Blank() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

// Header prints the program banner and ruler.
func (p *Printer) Header(title string) {
	p.Statusf("%s", pterm.Bold.Sprint(title))
	p.Rule()
}

// Rule prints the block separator ruler.
func (p *Printer) Rule() {
	p.Statusf("%s", strings.Repeat("=", 40))
}

// EquationBreakdown lists the non-zero equation environment counts.
func (p *Printer) EquationBreakdown(r *structure.Report) {
	p.Statusf("📊 Equation breakdown:")
	for _, env := range structure.EquationEnvs {
		if n := r.Equations[env]; n > 0 {
			p.Statusf("   %s: %d", env, n)
		}
	}
}

// StructureBreakdown lists figures, tables, plots and graphics, each section
// only when it has something to say.
func (p *Printer) StructureBreakdown(r *structure.Report) {
	p.Statusf("📊 Figures & Tables breakdown:")

	if r.TotalFigures() > 0 {
		if r.FiguresWithSubfigures > 0 {
			p.Statusf("   📊 %d figures containing %d subfigures", r.FiguresWithSubfigures, r.TotalSubfigures)
		}
		if r.FiguresWithoutSubfigures > 0 {
			p.Statusf("   📄 %d standalone figures", r.FiguresWithoutSubfigures)
		}
		p.Statusf("   → Total figures: %d", r.TotalFigures())
	}

	if r.TotalTables() > 0 {
		if r.TablesWithSubtables > 0 {
			p.Statusf("   📊 %d tables containing %d subtables", r.TablesWithSubtables, r.TotalSubtables)
		}
		if r.TablesWithoutSubtables > 0 {
			p.Statusf("   📋 %d standalone tables", r.TablesWithoutSubtables)
		}
		p.Statusf("   → Total tables: %d", r.TotalTables())
	}

	if r.TotalCustomPlots() > 0 {
		if r.PlotsWithSubplots > 0 {
			p.Statusf("   📈 %d plots containing %d subplots", r.PlotsWithSubplots, r.TotalSubplots)
		}
		if r.PlotsWithoutSubplots > 0 {
			p.Statusf("   📊 %d standalone plots", r.PlotsWithoutSubplots)
		}
		p.Statusf("   → Total custom plots: %d", r.TotalCustomPlots())
	}

	if r.TikzPicturesWithPlots > 0 || r.PGFPlotsWithPlots > 0 {
		if r.TikzPicturesWithPlots > 0 {
			p.Statusf("   🎨 %d TikZ pictures with plot commands", r.TikzPicturesWithPlots)
		}
		if r.PGFPlotsWithPlots > 0 {
			p.Statusf("   📊 %d PGFPlots containing %d \\addplot commands", r.PGFPlotsWithPlots, r.TotalPlotCommands)
		}
	}
	if r.TikzPicturesWithoutPlots > 0 || r.PGFPlotsWithoutPlots > 0 {
		if r.TikzPicturesWithoutPlots > 0 {
			p.Statusf("   🎨 %d TikZ pictures (diagrams)", r.TikzPicturesWithoutPlots)
		}
		if r.PGFPlotsWithoutPlots > 0 {
			p.Statusf("   📊 %d empty PGFPlots", r.PGFPlotsWithoutPlots)
		}
	}
	if r.TotalPlotContainers() > 0 {
		p.Statusf("   → Total plot containers: %d", r.TotalPlotContainers())
	}

	if r.StandaloneGraphics > 0 {
		p.Statusf("   🖼️  %d graphics commands (\\includegraphics)", r.StandaloneGraphics)
	}
}

// Diagnostics prints the warning and layout sections of one log analysis.
func (p *Printer) Diagnostics(a *texlog.Analysis) {
	if a.WarningCount() > 0 {
		p.Warnf("Found %d warnings:", a.WarningCount())

		groups := texlog.GroupWarnings(a.Warnings)
		for _, g := range groups {
			p.Statusf("   %s: %d", g.Name, len(g.Records))
		}

		p.Statusf("📋 Warning details (first %d per type):", recordsPerBucket)
		for _, g := range groups {
			p.Blank()
			p.Statusf("   %s:", g.Name)
			for i, rec := range g.Records {
				if i >= recordsPerBucket {
					break
				}
				p.Statusf("     • %s", rec.Text)
			}
			if len(g.Records) > recordsPerBucket {
				p.Statusf("     ... and %d more", len(g.Records)-recordsPerBucket)
			}
		}
	} else {
		p.Successf("No warnings found!")
	}

	if a.AuxiliaryCount() > 0 {
		p.Statusf("ℹ️  Found %d layout notifications:", a.AuxiliaryCount())

		groups := texlog.GroupAuxiliary(a.Auxiliary)
		for _, g := range groups {
			p.Statusf("   %s: %d", g.Name, len(g.Records))
		}

		if a.AuxiliaryCount() <= layoutDetailLimit {
			p.Blank()
			p.Statusf("📐 Layout details:")
			for _, g := range groups {
				for i, rec := range g.Records {
					if i >= recordsPerBucket {
						break
					}
					p.Statusf("     • %s...", truncate(rec.Text, 80))
				}
			}
		}
	} else {
		p.Blank()
		p.Successf("No layout issues found!")
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Summary is everything the final block prints.
type Summary struct {
	MainTexFile  string
	TotalTime    time.Duration
	Success      bool
	Equations    int
	Structure    *structure.Report
	WarningCount int
	LayoutCount  int
}

// Summary prints the closing block: identity, timing, non-zero structure
// totals, diagnostic counts and the qualified success or failure line.
func (p *Printer) Summary(s *Summary) {
	p.Rule()
	p.Statusf("COMPILATION SUMMARY")
	p.Rule()
	p.Statusf("File: %s", s.MainTexFile)
	p.Statusf("Total time: %.2f seconds", s.TotalTime.Seconds())

	if s.Success && s.Equations > 0 {
		p.Statusf("Total equations: %d", s.Equations)
	}

	if r := s.Structure; r != nil {
		if r.TotalFigures() > 0 {
			p.Statusf("Total figures: %d", r.TotalFigures())
			if r.FiguresWithSubfigures > 0 {
				p.Statusf("  • Figures with subfigures: %d (%d subfigures)", r.FiguresWithSubfigures, r.TotalSubfigures)
			}
			if r.FiguresWithoutSubfigures > 0 {
				p.Statusf("  • Standalone figures: %d", r.FiguresWithoutSubfigures)
			}
		}
		if r.TotalTables() > 0 {
			p.Statusf("Total tables: %d", r.TotalTables())
			if r.TablesWithSubtables > 0 {
				p.Statusf("  • Tables with subtables: %d (%d subtables)", r.TablesWithSubtables, r.TotalSubtables)
			}
			if r.TablesWithoutSubtables > 0 {
				p.Statusf("  • Standalone tables: %d", r.TablesWithoutSubtables)
			}
		}
		if r.TotalCustomPlots() > 0 {
			p.Statusf("Total custom plots: %d", r.TotalCustomPlots())
			if r.PlotsWithSubplots > 0 {
				p.Statusf("  • Plots with subplots: %d (%d subplots)", r.PlotsWithSubplots, r.TotalSubplots)
			}
			if r.PlotsWithoutSubplots > 0 {
				p.Statusf("  • Standalone plots: %d", r.PlotsWithoutSubplots)
			}
		}
		if r.TotalPlotContainers() > 0 {
			p.Statusf("Total plot containers: %d", r.TotalPlotContainers())
			if r.TikzPGFWithPlots() > 0 {
				p.Statusf("  • TikZ/PGF plots: %d", r.TikzPGFWithPlots())
			}
		}
		if r.StandaloneGraphics > 0 {
			p.Statusf("Total graphics commands: %d", r.StandaloneGraphics)
		}
	}

	p.Statusf("Warnings: %d", s.WarningCount)
	p.Statusf("Layout notifications: %d", s.LayoutCount)

	if s.Success {
		switch {
		case s.WarningCount > 0:
			p.Successf("Compilation completed successfully (with warnings)")
		case s.LayoutCount > 0:
			p.Successf("Compilation completed successfully (with layout notifications)")
		default:
			p.Successf("Compilation completed successfully!")
		}
	} else {
		p.Failf("Compilation failed!")
	}
}

// Conversion prints the outcome of a finished PDF/A conversion, including
// sizes, the ratio, validation caveats and the verapdf hint.
func (p *Printer) Conversion(result *pdfa.Result) {
	p.Successf("Conversion complete: %.2f MB → %.2f MB (%.3fx)",
		result.InputSizeMB, result.OutputSizeMB, result.SizeRatio)
	if result.SizeIncreased {
		p.Warnf("File size increased more than expected")
	} else {
		p.Successf("File size preserved successfully")
	}
	for _, caveat := range result.Caveats {
		p.Warnf("%s", caveat)
	}
	p.Statusf("📄 PDF/A-3b file: %s", result.OutputPath)
	p.Statusf("💡 Validate: verapdf --flavour 3b %s", result.OutputPath)
}

// ConversionFailed prints the failure line matching the error kind.
func (p *Printer) ConversionFailed(err error) {
	switch types.CodeOf(err) {
	case types.ErrToolNotFound:
		p.Failf("Tool not found: %v", err)
	case types.ErrMissingInput:
		p.Failf("%v", err)
	default:
		p.Failf("Conversion failed: %v", err)
	}
}
