// Package structure derives structural statistics (equations, figures, tables,
// plot blocks, graphics inclusions) from a tree of LaTeX sources.
//
// Counting is a flat regex heuristic, not a parser: sibling containers are kept
// apart by non-greedy span matching, but nested same-kind containers and
// malformed markup are outside the contract.
package structure

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"latex-builder/internal/logger"
)

// EquationEnvs lists the counted equation environment labels, in display order.
// Starred and non-starred spellings are counted disjointly.
var EquationEnvs = []string{
	"equation", "equation*",
	"align", "align*",
	"gather", "gather*",
	"multline", "multline*",
}

// Report holds the accumulated counts of one source-tree scan. It is built
// once per scan and not mutated afterwards.
type Report struct {
	Equations map[string]int

	FiguresWithSubfigures    int
	FiguresWithoutSubfigures int
	TotalSubfigures          int

	TablesWithSubtables    int
	TablesWithoutSubtables int
	TotalSubtables         int

	PlotsWithSubplots    int
	PlotsWithoutSubplots int
	TotalSubplots        int

	TikzPicturesWithPlots    int
	TikzPicturesWithoutPlots int
	PGFPlotsWithPlots        int
	PGFPlotsWithoutPlots     int
	TotalPlotCommands        int

	StandaloneGraphics int

	FilesScanned int
	FilesSkipped int
}

// TotalEquations returns the sum over all equation environments.
func (r *Report) TotalEquations() int {
	total := 0
	for _, n := range r.Equations {
		total += n
	}
	return total
}

// TotalFigures returns the figure container count, starred included.
func (r *Report) TotalFigures() int {
	return r.FiguresWithSubfigures + r.FiguresWithoutSubfigures
}

// TotalTables returns the table container count, starred included.
func (r *Report) TotalTables() int {
	return r.TablesWithSubtables + r.TablesWithoutSubtables
}

// TotalCustomPlots returns the custom plot container count.
func (r *Report) TotalCustomPlots() int {
	return r.PlotsWithSubplots + r.PlotsWithoutSubplots
}

// TikzPGFWithPlots returns how many TikZ pictures and axis blocks carry plot commands.
func (r *Report) TikzPGFWithPlots() int {
	return r.TikzPicturesWithPlots + r.PGFPlotsWithPlots
}

// TotalPlotContainers returns every plot-bearing container kind: TikZ pictures,
// axis blocks and custom plot environments.
func (r *Report) TotalPlotContainers() int {
	return r.TikzPicturesWithPlots + r.TikzPicturesWithoutPlots +
		r.PGFPlotsWithPlots + r.PGFPlotsWithoutPlots +
		r.TotalCustomPlots()
}

var (
	figureRe     = regexp.MustCompile(`(?s)\\begin\{figure\}(.*?)\\end\{figure\}`)
	figureStarRe = regexp.MustCompile(`(?s)\\begin\{figure\*\}(.*?)\\end\{figure\*\}`)
	tableRe      = regexp.MustCompile(`(?s)\\begin\{table\}(.*?)\\end\{table\}`)
	tableStarRe  = regexp.MustCompile(`(?s)\\begin\{table\*\}(.*?)\\end\{table\*\}`)
	plotRe       = regexp.MustCompile(`(?s)\\begin\{plot\}(.*?)\\end\{plot\}`)
	tikzRe       = regexp.MustCompile(`(?s)\\begin\{tikzpicture\}(.*?)\\end\{tikzpicture\}`)
	axisRe       = regexp.MustCompile(`(?s)\\begin\{axis\}(.*?)\\end\{axis\}`)

	subfigureRe = regexp.MustCompile(`\\begin\{subfigure\}`)
	subtableRe  = regexp.MustCompile(`\\begin\{subtable\}`)
	subplotRe   = regexp.MustCompile(`\\begin\{subplot\}`)

	addplotRe = regexp.MustCompile(`\\addplot`)
	// RE2 has no lookahead, so \plot(?!s) is computed as "all \plot or \plots
	// occurrences" minus the \plots occurrences.
	plotCmdRe  = regexp.MustCompile(`\\plots?`)
	plotsCmdRe = regexp.MustCompile(`\\plots`)

	includeGraphicsRe = regexp.MustCompile(`\\includegraphics(?:\[[^\]]*\])?\{[^}]+\}`)

	// Equation begin-markers. The literal closing brace keeps the non-starred
	// pattern from matching the starred spelling, so the two counts stay
	// disjoint and exhaustive over the label family.
	equationRes = buildEquationRes()
)

func buildEquationRes() map[string]*regexp.Regexp {
	res := make(map[string]*regexp.Regexp, len(EquationEnvs))
	for _, env := range EquationEnvs {
		res[env] = regexp.MustCompile(`\\begin\{` + regexp.QuoteMeta(env) + `\}`)
	}
	return res
}

// Scanner scans a directory tree for .tex sources.
type Scanner struct {
	root string
}

// NewScanner creates a Scanner rooted at the given directory.
func NewScanner(root string) *Scanner {
	if root == "" {
		root = "."
	}
	return &Scanner{root: root}
}

// Scan walks the tree and accumulates counts over every .tex file. A file that
// cannot be read or decoded is skipped and contributes zero to all counts; the
// scan itself never fails. An empty tree yields an all-zero report.
func (s *Scanner) Scan() *Report {
	report := &Report{Equations: make(map[string]int, len(EquationEnvs))}
	for _, env := range EquationEnvs {
		report.Equations[env] = 0
	}

	logger.Debug("scanning source tree", logger.String("root", s.root))

	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Debug("skipping unreadable entry", logger.String("path", path), logger.Err(err))
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tex") {
			return nil
		}

		content, err := readTexFile(path)
		if err != nil {
			report.FilesSkipped++
			logger.Warn("skipping unreadable source file", logger.String("path", path), logger.Err(err))
			return nil
		}

		scanContent(content, report)
		report.FilesScanned++
		return nil
	})
	if walkErr != nil {
		logger.Warn("source tree walk aborted", logger.String("root", s.root), logger.Err(walkErr))
	}

	logger.Info("source tree scanned",
		logger.String("root", s.root),
		logger.Int("files", report.FilesScanned),
		logger.Int("skipped", report.FilesSkipped))
	return report
}

// scanContent accumulates one file's counts into the report.
func scanContent(content string, r *Report) {
	for _, env := range EquationEnvs {
		r.Equations[env] += len(equationRes[env].FindAllString(content, -1))
	}

	for _, re := range []*regexp.Regexp{figureRe, figureStarRe} {
		with, without, subs := scanContainers(content, re, subfigureRe)
		r.FiguresWithSubfigures += with
		r.FiguresWithoutSubfigures += without
		r.TotalSubfigures += subs
	}

	for _, re := range []*regexp.Regexp{tableRe, tableStarRe} {
		with, without, subs := scanContainers(content, re, subtableRe)
		r.TablesWithSubtables += with
		r.TablesWithoutSubtables += without
		r.TotalSubtables += subs
	}

	with, without, subs := scanContainers(content, plotRe, subplotRe)
	r.PlotsWithSubplots += with
	r.PlotsWithoutSubplots += without
	r.TotalSubplots += subs

	for _, span := range spansOf(content, tikzRe) {
		n := countPlotCommands(span)
		if n > 0 {
			r.TikzPicturesWithPlots++
			r.TotalPlotCommands += n
		} else {
			r.TikzPicturesWithoutPlots++
		}
	}

	for _, span := range spansOf(content, axisRe) {
		n := len(addplotRe.FindAllString(span, -1))
		if n > 0 {
			r.PGFPlotsWithPlots++
			r.TotalPlotCommands += n
		} else {
			r.PGFPlotsWithoutPlots++
		}
	}

	r.StandaloneGraphics += len(includeGraphicsRe.FindAllString(content, -1))
}

// scanContainers counts container blocks of one kind and the sub-elements
// nested within each block's span.
func scanContainers(content string, containerRe, subRe *regexp.Regexp) (with, without, subs int) {
	for _, span := range spansOf(content, containerRe) {
		n := len(subRe.FindAllString(span, -1))
		if n > 0 {
			with++
			subs += n
		} else {
			without++
		}
	}
	return with, without, subs
}

// spansOf returns the inner text of every match of a single-group span regex.
func spansOf(content string, re *regexp.Regexp) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	spans := make([]string, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, m[1])
	}
	return spans
}

// countPlotCommands counts \addplot plus \plot occurrences, excluding the
// unrelated \plots command.
func countPlotCommands(span string) int {
	addplots := len(addplotRe.FindAllString(span, -1))
	plotLike := len(plotCmdRe.FindAllString(span, -1))
	plurals := len(plotsCmdRe.FindAllString(span, -1))
	return addplots + plotLike - plurals
}

// readTexFile reads a source file, substituting undecodable bytes instead of
// failing on them.
func readTexFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// BOM-marked UTF-16 sources occur in the wild; decode them properly.
	if len(data) >= 2 && (bytes.Equal(data[:2], []byte{0xFF, 0xFE}) || bytes.Equal(data[:2], []byte{0xFE, 0xFF})) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(data)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}
	if len(data) >= 3 && bytes.Equal(data[:3], []byte{0xEF, 0xBB, 0xBF}) {
		data = data[3:]
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	// Invalid byte sequences are replaced with U+FFFD by the decoder.
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
