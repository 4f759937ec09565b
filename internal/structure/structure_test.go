package structure

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTexFile writes a fixture source file under dir.
func writeTexFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestScanEquationCounts(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "main.tex", `
\begin{equation}
  a = b
\end{equation}
\begin{equation*}
  c = d
\end{equation*}
\begin{equation}
  e = f
\end{equation}
\begin{align}
  g &= h
\end{align}
\begin{align*}
  i &= j
\end{align*}
\begin{gather*}
  k
\end{gather*}
\begin{multline}
  l
\end{multline}
`)

	report := NewScanner(dir).Scan()

	tests := []struct {
		env      string
		expected int
	}{
		{"equation", 2},
		{"equation*", 1},
		{"align", 1},
		{"align*", 1},
		{"gather", 0},
		{"gather*", 1},
		{"multline", 1},
		{"multline*", 0},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := report.Equations[tt.env]; got != tt.expected {
				t.Errorf("Equations[%s] = %d, want %d", tt.env, got, tt.expected)
			}
		})
	}

	if got := report.TotalEquations(); got != 7 {
		t.Errorf("TotalEquations = %d, want 7", got)
	}
}

func TestScanStarredCountsAreDisjoint(t *testing.T) {
	dir := t.TempDir()
	// Only starred spellings: the non-starred counts must stay zero.
	writeTexFile(t, dir, "starred.tex", `
\begin{equation*}x\end{equation*}
\begin{align*}y\end{align*}
`)

	report := NewScanner(dir).Scan()

	if report.Equations["equation"] != 0 {
		t.Errorf("non-starred equation count = %d, want 0", report.Equations["equation"])
	}
	if report.Equations["equation*"] != 1 {
		t.Errorf("starred equation count = %d, want 1", report.Equations["equation*"])
	}
	if report.Equations["align"] != 0 {
		t.Errorf("non-starred align count = %d, want 0", report.Equations["align"])
	}
	if report.Equations["align*"] != 1 {
		t.Errorf("starred align count = %d, want 1", report.Equations["align*"])
	}
}

func TestScanFigureSubfigureScenario(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "chapters/one.tex", `
\begin{figure}
  \begin{subfigure}{0.5\textwidth}a\end{subfigure}
  \begin{subfigure}{0.5\textwidth}b\end{subfigure}
\end{figure}
`)
	writeTexFile(t, dir, "chapters/two.tex", `
\begin{figure}
  \includegraphics{plain.png}
\end{figure}
`)

	report := NewScanner(dir).Scan()

	if report.FiguresWithSubfigures != 1 {
		t.Errorf("FiguresWithSubfigures = %d, want 1", report.FiguresWithSubfigures)
	}
	if report.TotalSubfigures != 2 {
		t.Errorf("TotalSubfigures = %d, want 2", report.TotalSubfigures)
	}
	if report.FiguresWithoutSubfigures != 1 {
		t.Errorf("FiguresWithoutSubfigures = %d, want 1", report.FiguresWithoutSubfigures)
	}
	if report.TotalFigures() != 2 {
		t.Errorf("TotalFigures = %d, want 2", report.TotalFigures())
	}
}

func TestScanSiblingContainersNotMerged(t *testing.T) {
	dir := t.TempDir()
	// A greedy span match would swallow both figures into one.
	writeTexFile(t, dir, "main.tex", `
\begin{figure}first\end{figure}
text between
\begin{figure}second\end{figure}
`)

	report := NewScanner(dir).Scan()

	if report.TotalFigures() != 2 {
		t.Errorf("TotalFigures = %d, want 2", report.TotalFigures())
	}
	if report.FiguresWithoutSubfigures != 2 {
		t.Errorf("FiguresWithoutSubfigures = %d, want 2", report.FiguresWithoutSubfigures)
	}
}

func TestScanStarredContainers(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "main.tex", `
\begin{figure*}
  \begin{subfigure}{0.3\textwidth}a\end{subfigure}
\end{figure*}
\begin{table*}
  wide table
\end{table*}
\begin{table}
  \begin{subtable}{0.5\textwidth}x\end{subtable}
  \begin{subtable}{0.5\textwidth}y\end{subtable}
  \begin{subtable}{0.5\textwidth}z\end{subtable}
\end{table}
`)

	report := NewScanner(dir).Scan()

	if report.FiguresWithSubfigures != 1 {
		t.Errorf("FiguresWithSubfigures = %d, want 1", report.FiguresWithSubfigures)
	}
	if report.TotalSubfigures != 1 {
		t.Errorf("TotalSubfigures = %d, want 1", report.TotalSubfigures)
	}
	if report.TablesWithSubtables != 1 {
		t.Errorf("TablesWithSubtables = %d, want 1", report.TablesWithSubtables)
	}
	if report.TablesWithoutSubtables != 1 {
		t.Errorf("TablesWithoutSubtables = %d, want 1", report.TablesWithoutSubtables)
	}
	if report.TotalSubtables != 3 {
		t.Errorf("TotalSubtables = %d, want 3", report.TotalSubtables)
	}
	if report.TotalTables() != 2 {
		t.Errorf("TotalTables = %d, want 2", report.TotalTables())
	}
}

func TestScanCustomPlotEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "main.tex", `
\begin{plot}
  \begin{subplot}a\end{subplot}
  \begin{subplot}b\end{subplot}
\end{plot}
\begin{plot}
  bare
\end{plot}
`)

	report := NewScanner(dir).Scan()

	if report.PlotsWithSubplots != 1 {
		t.Errorf("PlotsWithSubplots = %d, want 1", report.PlotsWithSubplots)
	}
	if report.PlotsWithoutSubplots != 1 {
		t.Errorf("PlotsWithoutSubplots = %d, want 1", report.PlotsWithoutSubplots)
	}
	if report.TotalSubplots != 2 {
		t.Errorf("TotalSubplots = %d, want 2", report.TotalSubplots)
	}
	if report.TotalCustomPlots() != 2 {
		t.Errorf("TotalCustomPlots = %d, want 2", report.TotalCustomPlots())
	}
}

func TestScanTikzPlotCommands(t *testing.T) {
	tests := []struct {
		name             string
		content          string
		withPlots        int
		withoutPlots     int
		expectedCommands int
	}{
		{
			name:             "addplot counts",
			content:          `\begin{tikzpicture}\addplot {x};\end{tikzpicture}`,
			withPlots:        1,
			expectedCommands: 1,
		},
		{
			name:             "plot command counts",
			content:          `\begin{tikzpicture}\plot (0,0) -- (1,1);\end{tikzpicture}`,
			withPlots:        1,
			expectedCommands: 1,
		},
		{
			name:         "plots command is excluded",
			content:      `\begin{tikzpicture}\plots{ignored}\end{tikzpicture}`,
			withoutPlots: 1,
		},
		{
			name:             "addplots still counts via prefix",
			content:          `\begin{tikzpicture}\addplots{x}\end{tikzpicture}`,
			withPlots:        1,
			expectedCommands: 1,
		},
		{
			name:         "diagram without plots",
			content:      `\begin{tikzpicture}\draw (0,0) -- (1,1);\end{tikzpicture}`,
			withoutPlots: 1,
		},
		{
			name:             "mixed commands accumulate",
			content:          `\begin{tikzpicture}\addplot {x};\plot (0,0);\plots{no}\end{tikzpicture}`,
			withPlots:        1,
			expectedCommands: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTexFile(t, dir, "main.tex", tt.content)

			report := NewScanner(dir).Scan()

			if report.TikzPicturesWithPlots != tt.withPlots {
				t.Errorf("TikzPicturesWithPlots = %d, want %d", report.TikzPicturesWithPlots, tt.withPlots)
			}
			if report.TikzPicturesWithoutPlots != tt.withoutPlots {
				t.Errorf("TikzPicturesWithoutPlots = %d, want %d", report.TikzPicturesWithoutPlots, tt.withoutPlots)
			}
			if report.TotalPlotCommands != tt.expectedCommands {
				t.Errorf("TotalPlotCommands = %d, want %d", report.TotalPlotCommands, tt.expectedCommands)
			}
		})
	}
}

func TestScanAxisBlocks(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "main.tex", `
\begin{axis}
  \addplot {x};
  \addplot {x^2};
  \addplot {x^3};
\end{axis}
\begin{axis}
  only styling here
\end{axis}
`)

	report := NewScanner(dir).Scan()

	if report.PGFPlotsWithPlots != 1 {
		t.Errorf("PGFPlotsWithPlots = %d, want 1", report.PGFPlotsWithPlots)
	}
	if report.PGFPlotsWithoutPlots != 1 {
		t.Errorf("PGFPlotsWithoutPlots = %d, want 1", report.PGFPlotsWithoutPlots)
	}
	if report.TotalPlotCommands != 3 {
		t.Errorf("TotalPlotCommands = %d, want 3", report.TotalPlotCommands)
	}
	if report.TotalPlotContainers() != 2 {
		t.Errorf("TotalPlotContainers = %d, want 2", report.TotalPlotContainers())
	}
}

func TestScanIncludeGraphics(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "main.tex", `
\includegraphics[width=\textwidth]{figures/one.png}
\includegraphics{two.pdf}
inside a figure: \begin{figure}\includegraphics[scale=0.5]{three.jpg}\end{figure}
`)

	report := NewScanner(dir).Scan()

	// Graphics are counted at file level, container or not.
	if report.StandaloneGraphics != 3 {
		t.Errorf("StandaloneGraphics = %d, want 3", report.StandaloneGraphics)
	}
}

func TestScanWithSubelementSumsMatchTotals(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "a.tex", `
\begin{figure}\begin{subfigure}x\end{subfigure}\end{figure}
\begin{figure}plain\end{figure}
\begin{figure*}plain wide\end{figure*}
\begin{table}\begin{subtable}y\end{subtable}\end{table}
`)

	report := NewScanner(dir).Scan()

	if got := report.FiguresWithSubfigures + report.FiguresWithoutSubfigures; got != report.TotalFigures() {
		t.Errorf("figure tallies sum to %d, total says %d", got, report.TotalFigures())
	}
	if report.TotalFigures() != 3 {
		t.Errorf("TotalFigures = %d, want 3", report.TotalFigures())
	}
	if got := report.TablesWithSubtables + report.TablesWithoutSubtables; got != report.TotalTables() {
		t.Errorf("table tallies sum to %d, total says %d", got, report.TotalTables())
	}
}

func TestScanSkipsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeTexFile(t, dir, "good.tex", `\begin{equation}x\end{equation}`)

	// A dangling symlink fails on read and must not abort the scan.
	if err := os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, "bad.tex")); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	report := NewScanner(dir).Scan()

	if report.FilesScanned != 1 {
		t.Errorf("FilesScanned = %d, want 1", report.FilesScanned)
	}
	if report.FilesSkipped != 1 {
		t.Errorf("FilesSkipped = %d, want 1", report.FilesSkipped)
	}
	if report.Equations["equation"] != 1 {
		t.Errorf("good file not counted: equation = %d, want 1", report.Equations["equation"])
	}
}

func TestScanInvalidBytesSubstituted(t *testing.T) {
	dir := t.TempDir()
	content := append([]byte(`\begin{equation}x\end{equation}`), 0xFF, 0xFE, 0xFF)
	if err := os.WriteFile(filepath.Join(dir, "main.tex"), content, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	report := NewScanner(dir).Scan()

	if report.FilesSkipped != 0 {
		t.Errorf("FilesSkipped = %d, want 0", report.FilesSkipped)
	}
	if report.Equations["equation"] != 1 {
		t.Errorf("equation = %d, want 1", report.Equations["equation"])
	}
}

func TestScanEmptyTree(t *testing.T) {
	report := NewScanner(t.TempDir()).Scan()

	if report.FilesScanned != 0 {
		t.Errorf("FilesScanned = %d, want 0", report.FilesScanned)
	}
	if report.TotalEquations() != 0 {
		t.Errorf("TotalEquations = %d, want 0", report.TotalEquations())
	}
	if report.TotalFigures() != 0 || report.TotalTables() != 0 || report.TotalPlotContainers() != 0 {
		t.Error("expected an all-zero report for an empty tree")
	}
	if report.StandaloneGraphics != 0 {
		t.Errorf("StandaloneGraphics = %d, want 0", report.StandaloneGraphics)
	}
}

func TestScanMissingRoot(t *testing.T) {
	report := NewScanner(filepath.Join(t.TempDir(), "nope")).Scan()

	if report.TotalEquations() != 0 || report.FilesScanned != 0 {
		t.Error("expected an all-zero report for a missing root")
	}
}
