// Package pdfa converts the compiled PDF into PDF/A-3b with Ghostscript and
// checks the result.
package pdfa

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	ledongthucpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"latex-builder/internal/config"
	"latex-builder/internal/logger"
	"latex-builder/internal/types"
)

// A size ratio above this marks the conversion as unexpectedly large.
const sizeIncreaseThreshold = 1.2

// Result describes one conversion. Caveats record validation findings on the
// produced file; they never fail the conversion itself.
type Result struct {
	InputPath     string
	OutputPath    string
	InputSizeMB   float64
	OutputSizeMB  float64
	SizeRatio     float64
	SizeIncreased bool
	Caveats       []string
}

// Converter runs the fixed Ghostscript PDF/A-3b profile on the compiled PDF.
type Converter struct {
	cfg     *config.Config
	workDir string
	input   string
	conf    *model.Configuration
}

// NewConverter creates a converter rooted at workDir. An empty workDir means
// the current directory.
func NewConverter(cfg *config.Config, workDir string) *Converter {
	if workDir == "" {
		workDir = "."
	}
	return &Converter{
		cfg:     cfg,
		workDir: workDir,
		conf:    model.NewDefaultConfiguration(),
	}
}

// SetInput overrides the conversion input with a path relative to the work
// directory. The default is the compiled artifact under the output directory.
func (c *Converter) SetInput(path string) {
	c.input = path
}

func (c *Converter) inputRel() string {
	if c.input != "" {
		return c.input
	}
	return c.cfg.PDFPath()
}

// gsArgs is the fixed conversion profile: CIE color, embedded subset fonts,
// duplicate-image detection, bicubic downsampling types and preserved link
// and text annotations. The def file loads before the input document.
func gsArgs(outputFile, defPath, inputPDF string) []string {
	return []string{
		"-dPDFA=3",
		"-dBATCH",
		"-dNOPAUSE",
		"-dUseCIEColor",
		"-sProcessColorModel=DeviceRGB",
		"-sDEVICE=pdfwrite",
		"-dPDFACompatibilityPolicy=1",
		"-dCompatibilityLevel=1.7",
		"-dPreserveAnnots=true",
		"-dEmbedAllFonts=true",
		"-dSubsetFonts=true",
		"-dDetectDuplicateImages=true",
		"-dRemoveUnusedResources=true",
		"-dColorImageDownsampleType=/Bicubic",
		"-dGrayImageDownsampleType=/Bicubic",
		"-dMonoImageDownsampleType=/Subsample",
		"-sOutputFile=" + outputFile,
		defPath,
		"-c", "/PreserveAnnotTypes [/Link /Text /Underline /Highlight /Squiggly /StrikeOut /FreeText] def",
		"-f", inputPDF,
	}
}

// Convert runs Ghostscript on the compiled PDF. A missing input or missing gs
// binary fails before any spawn; a non-zero gs exit and a clean exit without
// an output file are both conversion failures. Size accounting and validation
// findings ride along on the result.
func (c *Converter) Convert(ctx context.Context) (*Result, error) {
	inputRel := c.inputRel()
	inputPDF := filepath.Join(c.workDir, inputRel)
	inputInfo, err := os.Stat(inputPDF)
	if err != nil {
		logger.Error("conversion input missing", err, logger.String("path", inputPDF))
		return nil, types.NewAppError(types.ErrMissingInput,
			"input PDF not found: "+inputRel, err)
	}

	gsPath, err := exec.LookPath(c.cfg.GhostscriptBinary)
	if err != nil {
		return nil, types.NewAppError(types.ErrToolNotFound,
			c.cfg.GhostscriptBinary+" not found on PATH", err)
	}

	if _, err := os.Stat(c.cfg.ICCProfilePath); err != nil {
		logger.Warn("ICC profile not found, color intent falls back to Ghostscript defaults",
			logger.String("path", c.cfg.ICCProfilePath))
	}
	if _, err := os.Stat(c.cfg.PDFADefPath); err != nil {
		logger.Warn("PDF/A definition file not found",
			logger.String("path", c.cfg.PDFADefPath))
	}

	inputMB := float64(inputInfo.Size()) / (1024 * 1024)
	logger.Info("starting PDF/A-3b conversion",
		logger.String("input", inputPDF),
		logger.Float64("inputSizeMB", inputMB))

	cmd := exec.CommandContext(ctx, gsPath, gsArgs(c.cfg.PDFAOutputFile, c.cfg.PDFADefPath, inputRel)...)
	cmd.Dir = c.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Error("ghostscript conversion failed", err, logger.String("stderr", stderr.String()))
		return nil, types.NewAppErrorWithDetails(types.ErrToolFailed,
			"ghostscript exited with an error", stderr.String(), err)
	}

	outputPath := filepath.Join(c.workDir, c.cfg.PDFAOutputFile)
	outputInfo, err := os.Stat(outputPath)
	if err != nil {
		logger.Error("conversion produced no output file", err, logger.String("path", outputPath))
		return nil, types.NewAppError(types.ErrToolFailed, "output file not created", err)
	}

	result := &Result{
		InputPath:    inputPDF,
		OutputPath:   outputPath,
		InputSizeMB:  inputMB,
		OutputSizeMB: float64(outputInfo.Size()) / (1024 * 1024),
	}
	if inputInfo.Size() > 0 {
		result.SizeRatio = float64(outputInfo.Size()) / float64(inputInfo.Size())
	}
	result.SizeIncreased = result.SizeRatio > sizeIncreaseThreshold

	c.validate(result)

	logger.Info("conversion complete",
		logger.String("output", outputPath),
		logger.Float64("outputSizeMB", result.OutputSizeMB),
		logger.Float64("sizeRatio", result.SizeRatio),
		logger.Int("caveats", len(result.Caveats)))
	return result, nil
}

// validate checks the produced file with pdfcpu and compares page counts
// against the input. Findings become caveats.
func (c *Converter) validate(result *Result) {
	if err := api.ValidateFile(result.OutputPath, c.conf); err != nil {
		result.Caveats = append(result.Caveats, fmt.Sprintf("pdfcpu validation: %v", err))
	}

	inPages, err := pageCount(result.InputPath)
	if err != nil {
		result.Caveats = append(result.Caveats, fmt.Sprintf("input page count unavailable: %v", err))
		return
	}
	outPages, err := pageCount(result.OutputPath)
	if err != nil {
		result.Caveats = append(result.Caveats, fmt.Sprintf("output page count unavailable: %v", err))
		return
	}
	if inPages != outPages {
		result.Caveats = append(result.Caveats,
			fmt.Sprintf("page count changed from %d to %d", inPages, outPages))
	}
}

func pageCount(path string) (int, error) {
	f, r, err := ledongthucpdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
