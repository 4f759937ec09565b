// Package compiler runs latexmk under supervision: output captured in full,
// a progress indicator on its own goroutine, a hard timeout and cooperative
// cancellation from the signal path.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"latex-builder/internal/config"
	"latex-builder/internal/logger"
	"latex-builder/internal/progress"
	"latex-builder/internal/types"
)

// Supervisor owns one latexmk invocation. The process handle lives in a
// single mutex-guarded slot so the cancellation path always sees either the
// live handle or nil, never a stale one.
type Supervisor struct {
	cfg       *config.Config
	workDir   string
	indicator *progress.Indicator

	mu        sync.Mutex
	cmd       *exec.Cmd
	done      chan struct{}
	cancelled bool
}

// New creates a supervisor for one compilation in workDir. An empty workDir
// means the current directory.
func New(cfg *config.Config, workDir string) *Supervisor {
	if workDir == "" {
		workDir = "."
	}
	return &Supervisor{
		cfg:       cfg,
		workDir:   workDir,
		indicator: progress.NewIndicator(cfg.SpinnerInterval()),
	}
}

// latexmkArgs is the fixed non-interactive, fail-fast, dependency-tracked
// invocation. The flag set is a compatibility contract with the latexmk
// toolchain and is reproduced verbatim.
func latexmkArgs(absOutDir, mainTexFile string) []string {
	return []string{
		"-synctex=1",
		"-interaction=nonstopmode",
		"-file-line-error",
		"-halt-on-error",
		"-shell-escape",
		"-lualatex",
		"-recorder",
		"-use-make",
		"-outdir=" + absOutDir,
		mainTexFile,
	}
}

// Compile runs latexmk to completion, timeout or cancellation. The outcome
// carries the terminal state, exit code, captured output and wall-clock
// duration; err is non-nil for every state other than Completed. A clean exit
// with no PDF in the output directory is still Completed.
func (s *Supervisor) Compile(ctx context.Context) (*types.CompilationOutcome, error) {
	outcome := &types.CompilationOutcome{State: types.StateLaunching}

	mainTex := filepath.Join(s.workDir, s.cfg.MainTexFile)
	if _, err := os.Stat(mainTex); err != nil {
		outcome.State = types.StateFailed
		logger.Error("input document not found", err, logger.String("path", mainTex))
		return outcome, types.NewAppError(types.ErrMissingInput,
			s.cfg.MainTexFile+" not found in "+s.workDir, err)
	}

	outDir := filepath.Join(s.workDir, s.cfg.OutputDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		outcome.State = types.StateFailed
		return outcome, types.NewAppError(types.ErrInternal, "failed to create output directory", err)
	}
	absOutDir, err := filepath.Abs(outDir)
	if err != nil {
		outcome.State = types.StateFailed
		return outcome, types.NewAppError(types.ErrInternal, "failed to resolve output directory", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CompileTimeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cfg.LatexmkBinary, latexmkArgs(absOutDir, s.cfg.MainTexFile)...)
	cmd.Dir = s.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Info("starting compilation",
		logger.String("binary", s.cfg.LatexmkBinary),
		logger.String("mainTex", s.cfg.MainTexFile),
		logger.String("outputDir", absOutDir))

	if err := s.indicator.Start("Compiling " + s.cfg.MainTexFile); err != nil {
		logger.Warn("progress indicator unavailable", logger.Err(err))
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		s.indicator.Stop()
		outcome.State = types.StateFailed
		outcome.Duration = time.Since(start)
		code := types.ErrToolFailed
		if errors.Is(err, exec.ErrNotFound) {
			code = types.ErrToolNotFound
		}
		logger.Error("failed to start latexmk", err)
		return outcome, types.NewAppError(code, "failed to start "+s.cfg.LatexmkBinary, err)
	}
	outcome.State = types.StateRunning

	done := make(chan struct{})
	var waitErr error
	s.register(cmd, done)
	defer s.clearHandle()

	go func() {
		waitErr = cmd.Wait()
		close(done)
	}()
	<-done

	outcome.Duration = time.Since(start)
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()
	outcome.ExitCode = cmd.ProcessState.ExitCode()

	s.indicator.Stop()

	s.mu.Lock()
	cancelled := s.cancelled
	s.mu.Unlock()

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		outcome.State = types.StateTimedOut
		logger.Error("compilation timed out", ctx.Err(),
			logger.Duration("after", outcome.Duration))
		return outcome, types.NewAppError(types.ErrTimeout, "compilation timed out", ctx.Err())
	case cancelled || ctx.Err() == context.Canceled:
		outcome.State = types.StateCancelled
		logger.Info("compilation cancelled", logger.Duration("after", outcome.Duration))
		return outcome, types.NewAppError(types.ErrCancelled, "compilation cancelled", nil)
	case waitErr != nil:
		outcome.State = types.StateFailed
		logger.Error("compilation failed", waitErr, logger.Int("exitCode", outcome.ExitCode))
		return outcome, types.NewAppError(types.ErrToolFailed, "latexmk failed", waitErr)
	}

	outcome.State = types.StateCompleted
	pdfPath := filepath.Join(s.workDir, s.cfg.PDFPath())
	if _, err := os.Stat(pdfPath); err == nil {
		outcome.PDFPath = pdfPath
		outcome.PDFCreated = true
	} else {
		logger.Warn("PDF not found in output directory", logger.String("path", pdfPath))
	}

	logger.Info("compilation completed",
		logger.Duration("duration", outcome.Duration),
		logger.Bool("pdfCreated", outcome.PDFCreated))
	return outcome, nil
}

// Cancel terminates an in-flight compilation: it stops the indicator, sends
// SIGTERM, waits out the grace period and kills the process if it is still
// running. It reports whether a live process was actually terminated, and is
// safe to call at any moment, including when nothing is running.
func (s *Supervisor) Cancel() bool {
	s.mu.Lock()
	cmd, done := s.cmd, s.done
	if cmd == nil {
		s.mu.Unlock()
		return false
	}
	s.cancelled = true
	s.mu.Unlock()

	s.indicator.Stop()

	logger.Info("terminating compilation process")
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logger.Warn("failed to signal compilation process", logger.Err(err))
	}

	select {
	case <-done:
		logger.Info("compilation process terminated gracefully")
	case <-time.After(s.cfg.TerminateGrace()):
		logger.Warn("compilation process unresponsive, forcing kill")
		if err := cmd.Process.Kill(); err != nil {
			logger.Warn("failed to kill compilation process", logger.Err(err))
		}
		<-done
	}
	return true
}

func (s *Supervisor) register(cmd *exec.Cmd, done chan struct{}) {
	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.mu.Unlock()
}

func (s *Supervisor) clearHandle() {
	s.mu.Lock()
	s.cmd = nil
	s.done = nil
	s.mu.Unlock()
}

// Running reports whether a process handle is currently registered.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil
}
