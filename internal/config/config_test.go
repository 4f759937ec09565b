package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigManager(t *testing.T) {
	t.Run("with custom path", func(t *testing.T) {
		customPath := "/tmp/test-config.json"
		cm := NewConfigManager(customPath)
		if cm.GetConfigPath() != customPath {
			t.Errorf("expected config path %s, got %s", customPath, cm.GetConfigPath())
		}
	})

	t.Run("with empty path uses fixed defaults", func(t *testing.T) {
		cm := NewConfigManager("")
		if err := cm.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		config := cm.GetConfig()
		if config.MainTexFile != DefaultMainTexFile {
			t.Errorf("expected default main file %s, got %s", DefaultMainTexFile, config.MainTexFile)
		}
		if config.CompileTimeoutSec != DefaultCompileTimeoutSec {
			t.Errorf("expected default timeout %d, got %d", DefaultCompileTimeoutSec, config.CompileTimeoutSec)
		}
	})
}

func TestConfigManager_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	t.Run("Load with non-existent file uses defaults", func(t *testing.T) {
		cm := NewConfigManager(configPath)

		if err := cm.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := cm.GetConfig()
		if config.OutputDir != DefaultOutputDir {
			t.Errorf("expected default output dir %s, got %s", DefaultOutputDir, config.OutputDir)
		}
		if config.LatexmkBinary != DefaultLatexmkBinary {
			t.Errorf("expected default latexmk binary %s, got %s", DefaultLatexmkBinary, config.LatexmkBinary)
		}
	})

	t.Run("Load reads override file", func(t *testing.T) {
		override := `{"main_tex_file": "paper.tex", "compile_timeout_sec": 60}`
		if err := os.WriteFile(configPath, []byte(override), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cm := NewConfigManager(configPath)
		if err := cm.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := cm.GetConfig()
		if config.MainTexFile != "paper.tex" {
			t.Errorf("expected main file 'paper.tex', got '%s'", config.MainTexFile)
		}
		if config.CompileTimeoutSec != 60 {
			t.Errorf("expected timeout 60, got %d", config.CompileTimeoutSec)
		}
	})

	t.Run("Load fills unset override fields with defaults", func(t *testing.T) {
		override := `{"main_tex_file": "paper.tex"}`
		if err := os.WriteFile(configPath, []byte(override), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cm := NewConfigManager(configPath)
		if err := cm.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		config := cm.GetConfig()
		if config.OutputDir != DefaultOutputDir {
			t.Errorf("expected default output dir, got '%s'", config.OutputDir)
		}
		if config.TerminateGraceSec != DefaultTerminateGraceSec {
			t.Errorf("expected default grace %d, got %d", DefaultTerminateGraceSec, config.TerminateGraceSec)
		}
		if config.PDFAOutputFile != DefaultPDFAOutputFile {
			t.Errorf("expected default PDF/A output, got '%s'", config.PDFAOutputFile)
		}
	})

	t.Run("Load with invalid JSON uses defaults", func(t *testing.T) {
		invalidConfigPath := filepath.Join(tmpDir, "invalid-config.json")
		if err := os.WriteFile(invalidConfigPath, []byte("invalid json"), 0644); err != nil {
			t.Fatalf("failed to write invalid config: %v", err)
		}

		cm := NewConfigManager(invalidConfigPath)
		if err := cm.Load(); err != nil {
			t.Fatalf("Load should not fail with invalid JSON: %v", err)
		}

		config := cm.GetConfig()
		if config.MainTexFile != DefaultMainTexFile {
			t.Errorf("expected default main file after invalid JSON, got %s", config.MainTexFile)
		}
	})
}

func TestConfig_Durations(t *testing.T) {
	config := Default()

	if config.CompileTimeout() != 100*time.Minute {
		t.Errorf("CompileTimeout = %v, want 100m", config.CompileTimeout())
	}
	if config.TerminateGrace() != 5*time.Second {
		t.Errorf("TerminateGrace = %v, want 5s", config.TerminateGrace())
	}
	if config.SpinnerInterval() != 100*time.Millisecond {
		t.Errorf("SpinnerInterval = %v, want 100ms", config.SpinnerInterval())
	}
}

func TestConfig_Paths(t *testing.T) {
	config := Default()

	if got := config.PDFPath(); got != filepath.Join("output", "main.pdf") {
		t.Errorf("PDFPath = %s", got)
	}
	if got := config.LogPath(); got != filepath.Join("output", "main.log") {
		t.Errorf("LogPath = %s", got)
	}
	if got := config.BuilderLogPath(); got != filepath.Join("output", "latex-builder.log") {
		t.Errorf("BuilderLogPath = %s", got)
	}
}
