// Package config provides configuration management for the latex-builder tool.
//
// The build profile is fixed: the latexmk and gs argument lists are a
// compatibility contract with the external toolchain, so the profile carries
// paths, names and durations only, never compiler flags. A JSON override file
// exists as a development aid and is only read when a path is given explicitly.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"latex-builder/internal/logger"
	"latex-builder/internal/types"
)

const (
	// DefaultMainTexFile is the document entry point, resolved in the work directory
	DefaultMainTexFile = "main.tex"
	// DefaultOutputDir is the directory latexmk compiles into
	DefaultOutputDir = "output"
	// DefaultLatexmkBinary is the compiler driver binary name
	DefaultLatexmkBinary = "latexmk"
	// DefaultGhostscriptBinary is the PDF/A converter binary name
	DefaultGhostscriptBinary = "gs"
	// DefaultCompileTimeoutSec is the compilation ceiling (100 minutes)
	DefaultCompileTimeoutSec = 6000
	// DefaultTerminateGraceSec is how long a cancelled compile may shut down
	// before it is killed
	DefaultTerminateGraceSec = 5
	// DefaultSpinnerIntervalMS is the progress repaint interval
	DefaultSpinnerIntervalMS = 100
	// DefaultPDFAOutputFile is the archival output written to the work directory
	DefaultPDFAOutputFile = "thesis_pdfa3b.pdf"
	// DefaultICCProfilePath is the RGB profile referenced by PDFA_def.ps
	DefaultICCProfilePath = "/usr/share/color/icc/colord/AdobeRGB1998.icc"
	// DefaultPDFADefPath is the Ghostscript PDF/A definition prologue
	DefaultPDFADefPath = "/usr/share/ghostscript/10.03.1/lib/PDFA_def.ps"
)

// Config 构建配置
type Config struct {
	MainTexFile       string `json:"main_tex_file"`
	OutputDir         string `json:"output_dir"`
	LatexmkBinary     string `json:"latexmk_binary"`
	GhostscriptBinary string `json:"ghostscript_binary"`
	CompileTimeoutSec int    `json:"compile_timeout_sec"`
	TerminateGraceSec int    `json:"terminate_grace_sec"`
	SpinnerIntervalMS int    `json:"spinner_interval_ms"`
	PDFAOutputFile    string `json:"pdfa_output_file"`
	ICCProfilePath    string `json:"icc_profile_path"`
	PDFADefPath       string `json:"pdfa_def_path"`
}

// Default returns a Config with the canonical build profile.
func Default() *Config {
	return &Config{
		MainTexFile:       DefaultMainTexFile,
		OutputDir:         DefaultOutputDir,
		LatexmkBinary:     DefaultLatexmkBinary,
		GhostscriptBinary: DefaultGhostscriptBinary,
		CompileTimeoutSec: DefaultCompileTimeoutSec,
		TerminateGraceSec: DefaultTerminateGraceSec,
		SpinnerIntervalMS: DefaultSpinnerIntervalMS,
		PDFAOutputFile:    DefaultPDFAOutputFile,
		ICCProfilePath:    DefaultICCProfilePath,
		PDFADefPath:       DefaultPDFADefPath,
	}
}

// CompileTimeout returns the compilation ceiling as a duration.
func (c *Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutSec) * time.Second
}

// TerminateGrace returns the graceful-termination window as a duration.
func (c *Config) TerminateGrace() time.Duration {
	return time.Duration(c.TerminateGraceSec) * time.Second
}

// SpinnerInterval returns the progress repaint interval as a duration.
func (c *Config) SpinnerInterval() time.Duration {
	return time.Duration(c.SpinnerIntervalMS) * time.Millisecond
}

// PDFPath returns the compiled artifact path under the output directory.
func (c *Config) PDFPath() string {
	return filepath.Join(c.OutputDir, "main.pdf")
}

// LogPath returns the compiler log path under the output directory.
func (c *Config) LogPath() string {
	return filepath.Join(c.OutputDir, "main.log")
}

// BuilderLogPath returns where the tool writes its own structured log.
func (c *Config) BuilderLogPath() string {
	return filepath.Join(c.OutputDir, "latex-builder.log")
}

// ConfigManager manages the build configuration
type ConfigManager struct {
	configPath string
	config     *Config
}

// NewConfigManager creates a new ConfigManager. An empty configPath means no
// override file is consulted and the fixed defaults are used as-is.
func NewConfigManager(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
		config:     Default(),
	}
}

// Load loads configuration from the override file, if one was given.
// A missing file falls back to defaults; a malformed file is logged and
// likewise falls back to defaults.
func (m *ConfigManager) Load() error {
	if m.configPath == "" {
		m.config = Default()
		return nil
	}

	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = Default()
			return nil
		}
		logger.Error("failed to read config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to read config file", err)
	}

	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
		m.config = Default()
		return nil
	}

	m.config = config
	m.applyDefaults()

	logger.Info("configuration loaded",
		logger.String("path", m.configPath),
		logger.String("mainTexFile", m.config.MainTexFile),
		logger.String("outputDir", m.config.OutputDir))
	return nil
}

// applyDefaults fills empty fields of a loaded override with the fixed profile
func (m *ConfigManager) applyDefaults() {
	def := Default()
	if m.config.MainTexFile == "" {
		m.config.MainTexFile = def.MainTexFile
	}
	if m.config.OutputDir == "" {
		m.config.OutputDir = def.OutputDir
	}
	if m.config.LatexmkBinary == "" {
		m.config.LatexmkBinary = def.LatexmkBinary
	}
	if m.config.GhostscriptBinary == "" {
		m.config.GhostscriptBinary = def.GhostscriptBinary
	}
	if m.config.CompileTimeoutSec <= 0 {
		m.config.CompileTimeoutSec = def.CompileTimeoutSec
	}
	if m.config.TerminateGraceSec <= 0 {
		m.config.TerminateGraceSec = def.TerminateGraceSec
	}
	if m.config.SpinnerIntervalMS <= 0 {
		m.config.SpinnerIntervalMS = def.SpinnerIntervalMS
	}
	if m.config.PDFAOutputFile == "" {
		m.config.PDFAOutputFile = def.PDFAOutputFile
	}
	if m.config.ICCProfilePath == "" {
		m.config.ICCProfilePath = def.ICCProfilePath
	}
	if m.config.PDFADefPath == "" {
		m.config.PDFADefPath = def.PDFADefPath
	}
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *Config {
	if m.config == nil {
		return Default()
	}
	return m.config
}

// GetConfigPath returns the path to the override file, if any.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}
