// Package config loads the YAML configuration shared by the desktop app and
// the cutout CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Removal    RemovalConfig    `yaml:"removal"`
	Processing ProcessingConfig `yaml:"processing"`
	Limits     LimitsConfig     `yaml:"limits"`
	Editor     EditorConfig     `yaml:"editor"`
	Export     ExportConfig     `yaml:"export"`
	Log        LogConfig        `yaml:"log"`
}

// RemovalConfig selects and tunes the background removal backend.
type RemovalConfig struct {
	Backend    string        `yaml:"backend"`  // grabcut | http
	Endpoint   string        `yaml:"endpoint"` // http backend only
	Timeout    time.Duration `yaml:"timeout"`
	Iterations int           `yaml:"iterations"` // grabcut refinement passes
	MaxSide    uint          `yaml:"max_side"`   // grabcut working resolution
}

// ProcessingConfig bounds the batch queue.
type ProcessingConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// LimitsConfig bounds accepted input files.
type LimitsConfig struct {
	MaxFileMB int `yaml:"max_file_mb"`
}

// EditorConfig tunes the manual eraser.
type EditorConfig struct {
	HistoryDepth int `yaml:"history_depth"`
	DefaultBrush int `yaml:"default_brush"`
}

// ExportConfig controls encoded output.
type ExportConfig struct {
	Format      string `yaml:"format"` // png | webp
	WebPQuality int    `yaml:"webp_quality"`
	OutputDir   string `yaml:"output_dir"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Removal: RemovalConfig{
			Backend:    "grabcut",
			Timeout:    2 * time.Minute,
			Iterations: 5,
			MaxSide:    1024,
		},
		Processing: ProcessingConfig{Concurrency: 2},
		Limits:     LimitsConfig{MaxFileMB: 20},
		Editor: EditorConfig{
			HistoryDepth: 20,
			DefaultBrush: 30,
		},
		Export: ExportConfig{
			Format:      "png",
			WebPQuality: 90,
			OutputDir:   ".",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file and merges it over Default. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	switch c.Removal.Backend {
	case "grabcut":
		if c.Removal.Iterations <= 0 {
			return fmt.Errorf("removal.iterations must be > 0")
		}
		if c.Removal.MaxSide < 16 {
			return fmt.Errorf("removal.max_side must be >= 16")
		}
	case "http":
		if c.Removal.Endpoint == "" {
			return fmt.Errorf("removal.endpoint is required for the http backend")
		}
	default:
		return fmt.Errorf("unsupported removal.backend %q (use grabcut or http)", c.Removal.Backend)
	}
	if c.Removal.Timeout < 0 {
		return fmt.Errorf("removal.timeout must be >= 0")
	}
	if c.Processing.Concurrency <= 0 {
		return fmt.Errorf("processing.concurrency must be > 0")
	}
	if c.Limits.MaxFileMB <= 0 {
		return fmt.Errorf("limits.max_file_mb must be > 0")
	}
	if c.Editor.HistoryDepth < 1 {
		return fmt.Errorf("editor.history_depth must be >= 1")
	}
	if c.Editor.DefaultBrush < 5 || c.Editor.DefaultBrush > 100 {
		return fmt.Errorf("editor.default_brush must be within [5, 100]")
	}
	switch c.Export.Format {
	case "png", "webp":
	default:
		return fmt.Errorf("unsupported export.format %q (use png or webp)", c.Export.Format)
	}
	if c.Export.WebPQuality < 1 || c.Export.WebPQuality > 100 {
		return fmt.Errorf("export.webp_quality must be within [1, 100]")
	}
	return nil
}

// MaxFileBytes returns the max input size in bytes.
func (c *Config) MaxFileBytes() int64 { return int64(c.Limits.MaxFileMB) * 1024 * 1024 }
