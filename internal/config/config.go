// Package config holds the per-run configuration for the NASTRAN-95
// execution layer. Configuration is loaded from an optional YAML file,
// overridden by environment variables, and validated before any
// invocation is attempted.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenCoreCapacityWords is the Engine's compiled-in open-core capacity.
// Requesting more than this is a configuration error: the Engine would
// overrun its static working array, not fail gracefully at runtime.
const OpenCoreCapacityWords = 8_000_000

// Default memory budgets, matching the Engine's shipped defaults.
const (
	DefaultDBMemWords    = 12_000_000
	DefaultOpenCoreWords = 2_000_000
	DefaultTimeout       = 5 * time.Minute
)

// Strategy names accepted in config files and on the CLI.
const (
	StrategySubprocess = "subprocess"
	StrategyInProcess  = "inprocess"
)

// Config holds all nastrun configuration.
type Config struct {
	// Executable is the path to the Engine binary (subprocess mode).
	Executable string `yaml:"executable"`

	// RFDir is the rigid-format resource directory the Engine needs
	// at startup. Treated as opaque input.
	RFDir string `yaml:"rf_dir"`

	// DBMemWords is the database memory allocation in words.
	DBMemWords int `yaml:"db_mem_words"`

	// OpenCoreWords is the open-core memory allocation in words.
	// Must not exceed OpenCoreCapacityWords.
	OpenCoreWords int `yaml:"open_core_words"`

	// ScratchRoot is the parent directory for per-run scratch trees.
	// Empty means the system temp directory.
	ScratchRoot string `yaml:"scratch_root"`

	// Timeout is the wall-clock limit per run, e.g. "5m" or "300s".
	Timeout string `yaml:"timeout"`

	// Strategy selects the invocation strategy: subprocess or inprocess.
	Strategy string `yaml:"strategy"`

	// RetainScratch keeps the per-run scratch tree after the run,
	// useful for post-mortem debugging.
	RetainScratch bool `yaml:"retain_scratch"`

	// Archive configures the run archive store.
	Archive ArchiveConfig `yaml:"archive"`

	// Logging configures categorized debug logging.
	Logging LoggingConfig `yaml:"logging"`
}

// ArchiveConfig configures the SQLite run archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// ConfigError describes an invalid configuration value. It is fatal
// and surfaced before any invocation is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Default returns a Config with the Engine's shipped defaults.
func Default() *Config {
	return &Config{
		DBMemWords:    DefaultDBMemWords,
		OpenCoreWords: DefaultOpenCoreWords,
		Timeout:       DefaultTimeout.String(),
		Strategy:      StrategySubprocess,
		Archive: ArchiveConfig{
			Path: filepath.Join(".nastrun", "archive.db"),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the config file at path on top of defaults, then applies
// environment overrides. A missing file is not an error: defaults plus
// environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// TimeoutDuration parses the Timeout field, falling back to the default
// when unset or unparseable.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Validate checks the configuration for fatal problems. Violations are
// ConfigError values, surfaced before any invocation.
func (c *Config) Validate() error {
	if c.DBMemWords <= 0 {
		return &ConfigError{Field: "db_mem_words", Reason: "must be positive"}
	}
	if c.OpenCoreWords <= 0 {
		return &ConfigError{Field: "open_core_words", Reason: "must be positive"}
	}
	if c.OpenCoreWords > OpenCoreCapacityWords {
		return &ConfigError{
			Field: "open_core_words",
			Reason: fmt.Sprintf("%d exceeds engine capacity of %d words",
				c.OpenCoreWords, OpenCoreCapacityWords),
		}
	}
	if c.RFDir == "" {
		return &ConfigError{Field: "rf_dir", Reason: "rigid-format directory is required"}
	}
	if info, err := os.Stat(c.RFDir); err != nil || !info.IsDir() {
		return &ConfigError{Field: "rf_dir", Reason: fmt.Sprintf("not a directory: %s", c.RFDir)}
	}
	switch c.Strategy {
	case StrategySubprocess:
		if c.Executable == "" {
			return &ConfigError{Field: "executable", Reason: "engine binary path is required in subprocess mode"}
		}
		if _, err := os.Stat(c.Executable); err != nil {
			return &ConfigError{Field: "executable", Reason: fmt.Sprintf("engine binary not found: %s", c.Executable)}
		}
	case StrategyInProcess:
		// Engine entry registration is checked at invocation time.
	default:
		return &ConfigError{Field: "strategy", Reason: fmt.Sprintf("unknown strategy %q", c.Strategy)}
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return &ConfigError{Field: "timeout", Reason: fmt.Sprintf("invalid duration %q", c.Timeout)}
		}
	}
	return nil
}
