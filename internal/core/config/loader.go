package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"doccov/internal/engine/style"

	"github.com/BurntSushi/toml"
)

// Load reads the [tool.docstring-generator] table of a pyproject.toml file.
// Keys the file omits keep their default values; a file without the table
// yields the defaults. Any read, decode or validation failure is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := pyproject{}
	doc.Tool.DocstringGenerator = *Default()
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	cfg := &doc.Tool.DocstringGenerator

	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	normalize(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSettings never fails: when the file is absent, unreadable, malformed
// or carries invalid values it logs a warning and returns the defaults
// (with environment overrides applied when those are valid).
func LoadSettings(path string) *Config {
	cfg, err := Load(path)
	if err == nil {
		return cfg
	}

	if os.IsNotExist(err) {
		slog.Warn("configuration file not found, using defaults", "path", path)
	} else {
		slog.Warn("invalid configuration, using defaults", "path", path, "error", err)
	}

	cfg = Default()
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	normalize(cfg)
	if err := validate(cfg); err != nil {
		slog.Warn("ignoring invalid environment overrides", "error", err)
		return Default()
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Style) == "" {
		cfg.Style = DefaultStyle
	}
	if strings.TrimSpace(cfg.Checker) == "" {
		cfg.Checker = DefaultChecker
	}
	if strings.TrimSpace(cfg.PydocstylePath) == "" {
		cfg.PydocstylePath = style.DefaultPydocstylePath
	}
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers()
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "__pycache__", ".venv", "venv", ".tox", ".mypy_cache", "build", "dist", "node_modules"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = ".doccov/history.db"
	}
}

func normalize(cfg *Config) {
	cfg.Checker = strings.ToLower(strings.TrimSpace(cfg.Checker))
	cfg.PydocstylePath = strings.TrimSpace(cfg.PydocstylePath)
	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.History.Project = strings.TrimSpace(cfg.History.Project)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	if s, err := style.ParseStyle(cfg.Style); err == nil {
		cfg.Style = s.String()
	}
}
