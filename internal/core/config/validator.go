package config

import (
	"errors"
	"fmt"
	"strings"

	"doccov/internal/engine/style"

	"github.com/gobwas/glob"
)

func validate(cfg *Config) error {
	return errors.Join(Validate(cfg)...)
}

// Validate returns every problem found in cfg.
func Validate(cfg *Config) []error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateStyle,
		validateThreshold,
		validateChecker,
		validateWorkers,
		validateExclude,
		validateWatch,
		validateHistory,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func validateStyle(cfg *Config) error {
	if _, err := style.ParseStyle(cfg.Style); err != nil {
		return fmt.Errorf("style must be one of numpy, google, reST, got %q", cfg.Style)
	}
	return nil
}

func validateThreshold(cfg *Config) error {
	if cfg.CoverageThreshold < 0 || cfg.CoverageThreshold > 100 {
		return fmt.Errorf("coverage_threshold must be between 0 and 100, got %d", cfg.CoverageThreshold)
	}
	return nil
}

func validateChecker(cfg *Config) error {
	known := false
	for _, name := range style.Checkers {
		if cfg.Checker == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("checker must be one of %s, got %q", strings.Join(style.Checkers, ", "), cfg.Checker)
	}
	if cfg.CheckerRate < 0 {
		return fmt.Errorf("checker_rate must be >= 0, got %v", cfg.CheckerRate)
	}
	return nil
}

func validateWorkers(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.dirs pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.files pattern %q: %w", p, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && cfg.History.Path == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}
