package config

import (
	"os"
	"path/filepath"
	"strings"
)

var projectMarkers = []string{
	FileName,
	"setup.cfg",
	"setup.py",
	".git",
}

// ResolveRelative joins value onto base unless value is already absolute.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// DetectProjectRoot walks up from each candidate until a directory holding a
// Python project marker is found. It falls back to the working directory.
func DetectProjectRoot(candidates []string) (string, error) {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}

		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		root := abs
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			root = filepath.Dir(abs)
		}

		for {
			for _, marker := range projectMarkers {
				if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
					return filepath.Clean(root), nil
				}
			}
			parent := filepath.Dir(root)
			if parent == root {
				break
			}
			root = parent
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Clean(cwd), nil
}

// FindConfigFile returns the pyproject.toml of the project containing the
// candidates, or the path it would have when none exists yet.
func FindConfigFile(candidates []string) (string, error) {
	root, err := DetectProjectRoot(candidates)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, FileName), nil
}

// HistoryPath resolves the history database location against the directory
// of the configuration file.
func HistoryPath(cfg *Config, configPath string) string {
	return ResolveRelative(filepath.Dir(configPath), cfg.History.Path)
}
