package config

import (
	"path/filepath"
	"regexp"
	"strings"
)

var projectKeyPattern = regexp.MustCompile(`[^a-z0-9._-]+`)

// ProjectKey names the project history snapshots are filed under: the
// configured history.project, else the project root's directory name.
func ProjectKey(cfg *Config, root string) string {
	name := strings.TrimSpace(cfg.History.Project)
	if name == "" {
		name = filepath.Base(filepath.Clean(root))
	}
	key := strings.Trim(projectKeyPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if key == "" || key == "." {
		return "default"
	}
	return key
}
