package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"doccov/internal/core/app"
	"doccov/internal/engine/parser"
)

// Options carries presentation settings shared by every format.
type Options struct {
	ProjectRoot string
	Version     string
	GeneratedAt time.Time
}

func relPath(root, path string) string {
	root = strings.TrimSpace(root)
	path = strings.TrimSpace(path)
	if root == "" || path == "" {
		return filepath.ToSlash(path)
	}
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func displayPath(root string, r app.Result) string {
	return nonEmpty(relPath(root, r.Request.Path), "<buffer>")
}

func statusLabel(d parser.Declaration) string {
	if d.Documented {
		return "Documented"
	}
	return "Undocumented"
}

func kindLabel(d parser.Declaration) string {
	if d.Kind == parser.KindFunction && d.Async {
		return "Async Function"
	}
	return d.Kind.String()
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// complianceLabel renders the status line shown for a result, including the
// reason when coverage could not be computed.
func complianceLabel(r app.Result) string {
	switch {
	case r.ParseErr != nil:
		return "ERROR"
	case r.Compliance.Vacuous:
		return "PASSED (no declarations)"
	default:
		return r.Compliance.Status()
	}
}
