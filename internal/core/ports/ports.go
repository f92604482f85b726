package ports

import (
	"context"
	"time"

	"doccov/internal/data/history"
	"doccov/internal/engine/parser"
	"doccov/internal/engine/style"
)

// SourceParser abstracts Python source parsing and file support checks.
type SourceParser interface {
	ParseFile(path string, content []byte) (*parser.File, error)
	IsSupportedPath(filePath string) bool
	SupportedExtensions() []string
}

// StyleChecker reports docstring style violations for one source buffer.
// Failures are returned as errors and never affect coverage.
type StyleChecker interface {
	Name() string
	Check(ctx context.Context, path string, source []byte, s style.Style) ([]style.Violation, error)
}

// HistoryStore abstracts snapshot persistence for trend workflows.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	LoadSnapshots(projectKey, path string, since time.Time) ([]history.Snapshot, error)
	Trend(projectKey, path string, since time.Time) (history.TrendReport, error)
}
