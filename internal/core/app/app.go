package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"doccov/internal/core/config"
	"doccov/internal/core/ports"
	"doccov/internal/data/history"
	"doccov/internal/engine/coverage"
	"doccov/internal/engine/parser"
	"doccov/internal/engine/style"

	"github.com/gobwas/glob"
)

// Dependencies lets callers inject collaborators. Nil checker and history
// fall back to no checking and no persistence.
type Dependencies struct {
	Parser     ports.SourceParser
	Checker    ports.StyleChecker
	History    ports.HistoryStore
	ProjectKey string
}

// Service runs coverage analysis and style checks for single sources,
// path batches and watch sessions.
type Service struct {
	Config *config.Config

	parser     ports.SourceParser
	analyzer   *coverage.Analyzer
	checker    ports.StyleChecker
	history    ports.HistoryStore
	projectKey string
	snapshots  *snapshotWriter
	closers    []io.Closer

	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
}

// New wires the production collaborators described by cfg. configPath is
// used to resolve the history database location and project key.
func New(cfg *config.Config, configPath string) (*Service, error) {
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}
	p, err := parser.NewParser(loader)
	if err != nil {
		return nil, err
	}

	checker, err := NewStyleChecker(cfg, p)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Parser:     p,
		Checker:    checker,
		ProjectKey: config.ProjectKey(cfg, filepath.Dir(configPath)),
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(config.HistoryPath(cfg, configPath))
		if err != nil {
			return nil, err
		}
		deps.History = store
	}

	svc, err := NewWithDependencies(cfg, deps)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	if store != nil {
		svc.closers = append(svc.closers, store)
	}
	return svc, nil
}

func NewWithDependencies(cfg *config.Config, deps Dependencies) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Parser == nil {
		return nil, fmt.Errorf("source parser dependency is required")
	}
	if deps.Checker == nil {
		deps.Checker = style.NoopChecker{}
	}
	if deps.ProjectKey == "" {
		deps.ProjectKey = "default"
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	svc := &Service{
		Config:       cfg,
		parser:       deps.Parser,
		analyzer:     coverage.NewAnalyzer(deps.Parser),
		checker:      deps.Checker,
		history:      deps.History,
		projectKey:   deps.ProjectKey,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}
	if deps.History != nil {
		svc.snapshots = newSnapshotWriter(deps.History, deps.ProjectKey, snapshotQueueCapacity)
	}
	return svc, nil
}

// NewStyleChecker builds the checker named by cfg.Checker.
func NewStyleChecker(cfg *config.Config, p style.SourceParser) (ports.StyleChecker, error) {
	switch cfg.Checker {
	case style.CheckerBuiltin, "":
		return style.NewBuiltinChecker(p), nil
	case style.CheckerPydocstyle:
		return style.NewPydocstyleChecker(cfg.PydocstylePath, cfg.CheckerRate), nil
	case style.CheckerNone:
		return style.NoopChecker{}, nil
	}
	return nil, fmt.Errorf("unknown style checker %q", cfg.Checker)
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// CheckerName reports which style checker the service runs.
func (s *Service) CheckerName() string {
	return s.checker.Name()
}

// ProjectKey is the key history snapshots are filed under.
func (s *Service) ProjectKey() string {
	return s.projectKey
}

// History returns the snapshot store, or nil when history is disabled.
func (s *Service) History() ports.HistoryStore {
	return s.history
}

// FlushHistory waits for queued history snapshots to reach the store.
func (s *Service) FlushHistory() {
	if s.snapshots != nil {
		s.snapshots.Flush()
	}
}

func (s *Service) Close() error {
	var firstErr error
	if s.snapshots != nil {
		if err := s.snapshots.Close(); err != nil {
			firstErr = err
		}
		s.snapshots = nil
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close resource", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.closers = nil
	return firstErr
}
