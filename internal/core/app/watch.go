package app

import (
	"context"
	"log/slog"
	"os"

	"doccov/internal/core/watcher"
)

// Watch re-analyzes files below paths whenever they change, passing each
// result to onResult. options is consulted per change batch so settings
// reloaded from disk apply to the next analysis. Watch blocks until ctx is
// done.
func (s *Service) Watch(ctx context.Context, paths []string, options func() Options, onResult func(Result)) error {
	w, err := watcher.NewWatcher(watcher.Options{
		Debounce:       s.Config.Watch.Debounce,
		ExcludeDirs:    s.Config.Exclude.Dirs,
		ExcludeFiles:   s.Config.Exclude.Files,
		Extensions:     s.parser.SupportedExtensions(),
		IncludePrivate: s.Config.IncludePrivate,
	}, func(changed []string) {
		s.handleChanges(ctx, changed, options(), onResult)
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(paths); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths, "debounce", s.Config.Watch.Debounce)

	<-ctx.Done()
	return nil
}

func (s *Service) handleChanges(ctx context.Context, changed []string, opts Options, onResult func(Result)) {
	for _, path := range changed {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Debug("changed file no longer exists", "path", path)
			continue
		}

		res, err := s.AnalyzeFile(ctx, path, opts)
		if err != nil {
			slog.Warn("failed to analyze changed file", "path", path, "error", err)
			continue
		}
		onResult(res)
	}
}
