package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"doccov/internal/shared/observability"
	"doccov/internal/shared/util"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Options selects which file events are reported.
type Options struct {
	Debounce       time.Duration
	ExcludeDirs    []string
	ExcludeFiles   []string
	Extensions     []string
	IncludePrivate bool
}

// Watcher reports batches of changed source files after a quiet period.
type Watcher struct {
	fsWatcher      *fsnotify.Watcher
	debounce       time.Duration
	excludeDirs    []glob.Glob
	excludeFiles   []glob.Glob
	extFilters     map[string]bool
	includePrivate bool
	onChange       func([]string)
	callbackMu     sync.Mutex

	rootsMu sync.RWMutex
	dirs    []string
	files   map[string]bool

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
}

func NewWatcher(opts Options, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiledDirs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	compiledFiles, err := compileGlobs(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	extFilters := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if normalized := strings.ToLower(strings.TrimSpace(ext)); normalized != "" {
			extFilters[normalized] = true
		}
	}
	if len(extFilters) == 0 {
		extFilters[".py"] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:      fsw,
		debounce:       opts.Debounce,
		excludeDirs:    compiledDirs,
		excludeFiles:   compiledFiles,
		extFilters:     extFilters,
		includePrivate: opts.IncludePrivate,
		onChange:       onChange,
		files:          make(map[string]bool),
		pending:        make(map[string]time.Time),
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch starts reporting changes below each directory in paths and to each
// file in paths. It returns once the watches are registered.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if err := w.watchFile(path); err != nil {
				return err
			}
			continue
		}

		w.rootsMu.Lock()
		w.dirs = append(w.dirs, filepath.Clean(path))
		w.rootsMu.Unlock()
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

// watchFile watches the parent directory; events for its siblings are
// filtered out in accepts.
func (w *Watcher) watchFile(path string) error {
	w.rootsMu.Lock()
	w.files[filepath.Clean(path)] = true
	w.rootsMu.Unlock()
	return w.fsWatcher.Add(filepath.Dir(path))
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}

		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if w.underWatchedDir(event.Name) && !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if !w.accepts(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := util.SortedStringKeys(w.pending)
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) accepts(path string) bool {
	clean := filepath.Clean(path)
	w.rootsMu.RLock()
	explicit := w.files[clean]
	w.rootsMu.RUnlock()
	if explicit {
		return true
	}
	return w.underWatchedDir(clean) && !w.shouldExcludeFile(clean)
}

func (w *Watcher) underWatchedDir(path string) bool {
	w.rootsMu.RLock()
	defer w.rootsMu.RUnlock()
	for _, dir := range w.dirs {
		if util.HasPathPrefix(filepath.ToSlash(path), filepath.ToSlash(dir)) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	base := filepath.Base(path)
	if !w.extFilters[strings.ToLower(filepath.Ext(base))] {
		return true
	}
	if !w.includePrivate && IsPrivateModule(base) {
		return true
	}

	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// IsPrivateModule reports whether a file name denotes a private Python
// module. Package initializers are never private.
func IsPrivateModule(base string) bool {
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasPrefix(name, "_") && name != "__init__"
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
