package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	coreapp "doccov/internal/core/app"
	"doccov/internal/core/config"
	"doccov/internal/data/history"
	"doccov/internal/engine/style"
	"doccov/internal/shared/observability"
	"doccov/internal/shared/util"
	"doccov/internal/shared/version"
	"doccov/internal/ui/report"
)

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr, coreServiceFactory{})
}

func run(args []string, stdout, stderr io.Writer, factory serviceFactory) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "doccov v%s\n", version.Version)
		return exitOK
	}

	cleanupLogs := configureLogging(opts.ui, opts.verbose, stderr)
	defer cleanupLogs()

	cfg, cfgPath, err := loadConfig(opts.configPath, opts.args)
	if err != nil {
		slog.Error("failed to locate config", "error", err)
		return exitFailure
	}

	if err := applyFlagOverrides(opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	if err := validateModes(opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}
	since, err := parseSince(opts.since)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	svc, err := initializeService(cfg, cfgPath, factory)
	if err != nil {
		slog.Error("failed to initialize analyzer", "error", err)
		return exitFailure
	}
	defer svc.Close()

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddr); addr != "" {
		server := NewObservabilityServer(addr, coreapp.NewHealthService(svc))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return exitFailure
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	paths := opts.args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if opts.trend {
		return runTrend(stdout, stderr, svc, paths, format, since)
	}

	live := newLiveOptions(svc.DefaultOptions(), opts.filter)
	results, sum, err := svc.AnalyzePaths(ctx, paths, live.Get())
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return exitFailure
	}

	if opts.watch && cfgPath != "" {
		stopReload := watchConfig(ctx, cfgPath, opts, live)
		defer stopReload()
	}

	if opts.ui {
		var trend *history.TrendReport
		if svc.History() != nil {
			if t, err := svc.History().Trend(svc.ProjectKey(), "", since); err == nil {
				trend = &t
			}
		}
		final, err := runUI(ctx, svc, paths, results, trend, opts.watch, live.Get)
		if err != nil {
			slog.Error("failed to run UI", "error", err)
			return exitFailure
		}
		return exitCode(final)
	}

	reportOpts := report.Options{ProjectRoot: filepath.Dir(cfgPath), Version: version.Version}
	if err := writeReport(stdout, opts.output, format, results, sum, reportOpts); err != nil {
		slog.Error("failed to write report", "error", err)
		return exitFailure
	}
	if opts.injectMarkdown != "" {
		if err := report.InjectSummary(opts.injectMarkdown, sum); err != nil {
			slog.Error("failed to update markdown", "path", opts.injectMarkdown, "error", err)
			return exitFailure
		}
	}

	if !opts.watch {
		return exitCode(sum)
	}

	latest := newResultSet(results)
	err = svc.Watch(ctx, paths, live.Get, func(r coreapp.Result) {
		latest.Put(r)
		if err := writeReport(stdout, "", format, []coreapp.Result{r}, coreapp.Summarize([]coreapp.Result{r}), reportOpts); err != nil {
			slog.Warn("failed to write report", "path", r.Request.Path, "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to watch paths", "error", err)
		return exitFailure
	}
	return exitCode(latest.Summary())
}

func exitCode(sum coreapp.Summary) int {
	if sum.AllPassed {
		return exitOK
	}
	return exitFailure
}

// loadConfig reads the explicit config path, or the pyproject.toml of the
// project that contains the analyzed paths. Missing or broken files fall
// back to defaults.
func loadConfig(path string, args []string) (*config.Config, string, error) {
	if strings.TrimSpace(path) == "" {
		candidates := args
		if len(candidates) == 0 {
			candidates = []string{"."}
		}
		found, err := config.FindConfigFile(candidates)
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	return config.LoadSettings(abs), abs, nil
}

func applyFlagOverrides(opts cliOptions, cfg *config.Config) error {
	if opts.set["style"] {
		st, err := style.ParseStyle(opts.style)
		if err != nil {
			return err
		}
		cfg.Style = string(st)
	}
	if opts.set["threshold"] {
		cfg.CoverageThreshold = opts.threshold
	}
	if opts.set["checker"] {
		cfg.Checker = strings.ToLower(strings.TrimSpace(opts.checker))
	}
	if opts.set["workers"] {
		cfg.Workers = opts.workers
	}
	if opts.history || opts.trend {
		cfg.History.Enabled = true
	}
	if opts.set["metrics-addr"] {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}
	return errors.Join(config.Validate(cfg)...)
}

func validateModes(opts cliOptions, cfg *config.Config) error {
	if opts.trend && (opts.ui || opts.watch) {
		return fmt.Errorf("-trend cannot be combined with -ui or -watch")
	}
	if opts.since != "" && !opts.trend && !opts.ui {
		return fmt.Errorf("-since requires -trend or -ui")
	}
	if opts.ui && (opts.output != "" || opts.injectMarkdown != "") {
		return fmt.Errorf("-ui cannot be combined with -output or -inject-markdown")
	}
	if opts.watch && opts.output != "" {
		return fmt.Errorf("-watch writes to stdout and cannot be combined with -output")
	}
	if opts.trend && !cfg.History.Enabled {
		return fmt.Errorf("-trend requires history")
	}
	return nil
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}

	rfc3339, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return rfc3339.UTC(), nil
	}

	dateOnly, err := time.Parse("2006-01-02", raw)
	if err == nil {
		return dateOnly.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("-since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func writeReport(stdout io.Writer, output, format string, results []coreapp.Result, sum coreapp.Summary, opts report.Options) error {
	data, err := report.Render(format, results, sum, opts)
	if err != nil {
		return fmt.Errorf("render %s report: %w", format, err)
	}
	if output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := util.WriteFileWithDirs(output, data, 0o644); err != nil {
		return fmt.Errorf("write report %q: %w", output, err)
	}
	slog.Info("report written", "path", output, "format", format)
	return nil
}

// runTrend prints the history trend as json or tsv when asked; every other
// format gets the text summary.
func runTrend(stdout, stderr io.Writer, svc *coreapp.Service, paths []string, format string, since time.Time) int {
	store := svc.History()
	if store == nil {
		fmt.Fprintln(stderr, "history store unavailable")
		return exitFailure
	}

	// A single file argument narrows the trend to that file.
	path := ""
	if len(paths) == 1 {
		if info, err := os.Stat(paths[0]); err == nil && !info.IsDir() {
			path = filepath.Clean(paths[0])
		}
	}

	trend, err := store.Trend(svc.ProjectKey(), path, since)
	if err != nil {
		if errors.Is(err, history.ErrNoSnapshots) {
			fmt.Fprintln(stdout, "History: no snapshots matched the requested time window.")
			return exitOK
		}
		slog.Error("failed to build trend", "error", err)
		return exitFailure
	}

	var data []byte
	switch format {
	case report.FormatJSON:
		data, err = report.RenderTrendJSON(trend)
	case report.FormatTSV:
		data, err = report.RenderTrendTSV(trend)
	default:
		data = []byte(report.RenderTrendText(trend))
	}
	if err != nil {
		slog.Error("failed to render trend", "format", format, "error", err)
		return exitFailure
	}
	if _, err := stdout.Write(data); err != nil {
		slog.Error("failed to write trend", "error", err)
		return exitFailure
	}
	return exitOK
}

// liveOptions holds the analysis options watch mode uses. Configuration
// reloads replace them while flags given on the command line stay pinned.
type liveOptions struct {
	mu   sync.RWMutex
	opts coreapp.Options
}

func newLiveOptions(base coreapp.Options, filter string) *liveOptions {
	base.Filter = filter
	return &liveOptions{opts: base}
}

func (l *liveOptions) Get() coreapp.Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opts
}

func (l *liveOptions) update(cfg *config.Config, opts cliOptions) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !opts.set["style"] {
		if st, err := style.ParseStyle(cfg.Style); err == nil {
			l.opts.Style = st
		}
	}
	if !opts.set["threshold"] {
		l.opts.Threshold = cfg.CoverageThreshold
	}
	slog.Info("configuration reloaded", "style", l.opts.Style, "threshold", l.opts.Threshold)
}

func watchConfig(ctx context.Context, cfgPath string, opts cliOptions, live *liveOptions) func() {
	if _, err := os.Stat(cfgPath); err != nil {
		return func() {}
	}
	w := config.NewWatcher(cfgPath, func(cfg *config.Config) {
		live.update(cfg, opts)
	})
	if err := w.Start(ctx); err != nil {
		slog.Warn("config reload disabled", "path", cfgPath, "error", err)
		return func() {}
	}
	return w.Stop
}

// resultSet keeps the latest result per path across watch updates.
type resultSet struct {
	mu     sync.Mutex
	order  []string
	byPath map[string]coreapp.Result
}

func newResultSet(results []coreapp.Result) *resultSet {
	s := &resultSet{byPath: make(map[string]coreapp.Result, len(results))}
	for _, r := range results {
		s.Put(r)
	}
	return s
}

func (s *resultSet) Put(r coreapp.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := filepath.Clean(r.Request.Path)
	if _, ok := s.byPath[key]; !ok {
		s.order = append(s.order, key)
	}
	s.byPath[key] = r
}

func (s *resultSet) Results() []coreapp.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]coreapp.Result, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.byPath[key])
	}
	return out
}

func (s *resultSet) Summary() coreapp.Summary {
	return coreapp.Summarize(s.Results())
}

func configureLogging(uiMode, verbose bool, stderr io.Writer) func() {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	output := stderr
	var closeFn func() = func() {}
	if uiMode {
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err != nil {
			fmt.Fprintf(stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
				if err == nil {
					output = f
					closeFn = func() { _ = f.Close() }
				} else {
					fmt.Fprintf(stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return closeFn
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "doccov", "doccov.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "doccov", "doccov.log")
	}

	return "doccov.log"
}
