package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"doccov/internal/core/errors"
	"doccov/internal/data/history"
	"doccov/internal/engine/coverage"
	"doccov/internal/engine/parser"
	"doccov/internal/engine/style"
	"doccov/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options are the per-request settings.
type Options struct {
	Style     style.Style
	Threshold int
	// Filter narrows displayed declarations by a case-insensitive name
	// substring. It never changes the computed coverage.
	Filter string
}

// Request is everything one analysis needs. It carries its own settings so
// concurrent requests never share mutable state.
type Request struct {
	ID        uuid.UUID
	RunID     uuid.UUID // shared by every request of one batch
	Path      string
	Source    []byte
	Style     style.Style
	Threshold int
	Filter    string
}

// Result is the outcome of one request. Coverage and style checking are
// independent: either side may fail while the other succeeds.
type Result struct {
	Request       Request
	Report        *coverage.Report // nil when the source could not be analyzed
	Compliance    coverage.Compliance
	ParseErr      error
	Violations    []style.Violation
	ViolationsErr error
	Duration      time.Duration
}

// Failed reports whether the result counts against the exit status.
func (r Result) Failed() bool {
	return r.ParseErr != nil || !r.Compliance.Passed
}

// Declarations returns the report's declarations narrowed by the request
// filter.
func (r Result) Declarations() []parser.Declaration {
	if r.Report == nil {
		return nil
	}
	return r.Report.Filter(r.Request.Filter)
}

// DefaultOptions returns the configured style and threshold.
func (s *Service) DefaultOptions() Options {
	st, err := style.ParseStyle(s.Config.Style)
	if err != nil {
		st = style.StyleNumpy
	}
	return Options{Style: st, Threshold: s.Config.CoverageThreshold}
}

// NewRequest builds a request for source with a fresh ID.
func (s *Service) NewRequest(path string, source []byte, opts Options) Request {
	if opts.Style == "" {
		opts.Style = s.DefaultOptions().Style
	}
	return Request{
		ID:        uuid.New(),
		Path:      path,
		Source:    source,
		Style:     opts.Style,
		Threshold: opts.Threshold,
		Filter:    opts.Filter,
	}
}

// Analyze computes coverage, compliance and style violations for req. The
// returned error is reserved for unusable requests and cancellation;
// analysis failures are reported inside the Result.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "Service.Analyze", trace.WithAttributes(
		attribute.String("doccov.path", req.Path),
		attribute.String("doccov.style", string(req.Style)),
		attribute.Int("doccov.threshold", req.Threshold),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := coverage.ValidateThreshold(req.Threshold); err != nil {
		return Result{}, errors.AddContext(err, errors.CtxPath, req.Path)
	}
	if req.Style == "" {
		req.Style = s.DefaultOptions().Style
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	started := time.Now()
	res := Result{Request: req}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		res.Violations, res.ViolationsErr = s.checker.Check(ctx, req.Path, req.Source, req.Style)
	}()

	report, err := s.analyzer.Analyze(req.Path, req.Source)
	if err != nil {
		res.ParseErr = err
	} else {
		res.Report = report
		// Threshold was validated above.
		res.Compliance, _ = coverage.Evaluate(report, req.Threshold)
	}

	wg.Wait()
	res.Duration = time.Since(started)

	s.record(res)
	if res.ParseErr != nil {
		span.SetStatus(codes.Error, res.ParseErr.Error())
	} else {
		span.SetAttributes(
			attribute.Int("doccov.total", res.Report.Total),
			attribute.Int("doccov.documented", res.Report.Documented),
			attribute.Bool("doccov.passed", res.Compliance.Passed),
		)
	}
	s.saveSnapshot(res)

	return res, nil
}

// AnalyzeFile reads path and analyzes it.
func (s *Service) AnalyzeFile(ctx context.Context, path string, opts Options) (Result, error) {
	source, err := readSource(path)
	if err != nil {
		return Result{}, err
	}
	return s.Analyze(ctx, s.NewRequest(path, source, opts))
}

// readSource reads a Python file. Only a missing file is NOT_FOUND; other
// read failures carry the path as internal errors.
func readSource(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err == nil {
		return source, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, fmt.Sprintf("source file %s not found", path)), errors.CtxPath, path)
	}
	return nil, errors.AddContext(fmt.Errorf("read source: %w", err), errors.CtxPath, path)
}

func (s *Service) record(res Result) {
	outcome := "passed"
	switch {
	case res.ParseErr != nil:
		outcome = "parse_failure"
		if errors.IsCode(res.ParseErr, errors.CodeParseFailure) {
			observability.ParseFailuresTotal.Inc()
		}
		slog.Warn("cannot analyze source", "path", res.Request.Path, "request_id", res.Request.ID, "error", res.ParseErr)
	case !res.Compliance.Passed:
		outcome = "failed"
	}
	observability.AnalysisDuration.WithLabelValues(outcome).Observe(res.Duration.Seconds())

	if res.Report != nil {
		for _, d := range res.Report.Declarations {
			status := "undocumented"
			if d.Documented {
				status = "documented"
			}
			observability.DeclarationsTotal.WithLabelValues(d.Kind.String(), status).Inc()
		}
		observability.LastCoveragePercent.Set(res.Report.Percentage)
		slog.Debug("analyzed source",
			"path", res.Request.Path,
			"request_id", res.Request.ID,
			"style", res.Request.Style,
			"threshold", res.Request.Threshold,
			"total", res.Report.Total,
			"documented", res.Report.Documented,
			"passed", res.Compliance.Passed,
		)
	}

	checker := s.checker.Name()
	if res.ViolationsErr != nil {
		observability.StyleCheckFailuresTotal.WithLabelValues(checker).Inc()
		slog.Warn("style check failed", "path", res.Request.Path, "request_id", res.Request.ID, "checker", checker, "error", res.ViolationsErr)
	}
	observability.ViolationsTotal.WithLabelValues(checker).Add(float64(len(res.Violations)))
}

func (s *Service) saveSnapshot(res Result) {
	if s.snapshots == nil || res.Report == nil {
		return
	}
	runID := res.Request.RunID
	if runID == uuid.Nil {
		runID = res.Request.ID
	}
	snapshot := history.Snapshot{
		Path:           res.Request.Path,
		Timestamp:      time.Now().UTC(),
		RunID:          runID.String(),
		Style:          string(res.Request.Style),
		Threshold:      res.Request.Threshold,
		Total:          res.Report.Total,
		Documented:     res.Report.Documented,
		Percentage:     res.Report.Percentage,
		Passed:         res.Compliance.Passed,
		ViolationCount: len(res.Violations),
	}
	s.snapshots.Submit(snapshot)
}
