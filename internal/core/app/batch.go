package app

import (
	"context"
	"sync"
	"time"

	"doccov/internal/core/errors"
	"doccov/internal/engine/coverage"
	"doccov/internal/shared/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Summary aggregates a batch of results.
type Summary struct {
	RunID         uuid.UUID
	Files         int
	ParseFailures int
	StyleFailures int
	NonCompliant  int
	Total         int
	Documented    int
	Percentage    float64
	Violations    int
	AllPassed     bool
	Duration      time.Duration
}

// Summarize folds results into a Summary. Files that could not be analyzed
// contribute no declarations.
func Summarize(results []Result) Summary {
	sum := Summary{Files: len(results), AllPassed: true}
	for _, r := range results {
		if r.ParseErr != nil {
			sum.ParseFailures++
		} else if !r.Compliance.Passed {
			sum.NonCompliant++
		}
		if r.ViolationsErr != nil {
			sum.StyleFailures++
		}
		if r.Failed() {
			sum.AllPassed = false
		}
		if r.Report != nil {
			sum.Total += r.Report.Total
			sum.Documented += r.Report.Documented
		}
		sum.Violations += len(r.Violations)
	}
	sum.Percentage = coverage.Percentage(sum.Documented, sum.Total)
	return sum
}

// AnalyzePaths expands paths and analyzes every file with up to
// Config.Workers analyses in flight. Results keep the expanded input order.
// Unreadable files become results carrying the read error as ParseErr.
func (s *Service) AnalyzePaths(ctx context.Context, paths []string, opts Options) ([]Result, Summary, error) {
	ctx, span := observability.Tracer.Start(ctx, "Service.AnalyzePaths")
	defer span.End()

	if err := coverage.ValidateThreshold(opts.Threshold); err != nil {
		return nil, Summary{}, err
	}

	files, err := s.ExpandPaths(paths)
	if err != nil {
		return nil, Summary{}, errors.AddContext(err, errors.CtxOperation, "expand_paths")
	}
	span.SetAttributes(attribute.Int("doccov.files", len(files)))

	started := time.Now()
	runID := uuid.New()
	results := make([]Result, len(files))

	workers := s.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.analyzeBatchFile(ctx, files[i], runID, opts)
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	s.FlushHistory()

	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}

	sum := Summarize(results)
	sum.RunID = runID
	sum.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("doccov.total", sum.Total),
		attribute.Int("doccov.documented", sum.Documented),
		attribute.Bool("doccov.all_passed", sum.AllPassed),
	)
	return results, sum, nil
}

func (s *Service) analyzeBatchFile(ctx context.Context, path string, runID uuid.UUID, opts Options) Result {
	source, err := readSource(path)
	req := s.NewRequest(path, source, opts)
	req.RunID = runID
	if err != nil {
		return Result{Request: req, ParseErr: err}
	}

	res, err := s.Analyze(ctx, req)
	if err != nil {
		return Result{Request: req, ParseErr: err}
	}
	return res
}
