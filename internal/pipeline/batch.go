package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"surveyforge/internal/normalize"
	"surveyforge/internal/survey"
	"surveyforge/internal/validate"
)

// ErrOutputCollision reports two surveys mapped to one output directory.
var ErrOutputCollision = errors.New("output directory collision")

// Document statuses of a batch.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusInvalid = "invalid"
)

// DocumentResult summarizes one survey of a batch.
type DocumentResult struct {
	RunID            string           `json:"run_id"`
	Path             string           `json:"path"`
	Status           string           `json:"status"`
	Summary          validate.Summary `json:"summary"`
	StructuralIssues int              `json:"structural_issues"`
	Rendered         bool             `json:"rendered"`
	OutputDir        string           `json:"output_dir,omitempty"`
	Error            string           `json:"error,omitempty"`
	Duration         time.Duration    `json:"duration_ns"`
}

// BatchSummary aggregates a batch.
type BatchSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Invalid  int     `json:"invalid"`
	PassRate float64 `json:"pass_rate"`
}

// Record is one stored run.
type Record struct {
	RunID      string
	SurveyPath string
	Survey     *survey.Document
	StartedAt  time.Time
	Duration   time.Duration
	Status     string
	Results    []validate.Result
	Issues     []normalize.Issue
}

// Recorder persists run records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// Workers bounds concurrent documents. Zero uses GOMAXPROCS.
	Workers int
	// OutputDir, when set, receives one sub-directory per survey.
	OutputDir string
	Observer  Observer
	Recorder  Recorder
	Logger    *zap.Logger
	// RunID overrides run id generation.
	RunID func() (string, error)
	Now   func() time.Time
}

// RunBatch runs every survey at paths through Process with the shared
// validator. A survey that fails to load is reported as invalid and does not
// stop the batch; output and recorder failures do. Results keep the order of
// paths. Two surveys that would share an output directory are rejected before
// any work starts.
func RunBatch(ctx context.Context, paths []string, v *validate.Validator, opts BatchOptions) ([]DocumentResult, BatchSummary, error) {
	if opts.OutputDir != "" {
		if err := checkOutputNames(paths); err != nil {
			return nil, BatchSummary{}, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	workers := limitOrDefault(opts.Workers, runtime.GOMAXPROCS(0))

	results := make([]DocumentResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			observer.OnDocumentStart(path)
			res, err := runOne(gctx, path, v, opts, now)
			results[i] = res
			if err != nil {
				return err
			}
			logger.Info("survey processed",
				zap.String("run_id", res.RunID),
				zap.String("path", path),
				zap.String("status", res.Status),
				zap.Int("errors", res.Summary.Errors))
			observer.OnDocumentEnd(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, summarize(results), err
	}
	return results, summarize(results), nil
}

func runOne(ctx context.Context, path string, v *validate.Validator, opts BatchOptions, now func() time.Time) (DocumentResult, error) {
	started := now()
	runID, err := ensureRunID(opts.RunID)
	if err != nil {
		return DocumentResult{Path: path}, fmt.Errorf("run id: %w", err)
	}
	res := DocumentResult{RunID: runID, Path: path}

	doc, err := survey.Load(path)
	if err != nil {
		res.Status = StatusInvalid
		res.Error = err.Error()
		res.Duration = now().Sub(started)
		return res, nil
	}
	out, err := Process(doc, v)
	if err != nil {
		res.Status = StatusInvalid
		res.Error = err.Error()
		res.Duration = now().Sub(started)
		return res, nil
	}
	res.Summary = validate.Summarize(out.Results)
	res.StructuralIssues = len(out.Issues)
	res.Rendered = out.Spec != nil
	res.Status = StatusPassed
	if out.Blocked != nil {
		res.Status = StatusFailed
	}

	if opts.OutputDir != "" {
		written, err := WriteOutputs(filepath.Join(opts.OutputDir, outputName(path)), out)
		if err != nil {
			return res, err
		}
		res.OutputDir = written.Dir
	}
	res.Duration = now().Sub(started)
	if opts.Recorder != nil {
		stored := out.Validated
		if stored == nil {
			stored = out.Normalized
		}
		rec := Record{
			RunID:      runID,
			SurveyPath: path,
			Survey:     stored,
			StartedAt:  started,
			Duration:   res.Duration,
			Status:     res.Status,
			Results:    out.Results,
			Issues:     out.Issues,
		}
		if err := opts.Recorder.Record(ctx, rec); err != nil {
			return res, fmt.Errorf("record %s: %w", path, err)
		}
	}
	return res, nil
}

// outputName derives a directory name from a survey path. The extension is
// kept so survey.json and survey.yml do not share a directory.
func outputName(path string) string {
	return filepath.Base(path)
}

func checkOutputNames(paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := outputName(path)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s and %s both write to %s", ErrOutputCollision, prev, path, name)
		}
		seen[name] = path
	}
	return nil
}

// ensureRunID uses the provided generator or falls back to NewRunID.
func ensureRunID(generator func() (string, error)) (string, error) {
	if generator != nil {
		return generator()
	}
	return NewRunID()
}

// summarize aggregates document results.
func summarize(results []DocumentResult) BatchSummary {
	summary := BatchSummary{Total: len(results)}
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusInvalid:
			summary.Invalid++
		}
	}
	if summary.Total > 0 {
		summary.PassRate = float64(summary.Passed) / float64(summary.Total)
	}
	return summary
}

// limitOrDefault returns the limit when set, otherwise the fallback.
func limitOrDefault(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	if fallback > 0 {
		return fallback
	}
	return 1
}

// FormatPassRate returns a percentage string.
func FormatPassRate(rate float64) string {
	return fmt.Sprintf("%.2f", rate*100)
}
