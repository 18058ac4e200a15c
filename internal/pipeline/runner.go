package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compscan/compscan/internal/archive"
	"github.com/compscan/compscan/internal/config"
	"github.com/compscan/compscan/internal/database"
	"github.com/compscan/compscan/internal/diff"
	"github.com/compscan/compscan/internal/extract"
	"github.com/compscan/compscan/internal/model"
	"github.com/compscan/compscan/internal/report"
)

// RunStatus describes how a run ended.
type RunStatus string

const (
	// StatusCompleted means every entity produced an outcome and the
	// report was archived.
	StatusCompleted RunStatus = "completed"

	// StatusCompletedWithErrors means the report was archived but at
	// least one entity failed.
	StatusCompletedWithErrors RunStatus = "completed-with-errors"

	// StatusNotPersisted means the report was assembled but could not
	// be written to the archive.
	StatusNotPersisted RunStatus = "not-persisted"
)

// RunResult is the outcome of one monitoring run.
type RunResult struct {
	// Report is the assembled report.
	Report *model.IntelligenceReport

	// Markdown is the rendered report.
	Markdown string

	// Path is the archived report file, empty when archiving failed.
	Path string

	// Status describes how the run ended.
	Status RunStatus
}

// Runner executes a complete monitoring run: process every configured
// entity, assemble the report, archive it, and optionally index it in
// the run database.
type Runner struct {
	cfg     *config.Config
	engine  *diff.Engine
	store   *archive.Store
	writer  *archive.Writer
	builder *report.Builder
	db      *database.RunDB
	logger  *slog.Logger
	now     func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for the run.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunDB attaches a run database; each archived run is also indexed
// there. Without it runs are only archived as markdown.
func WithRunDB(db *database.RunDB) RunnerOption {
	return func(r *Runner) {
		r.db = db
	}
}

// WithClock overrides the run clock.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner over a validated configuration and a
// similarity engine.
func NewRunner(cfg *config.Config, engine *diff.Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:     cfg,
		engine:  engine,
		store:   archive.NewStore(cfg.ReportsDir),
		writer:  archive.NewWriter(cfg.ReportsDir),
		builder: report.NewBuilder(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run executes one monitoring run and returns its result.
//
// The report is assembled even when archiving fails: the returned result
// always carries the report and its rendered markdown, and a non-nil
// error together with StatusNotPersisted signals that the archive write
// failed. Entity failures are not run errors; they appear in the
// report's error section.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	runDate := r.now()

	r.logger.Info("starting run",
		"run_date", runDate.Format("2006-01-02"),
		"entities", len(r.cfg.Entities),
	)

	extractor := extract.NewHTTPExtractor(
		extract.WithTimeout(r.cfg.ExtractTimeout),
		extract.WithUserAgent(r.cfg.UserAgent),
		extract.WithMaxBodySize(r.cfg.MaxBodySize),
	)

	factory := func() *Pipeline {
		p := New(WithLogger(r.logger))
		p.AddSteps(
			NewExtractStep(extractor),
			NewBaselineStep(r.store, runDate),
			NewCompareStep(r.engine),
		)
		return p
	}

	bp := NewBatchProcessor(factory,
		WithBatchLogger(r.logger),
		WithConcurrency(r.cfg.Concurrency),
	)
	results, err := bp.ProcessBatch(ctx, r.cfg.Entities)
	if err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	rep := r.assemble(runDate, results)
	md := r.builder.Build(rep)

	result := &RunResult{
		Report:   rep,
		Markdown: md,
	}

	path, err := r.writer.Save(runDate, md)
	if err != nil {
		r.logger.Error("failed to archive report", "error", err)
		result.Status = StatusNotPersisted
		return result, err
	}
	result.Path = path

	if r.db != nil {
		if err := r.db.SaveRun(ctx, rep); err != nil {
			// The archive holds the canonical record; a failed index
			// update is logged but does not fail the run.
			r.logger.Error("failed to index run in database", "error", err)
		}
	}

	if len(rep.Errors) > 0 {
		result.Status = StatusCompletedWithErrors
	} else {
		result.Status = StatusCompleted
	}

	r.logger.Info("run complete",
		"status", result.Status,
		"path", path,
		"strategic_shifts", rep.Summary.StrategicShifts,
		"errors", rep.Summary.Errors,
	)
	return result, nil
}

// assemble turns per-entity results into a report, keeping sections in
// configuration order.
func (r *Runner) assemble(runDate time.Time, results []*EntityResult) *model.IntelligenceReport {
	var sections []model.EntitySection
	var errs []model.ErrorOutcome

	for _, res := range results {
		if res.Failed() {
			errs = append(errs, *res.Failure)
			continue
		}
		sections = append(sections, model.EntitySection{
			Outcome:      *res.Outcome,
			Address:      res.Entity.URL,
			Description:  res.Entity.Description,
			Sources:      res.Entity.Sources,
			CapturedText: res.Content.Text,
		})
	}
	return model.NewIntelligenceReport(runDate, sections, errs)
}
