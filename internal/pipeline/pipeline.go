package pipeline

import (
	"context"
	"log/slog"

	"github.com/compscan/compscan/internal/config"
	"github.com/compscan/compscan/internal/model"
)

// EntityResult accumulates one entity's state as it moves through the
// steps of a run. A result ends in exactly one of two shapes: Outcome set
// (the entity succeeded) or Failure set (the entity failed at some
// stage).
type EntityResult struct {
	// Entity is the entity's configuration, fixed at creation.
	Entity config.EntityConfig

	// Content is the text extracted for this run. Set by the extract
	// step.
	Content *model.ExtractedContent

	// Baseline is the entity's recovered baseline, nil when the entity
	// has no prior record. Set by the baseline step.
	Baseline *model.BaselineRecord

	// Outcome is the final similarity outcome. Set by the compare step.
	Outcome *model.SimilarityOutcome

	// Failure records the first stage error. Once set, remaining steps
	// are skipped.
	Failure *model.ErrorOutcome
}

// NewEntityResult creates a result for the given entity configuration.
func NewEntityResult(entity config.EntityConfig) *EntityResult {
	return &EntityResult{Entity: entity}
}

// Failed reports whether the entity has failed.
func (r *EntityResult) Failed() bool {
	return r.Failure != nil
}

// fail records the entity's failure at the given stage.
func (r *EntityResult) fail(stage model.Stage, err error) {
	r.Failure = &model.ErrorOutcome{
		Entity:  r.Entity.Name,
		Stage:   stage,
		Message: err.Error(),
	}
}

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the
// accumulated result from previous steps.
type Step interface {
	// Do executes the pipeline step. An error return fails the entity;
	// it is recorded on the result together with the step's stage and
	// stops further steps for that entity.
	Do(ctx context.Context, result *EntityResult) error

	// Stage returns the stage this step represents, used for error
	// attribution and logging.
	Stage() model.Stage
}

// Pipeline orchestrates the execution of steps for a single entity.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddSteps after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence for one entity.
//
// A step error fails the entity, not the run: it is recorded on the
// result and execution of that entity stops. Context cancellation is the
// one exception; it aborts the whole run, so it is both recorded and
// returned.
func (p *Pipeline) Execute(ctx context.Context, result *EntityResult) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"stage", step.Stage(),
				"entity", result.Entity.Name,
				"reason", ctx.Err(),
			)
			result.fail(step.Stage(), ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"stage", step.Stage(),
			"entity", result.Entity.Name,
		)

		if err := step.Do(ctx, result); err != nil {
			p.logger.Error("step failed",
				"stage", step.Stage(),
				"entity", result.Entity.Name,
				"error", err,
			)
			result.fail(step.Stage(), err)
			return nil
		}
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}
