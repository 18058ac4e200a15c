package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/compscan/compscan/internal/config"
	"github.com/compscan/compscan/internal/model"
)

// BatchProcessor handles concurrent processing of the configured
// entities. It uses errgroup to manage goroutines and respect the
// concurrency limit.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each entity.
	// A factory ensures each entity gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of entities processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrently processed
// entities. Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each entity to create a
// fresh pipeline instance, so pipeline state never leaks between
// entities.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch processes the given entities concurrently and returns one
// result per entity, in the given order regardless of completion order.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each entity gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Entity failures never abort the batch; they are recorded on the
// entity's result. The error return is non-nil only when the context is
// cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, entities []config.EntityConfig) ([]*EntityResult, error) {
	bp.logger.Info("starting batch processing",
		"total_entities", len(entities),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Results are written by index, so no mutex is needed and the
	// configuration order is preserved.
	results := make([]*EntityResult, len(entities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, entity := range entities {
		g.Go(func() error {
			result := NewEntityResult(entity)
			results[i] = result

			select {
			case <-ctx.Done():
				result.fail(model.StageExtract, ctx.Err())
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing entity",
				"entity", entity.Name,
				"index", i+1,
				"total", len(entities),
			)

			pipeline := bp.pipelineFactory()
			if err := pipeline.Execute(ctx, result); err != nil {
				// Execute only returns context errors; entity
				// failures are already recorded on the result.
				return err
			}

			if result.Failed() {
				bp.logger.Warn("entity failed",
					"entity", entity.Name,
					"stage", result.Failure.Stage,
					"error", result.Failure.Message,
				)
			} else {
				bp.logger.Info("entity completed",
					"entity", entity.Name,
					"classification", result.Outcome.Classification,
				)
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_entities", len(entities),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
