package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/compscan/compscan/internal/archive"
	"github.com/compscan/compscan/internal/diff"
	"github.com/compscan/compscan/internal/extract"
	"github.com/compscan/compscan/internal/model"
)

// ExtractStep fetches an entity's page and extracts its visible text.
type ExtractStep struct {
	extractor extract.Extractor
	now       func() time.Time
}

// NewExtractStep creates an ExtractStep using the given extractor.
func NewExtractStep(extractor extract.Extractor) *ExtractStep {
	return &ExtractStep{
		extractor: extractor,
		now:       time.Now,
	}
}

// Stage returns the extract stage.
func (s *ExtractStep) Stage() model.Stage {
	return model.StageExtract
}

// Do extracts the entity's page text and records it on the result.
func (s *ExtractStep) Do(ctx context.Context, result *EntityResult) error {
	text, err := s.extractor.Extract(ctx, result.Entity.URL, result.Entity.Selector)
	if err != nil {
		return fmt.Errorf("extract %s: %w", result.Entity.URL, err)
	}
	result.Content = &model.ExtractedContent{
		Entity:     result.Entity.Name,
		Text:       text,
		CapturedAt: s.now(),
	}
	return nil
}

// BaselineStep recovers an entity's baseline from the report archive.
type BaselineStep struct {
	store   *archive.Store
	runDate time.Time
}

// NewBaselineStep creates a BaselineStep reading baselines dated strictly
// before the given run date.
func NewBaselineStep(store *archive.Store, runDate time.Time) *BaselineStep {
	return &BaselineStep{
		store:   store,
		runDate: runDate,
	}
}

// Stage returns the baseline stage.
func (s *BaselineStep) Stage() model.Stage {
	return model.StageBaseline
}

// Do looks up the entity's most recent archived text. An absent baseline
// is a valid result (the entity is newly monitored); a damaged archive
// file is a failure for this entity only.
func (s *BaselineStep) Do(_ context.Context, result *EntityResult) error {
	baseline, err := s.store.FindBaseline(result.Entity.Name, s.runDate)
	if err != nil {
		return err
	}
	result.Baseline = baseline
	return nil
}

// CompareStep computes the similarity outcome from the extracted text and
// the baseline.
type CompareStep struct {
	engine *diff.Engine
}

// NewCompareStep creates a CompareStep using the given engine.
func NewCompareStep(engine *diff.Engine) *CompareStep {
	return &CompareStep{engine: engine}
}

// Stage returns the compare stage.
func (s *CompareStep) Stage() model.Stage {
	return model.StageCompare
}

// Do classifies the entity. Without a baseline the entity is newly
// monitored and no comparison runs; otherwise the engine scores the
// extracted text against the baseline.
func (s *CompareStep) Do(ctx context.Context, result *EntityResult) error {
	if result.Content == nil {
		return fmt.Errorf("no extracted content for %s", result.Entity.Name)
	}

	if result.Baseline == nil {
		result.Outcome = &model.SimilarityOutcome{
			Entity:         result.Entity.Name,
			Classification: model.NewlyMonitored,
		}
		return nil
	}

	res, err := s.engine.Compare(ctx, result.Content.Text, result.Baseline.Text)
	if err != nil {
		return fmt.Errorf("compare %s: %w", result.Entity.Name, err)
	}
	result.Outcome = &model.SimilarityOutcome{
		Entity:         result.Entity.Name,
		Score:          res.Score,
		Classification: res.Classification,
		BaselineDate:   result.Baseline.ReportDate,
	}
	return nil
}
