package diff

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/unicode/norm"

	"github.com/compscan/compscan/internal/embedding"
	"github.com/compscan/compscan/internal/model"
)

// DefaultThreshold is the classification threshold used when none is configured.
const DefaultThreshold = 0.80

// defaultCacheSize bounds the embedding cache. Each entry is one page's
// vector; a monitoring run touches at most two texts per entity.
const defaultCacheSize = 256

// Comparison errors.
var (
	// ErrEmptyInput is returned when either text is empty after
	// normalization. Empty text cannot be meaningfully embedded and must
	// not silently produce a score of 1.0 or 0.0.
	ErrEmptyInput = errors.New("cannot compare empty text")

	// ErrDimensionMismatch is returned when the provider returns vectors
	// of different lengths for the two texts. This indicates a provider
	// misconfiguration (e.g., model changed between calls).
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Result is the outcome of one comparison.
type Result struct {
	// Score is the cosine similarity clamped to [0,1].
	Score float64

	// Classification is StrategicShift or MinorUpdate. NewlyMonitored is
	// never produced here; it is the absence of a comparison.
	Classification model.Classification
}

// Engine computes similarity scores using an injected Embedder.
// It is safe for concurrent use.
type Engine struct {
	embedder  embedding.Embedder
	threshold float64

	// sem bounds concurrent embedder calls. The provider's thread-safety
	// and rate-limit contract is opaque, so the engine never assumes
	// unbounded safe concurrency against it.
	sem *semaphore.Weighted

	// embedTimeout bounds a single provider call. Zero means the caller's
	// context alone governs the deadline.
	embedTimeout time.Duration

	// cache memoizes vectors by normalized-text digest.
	cache *lru.Cache[[32]byte, []float64]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithThreshold sets the classification threshold.
// Values outside (0, 1] are ignored and the default kept.
func WithThreshold(t float64) EngineOption {
	return func(e *Engine) {
		if t > 0 && t <= 1 {
			e.threshold = t
		}
	}
}

// WithMaxConcurrentEmbeds sets how many embedder calls may be in flight
// at once. Default is 1: serialized access is the safe assumption for an
// opaque provider.
func WithMaxConcurrentEmbeds(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithEmbedTimeout bounds each embedding provider call. A hung provider
// then fails that entity's comparison instead of stalling the run.
// Non-positive values are ignored.
func WithEmbedTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.embedTimeout = d
		}
	}
}

// NewEngine creates an Engine around the given embedder.
func NewEngine(embedder embedding.Embedder, opts ...EngineOption) *Engine {
	e := &Engine{
		embedder:  embedder,
		threshold: DefaultThreshold,
		sem:       semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(e)
	}

	// lru.New only fails on a non-positive size.
	cache, err := lru.New[[32]byte, []float64](defaultCacheSize)
	if err != nil {
		panic(err)
	}
	e.cache = cache

	return e
}

// Threshold returns the engine's classification threshold.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Compare computes the similarity between current and baseline text and
// classifies it. Both texts are normalized first; identical normalized
// texts score exactly 1.0 without an embedding call.
func (e *Engine) Compare(ctx context.Context, currentText, baselineText string) (Result, error) {
	current := Normalize(currentText)
	baseline := Normalize(baselineText)

	if current == "" || baseline == "" {
		return Result{}, ErrEmptyInput
	}

	if current == baseline {
		return Result{Score: 1.0, Classification: e.Classify(1.0)}, nil
	}

	a, err := e.embed(ctx, current)
	if err != nil {
		return Result{}, err
	}
	b, err := e.embed(ctx, baseline)
	if err != nil {
		return Result{}, err
	}

	score, err := Cosine(a, b)
	if err != nil {
		return Result{}, err
	}

	return Result{Score: score, Classification: e.Classify(score)}, nil
}

// Classify maps a score in [0,1] to a classification.
// A score exactly at the threshold is a minor update; only scores strictly
// below it are strategic shifts.
func (e *Engine) Classify(score float64) model.Classification {
	if score < e.threshold {
		return model.StrategicShift
	}
	return model.MinorUpdate
}

// embed returns the vector for normalized text, consulting the cache and
// holding a semaphore slot for the duration of a provider call.
func (e *Engine) embed(ctx context.Context, text string) ([]float64, error) {
	key := sha256.Sum256([]byte(text))
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire embedding slot: %w", err)
	}
	defer e.sem.Release(1)

	// Re-check after acquiring: another goroutine may have embedded the
	// same text while we waited.
	if vec, ok := e.cache.Get(key); ok {
		return vec, nil
	}

	callCtx := ctx
	if e.embedTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.embedTimeout)
		defer cancel()
	}
	vec, err := e.embedder.Embed(callCtx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Add(key, vec)
	return vec, nil
}

// Normalize canonicalizes text for comparison: Unicode NFC followed by
// whitespace collapsing. Whitespace-only input normalizes to the empty
// string.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Cosine computes the cosine similarity of two vectors, clamped to [0,1].
//
// Raw cosine lies in [-1,1]; monitored texts are non-adversarial so
// negative values should not occur, but floating-point drift can push the
// result fractionally out of range, so we clamp rather than propagate
// out-of-range values.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(magA) * math.Sqrt(magB))

	// Clamp for floating-point drift.
	if cos > 1 {
		cos = 1
	}
	if cos < 0 {
		cos = 0
	}
	return cos, nil
}
