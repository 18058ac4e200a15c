package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding provider could not be reached or
// returned an unusable response. It is a per-entity failure, not fatal to
// a run.
var ErrUnavailable = errors.New("embedding service unavailable")

// Embedder converts text into a fixed-dimension numeric vector.
// Implementations are safe for concurrent use, but callers should bound
// their concurrency; provider rate limits are an external constraint.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
