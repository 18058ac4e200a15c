// Package diff computes semantic similarity between a page's current text
// and its historical baseline, and classifies the result.
//
// Similarity is the cosine of the two embedding vectors, clamped to [0,1].
// The classification threshold (default 0.80) separates strategic shifts
// from minor updates; entities without a baseline never reach this package
// and are classified NewlyMonitored by the pipeline.
//
// The engine normalizes both texts (NFC plus whitespace collapsing) before
// comparison and short-circuits identical texts to an exact score of 1.0
// without touching the embedding provider. Embedding calls are bounded by
// a semaphore and memoized in a per-engine LRU cache, so an unchanged
// baseline shared across runs is vectorized once.
package diff
