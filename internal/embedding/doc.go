// Package embedding provides text-to-vector clients for semantic comparison.
//
// The Embedder interface is the injection point: the similarity engine
// consumes it as a black box and tests substitute deterministic stubs.
// Two production implementations are provided:
//   - GeminiEmbedder: Google's Gemini embedding API via google.golang.org/genai
//   - HTTPEmbedder: a self-hosted inference service speaking a small JSON
//     protocol (e.g., a sentence-transformers server)
//
// Any transport or provider failure is wrapped with ErrUnavailable so
// callers can treat "the embedding service cannot be reached" uniformly
// across providers.
package embedding
