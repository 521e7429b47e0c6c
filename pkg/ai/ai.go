// Package ai defines the embedding collaborator consumed by the coherence
// pipeline. Providers map a sentence to a fixed-length vector; the pipeline
// only depends on the output shape and a stable similarity metric over it.
package ai

import (
	"context"
	"fmt"
)

// Embedder produces fixed-dimensionality sentence embeddings. Implementations
// must return the same vector for the same input so results can be cached by
// content hash.
type Embedder interface {
	// GenerateEmbedding embeds a single sentence.
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
	// GenerateEmbeddings embeds a batch, preserving input order.
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
	// Model identifies the embedding model, used as part of cache keys.
	Model() string

	GetMetrics() ModelMetrics
	ResetMetrics()
}

// ModelMetrics accumulates token usage and timing across embedding calls.
type ModelMetrics struct {
	InputTokens int   `json:"input_tokens"`
	TotalTokens int   `json:"total_tokens"`
	DurationMs  int64 `json:"duration_ms"`
}

// EmbeddingError reports a failure of the embedding backend. It is always
// propagated to the caller; a zero vector must never be substituted, since
// that would corrupt every similarity computed from it.
type EmbeddingError struct {
	Provider string
	Err      error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (provider %s): %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}
