// Package store provides the optional read-through embedding cache shared by
// pipeline runs. Entries are keyed by a stable content hash of the sentence
// text plus the model that produced the vector, so switching models never
// serves stale vectors.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
)

// EmbeddingStore caches sentence embeddings across requests. Implementations
// must be safe for concurrent use, but need no cross-request locking: a race
// that computes the same embedding twice is wasteful, not unsafe.
type EmbeddingStore interface {
	// Get returns the cached vector for key, with ok=false on a miss.
	Get(ctx context.Context, key string) (embedding []float32, ok bool, err error)
	// Set stores the vector under key, overwriting any previous value.
	Set(ctx context.Context, key string, embedding []float32) error
}

// Key derives the cache key for a sentence embedded by a given model.
func Key(model, text string) string {
	h := sha1.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
