// Package memory is an in-process EmbeddingStore for single-node deployments
// and tests.
package memory

import (
	"context"
	"sync"
)

// Store holds embeddings in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{entries: make(map[string][]float32)}
}

func (s *Store) Get(_ context.Context, key string) ([]float32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emb, ok := s.entries[key]
	return emb, ok, nil
}

func (s *Store) Set(_ context.Context, key string, embedding []float32) error {
	stored := make([]float32, len(embedding))
	copy(stored, embedding)

	s.mu.Lock()
	s.entries[key] = stored
	s.mu.Unlock()
	return nil
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
