// Package pgx is a Postgres-backed EmbeddingStore using a pgvector column,
// shared by the server and worker processes.
package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store persists embeddings in the embedding_cache table.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Postgres-backed store on the given pool. The pool must have
// pgvector types registered.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]float32, bool, error) {
	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT embedding FROM embedding_cache WHERE cache_key = $1`,
		key,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read embedding cache: %w", err)
	}
	return vec.Slice(), true, nil
}

func (s *Store) Set(ctx context.Context, key string, embedding []float32) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO embedding_cache (cache_key, embedding)
		 VALUES ($1, $2)
		 ON CONFLICT (cache_key) DO UPDATE SET embedding = EXCLUDED.embedding`,
		key, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to write embedding cache: %w", err)
	}
	return nil
}
