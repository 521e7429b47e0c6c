package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cohera/pkg/ai"

	"github.com/openai/openai-go/v3"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
func (c *Embedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	res, err := c.GenerateEmbeddings(ctx, [][]byte{input})
	if err != nil {
		return nil, err
	}
	if len(res) != 1 {
		return nil, &ai.EmbeddingError{
			Provider: "openai",
			Err:      fmt.Errorf("unexpected embedding result size: got %d want 1", len(res)),
		}
	}
	return res[0], nil
}

// GenerateEmbeddings creates embeddings for multiple inputs in a single
// request, preserving input order.
//
// Blank inputs are rejected rather than mapped to zero vectors: a zero
// vector has no direction and would corrupt cosine similarities downstream.
func (c *Embedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	strs := make([]string, len(inputs))
	for i, in := range inputs {
		if len(strings.TrimSpace(string(in))) == 0 {
			return nil, &ai.EmbeddingError{Provider: "openai", Err: fmt.Errorf("input %d is blank", i)}
		}
		strs[i] = string(in)
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	start := time.Now()
	response, err := c.Client.Embeddings.New(rCtx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: strs},
		Model: c.model,
	})
	if err != nil {
		return nil, &ai.EmbeddingError{Provider: "openai", Err: err}
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: int(response.Usage.PromptTokens),
		TotalTokens: int(response.Usage.TotalTokens),
		DurationMs:  time.Since(start).Milliseconds(),
	})

	if len(response.Data) != len(inputs) {
		return nil, &ai.EmbeddingError{
			Provider: "openai",
			Err:      fmt.Errorf("embedding response size mismatch: got %d want %d", len(response.Data), len(inputs)),
		}
	}

	out := make([][]float32, len(inputs))
	for _, embedding := range response.Data {
		idx := int(embedding.Index)
		if idx < 0 || idx >= len(inputs) {
			return nil, &ai.EmbeddingError{
				Provider: "openai",
				Err:      fmt.Errorf("embedding index out of range: %d", embedding.Index),
			}
		}
		vec := make([]float32, len(embedding.Embedding))
		for i, v := range embedding.Embedding {
			vec[i] = float32(v)
		}
		out[idx] = vec
	}
	for i := range out {
		if out[i] == nil {
			return nil, &ai.EmbeddingError{
				Provider: "openai",
				Err:      fmt.Errorf("missing embedding for index %d", i),
			}
		}
	}
	return out, nil
}
