package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cohera/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model on Ollama.
//
// Blank input is rejected rather than mapped to a zero vector: a zero
// vector has no direction and would corrupt cosine similarities downstream.
func (c *Embedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if len(strings.TrimSpace(string(input))) == 0 {
		return nil, &ai.EmbeddingError{Provider: "ollama", Err: fmt.Errorf("input is blank")}
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	req := &api.EmbedRequest{
		Model: c.model,
		Input: string(input),
	}

	res, err := c.Client.Embed(rCtx, req)
	if err != nil {
		return nil, &ai.EmbeddingError{Provider: "ollama", Err: err}
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	if len(res.Embeddings) != 1 {
		return nil, &ai.EmbeddingError{
			Provider: "ollama",
			Err:      fmt.Errorf("unexpected embedding count: got %d want 1", len(res.Embeddings)),
		}
	}

	out := make([]float32, len(res.Embeddings[0]))
	for i, v := range res.Embeddings[0] {
		out[i] = float32(v)
	}
	return out, nil
}

// GenerateEmbeddings embeds a batch of inputs in a single Ollama request,
// preserving input order.
func (c *Embedder) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	strs := make([]string, len(inputs))
	for i, in := range inputs {
		if len(strings.TrimSpace(string(in))) == 0 {
			return nil, &ai.EmbeddingError{Provider: "ollama", Err: fmt.Errorf("input %d is blank", i)}
		}
		strs[i] = string(in)
	}

	rCtx, cancel := context.WithTimeout(ctx, time.Minute*time.Duration(c.timeoutMin))
	defer cancel()

	if err := c.reqLock.Acquire(rCtx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(rCtx, &api.EmbedRequest{
		Model: c.model,
		Input: strs,
	})
	if err != nil {
		return nil, &ai.EmbeddingError{Provider: "ollama", Err: err}
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	if len(res.Embeddings) != len(inputs) {
		return nil, &ai.EmbeddingError{
			Provider: "ollama",
			Err:      fmt.Errorf("embedding result size mismatch: got %d want %d", len(res.Embeddings), len(inputs)),
		}
	}

	out := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
