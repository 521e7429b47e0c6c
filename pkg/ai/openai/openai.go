// Package openai implements ai.Embedder against any OpenAI-compatible
// embeddings endpoint.
package openai

import (
	"sync"

	"cohera/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// Embedder calls an OpenAI-compatible embeddings API.
type Embedder struct {
	model      string
	timeoutMin int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *openai.Client
}

// Params configures a new Embedder.
type Params struct {
	Model   string
	BaseURL string
	APIKey  string

	// TimeoutMin bounds a single request, in minutes. Defaults to 2.
	TimeoutMin int
	// MaxConcurrentRequests limits in-flight requests. Defaults to 8.
	MaxConcurrentRequests int64
}

// New creates an OpenAI-compatible embedder.
func New(params Params) *Embedder {
	opts := []option.RequestOption{}
	if params.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(params.BaseURL))
	}
	if params.APIKey != "" {
		opts = append(opts, option.WithAPIKey(params.APIKey))
	}

	if params.TimeoutMin <= 0 {
		params.TimeoutMin = 2
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 8
	}

	client := openai.NewClient(opts...)

	return &Embedder{
		model:      params.Model,
		timeoutMin: params.TimeoutMin,
		reqLock:    semaphore.NewWeighted(params.MaxConcurrentRequests),
		Client:     &client,
	}
}

// Model returns the configured embedding model name.
func (c *Embedder) Model() string {
	return c.model
}

// GetMetrics returns the accumulated token usage and timing metrics since the last reset.
func (c *Embedder) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *Embedder) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

func (c *Embedder) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}
