// Package ollama implements ai.Embedder on a locally hosted Ollama server.
package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"cohera/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// Embedder talks to an Ollama server's embed endpoint.
type Embedder struct {
	model      string
	timeoutMin int

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Client *api.Client
}

// Params configures a new Embedder.
type Params struct {
	Model   string
	BaseURL string
	APIKey  string

	// TimeoutMin bounds a single embed request, in minutes. Defaults to 2.
	TimeoutMin int
	// MaxConcurrentRequests limits in-flight requests. Defaults to 8.
	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// New creates an Ollama embedder for the server at BaseURL (or the Ollama
// default when empty).
func New(params Params) (*Embedder, error) {
	var (
		u   *url.URL
		err error
	)
	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	if params.TimeoutMin <= 0 {
		params.TimeoutMin = 2
	}
	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 8
	}

	return &Embedder{
		model:      params.Model,
		timeoutMin: params.TimeoutMin,
		reqLock:    semaphore.NewWeighted(params.MaxConcurrentRequests),
		Client:     api.NewClient(u, httpClient),
	}, nil
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
