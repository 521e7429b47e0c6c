package coherence

import (
	"context"
	"fmt"

	"cohera/pkg/ai"
	"cohera/pkg/logger"
	"cohera/pkg/store"
	"cohera/pkg/textseg"
)

// Evaluate runs the core stages on already-segmented, already-embedded
// sentences: graph construction, entropy analysis, contextual encoding,
// score aggregation and disruption detection. It is the sole entry point
// transport layers call; the returned result is complete, including the
// graph for visualization (positions are filled in separately by Project2D).
func Evaluate(sentences []textseg.Sentence, embeddings [][]float32, cfg Config) (*EvaluationResult, error) {
	g, err := BuildGraph(sentences, embeddings, cfg)
	if err != nil {
		return nil, err
	}

	AnalyzeEntropy(g)
	NewEncoder(cfg).Encode(g)

	score := Score(g, cfg)
	report := DetectDisruptions(g, cfg)

	return &EvaluationResult{
		CoherenceScore:   score,
		CoherencePercent: Percent(score),
		DisruptionReport: report,
		Graph:            g,
	}, nil
}

// Pipeline owns the collaborators a full text evaluation needs: an injected
// embedder, an optional read-through embedding cache, and the tuning
// configuration. It is safe for concurrent use; runs share no mutable state
// beyond the cache.
type Pipeline struct {
	embedder ai.Embedder
	cache    store.EmbeddingStore
	cfg      Config

	maxTokens     int
	tokenEncoding string
}

// PipelineParams configures a Pipeline.
type PipelineParams struct {
	// Embedder is required.
	Embedder ai.Embedder
	// Cache is optional; nil disables embedding caching.
	Cache store.EmbeddingStore
	// Config tunes the core stages.
	Config Config

	// MaxSequenceTokens truncates overlong sentences before embedding;
	// 0 disables truncation.
	MaxSequenceTokens int
	// TokenEncoding is the tiktoken encoding used for truncation.
	// Defaults to cl100k_base.
	TokenEncoding string
}

// NewPipeline creates a pipeline around an injected embedder.
func NewPipeline(params PipelineParams) (*Pipeline, error) {
	if params.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	encoding := params.TokenEncoding
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &Pipeline{
		embedder:      params.Embedder,
		cache:         params.Cache,
		cfg:           params.Config,
		maxTokens:     params.MaxSequenceTokens,
		tokenEncoding: encoding,
	}, nil
}

// Config returns the pipeline's tuning configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Model names the embedding model behind this pipeline.
func (p *Pipeline) Model() string {
	return p.embedder.Model()
}

// Metrics returns the embedder's accumulated usage counters.
func (p *Pipeline) Metrics() ai.ModelMetrics {
	return p.embedder.GetMetrics()
}

// ResetMetrics clears the embedder's usage counters.
func (p *Pipeline) ResetMetrics() {
	p.embedder.ResetMetrics()
}

// EvaluateText runs the whole pipeline on raw paragraph text: segmentation,
// embedding (through the cache when configured), and Evaluate. When
// visualize is set the graph nodes also get 2D positions and display
// snippets.
func (p *Pipeline) EvaluateText(ctx context.Context, text string, visualize bool) (*EvaluationResult, error) {
	sentences, err := textseg.Segment(text)
	if err != nil {
		return nil, err
	}

	embeddings, err := p.embedSentences(ctx, sentences)
	if err != nil {
		return nil, err
	}

	result, err := Evaluate(sentences, embeddings, p.cfg)
	if err != nil {
		return nil, err
	}

	if visualize {
		Project2D(result.Graph)
	}
	for _, node := range result.Graph.Nodes {
		node.Text = snippet(node.Text, 100)
	}

	return result, nil
}

// embedSentences resolves each sentence's embedding through the cache and
// batches the misses into a single embedder call. Cache failures are
// degraded to misses; embedder failures are propagated, never papered over
// with zero vectors.
func (p *Pipeline) embedSentences(ctx context.Context, sentences []textseg.Sentence) ([][]float32, error) {
	embeddings := make([][]float32, len(sentences))
	keys := make([]string, len(sentences))
	texts := make([]string, len(sentences))

	var missed []int
	for i, s := range sentences {
		text := s.Text
		if p.maxTokens > 0 {
			truncated, err := textseg.Truncate(text, p.tokenEncoding, p.maxTokens)
			if err != nil {
				return nil, fmt.Errorf("failed to truncate sentence %d: %w", i, err)
			}
			text = truncated
		}
		texts[i] = text
		keys[i] = store.Key(p.embedder.Model(), text)

		if p.cache != nil {
			cached, ok, err := p.cache.Get(ctx, keys[i])
			if err != nil {
				logger.Warn("Embedding cache read failed", "err", err)
			} else if ok {
				embeddings[i] = cached
				continue
			}
		}
		missed = append(missed, i)
	}

	if len(missed) == 0 {
		return embeddings, nil
	}

	inputs := make([][]byte, len(missed))
	for t, i := range missed {
		inputs[t] = []byte(texts[i])
	}

	computed, err := p.embedder.GenerateEmbeddings(ctx, inputs)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missed) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d inputs", len(computed), len(missed))
	}

	for t, i := range missed {
		embeddings[i] = computed[t]
		if p.cache != nil {
			if err := p.cache.Set(ctx, keys[i], computed[t]); err != nil {
				logger.Warn("Embedding cache write failed", "err", err)
			}
		}
	}

	return embeddings, nil
}

func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
