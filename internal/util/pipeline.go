package util

import (
	"fmt"

	"cohera/pkg/ai"
	oai "cohera/pkg/ai/ollama"
	gai "cohera/pkg/ai/openai"
	"cohera/pkg/coherence"
	"cohera/pkg/store"
)

// NewEmbedderFromEnv builds the embedding provider selected by AI_ADAPTER:
// "ollama" for a local Ollama server, anything else for an OpenAI-compatible
// endpoint.
func NewEmbedderFromEnv() (ai.Embedder, error) {
	model := GetEnv("AI_EMBED_MODEL")
	if model == "" {
		return nil, fmt.Errorf("AI_EMBED_MODEL is not set")
	}

	switch GetEnv("AI_ADAPTER") {
	case "ollama":
		return oai.New(oai.Params{
			Model:                 model,
			BaseURL:               GetEnv("AI_EMBED_URL"),
			APIKey:                GetEnv("AI_EMBED_KEY"),
			MaxConcurrentRequests: int64(GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
	default:
		return gai.New(gai.Params{
			Model:                 model,
			BaseURL:               GetEnv("AI_EMBED_URL"),
			APIKey:                GetEnv("AI_EMBED_KEY"),
			MaxConcurrentRequests: int64(GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		}), nil
	}
}

// CoherenceConfigFromEnv starts from the production defaults and applies any
// tuning overrides present in the environment.
func CoherenceConfigFromEnv() coherence.Config {
	cfg := coherence.DefaultConfig()
	cfg.SimilarityThreshold = GetEnvNumeric("SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	cfg.DisruptThreshold = GetEnvNumeric("DISRUPTION_THRESHOLD", cfg.DisruptThreshold)
	cfg.DiscourseBonus = GetEnvNumeric("DISCOURSE_BONUS", cfg.DiscourseBonus)
	cfg.EncoderLayers = int(GetEnvNumeric("ENCODER_LAYERS", float64(cfg.EncoderLayers)))
	cfg.HiddenDim = int(GetEnvNumeric("ENCODER_HIDDEN_DIM", float64(cfg.HiddenDim)))
	cfg.EncoderSeed = int64(GetEnvNumeric("ENCODER_SEED", float64(cfg.EncoderSeed)))
	cfg.Mix = GetEnvNumeric("COHERENCE_MIX", cfg.Mix)
	cfg.OptimizedMode = GetEnvBool("OPTIMIZED_MODE", cfg.OptimizedMode)
	return cfg
}

// NewPipelineFromEnv wires an embedder, an optional cache and the env tuning
// into a ready pipeline.
func NewPipelineFromEnv(cache store.EmbeddingStore) (*coherence.Pipeline, error) {
	embedder, err := NewEmbedderFromEnv()
	if err != nil {
		return nil, err
	}

	return coherence.NewPipeline(coherence.PipelineParams{
		Embedder:          embedder,
		Cache:             cache,
		Config:            CoherenceConfigFromEnv(),
		MaxSequenceTokens: int(GetEnvNumeric("MAX_SEQUENCE_LENGTH", 512)),
		TokenEncoding:     GetEnvString("TOKEN_ENCODING", "cl100k_base"),
	})
}
