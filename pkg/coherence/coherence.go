// Package coherence scores how well a paragraph's sentences hang together.
//
// Given segmented sentences and their embeddings it builds a semantic graph,
// measures each sentence's connective entropy, propagates multi-hop context
// through a frozen graph transformer, aggregates an overall coherence score,
// and flags the weak sentence transitions. All stages are deterministic:
// identical input and configuration always produce identical results.
package coherence

// Node is one sentence in the semantic graph. Entropy, ImportanceScore and
// the encoded vector are filled in by the analyzer and encoder stages.
type Node struct {
	Index           int       `json:"id"`
	Text            string    `json:"text_snippet"`
	Entropy         float64   `json:"entropy"`
	ImportanceScore float64   `json:"importance_score"`
	Position        []float64 `json:"embedding_dim_reduced,omitempty"`

	Embedding []float32 `json:"-"`
	Encoded   []float64 `json:"-"`
}

// Edge connects two sentences. Sequential edges (Target == Source+1) exist
// for every adjacent pair regardless of similarity; similarity edges exist
// only above the configured threshold. Reason is populated by the disruption
// detector on weak sequential edges.
type Edge struct {
	Source          int     `json:"source"`
	Target          int     `json:"target"`
	Weight          float64 `json:"weight"`
	DiscourseMarker string  `json:"discourse_marker,omitempty"`
	Reason          string  `json:"reason,omitempty"`
}

// Sequential reports whether the edge links textually adjacent sentences.
// Edges are normalized so Source < Target, so adjacency is Target-Source == 1.
func (e *Edge) Sequential() bool {
	return e.Target-e.Source == 1
}

// Graph is the semantic graph over one paragraph. Node indices are exactly
// 0..n-1 in sentence order, and every adjacent pair has exactly one
// sequential edge.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// SequentialEdges returns the edges between adjacent sentences in ascending
// source order.
func (g *Graph) SequentialEdges() []*Edge {
	out := make([]*Edge, 0, len(g.Nodes))
	for _, e := range g.Edges {
		if e.Sequential() {
			out = append(out, e)
		}
	}
	return out
}

// DisruptionItem is one flagged weak transition between adjacent sentences.
type DisruptionItem struct {
	FromIdx int     `json:"from_idx"`
	ToIdx   int     `json:"to_idx"`
	Reason  string  `json:"reason"`
	Score   float64 `json:"score"`
}

// Disruption reason taxonomy.
const (
	ReasonLowSimilarity        = "low_similarity"
	ReasonTopicShift           = "topic_shift"
	ReasonMissingDiscourseLink = "missing_discourse_link"
)

// EvaluationResult is the outcome of one pipeline run. It has no identity
// beyond the request that produced it and is never cached.
type EvaluationResult struct {
	CoherenceScore   float64          `json:"coherence_score"`
	CoherencePercent int              `json:"coherence_percent"`
	DisruptionReport []DisruptionItem `json:"disruption_report"`
	Graph            *Graph           `json:"graph,omitempty"`
}

// InvalidInputError reports malformed pipeline input, such as a missing
// embedding or mismatched dimensionality. It is surfaced to the caller
// verbatim and never retried.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// Calibrator is a monotonic rescaling applied to the aggregate score in
// optimized mode. Implementations must preserve the relative ranking of any
// two scores and map [0,1] into [0,1].
type Calibrator func(float64) float64

// Config is the tuning surface consumed by the pipeline. It is always
// injected by the caller; core logic never reads environment state.
type Config struct {
	// SimilarityThreshold is the minimum cosine similarity for a
	// non-adjacent pair to receive a similarity edge. Keeping the graph
	// sparse stops quadratic noise from dominating the encoder's attention.
	SimilarityThreshold float64
	// DisruptThreshold flags sequential transitions whose local coherence
	// falls below it.
	DisruptThreshold float64
	// DiscourseBonus is added to a sequential edge's weight when the later
	// sentence opens with a discourse marker, capped at 1.0.
	DiscourseBonus float64

	// EncoderLayers is the number of message-passing layers.
	EncoderLayers int
	// HiddenDim is the encoder's working dimensionality.
	HiddenDim int
	// EncoderSeed derives the frozen encoder parameters.
	EncoderSeed int64

	// Mix blends encoded-vector similarity against the stored edge weight
	// when computing a transition's local coherence.
	Mix float64

	// OptimizedMode applies the calibration transform to the final score.
	OptimizedMode bool
	// Calibrate overrides the default calibration transform. Ignored unless
	// OptimizedMode is set.
	Calibrate Calibrator
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: 0.5,
		DisruptThreshold:    0.45,
		DiscourseBonus:      0.1,
		EncoderLayers:       3,
		HiddenDim:           128,
		EncoderSeed:         7193,
		Mix:                 0.6,
		OptimizedMode:       false,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
