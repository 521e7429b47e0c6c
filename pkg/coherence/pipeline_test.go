package coherence

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"cohera/pkg/ai"
	"cohera/pkg/store/memory"
	"cohera/pkg/textseg"
)

// fakeEmbedder serves canned vectors keyed by sentence text, so every test
// controls the similarity structure exactly. Unknown input is an error, not a
// silent zero vector.
type fakeEmbedder struct {
	vectors    map[string][]float32
	batchCalls int
	fail       error
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	out, err := f.GenerateEmbeddings(ctx, [][]byte{input})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (f *fakeEmbedder) GenerateEmbeddings(_ context.Context, inputs [][]byte) ([][]float32, error) {
	f.batchCalls++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([][]float32, len(inputs))
	for i, input := range inputs {
		vec, ok := f.vectors[string(input)]
		if !ok {
			return nil, fmt.Errorf("no canned vector for %q", string(input))
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Model() string               { return "fake-embedder" }
func (f *fakeEmbedder) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }
func (f *fakeEmbedder) ResetMetrics()               {}

func newTestPipeline(t *testing.T, embedder ai.Embedder, cache *memory.Store) *Pipeline {
	t.Helper()
	var params PipelineParams
	params.Embedder = embedder
	params.Config = DefaultConfig()
	if cache != nil {
		params.Cache = cache
	}
	p, err := NewPipeline(params)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipeline_CoherentText(t *testing.T) {
	text := "The cat sat on the mat. The cat looked very comfortable. Soon the cat fell asleep."
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"The cat sat on the mat.":          {1, 0.9, 0.1, 0.02},
		"The cat looked very comfortable.": {0.98, 0.88, 0.12, 0.01},
		"Soon the cat fell asleep.":        {0.95, 0.9, 0.08, 0.05},
	}}
	p := newTestPipeline(t, embedder, nil)

	result, err := p.EvaluateText(context.Background(), text, false)
	if err != nil {
		t.Fatalf("EvaluateText: %v", err)
	}

	if result.CoherenceScore < 0.8 {
		t.Fatalf("near-identical sentences should score high, got %f", result.CoherenceScore)
	}
	if len(result.DisruptionReport) != 0 {
		t.Fatalf("expected no disruptions, got %v", result.DisruptionReport)
	}
	if result.CoherencePercent != Percent(result.CoherenceScore) {
		t.Fatalf("percent %d inconsistent with score %f", result.CoherencePercent, result.CoherenceScore)
	}
	if result.Graph == nil || len(result.Graph.Nodes) != 3 {
		t.Fatalf("expected graph with 3 nodes, got %+v", result.Graph)
	}
	if seq := result.Graph.SequentialEdges(); len(seq) != 2 {
		t.Fatalf("expected 2 sequential edges, got %d", len(seq))
	}
	for _, node := range result.Graph.Nodes {
		if node.Position != nil {
			t.Fatal("positions must not be computed without visualize")
		}
	}
}

func TestPipeline_DisruptedText(t *testing.T) {
	text := "Photosynthesis converts sunlight into chemical energy. The stock market crashed yesterday."
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"Photosynthesis converts sunlight into chemical energy.": {1, 0, 0, 0},
		"The stock market crashed yesterday.":                    {0, 1, 0, 0},
	}}
	p := newTestPipeline(t, embedder, nil)

	result, err := p.EvaluateText(context.Background(), text, false)
	if err != nil {
		t.Fatalf("EvaluateText: %v", err)
	}

	if len(result.DisruptionReport) != 1 {
		t.Fatalf("expected exactly one disruption, got %v", result.DisruptionReport)
	}
	item := result.DisruptionReport[0]
	if item.FromIdx != 0 || item.ToIdx != 1 {
		t.Fatalf("disruption spans %d->%d, want 0->1", item.FromIdx, item.ToIdx)
	}
	if item.Reason != ReasonLowSimilarity {
		t.Fatalf("expected %s, got %s", ReasonLowSimilarity, item.Reason)
	}
	if item.Score >= DefaultConfig().DisruptThreshold {
		t.Fatalf("flagged transition score %f not below threshold", item.Score)
	}
}

func TestPipeline_Deterministic(t *testing.T) {
	text := "The river flooded the valley. However, the town stayed dry. Engineers had raised the levees."
	vectors := map[string][]float32{
		"The river flooded the valley.":    {0.8, 0.2, 0.3, 0.1},
		"However, the town stayed dry.":    {0.6, 0.4, 0.2, 0.3},
		"Engineers had raised the levees.": {0.7, 0.3, 0.4, 0.2},
	}

	run := func() *EvaluationResult {
		p := newTestPipeline(t, &fakeEmbedder{vectors: vectors}, nil)
		result, err := p.EvaluateText(context.Background(), text, true)
		if err != nil {
			t.Fatalf("EvaluateText: %v", err)
		}
		return result
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", a, b)
	}
}

func TestPipeline_CacheSkipsEmbedder(t *testing.T) {
	text := "The oven preheats slowly. The dough rises in the meantime."
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"The oven preheats slowly.":        {0.9, 0.3, 0.1},
		"The dough rises in the meantime.": {0.85, 0.35, 0.15},
	}}
	cache := memory.New()
	p := newTestPipeline(t, embedder, cache)

	first, err := p.EvaluateText(context.Background(), text, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if embedder.batchCalls != 1 {
		t.Fatalf("expected 1 embedder call, got %d", embedder.batchCalls)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cached embeddings, got %d", cache.Len())
	}

	second, err := p.EvaluateText(context.Background(), text, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if embedder.batchCalls != 1 {
		t.Fatalf("cached run must not call the embedder again, got %d calls", embedder.batchCalls)
	}
	if first.CoherenceScore != second.CoherenceScore {
		t.Fatalf("cached run scored %f, first run %f", second.CoherenceScore, first.CoherenceScore)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	p := newTestPipeline(t, &fakeEmbedder{}, nil)

	for _, text := range []string{"", "   \n\t  "} {
		_, err := p.EvaluateText(context.Background(), text, false)
		if !errors.Is(err, textseg.ErrEmptyInput) {
			t.Fatalf("input %q: expected ErrEmptyInput, got %v", text, err)
		}
	}
}

func TestPipeline_EmbedderErrorPropagated(t *testing.T) {
	backendErr := &ai.EmbeddingError{Provider: "fake", Err: errors.New("connection refused")}
	p := newTestPipeline(t, &fakeEmbedder{fail: backendErr}, nil)

	_, err := p.EvaluateText(context.Background(), "One sentence. Another sentence.", false)
	var embErr *ai.EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("expected EmbeddingError, got %v", err)
	}
}

func TestPipeline_VisualizeFillsPositions(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"East is east.": {1, 0, 0, 0.1},
		"West is west.": {0, 1, 0.1, 0},
	}}
	p := newTestPipeline(t, embedder, nil)

	result, err := p.EvaluateText(context.Background(), "East is east. West is west.", true)
	if err != nil {
		t.Fatalf("EvaluateText: %v", err)
	}
	for _, node := range result.Graph.Nodes {
		if len(node.Position) != 2 {
			t.Fatalf("node %d: expected 2D position, got %v", node.Index, node.Position)
		}
	}
}

func TestPipeline_NodeTextIsSnippeted(t *testing.T) {
	long := "It began " + strings.Repeat("very ", 30) + "quietly."
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		long: {0.5, 0.5, 0.5},
	}}
	p := newTestPipeline(t, embedder, nil)

	result, err := p.EvaluateText(context.Background(), long, false)
	if err != nil {
		t.Fatalf("EvaluateText: %v", err)
	}
	got := result.Graph.Nodes[0].Text
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated snippet, got %q", got)
	}
	if utf8.RuneCountInString(got) != 103 {
		t.Fatalf("snippet length %d, want 100 runes plus ellipsis", utf8.RuneCountInString(got))
	}
}

func TestNewPipeline_RequiresEmbedder(t *testing.T) {
	if _, err := NewPipeline(PipelineParams{}); err == nil {
		t.Fatal("expected error for missing embedder")
	}
}
