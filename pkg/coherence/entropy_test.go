package coherence

import (
	"math"
	"testing"
)

func graphWithEdges(n int, edges ...*Edge) *Graph {
	nodes := make([]*Node, n)
	for i := range nodes {
		nodes[i] = &Node{Index: i}
	}
	return &Graph{Nodes: nodes, Edges: edges}
}

func TestAnalyzeEntropy_LowDegreeScoresOne(t *testing.T) {
	// Node 0 is isolated, node 1 has a single neighbor. Neither has any
	// connective ambiguity to measure.
	g := graphWithEdges(3, &Edge{Source: 1, Target: 2, Weight: 0.4})
	AnalyzeEntropy(g)

	for _, i := range []int{0, 1, 2} {
		if g.Nodes[i].ImportanceScore != 1.0 {
			t.Fatalf("node %d: expected importance 1.0, got %f", i, g.Nodes[i].ImportanceScore)
		}
	}
	if g.Nodes[0].Entropy != 0 {
		t.Fatalf("isolated node: expected entropy 0, got %f", g.Nodes[0].Entropy)
	}
}

func TestAnalyzeEntropy_UniformWeightsScoreZero(t *testing.T) {
	// Node 0 connects to three neighbors with identical weight: maximal
	// entropy ln(3), so importance collapses to 0.
	g := graphWithEdges(4,
		&Edge{Source: 0, Target: 1, Weight: 0.5},
		&Edge{Source: 0, Target: 2, Weight: 0.5},
		&Edge{Source: 0, Target: 3, Weight: 0.5},
	)
	AnalyzeEntropy(g)

	n := g.Nodes[0]
	if diff := math.Abs(n.Entropy - math.Log(3)); diff > 1e-12 {
		t.Fatalf("expected entropy ln(3)=%f, got %f", math.Log(3), n.Entropy)
	}
	if n.ImportanceScore > 1e-12 {
		t.Fatalf("expected importance 0, got %f", n.ImportanceScore)
	}
}

func TestAnalyzeEntropy_DominantEdgeScoresHigh(t *testing.T) {
	g := graphWithEdges(3,
		&Edge{Source: 0, Target: 1, Weight: 0.99},
		&Edge{Source: 0, Target: 2, Weight: 0.01},
	)
	AnalyzeEntropy(g)

	n := g.Nodes[0]
	if n.ImportanceScore < 0.8 {
		t.Fatalf("dominated distribution should score high, got %f", n.ImportanceScore)
	}
}

func TestAnalyzeEntropy_ZeroWeightsExcluded(t *testing.T) {
	// All-zero weights on a degree-2 node: no probability mass, entropy 0,
	// importance 1.
	g := graphWithEdges(3,
		&Edge{Source: 0, Target: 1, Weight: 0},
		&Edge{Source: 0, Target: 2, Weight: 0},
	)
	AnalyzeEntropy(g)

	n := g.Nodes[0]
	if n.Entropy != 0 {
		t.Fatalf("expected entropy 0, got %f", n.Entropy)
	}
	if n.ImportanceScore != 1.0 {
		t.Fatalf("expected importance 1.0, got %f", n.ImportanceScore)
	}
}

func TestAnalyzeEntropy_ImportanceBounds(t *testing.T) {
	g := graphWithEdges(5,
		&Edge{Source: 0, Target: 1, Weight: 0.9},
		&Edge{Source: 1, Target: 2, Weight: 0.2},
		&Edge{Source: 2, Target: 3, Weight: 0.65},
		&Edge{Source: 3, Target: 4, Weight: 0.1},
		&Edge{Source: 0, Target: 3, Weight: 0.7},
		&Edge{Source: 1, Target: 4, Weight: 0.55},
	)
	AnalyzeEntropy(g)

	for _, n := range g.Nodes {
		if n.ImportanceScore < 0 || n.ImportanceScore > 1 {
			t.Fatalf("node %d: importance %f outside [0,1]", n.Index, n.ImportanceScore)
		}
		if n.Entropy < 0 {
			t.Fatalf("node %d: negative entropy %f", n.Index, n.Entropy)
		}
	}
}
