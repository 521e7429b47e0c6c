package coherence

import (
	"math"
	"testing"
)

// transitionGraph hand-builds a scored graph so local coherence is fully
// controlled: orthogonal encoded vectors pin the encoded similarity term to
// 0.5, leaving only the edge weight variable.
func transitionGraph(weights []float64, importance float64) *Graph {
	n := len(weights) + 1
	g := graphWithEdges(n)
	for i, node := range g.Nodes {
		enc := make([]float64, n)
		enc[i] = 1
		node.Encoded = enc
		node.ImportanceScore = importance
	}
	for i, w := range weights {
		g.Edges = append(g.Edges, &Edge{Source: i, Target: i + 1, Weight: w})
	}
	return g
}

func TestScore_SingleSentence(t *testing.T) {
	g := graphWithEdges(1)
	g.Nodes[0].ImportanceScore = 1.0
	if s := Score(g, DefaultConfig()); s != 1.0 {
		t.Fatalf("single sentence must score 1.0, got %f", s)
	}
}

func TestScore_PerfectTransitions(t *testing.T) {
	// Identical encoded vectors and full-weight edges: every local term is 1.
	g := graphWithEdges(3,
		&Edge{Source: 0, Target: 1, Weight: 1},
		&Edge{Source: 1, Target: 2, Weight: 1},
	)
	for _, node := range g.Nodes {
		node.Encoded = []float64{1, 0}
		node.ImportanceScore = 1.0
	}
	if s := Score(g, DefaultConfig()); s != 1.0 {
		t.Fatalf("expected 1.0, got %f", s)
	}
}

func TestScore_WithinUnitInterval(t *testing.T) {
	g := transitionGraph([]float64{0.9, 0.1, 0.6, 0}, 0.7)
	s := Score(g, DefaultConfig())
	if s < 0 || s > 1 {
		t.Fatalf("score %f outside [0,1]", s)
	}
}

func TestScore_ImportanceWeighting(t *testing.T) {
	// Two transitions, one strong and one weak. When the weak transition's
	// endpoints lose importance, the aggregate must move toward the strong one.
	build := func(weakImportance float64) *Graph {
		g := transitionGraph([]float64{1.0, 0.0}, 1.0)
		g.Nodes[2].ImportanceScore = weakImportance
		return g
	}
	balanced := Score(build(1.0), DefaultConfig())
	discounted := Score(build(0.1), DefaultConfig())
	if discounted <= balanced {
		t.Fatalf("discounting the weak transition should raise the score: %f <= %f", discounted, balanced)
	}
}

func TestScore_ZeroImportanceFallsBackToPlainAverage(t *testing.T) {
	g := transitionGraph([]float64{0.5}, 0)
	// local = 0.6*0.5 + 0.4*0.5 = 0.5
	s := Score(g, DefaultConfig())
	if math.Abs(s-0.5) > 1e-12 {
		t.Fatalf("expected plain average 0.5, got %f", s)
	}
}

func TestScore_OptimizedModeAppliesCalibration(t *testing.T) {
	g := transitionGraph([]float64{0.8, 0.7}, 1.0)

	cfg := DefaultConfig()
	raw := Score(g, cfg)

	cfg.OptimizedMode = true
	calibrated := Score(g, cfg)

	want := OddsPowerCalibrator(1.5)(raw)
	if math.Abs(calibrated-want) > 1e-12 {
		t.Fatalf("expected calibrated score %f, got %f", want, calibrated)
	}
}

func TestScore_CustomCalibrator(t *testing.T) {
	g := transitionGraph([]float64{0.8}, 1.0)

	cfg := DefaultConfig()
	cfg.OptimizedMode = true
	cfg.Calibrate = func(s float64) float64 { return s * s }

	raw := Score(g, DefaultConfig())
	got := Score(g, cfg)
	if math.Abs(got-raw*raw) > 1e-12 {
		t.Fatalf("custom calibrator not applied: got %f want %f", got, raw*raw)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{0, 0},
		{1, 100},
		{0.5, 50},
		{0.746, 75},
		{0.454, 45},
		{0.005, 1},
	}
	for _, tt := range tests {
		if got := Percent(tt.score); got != tt.want {
			t.Fatalf("Percent(%f) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestOddsPowerCalibrator(t *testing.T) {
	cal := OddsPowerCalibrator(1.5)

	// Fixed points.
	for _, s := range []float64{0, 0.5, 1} {
		if got := cal(s); math.Abs(got-s) > 1e-12 {
			t.Fatalf("cal(%f) = %f, expected fixed point", s, got)
		}
	}

	// Strictly monotonic, stays in [0,1], and stretches away from 0.5.
	prev := -1.0
	for s := 0.0; s <= 1.0001; s += 0.05 {
		got := cal(s)
		if got < 0 || got > 1 {
			t.Fatalf("cal(%f) = %f outside [0,1]", s, got)
		}
		if got <= prev {
			t.Fatalf("calibrator not strictly increasing at %f", s)
		}
		prev = got
	}
	if cal(0.7) <= 0.7 {
		t.Fatalf("expected expansion above midpoint, got %f", cal(0.7))
	}
	if cal(0.3) >= 0.3 {
		t.Fatalf("expected expansion below midpoint, got %f", cal(0.3))
	}

	// Identity exponent.
	ident := OddsPowerCalibrator(1)
	for _, s := range []float64{0.12, 0.5, 0.83} {
		if got := ident(s); math.Abs(got-s) > 1e-12 {
			t.Fatalf("identity calibrator changed %f to %f", s, got)
		}
	}
}
