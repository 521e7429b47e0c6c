package coherence

import "testing"

func TestDetectDisruptions_CoherentGraphIsEmpty(t *testing.T) {
	g := graphWithEdges(2, &Edge{Source: 0, Target: 1, Weight: 0.9})
	for _, node := range g.Nodes {
		node.Encoded = []float64{1, 0}
	}

	report := DetectDisruptions(g, DefaultConfig())
	if report == nil {
		t.Fatal("report must be non-nil even when empty")
	}
	if len(report) != 0 {
		t.Fatalf("expected empty report, got %d items", len(report))
	}
}

func TestDetectDisruptions_ReasonTaxonomy(t *testing.T) {
	// Orthogonal encoded vectors pin the encoded similarity term at 0.5, so
	// with the default mix local coherence is 0.3 + 0.4*weight and anything
	// with weight below 0.375 lands under the 0.45 threshold.
	tests := []struct {
		name   string
		weight float64
		marker string
		want   string
	}{
		{
			name:   "marker promises a link the semantics break",
			weight: 0.1,
			marker: "however",
			want:   ReasonTopicShift,
		},
		{
			name:   "very low similarity without marker",
			weight: 0.1,
			want:   ReasonLowSimilarity,
		},
		{
			name:   "moderate similarity but no connective",
			weight: 0.35,
			want:   ReasonMissingDiscourseLink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphWithEdges(2, &Edge{
				Source:          0,
				Target:          1,
				Weight:          tt.weight,
				DiscourseMarker: tt.marker,
			})
			g.Nodes[0].Encoded = []float64{1, 0}
			g.Nodes[1].Encoded = []float64{0, 1}

			report := DetectDisruptions(g, DefaultConfig())
			if len(report) != 1 {
				t.Fatalf("expected 1 disruption, got %d", len(report))
			}
			item := report[0]
			if item.FromIdx != 0 || item.ToIdx != 1 {
				t.Fatalf("disruption spans %d->%d, want 0->1", item.FromIdx, item.ToIdx)
			}
			if item.Reason != tt.want {
				t.Fatalf("reason %q, want %q", item.Reason, tt.want)
			}
			if item.Score < 0 || item.Score >= DefaultConfig().DisruptThreshold {
				t.Fatalf("flagged score %f not below threshold", item.Score)
			}
			if g.Edges[0].Reason != tt.want {
				t.Fatalf("edge reason %q not annotated", g.Edges[0].Reason)
			}
		})
	}
}

func TestDetectDisruptions_ThresholdMonotonicity(t *testing.T) {
	// A fixed graph with transitions spread across the local-coherence range:
	// raising the threshold can only grow the report.
	g := transitionGraph([]float64{0.05, 0.25, 0.55, 0.85, 1.0}, 1.0)

	prev := -1
	for tau := 0.0; tau <= 1.0; tau += 0.1 {
		cfg := DefaultConfig()
		cfg.DisruptThreshold = tau
		count := len(DetectDisruptions(g, cfg))
		if count < prev {
			t.Fatalf("report shrank from %d to %d when threshold rose to %f", prev, count, tau)
		}
		prev = count
	}
}

func TestDetectDisruptions_OnlySequentialEdgesScanned(t *testing.T) {
	// A weak non-adjacent similarity edge must never be reported.
	g := graphWithEdges(3,
		&Edge{Source: 0, Target: 1, Weight: 0.9},
		&Edge{Source: 1, Target: 2, Weight: 0.9},
		&Edge{Source: 0, Target: 2, Weight: 0.01},
	)
	for _, node := range g.Nodes {
		node.Encoded = []float64{1, 0}
	}

	report := DetectDisruptions(g, DefaultConfig())
	for _, item := range report {
		if item.ToIdx-item.FromIdx != 1 {
			t.Fatalf("non-sequential transition %d->%d reported", item.FromIdx, item.ToIdx)
		}
	}
	if len(report) != 0 {
		t.Fatalf("expected empty report, got %d items", len(report))
	}
}
