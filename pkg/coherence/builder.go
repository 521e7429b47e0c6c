package coherence

import (
	"fmt"
	"math"

	"cohera/pkg/textseg"
)

// BuildGraph turns segmented sentences and their embeddings into a weighted
// semantic graph.
//
// Every unordered pair whose cosine similarity exceeds the configured
// threshold gets a similarity edge. Every adjacent pair additionally gets a
// sequential edge regardless of similarity, so the disruption scan never
// misses a transition; its weight is the raw similarity, boosted by a
// constant bonus when the later sentence opens with a discourse marker and
// capped at 1.0. A pair that qualifies as both keeps a single edge with the
// larger weight.
func BuildGraph(sentences []textseg.Sentence, embeddings [][]float32, cfg Config) (*Graph, error) {
	n := len(sentences)
	if n == 0 {
		return nil, &InvalidInputError{Reason: "no sentences"}
	}
	if len(embeddings) != n {
		return nil, &InvalidInputError{
			Reason: fmt.Sprintf("embedding count %d does not match sentence count %d", len(embeddings), n),
		}
	}

	dim := 0
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return nil, &InvalidInputError{Reason: fmt.Sprintf("missing embedding for sentence %d", i)}
		}
		if dim == 0 {
			dim = len(emb)
		} else if len(emb) != dim {
			return nil, &InvalidInputError{
				Reason: fmt.Sprintf("embedding dimensionality mismatch at sentence %d: got %d want %d", i, len(emb), dim),
			}
		}
		for _, v := range emb {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return nil, &InvalidInputError{Reason: fmt.Sprintf("non-finite embedding value for sentence %d", i)}
			}
		}
	}

	nodes := make([]*Node, n)
	for i, s := range sentences {
		nodes[i] = &Node{
			Index:     i,
			Text:      s.Text,
			Embedding: embeddings[i],
		}
	}

	var edges []*Edge
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := clamp01(Cosine(embeddings[i], embeddings[j]))

			if j == i+1 {
				weight := sim
				marker := sentences[j].DiscourseMarker
				if marker != "" {
					weight = math.Min(weight+cfg.DiscourseBonus, 1.0)
				}
				edges = append(edges, &Edge{
					Source:          i,
					Target:          j,
					Weight:          weight,
					DiscourseMarker: marker,
				})
				continue
			}

			if sim > cfg.SimilarityThreshold {
				edges = append(edges, &Edge{
					Source: i,
					Target: j,
					Weight: sim,
				})
			}
		}
	}

	return &Graph{Nodes: nodes, Edges: edges}, nil
}
