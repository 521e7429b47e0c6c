package coherence

import "math"

// AnalyzeEntropy computes, for every node, the Shannon entropy of its
// incident edge-weight distribution and the complementary importance score.
//
// High entropy means the node's connective weight is spread thinly and
// uniformly across neighbors (an ambiguous role in the paragraph); low
// entropy means one strong relation dominates. The importance score is
// 1 - H/ln(degree), clamped to [0,1]. Nodes of degree 0 or 1 have no
// ambiguity to measure and score 1.0 by definition.
func AnalyzeEntropy(g *Graph) {
	incident := make([][]float64, len(g.Nodes))
	for _, e := range g.Edges {
		incident[e.Source] = append(incident[e.Source], e.Weight)
		incident[e.Target] = append(incident[e.Target], e.Weight)
	}

	for i, node := range g.Nodes {
		weights := incident[i]
		node.Entropy = shannonEntropy(weights)

		degree := len(weights)
		if degree <= 1 {
			node.ImportanceScore = 1.0
			continue
		}
		maxEntropy := math.Log(float64(degree))
		node.ImportanceScore = clamp01(1.0 - node.Entropy/maxEntropy)
	}
}

// shannonEntropy normalizes weights into a probability distribution and
// returns its entropy in nats. Zero-probability mass is excluded from the
// sum rather than evaluated as 0*log(0).
func shannonEntropy(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		p := w / total
		h -= p * math.Log(p)
	}
	return h
}
