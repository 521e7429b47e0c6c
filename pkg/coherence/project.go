package coherence

import "math"

// Project2D fills every node's Position with a 2D reduction of its raw
// embedding for visualization. The reduction is a deterministic PCA via
// power iteration, so repeated runs place nodes identically.
func Project2D(g *Graph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	dim := len(g.Nodes[0].Embedding)
	if n == 1 || dim == 0 {
		for _, node := range g.Nodes {
			node.Position = []float64{0, 0}
		}
		return
	}
	if dim <= 2 {
		for _, node := range g.Nodes {
			pos := make([]float64, 2)
			for d := 0; d < dim; d++ {
				pos[d] = float64(node.Embedding[d])
			}
			node.Position = pos
		}
		return
	}

	// Center the data.
	mean := make([]float64, dim)
	for _, node := range g.Nodes {
		for d, v := range node.Embedding {
			mean[d] += float64(v)
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}
	centered := make([][]float64, n)
	for i, node := range g.Nodes {
		row := make([]float64, dim)
		for d, v := range node.Embedding {
			row[d] = float64(v) - mean[d]
		}
		centered[i] = row
	}

	first := principalComponent(centered, nil)
	second := principalComponent(centered, first)

	for i, node := range g.Nodes {
		node.Position = []float64{
			dot64(centered[i], first),
			dot64(centered[i], second),
		}
	}
}

// principalComponent runs power iteration on the implicit covariance
// X^T X, deflating against a previously found component if given. The start
// vector is fixed rather than random to keep the output deterministic.
func principalComponent(x [][]float64, deflate []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	dim := len(x[0])

	v := make([]float64, dim)
	for d := range v {
		// Alternating signs avoid starting orthogonal to the component.
		if d%2 == 0 {
			v[d] = 1
		} else {
			v[d] = -0.5
		}
	}
	if deflate != nil {
		orthogonalize(v, deflate)
	}
	l2normalize(v)

	const iterations = 60
	for it := 0; it < iterations; it++ {
		// w = X^T (X v), computed without materializing the covariance.
		next := make([]float64, dim)
		for _, row := range x {
			proj := dot64(row, v)
			for d := range next {
				next[d] += proj * row[d]
			}
		}
		if deflate != nil {
			orthogonalize(next, deflate)
		}

		var norm float64
		for _, val := range next {
			norm += val * val
		}
		if norm == 0 {
			break
		}
		norm = math.Sqrt(norm)
		for d := range next {
			next[d] /= norm
		}
		v = next
	}
	return v
}

func orthogonalize(v, against []float64) {
	proj := dot64(v, against)
	for d := range v {
		v[d] -= proj * against[d]
	}
}

func dot64(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
