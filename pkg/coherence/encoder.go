package coherence

import (
	"math"
	"math/rand"
	"sync"
)

// Encoder propagates multi-hop contextual information across the graph,
// refining each node's representation from its neighborhood. Parameters are
// frozen: they are derived deterministically from the configured seed, no
// gradients are computed, and nothing is updated at request time.
//
// Each layer computes an attention-weighted aggregate of neighbor
// representations. Attention logits combine a compatibility score between
// node representations with the edge weight as a multiplicative prior, so an
// edge with near-zero weight contributes negligibly regardless of learned
// attention — the graph's semantic structure stays an inductive bias instead
// of being overridden. Aggregation is followed by a position-wise transform
// and a residual connection, so information degrades gracefully layer over
// layer; content from sentence i can only reach sentence i+k after roughly k
// layers when no direct edge exists.
type Encoder struct {
	layers int
	hidden int
	seed   int64
}

// NewEncoder creates an encoder from the configuration. Zero or negative
// layer/dimension values fall back to the defaults.
func NewEncoder(cfg Config) *Encoder {
	layers := cfg.EncoderLayers
	if layers <= 0 {
		layers = DefaultConfig().EncoderLayers
	}
	hidden := cfg.HiddenDim
	if hidden <= 0 {
		hidden = DefaultConfig().HiddenDim
	}
	return &Encoder{layers: layers, hidden: hidden, seed: cfg.EncoderSeed}
}

type layerParams struct {
	wq, wk, wv [][]float64 // hidden x hidden
	ff1, ff2   [][]float64 // hidden x hidden
}

type encoderParams struct {
	input  [][]float64 // hidden x inputDim projection
	layers []layerParams
}

type paramKey struct {
	seed   int64
	layers int
	hidden int
	dim    int
}

var (
	paramMu    sync.RWMutex
	paramCache = map[paramKey]*encoderParams{}
)

// getParams returns the frozen parameter set for an input dimensionality,
// deriving it on first use. The cache is shared across requests; derivation
// is pure so a racing double-compute is harmless.
func getParams(key paramKey) *encoderParams {
	paramMu.RLock()
	p, ok := paramCache[key]
	paramMu.RUnlock()
	if ok {
		return p
	}

	p = deriveParams(key)

	paramMu.Lock()
	if existing, ok := paramCache[key]; ok {
		p = existing
	} else {
		paramCache[key] = p
	}
	paramMu.Unlock()
	return p
}

func deriveParams(key paramKey) *encoderParams {
	rng := rand.New(rand.NewSource(key.seed))

	p := &encoderParams{
		input:  randomMatrix(rng, key.hidden, key.dim),
		layers: make([]layerParams, key.layers),
	}
	for l := range p.layers {
		p.layers[l] = layerParams{
			wq:  randomMatrix(rng, key.hidden, key.hidden),
			wk:  randomMatrix(rng, key.hidden, key.hidden),
			wv:  randomMatrix(rng, key.hidden, key.hidden),
			ff1: randomMatrix(rng, key.hidden, key.hidden),
			ff2: randomMatrix(rng, key.hidden, key.hidden),
		}
	}
	return p
}

// randomMatrix draws rows x cols values from N(0, 1/cols), the usual
// variance-preserving initialization for a frozen linear map.
func randomMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	scale := 1.0 / math.Sqrt(float64(cols))
	m := make([][]float64, rows)
	for i := range m {
		row := make([]float64, cols)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		m[i] = row
	}
	return m
}

// Encode populates every node's encoded vector. The graph must have been
// produced by BuildGraph; a single-node graph is valid and encodes that node
// from its own representation alone.
func (enc *Encoder) Encode(g *Graph) {
	n := len(g.Nodes)
	if n == 0 {
		return
	}

	dim := len(g.Nodes[0].Embedding)
	params := getParams(paramKey{seed: enc.seed, layers: enc.layers, hidden: enc.hidden, dim: dim})

	// Project raw embeddings into the working space.
	x := make([][]float64, n)
	for i, node := range g.Nodes {
		in := make([]float64, dim)
		for j, v := range node.Embedding {
			in[j] = float64(v)
		}
		l2normalize(in)
		x[i] = matVec(params.input, in)
		l2normalize(x[i])
	}

	type neighbor struct {
		idx    int
		weight float64
	}
	adj := make([][]neighbor, n)
	for i := range adj {
		// Self-loop with weight 1 keeps the node's own signal in the mix.
		adj[i] = append(adj[i], neighbor{idx: i, weight: 1.0})
	}
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], neighbor{idx: e.Target, weight: e.Weight})
		adj[e.Target] = append(adj[e.Target], neighbor{idx: e.Source, weight: e.Weight})
	}

	scale := 1.0 / math.Sqrt(float64(enc.hidden))

	for _, lp := range params.layers {
		q := make([][]float64, n)
		k := make([][]float64, n)
		v := make([][]float64, n)
		for i := range x {
			q[i] = matVec(lp.wq, x[i])
			k[i] = matVec(lp.wk, x[i])
			v[i] = matVec(lp.wv, x[i])
		}

		next := make([][]float64, n)
		for i := range x {
			neighbors := adj[i]

			// Attention logits, shifted by the max for numerical stability.
			logits := make([]float64, len(neighbors))
			maxLogit := math.Inf(-1)
			for t, nb := range neighbors {
				var dot float64
				for d := range q[i] {
					dot += q[i][d] * k[nb.idx][d]
				}
				logits[t] = dot * scale
				if logits[t] > maxLogit {
					maxLogit = logits[t]
				}
			}

			weights := make([]float64, len(neighbors))
			var total float64
			for t, nb := range neighbors {
				w := math.Exp(logits[t]-maxLogit) * nb.weight
				weights[t] = w
				total += w
			}

			agg := make([]float64, enc.hidden)
			if total > 0 {
				for t, nb := range neighbors {
					alpha := weights[t] / total
					for d := range agg {
						agg[d] += alpha * v[nb.idx][d]
					}
				}
			}

			// Position-wise transform with a residual connection.
			h := matVec(lp.ff1, agg)
			for d := range h {
				if h[d] < 0 {
					h[d] = 0
				}
			}
			out := matVec(lp.ff2, h)
			for d := range out {
				out[d] += x[i][d]
			}
			l2normalize(out)
			next[i] = out
		}
		x = next
	}

	for i, node := range g.Nodes {
		node.Encoded = x[i]
	}
}
