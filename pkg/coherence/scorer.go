package coherence

import "math"

// LocalCoherence computes the coherence of a single sequential transition
// from the cosine similarity of the endpoints' encoded vectors blended with
// the edge's stored weight. The result is in [0,1].
func LocalCoherence(g *Graph, e *Edge, cfg Config) float64 {
	encSim := (cosine64(g.Nodes[e.Source].Encoded, g.Nodes[e.Target].Encoded) + 1) / 2
	return clamp01(cfg.Mix*encSim + (1-cfg.Mix)*e.Weight)
}

// Score aggregates per-transition local coherence into one scalar in [0,1].
//
// Each of the n-1 sequential transitions is weighted by the mean importance
// of its endpoints, so ambiguous low-importance sentences contribute less to
// the overall judgment. A single sentence is trivially coherent with itself
// and scores 1.0. In optimized mode the calibration transform is applied to
// the aggregate; it is monotonic, so the ranking of any two texts is
// unchanged.
func Score(g *Graph, cfg Config) float64 {
	seq := g.SequentialEdges()
	if len(seq) == 0 {
		return 1.0
	}

	var weighted, totalImportance float64
	for _, e := range seq {
		local := LocalCoherence(g, e, cfg)
		importance := (g.Nodes[e.Source].ImportanceScore + g.Nodes[e.Target].ImportanceScore) / 2
		weighted += local * importance
		totalImportance += importance
	}

	var score float64
	if totalImportance > 0 {
		score = weighted / totalImportance
	} else {
		// All-zero importance cannot happen with the entropy analyzer's
		// clamping, but a plain average keeps the score defined regardless.
		for _, e := range seq {
			score += LocalCoherence(g, e, cfg)
		}
		score /= float64(len(seq))
	}
	score = clamp01(score)

	if cfg.OptimizedMode {
		calibrate := cfg.Calibrate
		if calibrate == nil {
			calibrate = OddsPowerCalibrator(1.5)
		}
		score = clamp01(calibrate(score))
	}
	return score
}

// Percent converts a score into a whole percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

// OddsPowerCalibrator returns a strictly monotonic transform
// s^g / (s^g + (1-s)^g). With g > 1 it stretches scores away from the 0.5
// midpoint, countering the compression the importance-weighted average
// shows empirically; g = 1 is the identity.
func OddsPowerCalibrator(g float64) Calibrator {
	return func(s float64) float64 {
		s = clamp01(s)
		if s == 0 || s == 1 {
			return s
		}
		a := math.Pow(s, g)
		b := math.Pow(1-s, g)
		return a / (a + b)
	}
}
