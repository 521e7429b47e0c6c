package coherence

// lowSimilarityCutoff separates an outright topic break from a transition
// that merely lacks an explicit connective.
const lowSimilarityCutoff = 0.3

// DetectDisruptions scans the sequential transitions in ascending order and
// flags every one whose local coherence falls below the threshold. The
// flagged edge's Reason field is populated with the same reason code.
//
// Reason selection: a discourse marker that promises a connection the
// semantics do not deliver is a topic shift; without a marker, a very low
// raw similarity is a plain similarity failure, and anything else is a
// missing discourse link. There is no limit on the number of items — in
// pathological input every transition may be flagged.
func DetectDisruptions(g *Graph, cfg Config) []DisruptionItem {
	report := make([]DisruptionItem, 0)

	for _, e := range g.SequentialEdges() {
		local := LocalCoherence(g, e, cfg)
		if local >= cfg.DisruptThreshold {
			continue
		}

		var reason string
		switch {
		case e.DiscourseMarker != "":
			reason = ReasonTopicShift
		case e.Weight < lowSimilarityCutoff:
			reason = ReasonLowSimilarity
		default:
			reason = ReasonMissingDiscourseLink
		}

		e.Reason = reason
		report = append(report, DisruptionItem{
			FromIdx: e.Source,
			ToIdx:   e.Target,
			Reason:  reason,
			Score:   local,
		})
	}

	return report
}
