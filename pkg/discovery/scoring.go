package discovery

import (
	"math"

	"github.com/veyra-ai/hypercore/pkg/insight"
)

// combineScore implements the generic scoring formula from spec.md §4.5:
// score = 0.4*support' + 0.35*novelty' + 0.25*specificity', where each raw
// signal is squashed through a log-based normalizer so no single large
// count dominates. Diffusion, path-ranking and embedding operators bypass
// this and set their own breakdown directly (DESIGN.md Open Question #1).
func combineScore(witnessEdgeCount int, avgCooccurrence float64, haveCooccurrence bool, avgDegree float64, haveDegree bool) (float64, insight.ScoreBreakdown) {
	support := normalizeSupport(witnessEdgeCount)
	novelty := 0.5
	if haveCooccurrence {
		novelty = normalizeNovelty(avgCooccurrence)
	}
	specificity := 0.5
	if haveDegree {
		specificity = normalizeSpecificity(avgDegree)
	}
	score := 0.4*support + 0.35*novelty + 0.25*specificity
	return score, insight.ScoreBreakdown{Support: support, Novelty: novelty, Specificity: specificity}
}

// normalizeSupport maps a witness-edge count n to log10(1+n): 0 for no
// evidence, 1 at nine edges, and above 1 beyond that. More corroborating
// evidence yields higher support.
func normalizeSupport(witnessEdges int) float64 {
	return math.Log10(1 + float64(witnessEdges))
}

// normalizeNovelty squashes average pairwise co-occurrence into (0,1]:
// rarer co-occurrence (smaller avg) yields higher novelty.
func normalizeNovelty(avgCooccurrence float64) float64 {
	return 1 / (1 + math.Log(1+avgCooccurrence))
}

// normalizeSpecificity squashes average node degree into (0,1]: lower
// degree (more specific, less hub-like) yields higher specificity.
func normalizeSpecificity(avgDegree float64) float64 {
	return 1 / (1 + math.Log(1+avgDegree))
}
