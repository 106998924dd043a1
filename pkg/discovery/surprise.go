package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// surpriseEpsilon floors the expected-co-occurrence denominator so a
// vanishingly small expectation never produces an infinite surprise
// value (spec.md §7: "expected co-occurrence underflow is clamped").
const surpriseEpsilon = 1e-10

// runSurprise flags edges whose participants are jointly far less likely
// to co-occur than their individual degrees would predict: expected =
// product of degree(n)/E over the edge's nodes. An edge whose expected
// value is below cfg.SurpriseMaxExpectedCooccurrence is surprising; surprise =
// 1/(expected+ε). Grounded on
// original_source/include/discovery/discovery_engine.hpp's surprise-edge
// miner, recovered in SPEC_FULL.md.
func runSurprise(ctx *opContext) []insight.Insight {
	totalEdges := float64(ctx.store.NumEdges())
	if totalEdges == 0 {
		return nil
	}

	edges := ctx.store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	type scored struct {
		edge     *hypergraph.HyperEdge
		expected float64
		surprise float64
	}
	var candidates []scored
	for _, e := range edges {
		nodes := e.Nodes()
		if len(nodes) == 0 {
			continue
		}
		expected := 1.0
		for _, n := range nodes {
			expected *= float64(ctx.store.Degree(n)) / totalEdges
		}
		if expected >= ctx.cfg.SurpriseMaxExpectedCooccurrence {
			continue
		}
		candidates = append(candidates, scored{edge: e, expected: expected, surprise: 1 / (expected + surpriseEpsilon)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].surprise != candidates[j].surprise {
			return candidates[i].surprise > candidates[j].surprise
		}
		return candidates[i].edge.ID < candidates[j].edge.ID
	})
	if len(candidates) > ctx.cfg.SurpriseMaxCandidates {
		candidates = candidates[:ctx.cfg.SurpriseMaxCandidates]
	}

	var out []insight.Insight
	for _, c := range candidates {
		out = append(out, buildSurpriseInsight(ctx, c.edge, c.expected, c.surprise))
	}
	sortInsightsDesc(out)
	return out
}

func buildSurpriseInsight(ctx *opContext, e *hypergraph.HyperEdge, expected, surprise float64) insight.Insight {
	seeds := e.Nodes()
	witness := []*hypergraph.HyperEdge{e}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	_, breakdown := combineScore(1, avgCo, haveCo, avgDeg, haveDeg)
	novelty := minFloat(1.0, surprise/(1/(ctx.cfg.SurpriseMaxExpectedCooccurrence+surpriseEpsilon))/2)
	breakdown.Novelty = novelty
	score := 0.4*breakdown.Support + 0.35*novelty + 0.25*breakdown.Specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeSurprise),
		Type:             insight.TypeSurprise,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("expected=%.6f", expected), fmt.Sprintf("surprise=%.3f", surprise)},
		Description:      fmt.Sprintf("edge %s (%s) connects entities far less likely to co-occur than chance predicts", e.ID, e.Relation),
	}
}
