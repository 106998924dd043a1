package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// motifEntityCap bounds how many of an edge's participating entities are
// considered when enumerating pairs, keeping large hyperedges from
// dominating the pair count with a combinatorial blowup.
const motifEntityCap = 10

// runMotifs enumerates unordered entity pairs drawn from the first
// motifEntityCap participants of each edge, counts them across the
// corpus, and keeps pairs whose observed count clears expectation under
// independence of degree: lift = observed / (degree(a)*degree(b)/E).
// Grounded on original_source/include/discovery/discovery_engine.hpp's
// motif miner, recovered in SPEC_FULL.md.
func runMotifs(ctx *opContext) []insight.Insight {
	edges := ctx.store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	totalEdges := float64(len(edges))
	if totalEdges == 0 {
		return nil
	}

	pairCount := make(map[[2]string]int)
	pairEdges := make(map[[2]string][]*hypergraph.HyperEdge)
	var pairKeys [][2]string
	for _, e := range edges {
		nodes := e.Nodes()
		if len(nodes) > motifEntityCap {
			nodes = nodes[:motifEntityCap]
		}
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				key := pairKey(nodes[i], nodes[j])
				if pairCount[key] == 0 {
					pairKeys = append(pairKeys, key)
				}
				pairCount[key]++
				pairEdges[key] = append(pairEdges[key], e)
			}
		}
	}
	sort.Slice(pairKeys, func(i, j int) bool {
		if pairKeys[i][0] != pairKeys[j][0] {
			return pairKeys[i][0] < pairKeys[j][0]
		}
		return pairKeys[i][1] < pairKeys[j][1]
	})

	type scoredPair struct {
		key     [2]string
		support int
		lift    float64
	}
	var scored []scoredPair
	for _, key := range pairKeys {
		support := pairCount[key]
		if support < ctx.cfg.MotifMinSupport {
			continue
		}
		d1 := float64(ctx.store.Degree(key[0]))
		d2 := float64(ctx.store.Degree(key[1]))
		expected := d1 * d2 / totalEdges
		if expected <= 0 {
			continue
		}
		lift := float64(support) / expected
		if lift < ctx.cfg.MotifMinLift {
			continue
		}
		scored = append(scored, scoredPair{key: key, support: support, lift: lift})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].lift != scored[j].lift {
			return scored[i].lift > scored[j].lift
		}
		return scored[i].key[0] < scored[j].key[0]
	})
	if len(scored) > ctx.cfg.MotifMaxCandidates {
		scored = scored[:ctx.cfg.MotifMaxCandidates]
	}

	var out []insight.Insight
	for _, sp := range scored {
		out = append(out, buildMotifInsight(ctx, sp.key[0], sp.key[1], sp.support, sp.lift, pairEdges[sp.key]))
	}
	sortInsightsDesc(out)
	return out
}

func buildMotifInsight(ctx *opContext, a, b string, support int, lift float64, witness []*hypergraph.HyperEdge) insight.Insight {
	seeds := []string{a, b}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	_, breakdown := combineScore(len(witness), avgCo, haveCo, avgDeg, haveDeg)
	// The motif's own lift statistic is a more specific novelty signal
	// than the generic co-occurrence proxy, so it replaces the novelty
	// term (DESIGN.md's Open Question #1 decision).
	novelty := minFloat(1.0, lift/ctx.cfg.MotifMinLift/2)
	breakdown.Novelty = novelty
	score := 0.4*breakdown.Support + 0.35*novelty + 0.25*breakdown.Specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeMotif),
		Type:             insight.TypeMotif,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("support=%d", support), fmt.Sprintf("lift=%.3f", lift)},
		Description:      fmt.Sprintf("%s and %s co-occur in %d edges with lift %.2f", a, b, support, lift),
	}
}
