package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
	"github.com/veyra-ai/hypercore/pkg/pathengine"
)

// runBridges identifies nodes whose incident edges span at least two
// distinct s-components at cfg.BridgeSThreshold: a node sitting at the
// seam between otherwise-separate clusters. Grounded on
// pathengine.SConnectedComponents and the teacher's apoc/algo.go
// Community/ClosenessCentrality cluster-boundary reasoning.
func runBridges(ctx *opContext) []insight.Insight {
	components := pathengine.SConnectedComponents(ctx.store, ctx.cfg.BridgeSThreshold)
	if len(components) < 2 {
		return nil
	}

	edgeComponent := make(map[string]int, ctx.store.NumEdges())
	for ci, edgeIDList := range components {
		for _, eid := range edgeIDList {
			edgeComponent[eid] = ci
		}
	}

	nodes := ctx.store.AllNodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	type candidate struct {
		node    string
		spanned int
		witness []*hypergraph.HyperEdge
	}
	var candidates []candidate
	for _, n := range nodes {
		witness := ctx.store.IncidentEdges(n.ID)
		spanned := make(map[int]struct{})
		for _, e := range witness {
			if ci, ok := edgeComponent[e.ID]; ok {
				spanned[ci] = struct{}{}
			}
		}
		if len(spanned) >= 2 {
			candidates = append(candidates, candidate{node: n.ID, spanned: len(spanned), witness: witness})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].spanned != candidates[j].spanned {
			return candidates[i].spanned > candidates[j].spanned
		}
		return candidates[i].node < candidates[j].node
	})
	if len(candidates) > ctx.cfg.BridgeMaxCandidates {
		candidates = candidates[:ctx.cfg.BridgeMaxCandidates]
	}

	var out []insight.Insight
	for _, c := range candidates {
		out = append(out, buildBridgeInsight(ctx, c.node, c.spanned, c.witness))
	}
	sortInsightsDesc(out)
	return out
}

func buildBridgeInsight(ctx *opContext, node string, spanned int, witness []*hypergraph.HyperEdge) insight.Insight {
	seeds := []string{node}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	score, breakdown := combineScore(len(witness), avgCo, haveCo, avgDeg, haveDeg)

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeBridge),
		Type:             insight.TypeBridge,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("components_spanned=%d", spanned)},
		Description:      fmt.Sprintf("%s bridges %d distinct s-components through its %d incident edges", node, spanned, len(witness)),
	}
}
