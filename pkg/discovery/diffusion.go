package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// runDiffusion picks the top-degree nodes as seeds and, for each one, runs
// a personalized PageRank (restart probability concentrated on that seed)
// over the node-projection of the hypergraph. The top non-seed nodes each
// personalized run reaches become that seed's diffusion insights, scored
// directly by their personalized PageRank mass: diffusion carries its own
// relevance signal, so it bypasses the generic weighted formula per
// DESIGN.md's Open Question #1 decision. Grounded on apoc/algo.go's
// PageRank.
func runDiffusion(ctx *opContext) []insight.Insight {
	nodes := ctx.store.AllNodes()
	if len(nodes) == 0 {
		return nil
	}
	adjacency, outWeight := buildNodeProjection(ctx.store, nodes)

	seeds := ctx.index.TopHubs(ctx.cfg.DiffusionTopK)

	var out []insight.Insight
	for _, seed := range seeds {
		ranks := personalizedPageRank(nodes, adjacency, outWeight, seed, ctx.cfg.DiffusionIterations, ctx.cfg.DiffusionDamping)

		ids := make([]string, 0, len(nodes))
		for _, n := range nodes {
			if n.ID == seed {
				continue
			}
			ids = append(ids, n.ID)
		}
		sort.Slice(ids, func(i, j int) bool {
			if ranks[ids[i]] != ranks[ids[j]] {
				return ranks[ids[i]] > ranks[ids[j]]
			}
			return ids[i] < ids[j]
		})

		k := ctx.cfg.DiffusionTopNodesPerSeed
		if k > len(ids) {
			k = len(ids)
		}
		for i := 0; i < k; i++ {
			id := ids[i]
			if ranks[id] < ctx.cfg.DiffusionMinRelevance {
				continue
			}
			witness := ctx.store.IncidentEdges(id)
			out = append(out, insight.Insight{
				ID:               ctx.nextID(insight.TypeDiffusion),
				Type:             insight.TypeDiffusion,
				SeedNodes:        []string{seed, id},
				SeedLabels:       labelsOf(ctx.store, []string{seed, id}),
				WitnessEdges:     edgeIDs(witness),
				WitnessNodes:     witnessNodesOf(witness),
				EvidenceChunkIDs: evidenceChunksOf(witness),
				Score:            ranks[id],
				ScoreBreakdown:   insight.ScoreBreakdown{Support: normalizeSupport(len(witness)), Novelty: ranks[id], Specificity: ranks[id]},
				NoveltyTags:      []string{fmt.Sprintf("pagerank=%.6f", ranks[id])},
				Description:      fmt.Sprintf("diffusing from %s, %s accumulates the most influence", seed, id),
			})
		}
	}
	sortInsightsDesc(out)
	if len(out) > ctx.cfg.DiffusionMaxCandidates {
		out = out[:ctx.cfg.DiffusionMaxCandidates]
	}
	return out
}

// buildNodeProjection turns the hypergraph into a weighted node graph:
// two nodes are adjacent if they co-occur in a hyperedge, weighted by how
// many hyperedges they share.
func buildNodeProjection(store *hypergraph.Store, nodes []*hypergraph.Node) (map[string]map[string]int, map[string]int) {
	adjacency := make(map[string]map[string]int, len(nodes))
	for _, n := range nodes {
		adjacency[n.ID] = make(map[string]int)
	}
	edges := store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	for _, e := range edges {
		members := e.Nodes()
		for i := 0; i < len(members); i++ {
			for j := 0; j < len(members); j++ {
				if i == j {
					continue
				}
				adjacency[members[i]][members[j]]++
			}
		}
	}
	outWeight := make(map[string]int, len(nodes))
	for id, nbrs := range adjacency {
		sum := 0
		for _, w := range nbrs {
			sum += w
		}
		outWeight[id] = sum
	}
	return adjacency, outWeight
}

// personalizedPageRank runs power-iteration PageRank where, instead of a
// uniform restart distribution, the (1-damping) mass teleports entirely
// back to seed every iteration. This measures how much influence diffuses
// outward from that one seed specifically.
func personalizedPageRank(nodes []*hypergraph.Node, adjacency map[string]map[string]int, outWeight map[string]int, seed string, iterations int, damping float64) map[string]float64 {
	n := len(nodes)
	scores := make(map[string]float64, n)
	for _, nd := range nodes {
		scores[nd.ID] = 1.0 / float64(n)
	}

	for iter := 0; iter < iterations; iter++ {
		next := make(map[string]float64, n)
		for _, nd := range nodes {
			next[nd.ID] = 0
		}
		next[seed] += 1 - damping
		for _, nd := range nodes {
			id := nd.ID
			if outWeight[id] == 0 {
				next[seed] += damping * scores[id]
				continue
			}
			share := scores[id] / float64(outWeight[id])
			for nbr, w := range adjacency[id] {
				next[nbr] += damping * share * float64(w)
			}
		}
		scores = next
	}
	return scores
}
