package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
	"github.com/veyra-ai/hypercore/pkg/pathengine"
)

type communityInfo struct {
	edges           []*hypergraph.HyperEdge
	localDegree     map[string]int
	relationsOfNode map[string]map[string]struct{}
	topNodes        []string
}

// runCommunity looks within each s-component for its most locally central
// nodes, then checks cross-component pairs of those nodes that never
// directly co-occur: if the two nodes' relation-type signatures, computed
// from their own component's edges, overlap more than chance, the two
// otherwise-separate clusters likely describe a similar kind of
// structure. Grounded on pathengine.SConnectedComponents and the
// teacher's apoc/algo.go Community label-propagation grouping idea,
// reworked around s-connectivity rather than adjacency.
func runCommunity(ctx *opContext) []insight.Insight {
	edgeComponents := pathengine.SConnectedComponents(ctx.store, ctx.cfg.CommunitySThreshold)
	if len(edgeComponents) < 2 {
		return nil
	}

	infos := make([]*communityInfo, 0, len(edgeComponents))
	for _, edgeIDList := range edgeComponents {
		info := &communityInfo{localDegree: make(map[string]int), relationsOfNode: make(map[string]map[string]struct{})}
		for _, eid := range edgeIDList {
			e := ctx.store.GetEdge(eid)
			if e == nil {
				continue
			}
			info.edges = append(info.edges, e)
			rel := hypergraph.NormalizeID(e.Relation)
			for _, n := range e.Nodes() {
				info.localDegree[n]++
				if info.relationsOfNode[n] == nil {
					info.relationsOfNode[n] = make(map[string]struct{})
				}
				info.relationsOfNode[n][rel] = struct{}{}
			}
		}
		info.topNodes = topNodesByLocalDegree(info.localDegree, ctx.cfg.CommunityTopNodesPerComponent)
		infos = append(infos, info)
	}

	var out []insight.Insight
	for i := 0; i < len(infos); i++ {
		for j := i + 1; j < len(infos); j++ {
			for _, a := range infos[i].topNodes {
				for _, b := range infos[j].topNodes {
					if ctx.index.Cooccurrence(a, b) != 0 {
						continue
					}
					overlap := jaccard(infos[i].relationsOfNode[a], infos[j].relationsOfNode[b])
					if overlap < ctx.cfg.CommunityMinRelationOverlap {
						continue
					}
					out = append(out, buildCommunityInsight(ctx, infos[i], infos[j], a, b, overlap))
					if len(out) >= ctx.cfg.CommunityMaxCandidates {
						sortInsightsDesc(out)
						return out
					}
				}
			}
		}
	}
	sortInsightsDesc(out)
	return out
}

func topNodesByLocalDegree(localDegree map[string]int, k int) []string {
	type pair struct {
		id     string
		degree int
	}
	pairs := make([]pair, 0, len(localDegree))
	for n, d := range localDegree {
		pairs = append(pairs, pair{n, d})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].degree != pairs[j].degree {
			return pairs[i].degree > pairs[j].degree
		}
		return pairs[i].id < pairs[j].id
	})
	if k > len(pairs) {
		k = len(pairs)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = pairs[i].id
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func edgesTouchingNode(edges []*hypergraph.HyperEdge, node string) []*hypergraph.HyperEdge {
	var out []*hypergraph.HyperEdge
	for _, e := range edges {
		if e.ContainsNode(node) {
			out = append(out, e)
		}
	}
	return out
}

func buildCommunityInsight(ctx *opContext, infoA, infoB *communityInfo, a, b string, overlap float64) insight.Insight {
	seeds := []string{a, b}
	witness := append(edgesTouchingNode(infoA.edges, a), edgesTouchingNode(infoB.edges, b)...)

	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	_, breakdown := combineScore(len(witness), 0, false, avgDeg, haveDeg)
	breakdown.Novelty = overlap
	score := 0.4*breakdown.Support + 0.35*overlap + 0.25*breakdown.Specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeCommunityLink),
		Type:             insight.TypeCommunityLink,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("relation_overlap=%.3f", overlap)},
		Description:      fmt.Sprintf("%s and %s, central in separate clusters, never co-occur but share %.0f%% of their relation vocabulary", a, b, overlap*100),
	}
}
