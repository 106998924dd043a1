package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// runCompletions looks at every unordered pair of entities that co-appear
// in at least cfg.CompletionMinSharedEdges edges and collects the set of
// *third* entities those shared edges also touch. A pair whose
// third-entity set has two or more members is a completion candidate: the
// missing fillers a reader might expect alongside {a,b}. Grounded on
// pkg/hypergraph/store.go's pairwise node-set reasoning in
// MergeSimilarNodes, applied to co-occurrence instead of embedding
// similarity.
func runCompletions(ctx *opContext) []insight.Insight {
	edges := ctx.store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	pairEdges := make(map[[2]string][]*hypergraph.HyperEdge)
	var pairKeys [][2]string
	for _, e := range edges {
		nodes := e.Nodes()
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				key := pairKey(nodes[i], nodes[j])
				if _, ok := pairEdges[key]; !ok {
					pairKeys = append(pairKeys, key)
				}
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

	var out []insight.Insight
	for _, key := range pairKeys {
		shared := pairEdges[key]
		if len(shared) < ctx.cfg.CompletionMinSharedEdges {
			continue
		}
		thirdSet := make(map[string]struct{})
		for _, e := range shared {
			for _, n := range e.Nodes() {
				if n != key[0] && n != key[1] {
					thirdSet[n] = struct{}{}
				}
			}
		}
		if len(thirdSet) < 2 {
			continue
		}
		out = append(out, buildCompletionInsight(ctx, key[0], key[1], shared, thirdSet))
		if len(out) >= ctx.cfg.CompletionMaxCandidates {
			break
		}
	}
	sortInsightsDesc(out)
	return out
}

func buildCompletionInsight(ctx *opContext, a, b string, witness []*hypergraph.HyperEdge, thirdSet map[string]struct{}) insight.Insight {
	fillers := make([]string, 0, len(thirdSet))
	for n := range thirdSet {
		fillers = append(fillers, n)
	}
	sort.Strings(fillers)

	seeds := []string{a, b}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	_, breakdown := combineScore(len(witness), avgCo, haveCo, avgDeg, haveDeg)
	novelty := minFloat(1.0, float64(len(fillers))/10.0)
	breakdown.Novelty = novelty
	score := 0.4*breakdown.Support + 0.35*novelty + 0.25*breakdown.Specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeCompletion),
		Type:             insight.TypeCompletion,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("candidate_fillers=%v", fillers)},
		Description:      fmt.Sprintf("%s and %s co-occur with a %d-entity candidate-filler set: %v", a, b, len(fillers), fillers),
	}
}
