package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// runSubstitutions samples up to cfg.SubstitutionSampleCap edges and looks
// for pairs under the same relation whose node sets are identical except
// for exactly one member on each side, with high enough Jaccard overlap
// to call the differing pair interchangeable in that relational role.
// Sampling uses the engine's seeded rng once the edge count exceeds the
// cap so runs stay reproducible (spec.md §5). Grounded on
// pkg/hypergraph/store.go's MergeSimilarNodes connected-component idiom,
// reworked around exact-node-set-difference instead of embedding
// similarity.
func runSubstitutions(ctx *opContext) []insight.Insight {
	edges := ctx.store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	sampled := sampleEdges(edges, ctx.cfg.SubstitutionSampleCap, ctx.rng)

	byRelation := make(map[string][]*hypergraph.HyperEdge)
	var relations []string
	for _, e := range sampled {
		rel := hypergraph.NormalizeID(e.Relation)
		if _, ok := byRelation[rel]; !ok {
			relations = append(relations, rel)
		}
		byRelation[rel] = append(byRelation[rel], e)
	}
	sort.Strings(relations)

	var out []insight.Insight
	seen := make(map[[2]string]struct{})
	for _, rel := range relations {
		group := byRelation[rel]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				e1, e2 := group[i], group[j]
				a, b, jac, ok := substitutionCandidate(e1, e2)
				if !ok || jac < ctx.cfg.SubstitutionSimilarityThreshold {
					continue
				}
				key := pairKey(a, b)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, buildSubstitutionInsight(ctx, a, b, rel, jac, e1, e2))
				if len(out) >= ctx.cfg.SubstitutionMaxCandidates {
					sortInsightsDesc(out)
					return out
				}
			}
		}
	}
	sortInsightsDesc(out)
	return out
}

// sampleEdges returns every edge when the corpus is already within cap,
// otherwise draws cap edges without replacement using rng.
func sampleEdges(edges []*hypergraph.HyperEdge, sampleCap int, rng randSource) []*hypergraph.HyperEdge {
	if len(edges) <= sampleCap {
		return edges
	}
	pool := append([]*hypergraph.HyperEdge(nil), edges...)
	for i := 0; i < sampleCap; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:sampleCap]
}

// substitutionCandidate reports whether e1 and e2's node sets differ by
// exactly one member on each side, returning that pair and their Jaccard
// similarity.
func substitutionCandidate(e1, e2 *hypergraph.HyperEdge) (a, b string, jaccard float64, ok bool) {
	n1, n2 := e1.Nodes(), e2.Nodes()
	set1 := toSet(n1)
	set2 := toSet(n2)
	only1 := setMinus(set1, set2)
	only2 := setMinus(set2, set1)
	if len(only1) != 1 || len(only2) != 1 {
		return "", "", 0, false
	}
	inter := len(set1) - len(only1)
	union := len(set1) + len(only2)
	if union == 0 {
		return "", "", 0, false
	}
	return only1[0], only2[0], float64(inter) / float64(union), true
}

func toSet(ss []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

func setMinus(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func buildSubstitutionInsight(ctx *opContext, a, b, relation string, jac float64, e1, e2 *hypergraph.HyperEdge) insight.Insight {
	witness := []*hypergraph.HyperEdge{e1, e2}
	seeds := []string{a, b}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	_, breakdown := combineScore(len(witness), avgCo, haveCo, avgDeg, haveDeg)
	breakdown.Novelty = jac
	score := 0.4*breakdown.Support + 0.35*jac + 0.25*breakdown.Specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeSubstitution),
		Type:             insight.TypeSubstitution,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		NoveltyTags:      []string{fmt.Sprintf("jaccard=%.3f", jac)},
		Description:      fmt.Sprintf("%s and %s appear interchangeable under relation %q (jaccard %.2f)", a, b, relation, jac),
	}
}
