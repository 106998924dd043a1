package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
	"github.com/veyra-ai/hypercore/pkg/pathengine"
)

// pathRankSValue is the s-connectivity threshold path ranking traverses
// with. It is not separately configurable: it shares the smallest value in
// hgindex.DefaultSValues, so a path-rank run always sees the loosest
// (most permissive) s-component structure the index precomputed.
const pathRankSValue = 2

// runPathRank looks at pairs of top-hub nodes that never directly
// co-occur and asks whether they're still connected indirectly: it runs
// Yen-style k-shortest s-paths between them and scores the pair by
// Σ 1/length(p) over every returned path, emitting one PATH_RANK insight
// per qualifying pair with the union of all paths' edges as witness.
// Grounded on pkg/pathengine/kshortest.go.
func runPathRank(ctx *opContext) []insight.Insight {
	hubs := ctx.index.TopHubs(ctx.cfg.PathRankMaxSeedNodes)
	if len(hubs) < 2 {
		return nil
	}

	var out []insight.Insight
	for i := 0; i < len(hubs); i++ {
		for j := i + 1; j < len(hubs); j++ {
			a, b := hubs[i], hubs[j]
			if ctx.index.Cooccurrence(a, b) != 0 {
				continue
			}
			result := pathengine.KShortestSPaths(ctx.store, a, b, ctx.cfg.PathRankK, pathRankSValue, ctx.cfg.PathRankMaxHops)
			if !result.Found || len(result.Paths) == 0 {
				continue
			}

			var score float64
			var witness []*hypergraph.HyperEdge
			for _, path := range result.Paths {
				if len(path) == 0 {
					continue
				}
				score += 1.0 / float64(len(path))
				witness = append(witness, path...)
			}
			witness = dedupeEdges(witness)
			if len(witness) < ctx.cfg.PathRankMinEvidenceEdges {
				continue
			}
			if score < ctx.cfg.PathRankMinScore {
				continue
			}

			out = append(out, buildPathRankInsight(ctx, a, b, witness, score, len(result.Paths)))
			if len(out) >= ctx.cfg.PathRankMaxCandidates {
				sortInsightsDesc(out)
				return out
			}
		}
	}
	sortInsightsDesc(out)
	return out
}

// dedupeEdges collapses repeated edges (the same edge can appear in more
// than one of the k shortest paths) into a sorted, unique witness set.
func dedupeEdges(edges []*hypergraph.HyperEdge) []*hypergraph.HyperEdge {
	seen := make(map[string]*hypergraph.HyperEdge, len(edges))
	for _, e := range edges {
		seen[e.ID] = e
	}
	out := make([]*hypergraph.HyperEdge, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// buildPathRankInsight uses the path score directly as the insight's
// final score rather than blending it into the generic weighted formula:
// spec.md gives Σ1/length(p) as this operator's own evidence-strength
// statistic, the same kind of domain-specific override diffusion and
// TransE use.
func buildPathRankInsight(ctx *opContext, a, b string, witness []*hypergraph.HyperEdge, pathScore float64, pathCount int) insight.Insight {
	seeds := []string{a, b}
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	specificity := 0.5
	if haveDeg {
		specificity = normalizeSpecificity(avgDeg)
	}
	supportNorm := normalizeSupport(len(witness))
	score := minFloat(1.0, pathScore)

	return insight.Insight{
		ID:               ctx.nextID(insight.TypePathRank),
		Type:             insight.TypePathRank,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   insight.ScoreBreakdown{Support: supportNorm, Novelty: score, Specificity: specificity},
		NoveltyTags:      []string{fmt.Sprintf("path_count=%d", pathCount), fmt.Sprintf("path_score=%.3f", pathScore)},
		Description:      fmt.Sprintf("%s and %s connect through %d indirect s-path(s) despite never co-occurring directly", a, b, pathCount),
	}
}
