package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/insight"
)

// runHypothesis repackages the run's own top-scoring insights into
// HYPOTHESIS insights: one per selected insight, each citing the
// underlying operator type and seed labels in its prose. Selection
// prefers covering distinct operator types until three are represented,
// then falls back to plain score order. Runs over ctx.pool, populated
// only when invoked through Engine.RunOperators.
func runHypothesis(ctx *opContext) []insight.Insight {
	if len(ctx.pool) == 0 {
		return nil
	}
	ranked := selectDiverseTopInsights(ctx.pool, ctx.cfg.HypothesisCount)

	var out []insight.Insight
	for _, src := range ranked {
		out = append(out, buildHypothesisInsight(ctx, src))
	}
	sortInsightsDesc(out)
	return out
}

// selectDiverseTopInsights greedily picks insights highest score first,
// but while fewer than three distinct operator types are represented it
// skips candidates whose type has already been picked, so the selection
// favors type coverage before it favors raw score.
func selectDiverseTopInsights(pool []insight.Insight, n int) []insight.Insight {
	sorted := make([]insight.Insight, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})

	const diversityTarget = 3
	seenTypes := make(map[insight.Type]struct{})
	used := make(map[string]struct{})
	var selected []insight.Insight

	for len(seenTypes) < diversityTarget && len(selected) < n {
		picked := false
		for _, ins := range sorted {
			if _, done := used[ins.ID]; done {
				continue
			}
			if _, seen := seenTypes[ins.Type]; seen {
				continue
			}
			selected = append(selected, ins)
			used[ins.ID] = struct{}{}
			seenTypes[ins.Type] = struct{}{}
			picked = true
			break
		}
		if !picked {
			break
		}
	}

	for _, ins := range sorted {
		if len(selected) >= n {
			break
		}
		if _, done := used[ins.ID]; done {
			continue
		}
		selected = append(selected, ins)
		used[ins.ID] = struct{}{}
	}

	return selected
}

func buildHypothesisInsight(ctx *opContext, src insight.Insight) insight.Insight {
	seeds := append([]string(nil), src.SeedNodes...)

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeHypothesis),
		Type:             insight.TypeHypothesis,
		SeedNodes:        seeds,
		SeedLabels:       append([]string(nil), src.SeedLabels...),
		WitnessEdges:     append([]string(nil), src.WitnessEdges...),
		WitnessNodes:     append([]string(nil), src.WitnessNodes...),
		EvidenceChunkIDs: append([]string(nil), src.EvidenceChunkIDs...),
		Score:            src.Score,
		ScoreBreakdown:   src.ScoreBreakdown,
		NoveltyTags:      []string{fmt.Sprintf("source_insight=%s", src.ID), fmt.Sprintf("source_type=%s", src.Type)},
		Description:      fmt.Sprintf("hypothesis from a %s finding over %v: %s", src.Type, seeds, src.Description),
	}
}
