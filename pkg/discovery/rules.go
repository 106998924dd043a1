package discovery

import (
	"fmt"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// ruleRole distinguishes which side of an edge an entity played, since a
// rule's role choice (source or target) must match on both the body and
// head relation for the count to mean anything.
type ruleRole int

const (
	roleSource ruleRole = iota
	roleTarget
)

// runRules mines directional association rules "relation body implies
// relation head, in role R" over entities that play the same role (source
// or target) across both relations: for each body edge whose role-entity
// also plays that role in at least one head edge, that counts as support.
// confidence = support/|body edges|, lift = confidence/(|head edges|/E).
// Grounded on original_source/include/discovery/discovery_engine.hpp's
// rule miner, recovered in SPEC_FULL.md.
func runRules(ctx *opContext) []insight.Insight {
	edgesByRelation := make(map[string][]*hypergraph.HyperEdge)
	var relations []string
	for _, e := range ctx.store.AllEdges() {
		rel := hypergraph.NormalizeID(e.Relation)
		if _, ok := edgesByRelation[rel]; !ok {
			relations = append(relations, rel)
		}
		edgesByRelation[rel] = append(edgesByRelation[rel], e)
	}
	sort.Strings(relations)
	for _, rel := range relations {
		group := edgesByRelation[rel]
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		edgesByRelation[rel] = group
	}

	totalEdges := float64(ctx.store.NumEdges())
	if totalEdges == 0 {
		return nil
	}

	roles := []ruleRole{roleSource, roleTarget}

	var out []insight.Insight
	for _, body := range relations {
		for _, head := range relations {
			if body == head {
				continue
			}
			bodyEdges := edgesByRelation[body]
			headEdges := edgesByRelation[head]
			for _, role := range roles {
				headRoleEntities := roleEntitySet(headEdges, role)
				var supportingBody []*hypergraph.HyperEdge
				var supportingHead []*hypergraph.HyperEdge
				sharedEntities := make(map[string]struct{})
				for _, be := range bodyEdges {
					for _, entity := range roleEntities(be, role) {
						if _, ok := headRoleEntities[entity]; ok {
							supportingBody = append(supportingBody, be)
							sharedEntities[entity] = struct{}{}
							break
						}
					}
				}
				support := len(supportingBody)
				if support < ctx.cfg.RuleMinSupport {
					continue
				}
				confidence := float64(support) / float64(len(bodyEdges))
				if confidence < ctx.cfg.RuleMinConfidence {
					continue
				}
				headProb := float64(len(headEdges)) / totalEdges
				if headProb == 0 {
					continue
				}
				lift := confidence / headProb
				if lift < ctx.cfg.RuleMinLift {
					continue
				}
				for _, he := range headEdges {
					for _, entity := range roleEntities(he, role) {
						if _, ok := sharedEntities[entity]; ok {
							supportingHead = append(supportingHead, he)
							break
						}
					}
				}
				out = append(out, buildRuleInsight(ctx, body, head, role, sharedEntities, support, confidence, lift, supportingBody, supportingHead))
				if len(out) >= ctx.cfg.RuleMaxCandidates {
					sortInsightsDesc(out)
					return out
				}
			}
		}
	}
	sortInsightsDesc(out)
	return out
}

func roleEntities(e *hypergraph.HyperEdge, role ruleRole) []string {
	if role == roleSource {
		return e.Sources
	}
	return e.Targets
}

func roleEntitySet(edges []*hypergraph.HyperEdge, role ruleRole) map[string]struct{} {
	set := make(map[string]struct{})
	for _, e := range edges {
		for _, entity := range roleEntities(e, role) {
			set[entity] = struct{}{}
		}
	}
	return set
}

func roleLabel(role ruleRole) string {
	if role == roleSource {
		return "source"
	}
	return "target"
}

func buildRuleInsight(ctx *opContext, body, head string, role ruleRole, shared map[string]struct{}, support int, confidence, lift float64, bodyWitness, headWitness []*hypergraph.HyperEdge) insight.Insight {
	seeds := make([]string, 0, len(shared))
	for n := range shared {
		seeds = append(seeds, n)
	}
	sort.Strings(seeds)

	witness := append(append([]*hypergraph.HyperEdge(nil), bodyWitness...), headWitness...)

	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	specificity := 0.5
	if haveDeg {
		specificity = normalizeSpecificity(avgDeg)
	}
	supportNorm := normalizeSupport(len(witness))
	novelty := minFloat(1.0, confidence)
	score := 0.4*supportNorm + 0.35*novelty + 0.25*specificity

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeRule),
		Type:             insight.TypeRule,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   insight.ScoreBreakdown{Support: supportNorm, Novelty: novelty, Specificity: specificity},
		NoveltyTags:      []string{fmt.Sprintf("confidence=%.3f", confidence), fmt.Sprintf("lift=%.3f", lift), fmt.Sprintf("role=%s", roleLabel(role))},
		Description:      fmt.Sprintf("%q implies %q (as %s) with confidence %.2f, lift %.2f, support %d", body, head, roleLabel(role), confidence, lift, support),
	}
}
