package discovery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// referenceRelationKeywords identifies relations that describe citation
// or reference, the vocabulary a reference chain is built from.
var referenceRelationKeywords = []string{"cite", "cited", "citation", "reference", "refer", "bibliograph", "works cited"}

func isReferenceLikeRelation(relation string) bool {
	norm := hypergraph.NormalizeID(relation)
	for _, kw := range referenceRelationKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// personNamePattern matches a capitalized multi-word label, e.g. "Alice
// Smith" or "J. R. Tolkien".
var personNamePattern = regexp.MustCompile(`^[A-Z][\p{L}'-]*(?:[ .-]+[A-Z][\p{L}'-]*\.?){1,4}$`)

// initialPattern matches a bare capital-letter initial like "A." anywhere
// in the label.
var initialPattern = regexp.MustCompile(`\b[A-Z]\.`)

// isPersonLabel reports whether a label looks like a person's name:
// capitalized multi-word, or containing an initial like "A.", or
// containing "et al".
func isPersonLabel(label string) bool {
	if personNamePattern.MatchString(label) {
		return true
	}
	if initialPattern.MatchString(label) {
		return true
	}
	if strings.Contains(strings.ToLower(label), "et al") {
		return true
	}
	return false
}

// chainEdge records one reference-like edge directly linking two
// person-like nodes, with the edge itself kept as supporting evidence.
type chainEdge struct {
	to   string
	edge *hypergraph.HyperEdge
}

// runAuthorChains builds a directed adjacency over person-like nodes,
// connected whenever a reference-like edge has one person-like node on
// each side (source -> target), and emits every 2-hop chain A -> B -> C
// with A, B, C distinct, backed by the two supporting edges. Grounded on
// pathengine.HHopNeighborhood's frontier expansion shape, specialized to
// a person-only node set and a restricted edge vocabulary.
func runAuthorChains(ctx *opContext) []insight.Insight {
	refEdges := referenceLikeEdges(ctx.store)
	if len(refEdges) == 0 {
		return nil
	}

	adjacency := make(map[string][]chainEdge)
	for _, e := range refEdges {
		for _, s := range e.Sources {
			if !isPersonLabel(labelOf(ctx.store, s)) {
				continue
			}
			for _, t := range e.Targets {
				if t == s || !isPersonLabel(labelOf(ctx.store, t)) {
					continue
				}
				adjacency[s] = append(adjacency[s], chainEdge{to: t, edge: e})
			}
		}
	}

	var persons []string
	for p := range adjacency {
		persons = append(persons, p)
	}
	sort.Strings(persons)
	for _, p := range persons {
		sort.Slice(adjacency[p], func(i, j int) bool {
			if adjacency[p][i].to != adjacency[p][j].to {
				return adjacency[p][i].to < adjacency[p][j].to
			}
			return adjacency[p][i].edge.ID < adjacency[p][j].edge.ID
		})
	}

	var out []insight.Insight
	seen := make(map[[3]string]struct{})
	for _, a := range persons {
		for _, hop1 := range adjacency[a] {
			b := hop1.to
			if b == a {
				continue
			}
			for _, hop2 := range adjacency[b] {
				c := hop2.to
				if c == a || c == b {
					continue
				}
				key := [3]string{a, b, c}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				out = append(out, buildAuthorChainInsight(ctx, a, b, c, hop1.edge, hop2.edge))
				if len(out) >= ctx.cfg.AuthorChainMaxCandidates {
					sortInsightsDesc(out)
					return out
				}
			}
		}
	}
	sortInsightsDesc(out)
	return out
}

func referenceLikeEdges(store *hypergraph.Store) []*hypergraph.HyperEdge {
	var out []*hypergraph.HyperEdge
	for _, e := range store.AllEdges() {
		if isReferenceLikeRelation(e.Relation) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func buildAuthorChainInsight(ctx *opContext, a, b, c string, e1, e2 *hypergraph.HyperEdge) insight.Insight {
	seeds := []string{a, b, c}
	witness := []*hypergraph.HyperEdge{e1, e2}
	avgCo, haveCo := avgCooccurrence(ctx.index, seeds)
	avgDeg, haveDeg := avgDegree(ctx.store, seeds)
	score, breakdown := combineScore(len(witness), avgCo, haveCo, avgDeg, haveDeg)

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeAuthorChain),
		Type:             insight.TypeAuthorChain,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     witnessNodesOf(witness),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   breakdown,
		Description:      fmt.Sprintf("%s references %s who in turn references %s, via %s/%s", a, b, c, e1.Relation, e2.Relation),
	}
}
