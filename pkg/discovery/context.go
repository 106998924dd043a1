package discovery

import (
	"math"
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hgindex"
	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// opContext bundles the read-only inputs every operator closes over.
// Nothing on opContext is mutated by an operator (spec.md §4.4: "pure
// function of (store, index, config, rng seed)").
type opContext struct {
	store  *hypergraph.Store
	index  *hgindex.Index
	cfg    Config
	rng    randSource
	nextID func(insight.Type) string

	// pool is only populated for the hypothesis operator: the insights
	// produced by every other operator this run, already truncated and
	// filtered per the "author chains excluded from general pool unless
	// related" rule (see Engine.RunOperators).
	pool []insight.Insight
}

// randSource is the minimal surface discovery operators need from
// math/rand.Rand, narrowed so operators can't reach into the rest of the
// generator's API by accident.
type randSource interface {
	Float64() float64
	Intn(n int) int
}

func avgDegree(store *hypergraph.Store, nodeIDs []string) (float64, bool) {
	if len(nodeIDs) == 0 {
		return 0, false
	}
	sum := 0
	for _, id := range nodeIDs {
		sum += store.Degree(id)
	}
	return float64(sum) / float64(len(nodeIDs)), true
}

func avgCooccurrence(index *hgindex.Index, nodeIDs []string) (float64, bool) {
	if len(nodeIDs) < 2 {
		return 0, false
	}
	var sum float64
	var n int
	for i := 0; i < len(nodeIDs); i++ {
		for j := i + 1; j < len(nodeIDs); j++ {
			sum += float64(index.Cooccurrence(nodeIDs[i], nodeIDs[j]))
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func uniqueSortedStrings(ss []string) []string {
	seen := make(map[string]struct{}, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func edgeIDs(edges []*hypergraph.HyperEdge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	sort.Strings(out)
	return out
}

func witnessNodesOf(edges []*hypergraph.HyperEdge) []string {
	var all []string
	for _, e := range edges {
		all = append(all, e.Nodes()...)
	}
	return uniqueSortedStrings(all)
}

func evidenceChunksOf(edges []*hypergraph.HyperEdge) []string {
	var out []string
	for _, e := range edges {
		if e.Provenance.SourceChunkID != "" {
			out = append(out, e.Provenance.SourceChunkID)
		}
	}
	return uniqueSortedStrings(out)
}

func labelsOf(store *hypergraph.Store, nodeIDs []string) []string {
	out := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if n := store.GetNode(id); n != nil {
			out = append(out, n.Label)
		}
	}
	return out
}

func minFloat(a, b float64) float64 {
	return math.Min(a, b)
}
