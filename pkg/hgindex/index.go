// Package hgindex builds and serializes the precomputed index described in
// spec.md §4.3: a derived, immutable snapshot over a frozen hypergraph
// store — relation-to-edges, label-to-nodes, cached s-components,
// degree ranking, and entity co-occurrence counts — so discovery operators
// never have to rescan the store for these lookups.
//
// An Index is versioned only implicitly, by CreatedUTC and the graph file
// path it was built from (Index.SourceGraphPath); a stale index is never
// detected automatically — rebuild whenever the underlying store changes.
package hgindex

import (
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

// DefaultSValues is the configured set of s thresholds the index
// precomputes components for, per spec.md §3.
var DefaultSValues = []int{2, 3, 4}

// degreeEntry is one row of the degree ranking.
type degreeEntry struct {
	NodeID string
	Degree int
}

// Index is the derived snapshot described in spec.md §3/§4.3.
type Index struct {
	CreatedUTC      string
	SourceGraphPath string
	NodeCount       int
	EdgeCount       int

	RelationToEdges    map[string][]string
	LabelToNodes       map[string][]string
	SComponents        map[int][][]string
	DegreeRanked       []degreeEntry
	CooccurrenceCounts map[string]int
}

// Cooccurrence returns the co-occurrence count for an unordered pair,
// normalizing both ids through hypergraph.NormalizeID first so lookups
// from any source (already-normalized or raw label) agree, matching
// original_source/include/index/hypergraph_index.hpp's get_cooccurrence.
func (idx *Index) Cooccurrence(a, b string) int {
	na, nb := hypergraph.NormalizeID(a), hypergraph.NormalizeID(b)
	return idx.CooccurrenceCounts[cooccurrenceKey(na, nb)]
}

func cooccurrenceKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

// TopHubs returns the top-k node ids by degree from the cached ranking.
func (idx *Index) TopHubs(k int) []string {
	if k > len(idx.DegreeRanked) {
		k = len(idx.DegreeRanked)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = idx.DegreeRanked[i].NodeID
	}
	return out
}

// DegreeOf returns the cached degree for a node id, or 0 if absent from
// the ranking (e.g. because the on-disk ranking was truncated to the top
// 1000; see DESIGN.md's Open Question #5).
func (idx *Index) DegreeOf(id string) int {
	for _, e := range idx.DegreeRanked {
		if e.NodeID == id {
			return e.Degree
		}
	}
	return 0
}

// FindNodesByLabelPrefix returns node ids whose lowercased label begins
// with prefix.
func (idx *Index) FindNodesByLabelPrefix(prefix string) []string {
	lower := hypergraph.NormalizeID(prefix)
	var out []string
	for label, ids := range idx.LabelToNodes {
		if len(label) >= len(lower) && label[:len(lower)] == lower {
			out = append(out, ids...)
		}
	}
	sort.Strings(out)
	return out
}

// EdgesForRelation returns the edge ids indexed under a lowercased
// relation name.
func (idx *Index) EdgesForRelation(relation string) []string {
	return idx.RelationToEdges[hypergraph.NormalizeID(relation)]
}
