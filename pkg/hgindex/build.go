package hgindex

import (
	"sort"
	"time"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/pathengine"
)

// nowUTC is a package variable so tests can pin the clock; production
// code never needs to.
var nowUTC = func() time.Time { return time.Now().UTC() }

// Build computes a fresh Index over store for the given s values
// (defaults to DefaultSValues when nil). sourceGraphPath is recorded as
// metadata only — the core never re-reads it or checks staleness
// (spec.md §4.3).
func Build(store *hypergraph.Store, sourceGraphPath string, sValues []int) *Index {
	if sValues == nil {
		sValues = DefaultSValues
	}

	idx := &Index{
		CreatedUTC:         nowUTC().Format(time.RFC3339),
		SourceGraphPath:    sourceGraphPath,
		NodeCount:          store.NumNodes(),
		EdgeCount:          store.NumEdges(),
		RelationToEdges:    make(map[string][]string),
		LabelToNodes:       make(map[string][]string),
		SComponents:        make(map[int][][]string),
		CooccurrenceCounts: make(map[string]int),
	}

	edges := store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	for _, e := range edges {
		rel := hypergraph.NormalizeID(e.Relation)
		idx.RelationToEdges[rel] = append(idx.RelationToEdges[rel], e.ID)
	}

	nodes := store.AllNodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		label := hypergraph.NormalizeID(n.Label)
		idx.LabelToNodes[label] = append(idx.LabelToNodes[label], n.ID)
		idx.DegreeRanked = append(idx.DegreeRanked, degreeEntry{NodeID: n.ID, Degree: n.Degree()})
	}
	sort.Slice(idx.DegreeRanked, func(i, j int) bool {
		if idx.DegreeRanked[i].Degree != idx.DegreeRanked[j].Degree {
			return idx.DegreeRanked[i].Degree > idx.DegreeRanked[j].Degree
		}
		return idx.DegreeRanked[i].NodeID < idx.DegreeRanked[j].NodeID
	})

	for _, s := range sValues {
		idx.SComponents[s] = pathengine.SConnectedComponents(store, s)
	}

	for _, e := range edges {
		entities := e.Nodes()
		for i := 0; i < len(entities); i++ {
			for j := i + 1; j < len(entities); j++ {
				idx.CooccurrenceCounts[cooccurrenceKey(entities[i], entities[j])]++
			}
		}
	}

	return idx
}
