package pathengine

import (
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

// SConnectedComponents partitions the store's edges into maximal groups
// that are pairwise reachable via s-connected steps (a union-find over the
// edge set). Components with a single edge are kept, per spec.md §4.2.
func SConnectedComponents(store *hypergraph.Store, s int) [][]string {
	edges := store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	uf := newEdgeUnionFind()
	for _, e := range edges {
		uf.add(e.ID)
	}

	// Group edges by node to avoid the O(E^2) all-pairs scan: any two
	// edges sharing a node are candidates, which is a superset of the
	// s-connectivity predicate that we then verify exactly.
	byNode := make(map[string][]*hypergraph.HyperEdge)
	for _, e := range edges {
		for _, n := range e.Nodes() {
			byNode[n] = append(byNode[n], e)
		}
	}
	checked := make(map[[2]string]struct{})
	for _, group := range byNode {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				key := edgePairKey(group[i].ID, group[j].ID)
				if _, done := checked[key]; done {
					continue
				}
				checked[key] = struct{}{}
				if SConnected(group[i], group[j], s) {
					uf.union(group[i].ID, group[j].ID)
				}
			}
		}
	}

	comps := make(map[string][]string)
	for _, e := range edges {
		root := uf.find(e.ID)
		comps[root] = append(comps[root], e.ID)
	}

	out := make([][]string, 0, len(comps))
	for _, ids := range comps {
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func edgePairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

type edgeUnionFind struct {
	parent map[string]string
}

func newEdgeUnionFind() *edgeUnionFind {
	return &edgeUnionFind{parent: make(map[string]string)}
}

func (u *edgeUnionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *edgeUnionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

func (u *edgeUnionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
