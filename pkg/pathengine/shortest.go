package pathengine

import (
	"sort"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

// PathResult is the outcome of a shortest/k-shortest s-path query.
type PathResult struct {
	Paths [][]*hypergraph.HyperEdge
	Found bool
}

// ShortestSPath runs BFS over the edge graph (vertices are edges incident
// to a, expanding to s-connected neighbor edges) until an edge containing
// b is dequeued. Ties among equal-length frontiers are broken
// lexicographically on the edge-id sequence. Returns an empty, not-found
// result if a or b do not exist or are unreachable — this is not an error
// per spec.md §7.
func ShortestSPath(store *hypergraph.Store, a, b string, s int) PathResult {
	if !store.HasNode(a) || !store.HasNode(b) {
		return PathResult{Found: false}
	}
	if a == b {
		return PathResult{Found: true, Paths: [][]*hypergraph.HyperEdge{{}}}
	}

	start := store.IncidentEdges(a)
	sortEdgesByID(start)

	type frame struct {
		path []*hypergraph.HyperEdge
	}
	visited := make(map[string]struct{})
	var frontier []frame
	for _, e := range start {
		visited[e.ID] = struct{}{}
		frontier = append(frontier, frame{path: []*hypergraph.HyperEdge{e}})
	}
	sort.Slice(frontier, func(i, j int) bool {
		return pathKeyLess(frontier[i].path, frontier[j].path)
	})

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		last := cur.path[len(cur.path)-1]
		if last.ContainsNode(b) {
			return PathResult{Found: true, Paths: [][]*hypergraph.HyperEdge{cur.path}}
		}

		var next []frame
		for _, nid := range last.Nodes() {
			for _, candidate := range store.IncidentEdges(nid) {
				if _, seen := visited[candidate.ID]; seen {
					continue
				}
				if !SConnected(last, candidate, s) {
					continue
				}
				visited[candidate.ID] = struct{}{}
				np := append(append([]*hypergraph.HyperEdge(nil), cur.path...), candidate)
				next = append(next, frame{path: np})
			}
		}
		sort.Slice(next, func(i, j int) bool { return pathKeyLess(next[i].path, next[j].path) })
		frontier = append(frontier, next...)
		sort.SliceStable(frontier, func(i, j int) bool {
			if len(frontier[i].path) != len(frontier[j].path) {
				return len(frontier[i].path) < len(frontier[j].path)
			}
			return pathKeyLess(frontier[i].path, frontier[j].path)
		})
	}
	return PathResult{Found: false}
}

func sortEdgesByID(edges []*hypergraph.HyperEdge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
}

func pathKeyLess(a, b []*hypergraph.HyperEdge) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].ID != b[i].ID {
			return a[i].ID < b[i].ID
		}
	}
	return len(a) < len(b)
}

// ValidPath reports whether path satisfies the s-connectivity predicate on
// every consecutive pair and touches endpoint a at its first edge and
// endpoint b at its last edge. Used by tests asserting path validity
// (spec.md §8).
func ValidPath(path []*hypergraph.HyperEdge, a, b string, s int) bool {
	if len(path) == 0 {
		return a == b
	}
	if !path[0].ContainsNode(a) || !path[len(path)-1].ContainsNode(b) {
		return false
	}
	for i := 1; i < len(path); i++ {
		if !SConnected(path[i-1], path[i], s) {
			return false
		}
	}
	return true
}
