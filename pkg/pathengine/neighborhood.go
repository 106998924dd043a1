package pathengine

import "github.com/veyra-ai/hypercore/pkg/hypergraph"

// HHopNeighborhood returns the set of node ids reachable from n within h
// hops, expanding through any edge containing the frontier node that is
// s-connected to the last traversed edge (for h >= 2, per spec.md §4.2).
func HHopNeighborhood(store *hypergraph.Store, n string, h, s int) map[string]struct{} {
	result := map[string]struct{}{}
	if !store.HasNode(n) || h <= 0 {
		return result
	}

	type frontierNode struct {
		node     string
		lastEdge *hypergraph.HyperEdge
	}

	visitedEdges := make(map[string]struct{})
	frontier := []frontierNode{{node: n}}

	for hop := 0; hop < h; hop++ {
		var next []frontierNode
		for _, fn := range frontier {
			for _, e := range store.IncidentEdges(fn.node) {
				if fn.lastEdge != nil && !SConnected(fn.lastEdge, e, s) {
					continue
				}
				key := fn.node + "#" + e.ID
				if _, seen := visitedEdges[key]; seen {
					continue
				}
				visitedEdges[key] = struct{}{}
				for _, nb := range e.Nodes() {
					if nb == n {
						continue
					}
					result[nb] = struct{}{}
					next = append(next, frontierNode{node: nb, lastEdge: e})
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			break
		}
	}
	return result
}
