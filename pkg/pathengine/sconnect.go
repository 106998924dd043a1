// Package pathengine implements s-connected traversal over a hypergraph
// store: the shortest s-path, Yen-style k-shortest s-paths, s-connected
// components, and h-hop neighborhoods described in spec.md §4.2.
//
// s-connectivity is the substrate every algorithm here builds on: two
// hyperedges are s-connected iff they share at least s node ids. All
// queries take s as an explicit parameter (default 1) rather than baking
// it into the store, since different discovery operators need different
// granularities of the same graph.
package pathengine

import "github.com/veyra-ai/hypercore/pkg/hypergraph"

// SConnected reports whether e1 and e2 share at least s node ids.
func SConnected(e1, e2 *hypergraph.HyperEdge, s int) bool {
	return len(e1.Intersection(e2)) >= s
}

func sharedCount(e1, e2 *hypergraph.HyperEdge) int {
	return len(e1.Intersection(e2))
}
