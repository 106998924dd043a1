// Package dot exports a hypergraph store to Graphviz DOT, the "DOT
// export" external interface described in spec.md §6.
package dot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

// Export renders store as a single directed graph. Each hyperedge becomes
// a diamond-shaped intermediate node labeled with the relation; arrows run
// from each source to the diamond and from the diamond to each target.
func Export(store *hypergraph.Store) string {
	var b strings.Builder
	b.WriteString("digraph hypergraph {\n")
	b.WriteString("  rankdir=LR;\n")

	nodes := store.AllNodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		fmt.Fprintf(&b, "  %q [shape=ellipse, label=%q];\n", n.ID, n.Label)
	}

	edges := store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	for _, e := range edges {
		diamond := "rel_" + e.ID
		fmt.Fprintf(&b, "  %q [shape=diamond, label=%q];\n", diamond, e.Relation)
		for _, src := range e.Sources {
			fmt.Fprintf(&b, "  %q -> %q;\n", src, diamond)
		}
		for _, tgt := range e.Targets {
			fmt.Fprintf(&b, "  %q -> %q;\n", diamond, tgt)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
