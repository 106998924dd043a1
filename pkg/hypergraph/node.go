// Package hypergraph implements the directed hypergraph data model: nodes,
// hyperedges, and the store that owns them.
//
// A hyperedge connects an ordered set of source entities to an ordered set
// of target entities through a named relation — "higher order" in the sense
// that a single fact can involve more than two participants at once
// ([chitosan, PCL] --composes--> [nanofiber scaffold]). The store maintains
// a node-to-incident-edges index so traversal never has to scan the full
// edge set.
//
// Example:
//
//	store := hypergraph.NewStore()
//	store.AddEdge([]string{"chitosan", "PCL"}, "composes", []string{"nanofiber scaffold"}, hypergraph.Provenance{})
//	fmt.Println(store.Degree(hypergraph.NormalizeID("chitosan")))
package hypergraph

// Node represents an entity in the hypergraph.
//
// ID is the canonical normalized form of Label (see NormalizeID); two
// ingested labels that normalize equal refer to the same Node. Embedding
// is consulted only by the deduplication pass (MergeSimilarNodes), never
// by discovery operators.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
	Embedding  []float64         `json:"embedding,omitempty"`

	// IncidentEdges is maintained by Store; callers must not mutate it
	// directly, or degree coherence breaks.
	IncidentEdges []string `json:"-"`
}

// Degree returns the number of incident edges, which must always equal
// len(IncidentEdges).
func (n *Node) Degree() int {
	return len(n.IncidentEdges)
}

func (n *Node) clone() *Node {
	cp := *n
	if n.Properties != nil {
		cp.Properties = make(map[string]string, len(n.Properties))
		for k, v := range n.Properties {
			cp.Properties[k] = v
		}
	}
	if n.Embedding != nil {
		cp.Embedding = append([]float64(nil), n.Embedding...)
	}
	cp.IncidentEdges = append([]string(nil), n.IncidentEdges...)
	return &cp
}
