package hypergraph

import (
	"encoding/json"
	"fmt"
)

// wireDocument mirrors the "Hypergraph JSON" wire format from spec.md §6:
// a top-level object with nodes, edges, and an opaque meta blob that is
// preserved verbatim on round-trip even though the core never interprets
// it.
type wireDocument struct {
	Nodes []wireNode      `json:"nodes"`
	Edges []HyperEdge     `json:"edges"`
	Meta  json.RawMessage `json:"meta,omitempty"`
}

type wireNode struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Properties map[string]string `json:"properties,omitempty"`
	Embedding  []float64         `json:"embedding,omitempty"`
}

// Meta holds the opaque top-level "meta" object from a loaded document, so
// a round-trip through MarshalJSON preserves unknown fields verbatim.
func (s *Store) Meta() json.RawMessage { return s.meta }

// SetMeta overrides the opaque meta blob emitted by MarshalJSON.
func (s *Store) SetMeta(meta json.RawMessage) { s.meta = meta }

// MarshalJSON serializes the store to the wire format in spec.md §6.
func (s *Store) MarshalJSON() ([]byte, error) {
	doc := wireDocument{Meta: s.meta}
	nodes := s.AllNodes()
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, wireNode{
			ID:         n.ID,
			Label:      n.Label,
			Properties: n.Properties,
			Embedding:  n.Embedding,
		})
	}
	edges := s.AllEdges()
	for _, e := range edges {
		doc.Edges = append(doc.Edges, *e)
	}
	return json.Marshal(doc)
}

// Load parses a Hypergraph JSON document (spec.md §6) into a fresh Store.
// Returns an error (never a partially-populated store) if the JSON is
// malformed, an edge id collides, or an edge references a node id that is
// not declared in the nodes array and cannot be resolved.
func Load(data []byte) (*Store, error) {
	var doc wireDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("hypergraph: parse: %w", err)
	}

	store := NewStore()
	store.meta = doc.Meta

	seenNodeIDs := make(map[string]struct{}, len(doc.Nodes))
	for _, wn := range doc.Nodes {
		id := wn.ID
		if id == "" {
			id = NormalizeID(wn.Label)
		}
		if _, dup := seenNodeIDs[id]; dup {
			return nil, fmt.Errorf("%w: node %s", ErrDuplicateID, id)
		}
		seenNodeIDs[id] = struct{}{}
		store.nodes[id] = &Node{
			ID:         id,
			Label:      wn.Label,
			Properties: wn.Properties,
			Embedding:  wn.Embedding,
		}
	}

	seenEdgeIDs := make(map[string]struct{}, len(doc.Edges))
	for i := range doc.Edges {
		edge := doc.Edges[i]
		if edge.ID == "" {
			edge.ID = store.nextEdgeID()
		}
		if _, dup := seenEdgeIDs[edge.ID]; dup {
			return nil, fmt.Errorf("%w: edge %s", ErrDuplicateID, edge.ID)
		}
		seenEdgeIDs[edge.ID] = struct{}{}
		for _, nid := range edge.Nodes() {
			if _, ok := store.nodes[nid]; !ok {
				return nil, fmt.Errorf("%w: %s referenced by edge %s", ErrUnknownNode, nid, edge.ID)
			}
		}
		e := edge
		store.edges[e.ID] = &e
		store.attachIncidence(&e)
		store.bumpSeqFor(e.ID)
	}

	return store, nil
}
