package hypergraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// Sentinel errors surfaced by Store operations, per spec.md §7
// ("Invalid input ... fails the load; no partial state exposed").
var (
	ErrUnknownNode   = errors.New("hypergraph: unknown node id")
	ErrDuplicateID   = errors.New("hypergraph: duplicate id")
	ErrInvalidConfig = errors.New("hypergraph: invalid configuration")
)

// Store owns a set of nodes and directed hyperedges and maintains the
// node-to-incident-edges index described in spec.md §4.1. Store is not
// thread-safe; callers serialize mutation themselves.
type Store struct {
	nodes map[string]*Node
	edges map[string]*HyperEdge

	// edgeSeq is the store-owned monotone counter used to mint new edge
	// ids. It is seeded from the highest numeric suffix observed on load,
	// never from a package-level global (spec.md §9).
	edgeSeq int

	// meta is the opaque top-level "meta" object from a loaded document,
	// preserved verbatim on round-trip (spec.md §6: "unknown fields
	// preserved on round-trip").
	meta json.RawMessage
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*Node),
		edges: make(map[string]*HyperEdge),
	}
}

// NumNodes returns the number of nodes currently in the store.
func (s *Store) NumNodes() int { return len(s.nodes) }

// NumEdges returns the number of edges currently in the store.
func (s *Store) NumEdges() int { return len(s.edges) }

// GetNode returns the node with the given id, or nil if absent.
func (s *Store) GetNode(id string) *Node {
	return s.nodes[id]
}

// GetEdge returns the edge with the given id, or nil if absent.
func (s *Store) GetEdge(id string) *HyperEdge {
	return s.edges[id]
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasEdge reports whether an edge with the given id exists.
func (s *Store) HasEdge(id string) bool {
	_, ok := s.edges[id]
	return ok
}

// AllNodes returns every node in the store, order unspecified.
func (s *Store) AllNodes() []*Node {
	out := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out
}

// AllEdges returns every edge in the store, order unspecified.
func (s *Store) AllEdges() []*HyperEdge {
	out := make([]*HyperEdge, 0, len(s.edges))
	for _, e := range s.edges {
		out = append(out, e)
	}
	return out
}

// IncidentEdges returns the edges touching nodeID, or nil if the node is
// unknown or has no incident edges.
func (s *Store) IncidentEdges(nodeID string) []*HyperEdge {
	n := s.nodes[nodeID]
	if n == nil {
		return nil
	}
	out := make([]*HyperEdge, 0, len(n.IncidentEdges))
	for _, eid := range n.IncidentEdges {
		if e := s.edges[eid]; e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Degree returns |incident(n)|, or 0 if n is unknown.
func (s *Store) Degree(nodeID string) int {
	if n := s.nodes[nodeID]; n != nil {
		return n.Degree()
	}
	return 0
}

// ensureNode creates the node if missing, normalizing its id from label.
func (s *Store) ensureNode(label string) *Node {
	id := NormalizeID(label)
	n, ok := s.nodes[id]
	if !ok {
		n = &Node{ID: id, Label: label}
		s.nodes[id] = n
	}
	return n
}

func (s *Store) nextEdgeID() string {
	s.edgeSeq++
	return fmt.Sprintf("e%06d", s.edgeSeq)
}

// AddEdge creates any missing nodes (normalizing their ids from the raw
// labels passed in), appends the edge, and updates the incident list of
// every participating node. Returns the generated edge id.
//
// sources/targets are raw labels, not pre-normalized ids: callers that
// already hold normalized ids may pass them through unchanged since
// NormalizeID is idempotent.
func (s *Store) AddEdge(sources []string, relation string, targets []string, prov Provenance) string {
	return s.AddEdgeWithConfidence(sources, relation, targets, prov, 1.0)
}

// AddEdgeWithConfidence is AddEdge with an explicit confidence in [0,1].
func (s *Store) AddEdgeWithConfidence(sources []string, relation string, targets []string, prov Provenance, confidence float64) string {
	srcIDs := make([]string, len(sources))
	for i, label := range sources {
		srcIDs[i] = s.ensureNode(label).ID
	}
	tgtIDs := make([]string, len(targets))
	for i, label := range targets {
		tgtIDs[i] = s.ensureNode(label).ID
	}

	id := s.nextEdgeID()
	edge := &HyperEdge{
		ID:         id,
		Sources:    srcIDs,
		Relation:   relation,
		Targets:    tgtIDs,
		Provenance: prov,
		Confidence: confidence,
	}
	s.edges[id] = edge
	s.attachIncidence(edge)
	return id
}

// addEdgeWithID inserts an already-constructed edge under its own id,
// used by Load and Merge. Returns ErrDuplicateID if the id collides.
func (s *Store) addEdgeWithID(edge *HyperEdge) error {
	if _, exists := s.edges[edge.ID]; exists {
		return fmt.Errorf("%w: edge %s", ErrDuplicateID, edge.ID)
	}
	for _, id := range edge.Nodes() {
		if !s.HasNode(id) {
			return fmt.Errorf("%w: %s referenced by edge %s", ErrUnknownNode, id, edge.ID)
		}
	}
	s.edges[edge.ID] = edge
	s.attachIncidence(edge)
	s.bumpSeqFor(edge.ID)
	return nil
}

func (s *Store) bumpSeqFor(id string) {
	var n int
	if _, err := fmt.Sscanf(id, "e%d", &n); err == nil && n > s.edgeSeq {
		s.edgeSeq = n
	}
}

func (s *Store) attachIncidence(edge *HyperEdge) {
	for _, id := range edge.Nodes() {
		n := s.nodes[id]
		if n == nil {
			n = &Node{ID: id, Label: id}
			s.nodes[id] = n
		}
		if !containsString(n.IncidentEdges, edge.ID) {
			n.IncidentEdges = append(n.IncidentEdges, edge.ID)
		}
	}
}

func (s *Store) detachIncidence(edge *HyperEdge) {
	for _, id := range edge.Nodes() {
		n := s.nodes[id]
		if n == nil {
			continue
		}
		n.IncidentEdges = removeString(n.IncidentEdges, edge.ID)
	}
}

func containsString(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(ss []string, v string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// AddNode inserts or updates a node, keyed by NormalizeID(node.Label). If
// a node already exists under that id its properties and embedding are
// overwritten, but its incident-edge list (store-maintained) is preserved.
func (s *Store) AddNode(n *Node) {
	id := NormalizeID(n.Label)
	existing, ok := s.nodes[id]
	if !ok {
		cp := n.clone()
		cp.ID = id
		s.nodes[id] = cp
		return
	}
	existing.Label = n.Label
	existing.Properties = n.Properties
	existing.Embedding = n.Embedding
}

// RemoveEdge deletes the edge and detaches it from every incident node's
// index. Reports false if the edge did not exist.
func (s *Store) RemoveEdge(id string) bool {
	edge, ok := s.edges[id]
	if !ok {
		return false
	}
	s.detachIncidence(edge)
	delete(s.edges, id)
	return true
}

// RemoveNode deletes the node and every edge incident to it (reciprocal
// removal, per spec.md §4.1).
func (s *Store) RemoveNode(id string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	for _, eid := range append([]string(nil), n.IncidentEdges...) {
		s.RemoveEdge(eid)
	}
	delete(s.nodes, id)
	return true
}

// TopHubs returns the top-k node ids by degree, ties broken lexicographically.
func (s *Store) TopHubs(k int) []string {
	type pair struct {
		id     string
		degree int
	}
	pairs := make([]pair, 0, len(s.nodes))
	for id, n := range s.nodes {
		pairs = append(pairs, pair{id, n.Degree()})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].degree != pairs[j].degree {
			return pairs[i].degree > pairs[j].degree
		}
		return pairs[i].id < pairs[j].id
	})
	if k > len(pairs) {
		k = len(pairs)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = pairs[i].id
	}
	return out
}

// ExtractSubgraph returns a new Store containing only the edges whose
// full node set is contained in nodeIDs, and the nodes those edges touch.
// Supplemented from original_source/include/graph/hypergraph.hpp
// (extract_subgraph); see SPEC_FULL.md §6.
func (s *Store) ExtractSubgraph(nodeIDs map[string]struct{}) *Store {
	out := NewStore()
	for _, e := range s.edges {
		inSet := true
		for _, id := range e.Nodes() {
			if _, ok := nodeIDs[id]; !ok {
				inSet = false
				break
			}
		}
		if !inSet {
			continue
		}
		srcLabels := make([]string, len(e.Sources))
		for i, id := range e.Sources {
			srcLabels[i] = s.labelFor(id)
		}
		tgtLabels := make([]string, len(e.Targets))
		for i, id := range e.Targets {
			tgtLabels[i] = s.labelFor(id)
		}
		out.AddEdgeWithConfidence(srcLabels, e.Relation, tgtLabels, e.Provenance, e.Confidence)
	}
	return out
}

func (s *Store) labelFor(id string) string {
	if n := s.nodes[id]; n != nil && n.Label != "" {
		return n.Label
	}
	return id
}

// MergeDuplicateEdges collapses edges that share the same normalized
// sources multiset, relation, and targets multiset, keeping the
// lexicographically smallest id among duplicates. Returns the count
// removed. Idempotent: calling it twice in a row removes 0 the second
// time.
func (s *Store) MergeDuplicateEdges() int {
	groups := make(map[string][]string) // signature -> edge ids
	for id, e := range s.edges {
		sig := duplicateSignature(e)
		groups[sig] = append(groups[sig], id)
	}
	removed := 0
	for _, ids := range groups {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		for _, id := range ids[1:] {
			if s.RemoveEdge(id) {
				removed++
			}
		}
	}
	return removed
}

func duplicateSignature(e *HyperEdge) string {
	srcs := append([]string(nil), e.Sources...)
	sort.Strings(srcs)
	tgts := append([]string(nil), e.Targets...)
	sort.Strings(tgts)
	return fmt.Sprintf("%v|%s|%v", srcs, normalizeRelation(e.Relation), tgts)
}

func normalizeRelation(r string) string {
	return NormalizeID(r)
}

// RemoveSelfLoops deletes every edge whose source set equals its target
// set and returns the count removed.
func (s *Store) RemoveSelfLoops() int {
	var toRemove []string
	for id, e := range s.edges {
		if e.IsSelfLoop() {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		s.RemoveEdge(id)
	}
	return len(toRemove)
}

// MergeSimilarNodes builds a similarity graph over nodes carrying an
// embedding (cosine similarity >= threshold), then for each connected
// component keeps the highest-degree node (ties broken lexicographically
// by id) and re-homes every incident edge from the others onto it.
// Returns the number of nodes removed.
func (s *Store) MergeSimilarNodes(threshold float64) int {
	var withEmbedding []*Node
	for _, n := range s.nodes {
		if len(n.Embedding) > 0 {
			withEmbedding = append(withEmbedding, n)
		}
	}
	if len(withEmbedding) < 2 {
		return 0
	}
	sort.Slice(withEmbedding, func(i, j int) bool { return withEmbedding[i].ID < withEmbedding[j].ID })

	uf := newUnionFind()
	for _, n := range withEmbedding {
		uf.add(n.ID)
	}
	for i := 0; i < len(withEmbedding); i++ {
		for j := i + 1; j < len(withEmbedding); j++ {
			if cosineSimilarity(withEmbedding[i].Embedding, withEmbedding[j].Embedding) >= threshold {
				uf.union(withEmbedding[i].ID, withEmbedding[j].ID)
			}
		}
	}

	components := make(map[string][]string)
	for _, n := range withEmbedding {
		root := uf.find(n.ID)
		components[root] = append(components[root], n.ID)
	}

	removed := 0
	for _, members := range components {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			di, dj := s.Degree(members[i]), s.Degree(members[j])
			if di != dj {
				return di > dj
			}
			return members[i] < members[j]
		})
		keep := members[0]
		for _, dupID := range members[1:] {
			s.rehome(dupID, keep)
			delete(s.nodes, dupID)
			removed++
		}
	}
	return removed
}

// rehome rewrites every edge incident to fromID so that it references
// toID instead, then clears fromID's incident list.
func (s *Store) rehome(fromID, toID string) {
	from := s.nodes[fromID]
	if from == nil {
		return
	}
	for _, eid := range from.IncidentEdges {
		e := s.edges[eid]
		if e == nil {
			continue
		}
		replaceInPlace(e.Sources, fromID, toID)
		replaceInPlace(e.Targets, fromID, toID)
		to := s.nodes[toID]
		if to != nil && !containsString(to.IncidentEdges, eid) {
			to.IncidentEdges = append(to.IncidentEdges, eid)
		}
	}
	from.IncidentEdges = nil
}

func replaceInPlace(ss []string, from, to string) {
	for i, v := range ss {
		if v == from {
			ss[i] = to
		}
	}
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Merge folds other into s. Node ids are unioned by normalized id;
// colliding edge ids are re-generated in s's id space. If dedup is true,
// MergeDuplicateEdges and RemoveSelfLoops run afterward.
func (s *Store) Merge(other *Store, dedup bool) {
	for _, n := range other.AllNodes() {
		s.AddNode(&Node{Label: n.Label, Properties: n.Properties, Embedding: n.Embedding})
	}
	for _, e := range other.AllEdges() {
		srcLabels := make([]string, len(e.Sources))
		for i, id := range e.Sources {
			srcLabels[i] = other.labelFor(id)
		}
		tgtLabels := make([]string, len(e.Targets))
		for i, id := range e.Targets {
			tgtLabels[i] = other.labelFor(id)
		}
		s.AddEdgeWithConfidence(srcLabels, e.Relation, tgtLabels, e.Provenance, e.Confidence)
	}
	if dedup {
		s.MergeDuplicateEdges()
		s.RemoveSelfLoops()
	}
}

// unionFind is a minimal disjoint-set structure over string keys, used by
// MergeSimilarNodes.
type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
