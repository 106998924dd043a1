package hypergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two-triangle graph from spec.md §8 scenario 1.
func twoTriangleGraph() *Store {
	s := NewStore()
	s.AddEdge([]string{"A", "B"}, "rel1", []string{"C"}, Provenance{})
	s.AddEdge([]string{"C"}, "rel2", []string{"D", "E"}, Provenance{})
	s.AddEdge([]string{"B", "E"}, "rel3", []string{"F"}, Provenance{})
	return s
}

func TestTwoTriangleDegrees(t *testing.T) {
	s := twoTriangleGraph()
	assert.Equal(t, 2, s.Degree("b"))
	assert.Equal(t, 2, s.Degree("c"))
	assert.Equal(t, 2, s.Degree("e"))
	assert.Equal(t, 6, s.NumNodes())
	assert.Equal(t, 3, s.NumEdges())
}

func TestDegreeCoherenceAfterMutation(t *testing.T) {
	s := twoTriangleGraph()
	id := s.AddEdge([]string{"B"}, "rel4", []string{"G"}, Provenance{})
	for _, n := range s.AllNodes() {
		assert.Equal(t, len(n.IncidentEdges), n.Degree())
	}
	assert.True(t, s.RemoveEdge(id))
	for _, n := range s.AllNodes() {
		assert.Equal(t, len(n.IncidentEdges), n.Degree())
	}
}

func TestSelfLoopRemoval(t *testing.T) {
	s := NewStore()
	s.AddEdge([]string{"X"}, "r", []string{"X"}, Provenance{})
	before := s.NumEdges()
	removed := s.RemoveSelfLoops()
	assert.Equal(t, 1, removed)
	assert.Equal(t, before-1, s.NumEdges())
	for _, e := range s.AllEdges() {
		assert.False(t, e.IsSelfLoop())
	}
}

func TestDuplicateEdgeCollapse(t *testing.T) {
	s := NewStore()
	s.AddEdge([]string{"A", "B"}, "r", []string{"C"}, Provenance{})
	s.AddEdge([]string{"A", "B"}, "r", []string{"C"}, Provenance{})
	removed := s.MergeDuplicateEdges()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.NumEdges())

	n := s.GetNode("a")
	require.NotNil(t, n)
	assert.Len(t, n.IncidentEdges, 1)
}

func TestDedupIdempotent(t *testing.T) {
	s := NewStore()
	s.AddEdge([]string{"A"}, "r", []string{"B"}, Provenance{})
	s.AddEdge([]string{"A"}, "r", []string{"B"}, Provenance{})
	s.MergeDuplicateEdges()
	second := s.MergeDuplicateEdges()
	assert.Equal(t, 0, second)
}

func TestNormalizeIDIdempotent(t *testing.T) {
	cases := []string{"  Entities  ", "Glasses", "Boxes", "Dishes", "Cats", "Class", "A"}
	for _, c := range cases {
		once := NormalizeID(c)
		twice := NormalizeID(once)
		assert.Equal(t, once, twice, "not idempotent for %q", c)
	}
}

func TestNormalizeIDRules(t *testing.T) {
	assert.Equal(t, "entity", NormalizeID("entities"))
	assert.Equal(t, "glass", NormalizeID("glasses"))
	assert.Equal(t, "box", NormalizeID("boxes"))
	assert.Equal(t, "dish", NormalizeID("dishes"))
	assert.Equal(t, "cat", NormalizeID("cats"))
	assert.Equal(t, "class", NormalizeID("class"))
	assert.Equal(t, "a b c", NormalizeID("  A   b\tc  "))
}

func TestMergeSimilarNodes(t *testing.T) {
	s := NewStore()
	s.AddEdge([]string{"Alpha"}, "r", []string{"Z"}, Provenance{})
	s.AddEdge([]string{"Beta"}, "r", []string{"Y"}, Provenance{})
	s.AddNode(&Node{Label: "Alpha", Embedding: []float64{1, 0}})
	s.AddNode(&Node{Label: "Beta", Embedding: []float64{1, 0}})

	removed := s.MergeSimilarNodes(0.99)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 5, s.NumNodes())
}

func TestMergeStores(t *testing.T) {
	a := NewStore()
	a.AddEdge([]string{"A"}, "r", []string{"B"}, Provenance{})

	b := NewStore()
	b.AddEdge([]string{"A"}, "r", []string{"B"}, Provenance{})
	b.AddEdge([]string{"C"}, "r2", []string{"D"}, Provenance{})

	a.Merge(b, true)
	assert.Equal(t, 2, a.NumEdges())
	assert.Equal(t, 4, a.NumNodes())
}

func TestRoundTripJSON(t *testing.T) {
	s := twoTriangleGraph()
	data, err := s.MarshalJSON()
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, s.NumNodes(), loaded.NumNodes())
	assert.Equal(t, s.NumEdges(), loaded.NumEdges())
	for id, n := range s.nodes {
		other := loaded.GetNode(id)
		require.NotNil(t, other, "missing node %s", id)
		assert.Equal(t, n.Degree(), other.Degree())
	}
}

func TestLoadRejectsUnknownNodeReference(t *testing.T) {
	bad := []byte(`{"nodes":[{"id":"a","label":"A"}],"edges":[{"id":"e1","sources":["a"],"relation":"r","targets":["b"]}]}`)
	_, err := Load(bad)
	require.Error(t, err)
}

func TestLoadRejectsDuplicateEdgeID(t *testing.T) {
	bad := []byte(`{"nodes":[{"id":"a","label":"A"},{"id":"b","label":"B"}],"edges":[` +
		`{"id":"e1","sources":["a"],"relation":"r","targets":["b"]},` +
		`{"id":"e1","sources":["a"],"relation":"r","targets":["b"]}]}`)
	_, err := Load(bad)
	require.Error(t, err)
}

func TestExtractSubgraph(t *testing.T) {
	s := twoTriangleGraph()
	sub := s.ExtractSubgraph(map[string]struct{}{"a": {}, "b": {}, "c": {}})
	assert.Equal(t, 1, sub.NumEdges())
}

func TestTopHubs(t *testing.T) {
	s := twoTriangleGraph()
	hubs := s.TopHubs(2)
	assert.Len(t, hubs, 2)
}
