package hgindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

func twoTriangleStore() *hypergraph.Store {
	s := hypergraph.NewStore()
	s.AddEdge([]string{"A", "B"}, "rel1", []string{"C"}, hypergraph.Provenance{})
	s.AddEdge([]string{"C"}, "rel2", []string{"D", "E"}, hypergraph.Provenance{})
	s.AddEdge([]string{"B", "E"}, "rel3", []string{"F"}, hypergraph.Provenance{})
	return s
}

func TestBuildIndexBasics(t *testing.T) {
	s := twoTriangleStore()
	idx := Build(s, "graph.json", nil)

	assert.Equal(t, 6, idx.NodeCount)
	assert.Equal(t, 3, idx.EdgeCount)
	assert.Contains(t, idx.RelationToEdges, "rel1")
	assert.Contains(t, idx.LabelToNodes, "a")
	assert.Len(t, idx.SComponents[2], 3) // default s-values include 2,3,4
}

func TestCooccurrenceSymmetric(t *testing.T) {
	s := twoTriangleStore()
	idx := Build(s, "", nil)
	assert.Equal(t, idx.Cooccurrence("A", "B"), idx.Cooccurrence("B", "A"))
	assert.Equal(t, 1, idx.Cooccurrence("A", "B"))
	assert.Equal(t, 0, idx.Cooccurrence("A", "F"))
}

func TestTopHubsOrdering(t *testing.T) {
	s := twoTriangleStore()
	idx := Build(s, "", nil)
	hubs := idx.TopHubs(3)
	assert.Len(t, hubs, 3)
	for _, h := range hubs {
		assert.GreaterOrEqual(t, idx.DegreeOf(h), 1)
	}
}

func TestIndexRoundTripJSON(t *testing.T) {
	s := twoTriangleStore()
	idx := Build(s, "graph.json", []int{1, 2})
	data, err := idx.MarshalJSON()
	require.NoError(t, err)

	loaded, err := LoadIndex(data)
	require.NoError(t, err)

	assert.Equal(t, idx.NodeCount, loaded.NodeCount)
	assert.Equal(t, idx.EdgeCount, loaded.EdgeCount)
	assert.Equal(t, idx.Cooccurrence("A", "B"), loaded.Cooccurrence("A", "B"))
	assert.ElementsMatch(t, idx.SComponents[2], loaded.SComponents[2])
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache("")
	require.NoError(t, err)
	defer cache.Close()

	s := twoTriangleStore()
	graphJSON, err := s.MarshalJSON()
	require.NoError(t, err)

	calls := 0
	build := func() *Index {
		calls++
		return Build(s, "graph.json", nil)
	}

	first, err := cache.GetOrBuild(graphJSON, build)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	second, err := cache.GetOrBuild(graphJSON, build)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "second call should hit the cache")
	assert.Equal(t, first.NodeCount, second.NodeCount)
}
