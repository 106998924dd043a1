package pathengine

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

func TestShortestSPathLength(t *testing.T) {
	s := twoTriangleStore()
	res := ShortestSPath(s, "a", "f", 1)
	require.True(t, res.Found)
	assert.Len(t, res.Paths[0], 3)
	assert.True(t, ValidPath(res.Paths[0], "a", "f", 1))
}

func TestShortestSPathUnreachableNotError(t *testing.T) {
	s := twoTriangleStore()
	res := ShortestSPath(s, "a", "nonexistent", 1)
	assert.False(t, res.Found)
	assert.Empty(t, res.Paths)
}

func TestShortestSPathSameNode(t *testing.T) {
	s := twoTriangleStore()
	res := ShortestSPath(s, "a", "a", 1)
	assert.True(t, res.Found)
	assert.Empty(t, res.Paths[0])
}

func TestSConnectedComponentsSingleComponent(t *testing.T) {
	s := twoTriangleStore()
	comps := SConnectedComponents(s, 1)
	require.Len(t, comps, 1)
	assert.Len(t, comps[0], 3)
}

func TestSConnectedComponentsHigherSSplits(t *testing.T) {
	s := twoTriangleStore()
	comps := SConnectedComponents(s, 2)
	// No pair of edges in the two-triangle graph shares >=2 nodes, so
	// every edge is its own component.
	assert.Len(t, comps, 3)
}

func TestKShortestSPathsAllValid(t *testing.T) {
	s := twoTriangleStore()
	res := KShortestSPaths(s, "a", "f", 3, 1, 5)
	require.True(t, res.Found)
	for _, p := range res.Paths {
		assert.True(t, ValidPath(p, "a", "f", 1))
	}
}

func TestHHopNeighborhood(t *testing.T) {
	s := twoTriangleStore()
	nbhd := HHopNeighborhood(s, "c", 1, 1)
	_, hasA := nbhd["a"]
	_, hasB := nbhd["b"]
	_, hasD := nbhd["d"]
	_, hasE := nbhd["e"]
	assert.True(t, hasA)
	assert.True(t, hasB)
	assert.True(t, hasD)
	assert.True(t, hasE)
}

func TestHHopNeighborhoodUnknownNode(t *testing.T) {
	s := twoTriangleStore()
	nbhd := HHopNeighborhood(s, "nonexistent", 2, 1)
	assert.Empty(t, nbhd)
}
