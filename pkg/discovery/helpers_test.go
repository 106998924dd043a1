package discovery

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-ai/hypercore/pkg/hypergraph"
)

func TestIsPersonLabel(t *testing.T) {
	cases := map[string]bool{
		"Alice Smith":     true,
		"Bob Jones":       true,
		"J. R. Tolkien":   true,
		"A. Smith et al.": true,
		"Smith et al":     true,
		"photosynthesis":  false,
		"Paper One":       true, // heuristic false positive, acceptable: two capitalized tokens
		"a":               false,
	}
	for label, want := range cases {
		assert.Equal(t, want, isPersonLabel(label), "label=%q", label)
	}
}

func TestIsReferenceLikeRelation(t *testing.T) {
	assert.True(t, isReferenceLikeRelation("cites"))
	assert.True(t, isReferenceLikeRelation("cited_by"))
	assert.True(t, isReferenceLikeRelation("citation"))
	assert.True(t, isReferenceLikeRelation("bibliography"))
	assert.True(t, isReferenceLikeRelation("works cited"))
	assert.False(t, isReferenceLikeRelation("activates"))
	assert.False(t, isReferenceLikeRelation("authored_by"))
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}
	assert.InDelta(t, 1.0/3.0, jaccard(a, b), 1e-9)
	assert.Equal(t, 0.0, jaccard(map[string]struct{}{}, map[string]struct{}{}))
}

func TestRenormalizeProducesUnitNorm(t *testing.T) {
	v := []float64{3, 4}
	renormalize(v)
	assert.InDelta(t, 1.0, l2norm(v), 1e-9)
}

func TestRenormalizeZeroVectorNoPanic(t *testing.T) {
	v := []float64{0, 0, 0}
	assert.NotPanics(t, func() { renormalize(v) })
}

// cliqueStore builds a fully connected hyperedge so every node has outgoing
// weight, which keeps personalizedPageRank's total probability mass conserved.
func cliqueStore() *hypergraph.Store {
	s := hypergraph.NewStore()
	s.AddEdge([]string{"alice", "bob"}, "knows", []string{"carol", "dave"}, hypergraph.Provenance{})
	s.AddEdge([]string{"carol"}, "knows", []string{"alice", "eve"}, hypergraph.Provenance{})
	return s
}

func TestPageRankConservesMass(t *testing.T) {
	s := cliqueStore()
	nodes := s.AllNodes()
	adjacency, outWeight := buildNodeProjection(s, nodes)
	ranks := personalizedPageRank(nodes, adjacency, outWeight, "alice", 20, 0.85)
	var sum float64
	for _, n := range nodes {
		sum += ranks[n.ID]
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestTrainTransEDeterministicWithSeed(t *testing.T) {
	s := cliqueStore()
	triples := flattenTriples(s)
	require.NotEmpty(t, triples)
	cfg := DefaultConfig()
	cfg.EmbeddingEpochs = 3
	cfg.EmbeddingDim = 4

	m1 := trainTransE(triples, cfg, rand.New(rand.NewSource(42)))
	m2 := trainTransE(triples, cfg, rand.New(rand.NewSource(42)))

	for id, v1 := range m1.entity {
		v2 := m2.entity[id]
		require.Len(t, v2, len(v1))
		for i := range v1 {
			assert.InDelta(t, v1[i], v2[i], 1e-12)
		}
	}
}
