package discovery

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veyra-ai/hypercore/pkg/hgindex"
	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// researchGraph mixes a citation chain (for author chains), two relations
// with overlapping nodes (for motifs/rules), and enough edges for diffusion
// and path ranking to have something to traverse.
func researchGraph() *hypergraph.Store {
	s := hypergraph.NewStore()
	s.AddEdge([]string{"Alice Smith"}, "authored", []string{"Paper One"}, hypergraph.Provenance{SourceChunkID: "c1"})
	s.AddEdge([]string{"Paper One"}, "cites", []string{"Paper Two"}, hypergraph.Provenance{SourceChunkID: "c2"})
	s.AddEdge([]string{"Bob Jones"}, "authored", []string{"Paper Two"}, hypergraph.Provenance{SourceChunkID: "c3"})
	s.AddEdge([]string{"Paper One"}, "activates", []string{"Protein X"}, hypergraph.Provenance{SourceChunkID: "c4"})
	s.AddEdge([]string{"Paper Two"}, "activates", []string{"Protein Y"}, hypergraph.Provenance{SourceChunkID: "c5"})
	s.AddEdge([]string{"Protein X"}, "inhibits", []string{"Protein Y"}, hypergraph.Provenance{SourceChunkID: "c6"})
	s.AddEdge([]string{"Paper One", "Protein X"}, "studies", []string{"Protein Y"}, hypergraph.Provenance{SourceChunkID: "c7"})
	return s
}

func buildIndex(s *hypergraph.Store) *hgindex.Index {
	return hgindex.Build(s, "test.json", hgindex.DefaultSValues)
}

var insightIDPattern = regexp.MustCompile(`^run1:[a-z_]+:\d{6}$`)

func TestEngineRunAllProducesSortedCollection(t *testing.T) {
	s := researchGraph()
	idx := buildIndex(s)
	eng := NewEngine(s, idx, DefaultConfig(), "run1")

	col, err := eng.RunAll()
	require.NoError(t, err)

	for i := 1; i < len(col.Insights); i++ {
		prev, cur := col.Insights[i-1], col.Insights[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.ID <= cur.ID))
	}
	for _, ins := range col.Insights {
		assert.Regexp(t, insightIDPattern, ins.ID)
	}
}

func TestEngineRunAllDeterministic(t *testing.T) {
	s := researchGraph()
	idx := buildIndex(s)
	cfg := DefaultConfig()

	col1, err := NewEngine(s, idx, cfg, "run1").RunAll()
	require.NoError(t, err)
	col2, err := NewEngine(s, idx, cfg, "run1").RunAll()
	require.NoError(t, err)

	require.Equal(t, len(col1.Insights), len(col2.Insights))
	for i := range col1.Insights {
		assert.Equal(t, col1.Insights[i].ID, col2.Insights[i].ID)
		assert.InDelta(t, col1.Insights[i].Score, col2.Insights[i].Score, 1e-9)
	}
}

func TestNewEngineGeneratesRunIDWhenEmpty(t *testing.T) {
	s := researchGraph()
	idx := buildIndex(s)
	e1 := NewEngine(s, idx, DefaultConfig(), "")
	e2 := NewEngine(s, idx, DefaultConfig(), "")
	assert.NotEmpty(t, e1.runID)
	assert.NotEqual(t, e1.runID, e2.runID)
}

func TestEngineRunOperatorsRejectsUnknownName(t *testing.T) {
	s := researchGraph()
	idx := buildIndex(s)
	eng := NewEngine(s, idx, DefaultConfig(), "run1")
	_, err := eng.RunOperators([]string{"not_a_real_operator"})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestEngineRunOperatorsSubsetOnly(t *testing.T) {
	s := researchGraph()
	idx := buildIndex(s)
	eng := NewEngine(s, idx, DefaultConfig(), "run1")
	col, err := eng.RunOperators([]string{"bridges", "motifs"})
	require.NoError(t, err)
	for _, ins := range col.Insights {
		assert.Contains(t, []insight.Type{insight.TypeBridge, insight.TypeMotif}, ins.Type)
	}
}

func TestAdaptiveTruncateDisabledKeepsEverything(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptiveThresholds = false
	cfg.TargetInsightsPerOperator = 1
	eng := &Engine{cfg: cfg}
	candidates := []insight.Insight{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	assert.Len(t, eng.adaptiveTruncate(candidates), 3)
}

func TestAdaptiveTruncateCapsAtTarget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptiveThresholds = true
	cfg.TargetInsightsPerOperator = 2
	eng := &Engine{cfg: cfg}
	candidates := []insight.Insight{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.5}, {ID: "c", Score: 0.1}}
	assert.Len(t, eng.adaptiveTruncate(candidates), 2)
}

// TestAdaptiveTruncateKeepsTiedBoundary checks insights tied with the
// candidate at the target rank survive truncation rather than being cut
// mid-tie.
func TestAdaptiveTruncateKeepsTiedBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdaptiveThresholds = true
	cfg.TargetInsightsPerOperator = 2
	eng := &Engine{cfg: cfg}
	candidates := []insight.Insight{{ID: "a", Score: 0.9}, {ID: "b", Score: 0.5}, {ID: "c", Score: 0.5}, {ID: "d", Score: 0.1}}
	kept := eng.adaptiveTruncate(candidates)
	require.Len(t, kept, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{kept[0].ID, kept[1].ID, kept[2].ID})
}

func TestDropUnrelatedAuthorChainsKeepsRelated(t *testing.T) {
	pool := []insight.Insight{
		{Type: insight.TypeBridge, SeedNodes: []string{"x"}},
		{Type: insight.TypeAuthorChain, SeedNodes: []string{"x", "y"}},
		{Type: insight.TypeAuthorChain, SeedNodes: []string{"unrelated1", "unrelated2"}},
	}
	kept := dropUnrelatedAuthorChains(pool)
	require.Len(t, kept, 2)
	for _, ins := range kept {
		if ins.Type == insight.TypeAuthorChain {
			assert.Equal(t, []string{"x", "y"}, ins.SeedNodes)
		}
	}
}

// TestHypothesisGroundingMatchesSourceInsight is the §8-style testable
// property: a hypothesis's seed/witness sets are exactly the sets of the
// single insight it repackages, never introducing anything new.
func TestHypothesisGroundingMatchesSourceInsight(t *testing.T) {
	pool := []insight.Insight{
		{ID: "run1:bridge:000001", Type: insight.TypeBridge, SeedNodes: []string{"hub"}, WitnessEdges: []string{"e1"}, WitnessNodes: []string{"hub", "a"}, Score: 0.7},
		{ID: "run1:motif:000001", Type: insight.TypeMotif, SeedNodes: []string{"hub"}, WitnessEdges: []string{"e2"}, WitnessNodes: []string{"hub", "b"}, Score: 0.6},
		{ID: "run1:rule:000001", Type: insight.TypeRule, SeedNodes: []string{"hub"}, WitnessEdges: []string{"e3"}, WitnessNodes: []string{"hub", "c"}, Score: 0.5},
	}
	cfg := DefaultConfig()
	cfg.HypothesisCount = 1
	ctx := &opContext{store: hypergraph.NewStore(), cfg: cfg, pool: pool, nextID: func(t insight.Type) string {
		return "run1:hypothesis:000001"
	}}

	out := runHypothesis(ctx)
	require.Len(t, out, 1)
	h := out[0]

	assert.Equal(t, pool[0].SeedNodes, h.SeedNodes)
	assert.Equal(t, pool[0].WitnessEdges, h.WitnessEdges)
	assert.Equal(t, pool[0].WitnessNodes, h.WitnessNodes)
	assert.Equal(t, pool[0].Score, h.Score)
}

// TestHypothesisPrefersOperatorTypeDiversity checks the greedy selection
// covers distinct operator types before repeating one, per spec.md's
// "preferring coverage of distinct types until three are represented".
func TestHypothesisPrefersOperatorTypeDiversity(t *testing.T) {
	pool := []insight.Insight{
		{ID: "run1:bridge:000001", Type: insight.TypeBridge, Score: 0.9},
		{ID: "run1:bridge:000002", Type: insight.TypeBridge, Score: 0.8},
		{ID: "run1:motif:000001", Type: insight.TypeMotif, Score: 0.5},
		{ID: "run1:rule:000001", Type: insight.TypeRule, Score: 0.4},
	}
	cfg := DefaultConfig()
	cfg.HypothesisCount = 3
	ctx := &opContext{store: hypergraph.NewStore(), cfg: cfg, pool: pool, nextID: func(t insight.Type) string { return "x" }}
	out := runHypothesis(ctx)
	require.Len(t, out, 3)

	sourceTypes := make(map[string]struct{})
	for _, h := range out {
		for _, tag := range h.NoveltyTags {
			sourceTypes[tag] = struct{}{}
		}
	}
	assert.Contains(t, sourceTypes, "source_type=bridge")
	assert.Contains(t, sourceTypes, "source_type=motif")
	assert.Contains(t, sourceTypes, "source_type=rule")
}

// TestHypothesisFallsBackToScoreOrderWithOneType confirms a single-type
// pool still produces hypotheses (repackaging doesn't require diversity,
// it only prefers it).
func TestHypothesisFallsBackToScoreOrderWithOneType(t *testing.T) {
	pool := []insight.Insight{
		{ID: "run1:bridge:000001", Type: insight.TypeBridge, SeedNodes: []string{"hub"}, Score: 0.7},
		{ID: "run1:bridge:000002", Type: insight.TypeBridge, SeedNodes: []string{"hub"}, Score: 0.6},
	}
	cfg := DefaultConfig()
	cfg.HypothesisCount = 5
	ctx := &opContext{store: hypergraph.NewStore(), cfg: cfg, pool: pool, nextID: func(t insight.Type) string { return "x" }}
	out := runHypothesis(ctx)
	require.Len(t, out, 2)
	assert.Equal(t, 0.7, out[0].Score)
}
