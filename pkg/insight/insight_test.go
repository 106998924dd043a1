package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByScoreDescTiesById(t *testing.T) {
	c := &Collection{Insights: []Insight{
		{ID: "r:bridge:000002", Score: 0.5},
		{ID: "r:bridge:000001", Score: 0.5},
		{ID: "r:motif:000001", Score: 0.9},
	}}
	c.SortByScoreDesc()
	require.Len(t, c.Insights, 3)
	assert.Equal(t, "r:motif:000001", c.Insights[0].ID)
	assert.Equal(t, "r:bridge:000001", c.Insights[1].ID)
	assert.Equal(t, "r:bridge:000002", c.Insights[2].ID)
}

func TestTruncate(t *testing.T) {
	c := &Collection{Insights: []Insight{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	c.Truncate(2)
	assert.Len(t, c.Insights, 2)
}

func TestSummaryByType(t *testing.T) {
	c := &Collection{Insights: []Insight{
		{Type: TypeBridge}, {Type: TypeBridge}, {Type: TypeMotif},
	}}
	summary := c.SummaryByType()
	assert.Equal(t, 2, summary[TypeBridge])
	assert.Equal(t, 1, summary[TypeMotif])
}

func TestCollectionRoundTrip(t *testing.T) {
	c := &Collection{
		RunID:           "run1",
		CreatedUTC:      "2026-08-01T00:00:00Z",
		SourceGraphPath: "graph.json",
		Insights: []Insight{
			{ID: "run1:bridge:000001", Type: TypeBridge, Score: 0.8, SeedNodes: []string{"a"}},
		},
	}
	data, err := c.MarshalJSON()
	require.NoError(t, err)

	loaded, err := LoadCollection(data)
	require.NoError(t, err)
	assert.Equal(t, c.RunID, loaded.RunID)
	require.Len(t, loaded.Insights, 1)
	assert.Equal(t, c.Insights[0].ID, loaded.Insights[0].ID)
}
