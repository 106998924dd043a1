package insight

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Collection wraps a run's emitted insights with the metadata block
// described in spec.md §4.5.
type Collection struct {
	RunID           string    `json:"run_id"`
	CreatedUTC      string    `json:"created_utc"`
	SourceGraphPath string    `json:"source_graph_path"`
	Insights        []Insight `json:"-"`
}

// SortByScoreDesc sorts insights by score descending; ties are broken by
// insight id ascending (spec.md §5: "ties are broken by insight id
// (lexicographic), yielding deterministic output").
func (c *Collection) SortByScoreDesc() {
	sort.SliceStable(c.Insights, func(i, j int) bool {
		if c.Insights[i].Score != c.Insights[j].Score {
			return c.Insights[i].Score > c.Insights[j].Score
		}
		return c.Insights[i].ID < c.Insights[j].ID
	})
}

// Truncate keeps at most n insights (call SortByScoreDesc first).
func (c *Collection) Truncate(n int) {
	if n >= 0 && len(c.Insights) > n {
		c.Insights = c.Insights[:n]
	}
}

// SummaryByType counts insights per operator type.
func (c *Collection) SummaryByType() map[Type]int {
	out := make(map[Type]int)
	for _, ins := range c.Insights {
		out[ins.Type]++
	}
	return out
}

type wireMeta struct {
	RunID           string `json:"run_id"`
	CreatedUTC      string `json:"created_utc"`
	SourceGraph     string `json:"source_graph"`
	TotalInsights   int    `json:"total_insights"`
}

type wireCollection struct {
	Meta           wireMeta       `json:"meta"`
	SummaryByType  map[string]int `json:"summary_by_type"`
	Insights       []Insight      `json:"insights"`
}

// MarshalJSON serializes to the Insight Collection JSON wire format from
// spec.md §4.5/§6.
func (c *Collection) MarshalJSON() ([]byte, error) {
	summary := make(map[string]int)
	for t, n := range c.SummaryByType() {
		summary[string(t)] = n
	}
	w := wireCollection{
		Meta: wireMeta{
			RunID:         c.RunID,
			CreatedUTC:    c.CreatedUTC,
			SourceGraph:   c.SourceGraphPath,
			TotalInsights: len(c.Insights),
		},
		SummaryByType: summary,
		Insights:      c.Insights,
	}
	return json.Marshal(w)
}

// LoadCollection parses the Insight Collection JSON wire format.
func LoadCollection(data []byte) (*Collection, error) {
	var w wireCollection
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("insight: parse: %w", err)
	}
	return &Collection{
		RunID:           w.Meta.RunID,
		CreatedUTC:      w.Meta.CreatedUTC,
		SourceGraphPath: w.Meta.SourceGraph,
		Insights:        w.Insights,
	}, nil
}
