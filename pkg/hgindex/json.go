package hgindex

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// maxCooccurrenceOnDisk and maxDegreeRankedOnDisk bound on-disk size per
// spec.md §4.3: co-occurrence truncates to the top 50,000 entries by
// count, the degree ranking truncates to the top 1,000.
const (
	maxCooccurrenceOnDisk = 50_000
	maxDegreeRankedOnDisk = 1_000
)

type wireMeta struct {
	CreatedUTC      string `json:"created_utc"`
	SourceGraphPath string `json:"source_graph_path"`
	NodeCount       int    `json:"node_count"`
	EdgeCount       int    `json:"edge_count"`
}

type wireIndex struct {
	Meta               wireMeta            `json:"meta"`
	RelationToEdges    map[string][]string `json:"relation_to_edges"`
	LabelToNodes       map[string][]string `json:"label_to_nodes"`
	SComponents        map[string][][]string `json:"s_components"`
	DegreeRankedNodes  [][2]any            `json:"degree_ranked_nodes"`
	EntityCooccurrence map[string]int      `json:"entity_cooccurrence"`
}

// MarshalJSON serializes the index to the "Index JSON" wire format from
// spec.md §6, applying the two on-disk size caps named in §4.3.
func (idx *Index) MarshalJSON() ([]byte, error) {
	w := wireIndex{
		Meta: wireMeta{
			CreatedUTC:      idx.CreatedUTC,
			SourceGraphPath: idx.SourceGraphPath,
			NodeCount:       idx.NodeCount,
			EdgeCount:       idx.EdgeCount,
		},
		RelationToEdges: idx.RelationToEdges,
		LabelToNodes:    idx.LabelToNodes,
		SComponents:     make(map[string][][]string, len(idx.SComponents)),
	}

	for s, comps := range idx.SComponents {
		w.SComponents[strconv.Itoa(s)] = comps
	}

	degree := idx.DegreeRanked
	if len(degree) > maxDegreeRankedOnDisk {
		degree = degree[:maxDegreeRankedOnDisk]
	}
	for _, e := range degree {
		w.DegreeRankedNodes = append(w.DegreeRankedNodes, [2]any{e.NodeID, e.Degree})
	}

	if len(idx.CooccurrenceCounts) <= maxCooccurrenceOnDisk {
		w.EntityCooccurrence = idx.CooccurrenceCounts
	} else {
		type kv struct {
			key   string
			count int
		}
		all := make([]kv, 0, len(idx.CooccurrenceCounts))
		for k, v := range idx.CooccurrenceCounts {
			all = append(all, kv{k, v})
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].count != all[j].count {
				return all[i].count > all[j].count
			}
			return all[i].key < all[j].key
		})
		w.EntityCooccurrence = make(map[string]int, maxCooccurrenceOnDisk)
		for i := 0; i < maxCooccurrenceOnDisk; i++ {
			w.EntityCooccurrence[all[i].key] = all[i].count
		}
	}

	return json.Marshal(w)
}

// LoadIndex parses the Index JSON wire format (spec.md §6). The in-memory
// degree ranking and co-occurrence map reflect exactly what was on disk —
// truncated, per DESIGN.md's Open Question #5, until
// the index is rebuilt from the live store.
func LoadIndex(data []byte) (*Index, error) {
	var w wireIndex
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("hgindex: parse: %w", err)
	}

	idx := &Index{
		CreatedUTC:         w.Meta.CreatedUTC,
		SourceGraphPath:    w.Meta.SourceGraphPath,
		NodeCount:          w.Meta.NodeCount,
		EdgeCount:          w.Meta.EdgeCount,
		RelationToEdges:    w.RelationToEdges,
		LabelToNodes:       w.LabelToNodes,
		SComponents:        make(map[int][][]string, len(w.SComponents)),
		CooccurrenceCounts: w.EntityCooccurrence,
	}
	if idx.RelationToEdges == nil {
		idx.RelationToEdges = make(map[string][]string)
	}
	if idx.LabelToNodes == nil {
		idx.LabelToNodes = make(map[string][]string)
	}
	if idx.CooccurrenceCounts == nil {
		idx.CooccurrenceCounts = make(map[string]int)
	}

	for key, comps := range w.SComponents {
		s, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("hgindex: invalid s_components key %q: %w", key, err)
		}
		idx.SComponents[s] = comps
	}

	for _, pair := range w.DegreeRankedNodes {
		if len(pair) != 2 {
			continue
		}
		id, _ := pair[0].(string)
		var degree int
		switch v := pair[1].(type) {
		case float64:
			degree = int(v)
		case int:
			degree = v
		}
		idx.DegreeRanked = append(idx.DegreeRanked, degreeEntry{NodeID: id, Degree: degree})
	}

	return idx, nil
}
