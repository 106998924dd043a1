package hypergraph

import (
	"encoding/json"
	"sort"
)

// Provenance tracks where a hyperedge's supporting text came from. All
// fields are optional: the ingestion collaborator that extracts relations
// fills in as much as it has.
type Provenance struct {
	SourceDocument string `json:"source_document,omitempty"`
	SourceChunkID  string `json:"source_chunk_id,omitempty"`
	SourcePage     int    `json:"source_page,omitempty"`
}

// HyperEdge represents one directed relation instance connecting a set of
// source entities to a set of target entities.
type HyperEdge struct {
	ID         string            `json:"id"`
	Sources    []string          `json:"sources"`
	Relation   string            `json:"relation"`
	Targets    []string          `json:"targets"`
	Properties map[string]string `json:"properties,omitempty"`
	Provenance `json:"-"`
	Confidence float64 `json:"confidence"`
}

// MarshalJSON flattens Provenance's fields to the top level, matching the
// wire format in spec.md §6 (source_document/source_chunk_id/source_page
// sit alongside sources/relation/targets, not nested).
func (e HyperEdge) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID             string            `json:"id"`
		Sources        []string          `json:"sources"`
		Relation       string            `json:"relation"`
		Targets        []string          `json:"targets"`
		Properties     map[string]string `json:"properties,omitempty"`
		SourceDocument string            `json:"source_document,omitempty"`
		SourceChunkID  string            `json:"source_chunk_id,omitempty"`
		SourcePage     int               `json:"source_page,omitempty"`
		Confidence     float64           `json:"confidence"`
	}
	return json.Marshal(wire{
		ID:             e.ID,
		Sources:        e.Sources,
		Relation:       e.Relation,
		Targets:        e.Targets,
		Properties:     e.Properties,
		SourceDocument: e.Provenance.SourceDocument,
		SourceChunkID:  e.Provenance.SourceChunkID,
		SourcePage:     e.Provenance.SourcePage,
		Confidence:     e.Confidence,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. Confidence defaults to 1.0
// when absent from the input, per spec.md §6 ("missing fields default
// sensibly").
func (e *HyperEdge) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID             string            `json:"id"`
		Sources        []string          `json:"sources"`
		Relation       string            `json:"relation"`
		Targets        []string          `json:"targets"`
		Properties     map[string]string `json:"properties,omitempty"`
		SourceDocument string            `json:"source_document,omitempty"`
		SourceChunkID  string            `json:"source_chunk_id,omitempty"`
		SourcePage     int               `json:"source_page,omitempty"`
		Confidence     *float64          `json:"confidence,omitempty"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.ID = w.ID
	e.Sources = w.Sources
	e.Relation = w.Relation
	e.Targets = w.Targets
	e.Properties = w.Properties
	e.Provenance = Provenance{
		SourceDocument: w.SourceDocument,
		SourceChunkID:  w.SourceChunkID,
		SourcePage:     w.SourcePage,
	}
	if w.Confidence != nil {
		e.Confidence = *w.Confidence
	} else {
		e.Confidence = 1.0
	}
	return nil
}

// Size returns |sources| + |targets|.
func (e *HyperEdge) Size() int {
	return len(e.Sources) + len(e.Targets)
}

// Nodes returns the set (deduplicated, sorted) of every node id the edge
// touches, sources and targets combined.
func (e *HyperEdge) Nodes() []string {
	seen := make(map[string]struct{}, e.Size())
	out := make([]string, 0, e.Size())
	for _, id := range e.Sources {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	for _, id := range e.Targets {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// ContainsNode reports whether id appears in sources or targets.
func (e *HyperEdge) ContainsNode(id string) bool {
	for _, s := range e.Sources {
		if s == id {
			return true
		}
	}
	for _, t := range e.Targets {
		if t == id {
			return true
		}
	}
	return false
}

// Intersection returns the sorted set of node ids shared between e and
// other. Used by the s-connectivity predicate (pathengine).
func (e *HyperEdge) Intersection(other *HyperEdge) []string {
	mine := make(map[string]struct{})
	for _, id := range e.Nodes() {
		mine[id] = struct{}{}
	}
	var shared []string
	for _, id := range other.Nodes() {
		if _, ok := mine[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)
	return shared
}

// IsSelfLoop reports whether the set of sources equals the set of targets.
func (e *HyperEdge) IsSelfLoop() bool {
	return setEqual(e.Sources, e.Targets)
}

func setEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}

func (e *HyperEdge) clone() *HyperEdge {
	cp := *e
	cp.Sources = append([]string(nil), e.Sources...)
	cp.Targets = append([]string(nil), e.Targets...)
	if e.Properties != nil {
		cp.Properties = make(map[string]string, len(e.Properties))
		for k, v := range e.Properties {
			cp.Properties[k] = v
		}
	}
	return &cp
}
