// Package insight defines the canonical record every discovery operator
// emits (spec.md §3/§4.5) and the collection that wraps a run's output.
package insight

import "encoding/json"

// Type identifies which discovery operator produced an insight.
type Type string

// The twelve discovery operator types named in spec.md §1/§4.4.
const (
	TypeBridge        Type = "bridge"
	TypeCompletion    Type = "completion"
	TypeMotif         Type = "motif"
	TypeSubstitution  Type = "substitution"
	TypeSurprise      Type = "surprise"
	TypeRule          Type = "rule"
	TypePathRank      Type = "path_rank"
	TypeCommunityLink Type = "community_link"
	TypeDiffusion     Type = "diffusion"
	TypeEmbeddingLink Type = "embedding_link"
	TypeAuthorChain   Type = "author_chain"
	TypeHypothesis    Type = "hypothesis"
)

// ScoreBreakdown decomposes an insight's score into the three components
// named in spec.md §3: support, novelty, specificity.
type ScoreBreakdown struct {
	Support     float64 `json:"support"`
	Novelty     float64 `json:"novelty"`
	Specificity float64 `json:"specificity"`
}

// Insight is the unit of discovery output described in spec.md §3.
type Insight struct {
	ID               string          `json:"insight_id"`
	Type             Type            `json:"type"`
	SeedNodes        []string        `json:"seed_nodes"`
	SeedLabels       []string        `json:"seed_labels,omitempty"`
	WitnessEdges     []string        `json:"witness_edges"`
	WitnessNodes     []string        `json:"witness_nodes"`
	EvidenceChunkIDs []string        `json:"evidence_chunk_ids,omitempty"`
	Score            float64         `json:"score"`
	ScoreBreakdown   ScoreBreakdown  `json:"score_breakdown"`
	NoveltyTags      []string        `json:"novelty_tags,omitempty"`
	Description      string          `json:"description,omitempty"`
	LLM              json.RawMessage `json:"llm,omitempty"`
}
