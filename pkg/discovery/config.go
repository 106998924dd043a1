// Package discovery implements the twelve discovery operators from
// spec.md §4.4 and the run orchestration that combines them: bridges,
// completions, motifs, substitutions, surprise edges, association rules,
// path ranking, community links, diffusion, TransE embedding link
// prediction, author reference chains, and hypothesis synthesis.
//
// Every operator is a pure function of (store, index, config, rng seed):
// none of them mutate the store (spec.md §4.4).
package discovery

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Sentinel errors surfaced by Config.Validate and Engine, per spec.md §7.
var (
	ErrInvalidConfig  = errors.New("discovery: invalid configuration")
	ErrUnknownSeed    = errors.New("discovery: unknown seed node")
	ErrUnknownOperator = errors.New("discovery: unknown operator name")
)

// Config carries every threshold consulted by the discovery operators.
// Defaults are recovered from original_source/include/discovery/
// discovery_engine.hpp's DiscoveryConfig (see SPEC_FULL.md "Recovered
// default thresholds"). Dual json/yaml tags follow apoc/config.go's
// convention so a host can round-trip the struct through either format;
// the core itself never reads a config file or environment variable.
type Config struct {
	// Bridges (§4.4.1)
	BridgeSThreshold    int `json:"bridge_s_threshold" yaml:"bridge_s_threshold"`
	BridgeMaxCandidates int `json:"bridge_max_candidates" yaml:"bridge_max_candidates"`

	// Completions (§4.4.2)
	CompletionMinSharedEdges int `json:"completion_min_shared_edges" yaml:"completion_min_shared_edges"`
	CompletionMaxCandidates  int `json:"completion_max_candidates" yaml:"completion_max_candidates"`

	// Motifs (§4.4.3)
	MotifMinSupport    int     `json:"motif_min_support" yaml:"motif_min_support"`
	MotifMinLift       float64 `json:"motif_min_lift" yaml:"motif_min_lift"`
	MotifMaxCandidates int     `json:"motif_max_candidates" yaml:"motif_max_candidates"`

	// Substitutions (§4.4.4)
	SubstitutionSimilarityThreshold float64 `json:"substitution_similarity_threshold" yaml:"substitution_similarity_threshold"`
	SubstitutionSampleCap           int     `json:"substitution_sample_cap" yaml:"substitution_sample_cap"`
	SubstitutionMaxCandidates       int     `json:"substitution_max_candidates" yaml:"substitution_max_candidates"`

	// Surprise edges (§4.4.5)
	SurpriseMaxExpectedCooccurrence float64 `json:"surprise_max_expected_cooccurrence" yaml:"surprise_max_expected_cooccurrence"`
	SurpriseMaxCandidates           int     `json:"surprise_max_candidates" yaml:"surprise_max_candidates"`

	// Association rules (§4.4.6)
	RuleMinSupport    int     `json:"rule_min_support" yaml:"rule_min_support"`
	RuleMinConfidence float64 `json:"rule_min_confidence" yaml:"rule_min_confidence"`
	RuleMinLift       float64 `json:"rule_min_lift" yaml:"rule_min_lift"`
	RuleMaxCandidates int     `json:"rule_max_candidates" yaml:"rule_max_candidates"`

	// Path ranking (§4.4.7)
	PathRankK                 int     `json:"path_rank_k" yaml:"path_rank_k"`
	PathRankMaxHops           int     `json:"path_rank_max_hops" yaml:"path_rank_max_hops"`
	PathRankMinIntersection   int     `json:"path_rank_min_intersection" yaml:"path_rank_min_intersection"`
	PathRankMaxSeedNodes      int     `json:"path_rank_max_seed_nodes" yaml:"path_rank_max_seed_nodes"`
	PathRankMinScore          float64 `json:"path_rank_min_score" yaml:"path_rank_min_score"`
	PathRankMinEvidenceEdges  int     `json:"path_rank_min_evidence_edges" yaml:"path_rank_min_evidence_edges"`
	PathRankMaxCandidates     int     `json:"path_rank_max_candidates" yaml:"path_rank_max_candidates"`

	// Community links (§4.4.8)
	CommunitySThreshold              int     `json:"community_s_threshold" yaml:"community_s_threshold"`
	CommunityTopNodesPerComponent    int     `json:"community_top_nodes_per_component" yaml:"community_top_nodes_per_component"`
	CommunityMinRelationOverlap      float64 `json:"community_min_relation_overlap" yaml:"community_min_relation_overlap"`
	CommunityMaxCandidates           int     `json:"community_max_candidates" yaml:"community_max_candidates"`

	// Diffusion (§4.4.9). diffusion_top_k bounds how many top-degree seeds
	// get their own personalized run; the remaining three fields are not
	// named in spec.md's prose and are this module's own decision (see
	// DESIGN.md Open Questions) for how many non-seed nodes each seed's
	// run may emit.
	DiffusionIterations      int     `json:"diffusion_iterations" yaml:"diffusion_iterations"`
	DiffusionDamping         float64 `json:"diffusion_damping" yaml:"diffusion_damping"`
	DiffusionTopK            int     `json:"diffusion_top_k" yaml:"diffusion_top_k"`
	DiffusionTopNodesPerSeed int     `json:"diffusion_top_nodes_per_seed" yaml:"diffusion_top_nodes_per_seed"`
	DiffusionMinRelevance    float64 `json:"diffusion_min_relevance" yaml:"diffusion_min_relevance"`
	DiffusionMaxCandidates   int     `json:"diffusion_max_candidates" yaml:"diffusion_max_candidates"`

	// Embedding link prediction / TransE (§4.4.10)
	EmbeddingDim                    int     `json:"embedding_dim" yaml:"embedding_dim"`
	EmbeddingEpochs                 int     `json:"embedding_epochs" yaml:"embedding_epochs"`
	EmbeddingLearningRate           float64 `json:"embedding_learning_rate" yaml:"embedding_learning_rate"`
	EmbeddingMargin                 float64 `json:"embedding_margin" yaml:"embedding_margin"`
	EmbeddingNegSamples             int     `json:"embedding_neg_samples" yaml:"embedding_neg_samples"`
	EmbeddingBatchSize              int     `json:"embedding_batch_size" yaml:"embedding_batch_size"`
	EmbeddingAllowedRelationsTopK   int     `json:"embedding_allowed_relations_top_k" yaml:"embedding_allowed_relations_top_k"`
	// EmbeddingCandidateEntityTopK bounds the pool of top-degree entities
	// h/t are drawn from when generating candidate triples. Not named in
	// spec.md's prose; this module's own decision (see DESIGN.md Open
	// Questions).
	EmbeddingCandidateEntityTopK    int     `json:"embedding_candidate_entity_top_k" yaml:"embedding_candidate_entity_top_k"`
	EmbeddingMinNeighborOverlap     float64 `json:"embedding_min_neighbor_overlap" yaml:"embedding_min_neighbor_overlap"`
	EmbeddingMinScore               float64 `json:"embedding_min_score" yaml:"embedding_min_score"`
	EmbeddingMinEvidenceEdges       int     `json:"embedding_min_evidence_edges" yaml:"embedding_min_evidence_edges"`
	EmbeddingMaxCandidates          int     `json:"embedding_max_candidates" yaml:"embedding_max_candidates"`

	// Hypothesis synthesis (§4.4.11)
	HypothesisCount int `json:"hypothesis_count" yaml:"hypothesis_count"`

	// Author reference chains (§4.4.12)
	AuthorChainMaxCandidates int `json:"author_chain_max_candidates" yaml:"author_chain_max_candidates"`

	// Run orchestration (§4.4 "Run orchestration contract")
	MaxTotalInsights          int  `json:"max_total_insights" yaml:"max_total_insights"`
	TargetInsightsPerOperator int  `json:"target_insights_per_operator" yaml:"target_insights_per_operator"`
	TargetTotalInsights       int  `json:"target_total_insights" yaml:"target_total_insights"`
	AdaptiveThresholds        bool `json:"adaptive_thresholds" yaml:"adaptive_thresholds"`

	// RNGSeed pins reproducibility for TransE training and substitution
	// sampling (spec.md §5: "RNG usage ... must seed from a configurable
	// value so runs are reproducible" — the source, per DESIGN.md's
	// Open Question #4, never exposed this; this module does).
	RNGSeed int64 `json:"rng_seed" yaml:"rng_seed"`
}

// DefaultConfig returns the thresholds recovered from original_source's
// DiscoveryConfig (see SPEC_FULL.md).
func DefaultConfig() Config {
	return Config{
		BridgeSThreshold:    2,
		BridgeMaxCandidates: 200,

		CompletionMinSharedEdges: 1,
		CompletionMaxCandidates:  200,

		MotifMinSupport:    2,
		MotifMinLift:       1.5,
		MotifMaxCandidates: 200,

		SubstitutionSimilarityThreshold: 0.6,
		SubstitutionSampleCap:           1000,
		SubstitutionMaxCandidates:       200,

		SurpriseMaxExpectedCooccurrence: 0.2,
		SurpriseMaxCandidates:           200,

		RuleMinSupport:    2,
		RuleMinConfidence: 0.4,
		RuleMinLift:       1.1,
		RuleMaxCandidates: 200,

		PathRankK:                5,
		PathRankMaxHops:          3,
		PathRankMinIntersection:  1,
		PathRankMaxSeedNodes:     200,
		PathRankMinScore:         0.6,
		PathRankMinEvidenceEdges: 2,
		PathRankMaxCandidates:    200,

		CommunitySThreshold:           2,
		CommunityTopNodesPerComponent: 15,
		CommunityMinRelationOverlap:   0.1,
		CommunityMaxCandidates:        200,

		DiffusionIterations:      20,
		DiffusionDamping:         0.85,
		DiffusionTopK:            50,
		DiffusionTopNodesPerSeed: 10,
		DiffusionMinRelevance:    0.001,
		DiffusionMaxCandidates:   200,

		EmbeddingDim:                  50,
		EmbeddingEpochs:               100,
		EmbeddingLearningRate:         0.01,
		EmbeddingMargin:               1.0,
		EmbeddingNegSamples:           5,
		EmbeddingBatchSize:            128,
		EmbeddingAllowedRelationsTopK: 30,
		EmbeddingCandidateEntityTopK:  200,
		EmbeddingMinNeighborOverlap:   0.05,
		EmbeddingMinScore:             0.7,
		EmbeddingMinEvidenceEdges:     1,
		EmbeddingMaxCandidates:        200,

		HypothesisCount: 3,

		AuthorChainMaxCandidates: 200,

		MaxTotalInsights:          2000,
		TargetInsightsPerOperator: 20,
		TargetTotalInsights:       100,
		AdaptiveThresholds:        true,

		RNGSeed: 1,
	}
}

// LoadConfigJSON parses a JSON-encoded Config, starting from DefaultConfig
// so a host manifest only needs to name the thresholds it overrides.
func LoadConfigJSON(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("discovery: parsing json config: %w", err)
	}
	return cfg, nil
}

// LoadConfigYAML parses a YAML-encoded Config the same way.
func LoadConfigYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("discovery: parsing yaml config: %w", err)
	}
	return cfg, nil
}

// ToYAML round-trips a Config through the same struct tags its JSON
// encoding uses, so a host can persist or diff a run's configuration in
// either format.
func (c Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate fails fast on degenerate configuration (spec.md §7).
func (c Config) Validate() error {
	if c.EmbeddingDim < 1 {
		return fmt.Errorf("%w: embedding_dim must be >= 1, got %d", ErrInvalidConfig, c.EmbeddingDim)
	}
	if c.EmbeddingNegSamples < 1 {
		return fmt.Errorf("%w: embedding_neg_samples must be >= 1, got %d", ErrInvalidConfig, c.EmbeddingNegSamples)
	}
	if c.BridgeSThreshold < 1 {
		return fmt.Errorf("%w: bridge_s_threshold must be >= 1, got %d", ErrInvalidConfig, c.BridgeSThreshold)
	}
	if c.DiffusionDamping <= 0 || c.DiffusionDamping >= 1 {
		return fmt.Errorf("%w: diffusion_damping must be in (0,1), got %f", ErrInvalidConfig, c.DiffusionDamping)
	}
	return nil
}
