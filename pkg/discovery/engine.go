package discovery

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/veyra-ai/hypercore/pkg/hgindex"
	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// operator is one of the twelve discovery functions named in spec.md §4.4.
// Run receives an opContext carrying the frozen inputs and must not mutate
// store or index. Candidates should already be sorted best-first and
// truncated to the operator's own MaxCandidates before returning, since the
// engine's adaptive truncation only ever removes further candidates, never
// reorders within an operator.
type operator struct {
	Name string
	Type insight.Type
	Run  func(*opContext) []insight.Insight
}

// roster lists the twelve operators in a fixed run order. Hypothesis runs
// last because it synthesizes from insights the other eleven produced;
// author reference chains run just before it so hypothesis can see them.
func roster() []operator {
	return []operator{
		{Name: "bridges", Type: insight.TypeBridge, Run: runBridges},
		{Name: "completions", Type: insight.TypeCompletion, Run: runCompletions},
		{Name: "motifs", Type: insight.TypeMotif, Run: runMotifs},
		{Name: "substitutions", Type: insight.TypeSubstitution, Run: runSubstitutions},
		{Name: "surprise", Type: insight.TypeSurprise, Run: runSurprise},
		{Name: "rules", Type: insight.TypeRule, Run: runRules},
		{Name: "pathrank", Type: insight.TypePathRank, Run: runPathRank},
		{Name: "community", Type: insight.TypeCommunityLink, Run: runCommunity},
		{Name: "diffusion", Type: insight.TypeDiffusion, Run: runDiffusion},
		{Name: "embedding", Type: insight.TypeEmbeddingLink, Run: runEmbedding},
		{Name: "authorchain", Type: insight.TypeAuthorChain, Run: runAuthorChains},
		{Name: "hypothesis", Type: insight.TypeHypothesis, Run: runHypothesis},
	}
}

// Engine orchestrates a single discovery run over a frozen store+index
// pair, per spec.md §4.4's "run orchestration contract".
type Engine struct {
	store *hypergraph.Store
	index *hgindex.Index
	cfg   Config
	runID string
	rng   *rand.Rand
	seq   map[insight.Type]int

	// OnProgress, if set, is invoked after each operator completes with the
	// operator's name and the number of insights it contributed after
	// truncation. Matches the progress-callback pattern in
	// pkg/nornicdb's ingestion loop.
	OnProgress func(operator string, emitted int)
}

// NewEngine constructs an Engine. store and index must describe the same
// graph snapshot; the engine does not verify this. An empty runID mints a
// fresh uuid so concurrent callers never collide on insight-id prefixes.
func NewEngine(store *hypergraph.Store, index *hgindex.Index, cfg Config, runID string) *Engine {
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Engine{
		store: store,
		index: index,
		cfg:   cfg,
		runID: runID,
		rng:   rand.New(rand.NewSource(cfg.RNGSeed)),
		seq:   make(map[insight.Type]int),
	}
}

func (e *Engine) nextID(t insight.Type) string {
	e.seq[t]++
	return fmt.Sprintf("%s:%s:%06d", e.runID, string(t), e.seq[t])
}

// RunAll runs every operator in roster order and returns the assembled,
// globally sorted and capped collection.
func (e *Engine) RunAll() (*insight.Collection, error) {
	names := make([]string, 0, len(roster()))
	for _, op := range roster() {
		names = append(names, op.Name)
	}
	return e.RunOperators(names)
}

// RunOperators runs only the named operators (order follows roster order,
// not the order given), honoring the same adaptive truncation and global
// sort/cap contract as RunAll. Unknown names return ErrUnknownOperator.
func (e *Engine) RunOperators(names []string) (*insight.Collection, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	all := roster()
	selected := make([]operator, 0, len(all))
	for _, op := range all {
		if _, ok := wanted[op.Name]; ok {
			selected = append(selected, op)
			delete(wanted, op.Name)
		}
	}
	for n := range wanted {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, n)
	}

	ctx := &opContext{store: e.store, index: e.index, cfg: e.cfg, rng: e.rng, nextID: e.nextID}

	var pool []insight.Insight
	var hypothesisOp *operator
	for i := range selected {
		op := selected[i]
		if op.Name == "hypothesis" {
			hypothesisOp = &selected[i]
			continue
		}
		raw := op.Run(ctx)
		kept := e.adaptiveTruncate(raw)
		if e.OnProgress != nil {
			e.OnProgress(op.Name, len(kept))
		}
		pool = append(pool, kept...)
	}

	if hypothesisOp != nil {
		// Author reference chains that share no seed with any other
		// operator's output are synthesis noise: they describe a citation
		// structure unrelated to everything else discovered this run, so
		// they are excluded from the pool hypothesis draws from (they are
		// NOT removed from the final collection).
		synthesisPool := dropUnrelatedAuthorChains(pool)
		hctx := &opContext{store: e.store, index: e.index, cfg: e.cfg, rng: e.rng, nextID: e.nextID, pool: synthesisPool}
		raw := hypothesisOp.Run(hctx)
		kept := e.adaptiveTruncate(raw)
		if e.OnProgress != nil {
			e.OnProgress(hypothesisOp.Name, len(kept))
		}
		pool = append(pool, kept...)
	}

	col := &insight.Collection{RunID: e.runID, Insights: pool}
	col.SortByScoreDesc()

	// Run orchestration contract (spec.md §4.4): truncate to
	// target_total_insights, keeping ties at the boundary score, then apply
	// max_total_insights as a hard ceiling on top.
	col.Insights = truncateKeepingTies(col.Insights, e.cfg.TargetTotalInsights)
	if len(col.Insights) > e.cfg.MaxTotalInsights {
		col.Insights = col.Insights[:e.cfg.MaxTotalInsights]
	}
	return col, nil
}

// adaptiveTruncate keeps at most TargetInsightsPerOperator candidates from
// an operator's already-sorted output, extended to cover any insight tied
// with the one at the boundary (spec.md §4.4: "all insights whose score is
// >= the score at the target rank, ties preserved"), unless
// AdaptiveThresholds is off, in which case every candidate the operator
// produced is kept (operators still bound themselves by their own
// *MaxCandidates config).
func (e *Engine) adaptiveTruncate(candidates []insight.Insight) []insight.Insight {
	if !e.cfg.AdaptiveThresholds {
		return candidates
	}
	return truncateKeepingTies(candidates, e.cfg.TargetInsightsPerOperator)
}

// truncateKeepingTies keeps the top target insights from an already
// score-sorted-descending slice, then extends the cut past target to
// include every further insight tied on score with the one at the
// boundary, so no tie is split mid-group.
func truncateKeepingTies(sorted []insight.Insight, target int) []insight.Insight {
	if target < 0 || len(sorted) <= target {
		return sorted
	}
	if target == 0 {
		return sorted[:0]
	}
	boundary := sorted[target-1].Score
	end := target
	for end < len(sorted) && sorted[end].Score == boundary {
		end++
	}
	return sorted[:end]
}

func dropUnrelatedAuthorChains(pool []insight.Insight) []insight.Insight {
	otherSeeds := make(map[string]struct{})
	for _, ins := range pool {
		if ins.Type == insight.TypeAuthorChain {
			continue
		}
		for _, s := range ins.SeedNodes {
			otherSeeds[s] = struct{}{}
		}
	}
	out := make([]insight.Insight, 0, len(pool))
	for _, ins := range pool {
		if ins.Type == insight.TypeAuthorChain {
			related := false
			for _, s := range ins.SeedNodes {
				if _, ok := otherSeeds[s]; ok {
					related = true
					break
				}
			}
			if !related {
				continue
			}
		}
		out = append(out, ins)
	}
	return out
}

// sortInsightsDesc sorts a single operator's candidates by score desc, with
// a stable tiebreak on the first seed node so operator output is
// deterministic before ids are even assigned.
func sortInsightsDesc(ins []insight.Insight) {
	sort.SliceStable(ins, func(i, j int) bool {
		if ins[i].Score != ins[j].Score {
			return ins[i].Score > ins[j].Score
		}
		return firstOrEmpty(ins[i].SeedNodes) < firstOrEmpty(ins[j].SeedNodes)
	})
}

func firstOrEmpty(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	return ss[0]
}
