package discovery

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/veyra-ai/hypercore/pkg/hgindex"
	"github.com/veyra-ai/hypercore/pkg/hypergraph"
	"github.com/veyra-ai/hypercore/pkg/insight"
)

// triple is one (head, relation, tail) fact flattened out of a hyperedge:
// every (source, target) pair under an edge's relation becomes one triple.
type triple struct {
	Head     string
	Relation string
	Tail     string
}

// embeddingModel holds the trained TransE vectors: translation-based
// embeddings where a true triple should satisfy head + relation ≈ tail.
type embeddingModel struct {
	dim      int
	entity   map[string][]float64
	relation map[string][]float64
}

// runEmbedding trains a small TransE model over the graph's flattened
// triples and proposes missing links whose translational distance is small
// enough to clear cfg.EmbeddingMinScore. Grounded on
// original_source/include/discovery/discovery_engine.hpp's Triple/
// EmbeddingModel shape (recovered in SPEC_FULL.md §4.4.0) and
// apoc/algo.go's iterative score-update style for the training loop shape.
func runEmbedding(ctx *opContext) []insight.Insight {
	triples := flattenTriples(ctx.store)
	if len(triples) == 0 {
		return nil
	}
	model := trainTransE(triples, ctx.cfg, ctx.rng)

	allowedRelations := topRelationsByFrequency(triples, ctx.cfg.EmbeddingAllowedRelationsTopK)
	neighborSets := neighborSetsByNode(ctx.store)
	existing := existingTripleSet(triples)

	candidates := embeddingCandidates(ctx.index, ctx.store, neighborSets, ctx.cfg.EmbeddingCandidateEntityTopK, ctx.cfg.EmbeddingMinNeighborOverlap)

	var out []insight.Insight
	for _, c := range candidates {
		bestRel, bestScore, ok := bestRelationFor(model, c.a, c.b, allowedRelations)
		if !ok || bestScore < ctx.cfg.EmbeddingMinScore {
			continue
		}
		if isCoauthorshipRelation(bestRel) && !(isPersonLabel(labelOf(ctx.store, c.a)) && isPersonLabel(labelOf(ctx.store, c.b))) {
			continue
		}
		if existing[triple{Head: c.a, Relation: bestRel, Tail: c.b}] {
			continue
		}
		evidence := c.overlapCount
		if evidence < ctx.cfg.EmbeddingMinEvidenceEdges {
			continue
		}
		out = append(out, buildEmbeddingInsight(ctx, c.a, c.b, bestRel, bestScore, c.overlapCount, neighborSets))
		if len(out) >= ctx.cfg.EmbeddingMaxCandidates {
			break
		}
	}
	sortInsightsDesc(out)
	return out
}

// coauthorshipKeywords flags relations describing joint authorship, the
// one relation family spec.md singles out for an extra person-label gate
// on top of the usual filters.
var coauthorshipKeywords = []string{"coauthor", "co-author", "co author"}

func isCoauthorshipRelation(relation string) bool {
	norm := hypergraph.NormalizeID(relation)
	for _, kw := range coauthorshipKeywords {
		if strings.Contains(norm, kw) {
			return true
		}
	}
	return false
}

// flattenTriples expands every hyperedge into all ordered (source, target)
// pairs under its relation, then adds the reverse of each pair so the
// embedding is trained undirected in practice, per spec.md §4.4.10.
func flattenTriples(store *hypergraph.Store) []triple {
	edges := store.AllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
	var out []triple
	for _, e := range edges {
		rel := hypergraph.NormalizeID(e.Relation)
		for _, s := range e.Sources {
			for _, t := range e.Targets {
				out = append(out, triple{Head: s, Relation: rel, Tail: t})
				out = append(out, triple{Head: t, Relation: rel, Tail: s})
			}
		}
	}
	return out
}

func existingTripleSet(triples []triple) map[triple]bool {
	out := make(map[triple]bool, len(triples))
	for _, t := range triples {
		out[t] = true
	}
	return out
}

func topRelationsByFrequency(triples []triple, k int) []string {
	counts := make(map[string]int)
	for _, t := range triples {
		counts[t.Relation]++
	}
	rels := make([]string, 0, len(counts))
	for r := range counts {
		rels = append(rels, r)
	}
	sort.Slice(rels, func(i, j int) bool {
		if counts[rels[i]] != counts[rels[j]] {
			return counts[rels[i]] > counts[rels[j]]
		}
		return rels[i] < rels[j]
	})
	if k < len(rels) {
		rels = rels[:k]
	}
	return rels
}

// trainTransE fits entity and relation embeddings with margin-ranking loss
// over filtered negative samples (corrupt head or tail, skipping corrupted
// triples that happen to already be true), renormalizing entity vectors to
// unit L2 norm after every epoch as the original TransE paper prescribes.
// Per spec.md §4.4.10, triples are trained in mini-batches of
// cfg.EmbeddingBatchSize: gradients from every (pos, neg) pair in a batch
// are accumulated and averaged before being applied once per batch, rather
// than applying each pair's update immediately.
func trainTransE(triples []triple, cfg Config, rng randSource) *embeddingModel {
	entities := make(map[string]struct{})
	relations := make(map[string]struct{})
	for _, t := range triples {
		entities[t.Head] = struct{}{}
		entities[t.Tail] = struct{}{}
		relations[t.Relation] = struct{}{}
	}
	entityIDs := make([]string, 0, len(entities))
	for e := range entities {
		entityIDs = append(entityIDs, e)
	}
	sort.Strings(entityIDs)
	relationIDs := make([]string, 0, len(relations))
	for r := range relations {
		relationIDs = append(relationIDs, r)
	}
	sort.Strings(relationIDs)

	model := &embeddingModel{dim: cfg.EmbeddingDim, entity: make(map[string][]float64), relation: make(map[string][]float64)}
	bound := 6.0 / math.Sqrt(float64(cfg.EmbeddingDim))
	for _, e := range entityIDs {
		model.entity[e] = xavierVector(cfg.EmbeddingDim, bound, rng)
	}
	for _, r := range relationIDs {
		model.relation[r] = xavierVector(cfg.EmbeddingDim, bound, rng)
	}

	positives := existingTripleSet(triples)
	batchSize := cfg.EmbeddingBatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	for epoch := 0; epoch < cfg.EmbeddingEpochs; epoch++ {
		for start := 0; start < len(triples); start += batchSize {
			end := start + batchSize
			if end > len(triples) {
				end = len(triples)
			}
			batch := gradientBatch{entity: make(map[string][]float64), relation: make(map[string][]float64)}
			pairs := 0
			for _, pos := range triples[start:end] {
				for k := 0; k < cfg.EmbeddingNegSamples; k++ {
					neg := corruptTriple(pos, entityIDs, rng, positives)
					if accumulateGradients(model, &batch, pos, neg, cfg.EmbeddingMargin) {
						pairs++
					}
				}
			}
			applyBatchGradients(model, &batch, cfg.EmbeddingLearningRate, pairs)
		}
		for e := range model.entity {
			renormalize(model.entity[e])
		}
	}
	return model
}

func xavierVector(dim int, bound float64, rng randSource) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = (rng.Float64()*2 - 1) * bound
	}
	renormalize(v)
	return v
}

func renormalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

func corruptTriple(pos triple, entityIDs []string, rng randSource, positives map[triple]bool) triple {
	for attempt := 0; attempt < 10; attempt++ {
		replacement := entityIDs[rng.Intn(len(entityIDs))]
		var candidate triple
		if rng.Float64() < 0.5 {
			candidate = triple{Head: replacement, Relation: pos.Relation, Tail: pos.Tail}
		} else {
			candidate = triple{Head: pos.Head, Relation: pos.Relation, Tail: replacement}
		}
		if !positives[candidate] {
			return candidate
		}
	}
	return triple{Head: pos.Head, Relation: pos.Relation, Tail: pos.Tail}
}

// gradientBatch accumulates per-vector updates across every (pos, neg) pair
// in a mini-batch, so they can be averaged and applied once per batch
// instead of immediately per pair.
type gradientBatch struct {
	entity   map[string][]float64
	relation map[string][]float64
}

func (b *gradientBatch) add(store map[string][]float64, id string, grad []float64, sign float64, dim int) {
	v, ok := store[id]
	if !ok {
		v = make([]float64, dim)
		store[id] = v
	}
	for i, g := range grad {
		v[i] += sign * g
	}
}

// accumulateGradients computes one margin-ranking pair's gradient and adds
// it into batch; returns false (no-op) when the margin-ranking loss is
// already <= 0, so a satisfied pair contributes nothing to the batch.
func accumulateGradients(model *embeddingModel, batch *gradientBatch, pos, neg triple, margin float64) bool {
	dim := model.dim
	posDiff := translationDiff(model, pos, dim)
	negDiff := translationDiff(model, neg, dim)
	posDist := l2norm(posDiff)
	negDist := l2norm(negDiff)

	loss := margin + posDist - negDist
	if loss <= 0 {
		return false
	}

	posGrad := scaleAndNormalize(posDiff, posDist)
	negGrad := scaleAndNormalize(negDiff, negDist)

	batch.add(batch.entity, pos.Head, posGrad, -1, dim)
	batch.add(batch.entity, pos.Tail, posGrad, 1, dim)
	batch.add(batch.relation, pos.Relation, posGrad, -1, dim)

	batch.add(batch.entity, neg.Head, negGrad, 1, dim)
	batch.add(batch.entity, neg.Tail, negGrad, -1, dim)
	batch.add(batch.relation, neg.Relation, negGrad, 1, dim)
	return true
}

// applyBatchGradients averages the accumulated batch gradient over the
// number of (pos, neg) pairs that actually contributed one, then applies a
// single learning-rate-scaled update per vector.
func applyBatchGradients(model *embeddingModel, batch *gradientBatch, lr float64, pairs int) {
	if pairs == 0 {
		return
	}
	scale := lr / float64(pairs)
	for id, grad := range batch.entity {
		applyGradient(model.entity[id], grad, scale)
	}
	for id, grad := range batch.relation {
		applyGradient(model.relation[id], grad, scale)
	}
}

func translationDiff(model *embeddingModel, t triple, dim int) []float64 {
	out := make([]float64, dim)
	h, r, tl := model.entity[t.Head], model.relation[t.Relation], model.entity[t.Tail]
	for i := 0; i < dim; i++ {
		out[i] = h[i] + r[i] - tl[i]
	}
	return out
}

func l2norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func scaleAndNormalize(diff []float64, dist float64) []float64 {
	out := make([]float64, len(diff))
	if dist == 0 {
		return out
	}
	for i, x := range diff {
		out[i] = x / dist
	}
	return out
}

func applyGradient(v []float64, grad []float64, step float64) {
	for i := range v {
		v[i] += step * grad[i]
	}
}

type embeddingCandidate struct {
	a, b         string
	overlapCount int
}

func neighborSetsByNode(store *hypergraph.Store) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{})
	for _, e := range store.AllEdges() {
		members := e.Nodes()
		for _, m := range members {
			if out[m] == nil {
				out[m] = make(map[string]struct{})
			}
			for _, other := range members {
				if other != m {
					out[m][other] = struct{}{}
				}
			}
		}
	}
	return out
}

// embeddingCandidates draws h and t from the top-degree entities (spec.md
// §4.4.10: "h, t drawn from top-degree entities") and keeps only pairs
// whose neighbor-Jaccard overlap clears minOverlap.
func embeddingCandidates(index *hgindex.Index, store *hypergraph.Store, neighborSets map[string]map[string]struct{}, topK int, minOverlap float64) []embeddingCandidate {
	ids := index.TopHubs(topK)

	var out []embeddingCandidate
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			if store.GetNode(a) == nil || store.GetNode(b) == nil {
				continue
			}
			overlapCount := len(sharedNeighbors(neighborSets[a], neighborSets[b]))
			if overlapCount == 0 {
				continue
			}
			union := len(neighborSets[a]) + len(neighborSets[b]) - overlapCount
			if union == 0 {
				continue
			}
			if float64(overlapCount)/float64(union) < minOverlap {
				continue
			}
			out = append(out, embeddingCandidate{a: a, b: b, overlapCount: overlapCount})
		}
	}
	return out
}

func sharedNeighbors(a, b map[string]struct{}) []string {
	var out []string
	for n := range a {
		if _, ok := b[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// bestRelationFor returns the relation minimizing translational distance
// between a and b, converted to a (0,1] plausibility score via
// 1/(1+distance).
func bestRelationFor(model *embeddingModel, a, b string, relations []string) (string, float64, bool) {
	ea, okA := model.entity[a]
	eb, okB := model.entity[b]
	if !okA || !okB {
		return "", 0, false
	}
	bestRel := ""
	bestDist := math.Inf(1)
	for _, r := range relations {
		rv, ok := model.relation[r]
		if !ok {
			continue
		}
		dist := 0.0
		for i := 0; i < model.dim; i++ {
			d := ea[i] + rv[i] - eb[i]
			dist += d * d
		}
		dist = math.Sqrt(dist)
		if dist < bestDist {
			bestDist = dist
			bestRel = r
		}
	}
	if bestRel == "" {
		return "", 0, false
	}
	return bestRel, 1 / (1 + bestDist), true
}

func labelOf(store *hypergraph.Store, id string) string {
	if n := store.GetNode(id); n != nil {
		return n.Label
	}
	return id
}

func buildEmbeddingInsight(ctx *opContext, a, b, relation string, score float64, evidenceCount int, neighborSets map[string]map[string]struct{}) insight.Insight {
	seeds := []string{a, b}
	sharedNeighborsList := sharedNeighbors(neighborSets[a], neighborSets[b])
	witness := ctx.store.IncidentEdges(a)
	witness = append(witness, ctx.store.IncidentEdges(b)...)

	return insight.Insight{
		ID:               ctx.nextID(insight.TypeEmbeddingLink),
		Type:             insight.TypeEmbeddingLink,
		SeedNodes:        seeds,
		SeedLabels:       labelsOf(ctx.store, seeds),
		WitnessEdges:     edgeIDs(witness),
		WitnessNodes:     uniqueSortedStrings(append(witnessNodesOf(witness), sharedNeighborsList...)),
		EvidenceChunkIDs: evidenceChunksOf(witness),
		Score:            score,
		ScoreBreakdown:   insight.ScoreBreakdown{Support: normalizeSupport(evidenceCount), Novelty: score, Specificity: score},
		NoveltyTags:      []string{fmt.Sprintf("predicted_relation=%s", relation), fmt.Sprintf("transe_score=%.4f", score)},
		Description:      fmt.Sprintf("TransE predicts %s %s %s with score %.3f", a, relation, b, score),
	}
}
