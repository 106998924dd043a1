package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombineScoreWeights(t *testing.T) {
	score, breakdown := combineScore(9, 0, true, 0, true)
	// support'(9) = log10(10) = 1, novelty'(0) = 1/(1+log(1)) = 1,
	// specificity'(0) = 1/(1+log(1)) = 1 -> score = 0.4+0.35+0.25 = 1.
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.InDelta(t, 1.0, breakdown.Support, 1e-9)
	assert.InDelta(t, 1.0, breakdown.Novelty, 1e-9)
	assert.InDelta(t, 1.0, breakdown.Specificity, 1e-9)
}

func TestCombineScoreDefaultsWithoutSeeds(t *testing.T) {
	_, breakdown := combineScore(0, 0, false, 0, false)
	assert.Equal(t, 0.5, breakdown.Novelty)
	assert.Equal(t, 0.5, breakdown.Specificity)
}

func TestNormalizeNoveltyDecreasesWithCooccurrence(t *testing.T) {
	low := normalizeNovelty(0)
	high := normalizeNovelty(100)
	assert.Greater(t, low, high)
}

func TestNormalizeSpecificityDecreasesWithDegree(t *testing.T) {
	low := normalizeSpecificity(0)
	high := normalizeSpecificity(100)
	assert.Greater(t, low, high)
}
