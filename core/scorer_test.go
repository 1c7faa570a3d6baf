package core

import (
	"testing"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func noFilter() ScoreFilter {
	return ScoreFilter{IgnoreSignals: map[string]bool{}, IgnoreCategories: map[schema.SignalCategory]bool{}}
}

func TestComputeScoreNoSignalsIsTrusted(t *testing.T) {
	score, tier := ComputeScore(nil, noFilter())
	assert.Equal(t, 100, score)
	assert.Equal(t, schema.TierTrusted, tier)
}

func TestComputeScoreOverrideGateForcesMalicious(t *testing.T) {
	signals := []schema.Signal{
		{ID: "P-CURL-PIPE", Category: schema.CategoryPkgbuild, Points: 90, OverrideGate: true},
		{ID: "M-VOTES-ZERO", Category: schema.CategoryMetadata, Points: 30},
	}
	score, tier := ComputeScore(signals, noFilter())
	assert.Equal(t, 0, score)
	assert.Equal(t, schema.TierMalicious, tier)
}

func TestComputeScoreCategoryCapsAt100(t *testing.T) {
	signals := []schema.Signal{
		{ID: "A", Category: schema.CategoryPkgbuild, Points: 80},
		{ID: "B", Category: schema.CategoryPkgbuild, Points: 80},
	}
	score, _ := ComputeScore(signals, noFilter())
	// pkgbuild sum capped at 100, weight 0.45 -> risk 45 -> score 55
	assert.Equal(t, 55, score)
}

func TestComputeScoreWeightedFormula(t *testing.T) {
	signals := []schema.Signal{
		{ID: "M", Category: schema.CategoryMetadata, Points: 40},
		{ID: "B", Category: schema.CategoryBehavioral, Points: 20},
	}
	score, tier := ComputeScore(signals, noFilter())
	// risk = round(0.15*40 + 0.25*20) = round(6 + 5) = 11, score = 89
	assert.Equal(t, 89, score)
	assert.Equal(t, schema.TierTrusted, tier)
}

func TestComputeScoreIgnoreListsDropSignals(t *testing.T) {
	signals := []schema.Signal{
		{ID: "M-VOTES-ZERO", Category: schema.CategoryMetadata, Points: 30},
	}
	filter := noFilter()
	filter.IgnoreSignals["M-VOTES-ZERO"] = true
	score, tier := ComputeScore(signals, filter)
	assert.Equal(t, 100, score)
	assert.Equal(t, schema.TierTrusted, tier)
}

func TestComputeScoreIgnoreCategoryDropsAllItsSignals(t *testing.T) {
	signals := []schema.Signal{
		{ID: "M-VOTES-ZERO", Category: schema.CategoryMetadata, Points: 30},
		{ID: "M-NO-URL", Category: schema.CategoryMetadata, Points: 15},
	}
	filter := noFilter()
	filter.IgnoreCategories[schema.CategoryMetadata] = true
	score, tier := ComputeScore(signals, filter)
	assert.Equal(t, 100, score)
	assert.Equal(t, schema.TierTrusted, tier)
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		score int
		tier  schema.Tier
	}{
		{100, schema.TierTrusted},
		{81, schema.TierTrusted},
		{80, schema.TierOK},
		{61, schema.TierOK},
		{60, schema.TierSketchy},
		{41, schema.TierSketchy},
		{40, schema.TierSuspicious},
		{21, schema.TierSuspicious},
		{20, schema.TierMalicious},
		{0, schema.TierMalicious},
	}
	for _, c := range cases {
		assert.Equal(t, c.tier, tierFor(c.score), "score %d", c.score)
	}
}
