package core

import (
	"math"

	"github.com/pkgguard/pkgguard/schema"
)

// ScoreFilter carries the user-configurable ignore lists the scorer
// consults before weighting: signal ids and whole categories to drop.
type ScoreFilter struct {
	IgnoreSignals    map[string]bool
	IgnoreCategories map[schema.SignalCategory]bool
}

// categoryWeight is the scorer's category-weighted risk formula from the
// composite scoring algorithm: pkgbuild dominates because that is where
// attacker code runs.
var categoryWeight = map[schema.SignalCategory]float64{
	schema.CategoryMetadata:   0.15,
	schema.CategoryPkgbuild:   0.45,
	schema.CategoryBehavioral: 0.25,
	schema.CategoryTemporal:   0.15,
}

// ComputeScore implements the composite scorer: drop ignored signals, check
// for an unfiltered override gate, sum and cap points per category, weight
// into a risk value, and invert into a trust score and tier.
func ComputeScore(signals []schema.Signal, filter ScoreFilter) (int, schema.Tier) {
	kept := make([]schema.Signal, 0, len(signals))
	for _, s := range signals {
		if filter.IgnoreSignals[s.ID] {
			continue
		}
		if filter.IgnoreCategories[s.Category] {
			continue
		}
		kept = append(kept, s)
	}

	for _, s := range kept {
		if s.OverrideGate {
			return 0, schema.TierMalicious
		}
	}

	sums := map[schema.SignalCategory]int{}
	for _, s := range kept {
		sums[s.Category] += s.Points
	}

	var risk float64
	for category, weight := range categoryWeight {
		sum := sums[category]
		if sum > 100 {
			sum = 100
		}
		risk += weight * float64(sum)
	}
	risk = math.Round(risk)
	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}

	score := 100 - int(risk)
	return score, tierFor(score)
}

// tierFor maps a trust score to its tier. Ties at the boundary resolve in
// favor of the higher (more trusted) tier.
func tierFor(score int) schema.Tier {
	switch {
	case score >= 81:
		return schema.TierTrusted
	case score >= 61:
		return schema.TierOK
	case score >= 41:
		return schema.TierSketchy
	case score >= 21:
		return schema.TierSuspicious
	default:
		return schema.TierMalicious
	}
}
