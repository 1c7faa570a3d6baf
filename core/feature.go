package core

import (
	"github.com/pkgguard/pkgguard/internal/patterns"
	"github.com/pkgguard/pkgguard/schema"
)

// Feature is the uniform capability every analyzer implements: a stable
// name (matching its pattern section, if any) and a pure analysis pass
// over a PackageContext. Features must not perform I/O or mutate shared
// state; an analyzer missing an input it needs returns no signals.
type Feature interface {
	Name() string
	Analyze(ctx *schema.PackageContext) []schema.Signal
}

// Registry holds the fixed, ordered list of registered features. Signals
// within a single ScanResult appear in registration order, then per-feature
// emission order — the registry's order is a scanning-engine invariant, not
// an implementation detail.
type Registry struct {
	features []Feature
}

// NewRegistry builds the default registry containing every feature named
// in the analysis and scoring engine's component design, in fixed order.
func NewRegistry(store *patterns.Store) *Registry {
	return &Registry{
		features: []Feature{
			newPatternFeature("pkgbuild_analysis", store, schema.CategoryPkgbuild, ""),
			newPatternFeature("install_script_analysis", store, schema.CategoryPkgbuild, "IS-"),
			newSourceURLFeature(store),
			newGTFOBinsFeature(store),
			&shellAnalysisFeature{},
			&checksumAnalysisFeature{},
			&metadataAnalysisFeature{},
			&nameAnalysisFeature{},
			&maintainerAnalysisFeature{},
			&orphanTakeoverFeature{},
			&binSourceVerificationFeature{},
			&gitHistoryAnalysisFeature{},
			&upstreamStarsFeature{},
			&commentsAnalysisFeature{},
		},
	}
}

// Features returns the registered features in fixed order.
func (r *Registry) Features() []Feature {
	return r.features
}
