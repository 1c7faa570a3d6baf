package core

import (
	"sort"
	"time"

	"github.com/pkgguard/pkgguard/schema"
)

// maintainerAnalysisFeature flags maintainers with too little history (a
// single recent package) or too much velocity (a batch of packages created
// in a short window), both associated with disposable-account abuse.
type maintainerAnalysisFeature struct{}

func (f *maintainerAnalysisFeature) Name() string { return "maintainer_analysis" }

func (f *maintainerAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.Metadata == nil || ctx.Metadata.Maintainer == "" || len(ctx.MaintainerPackages) == 0 {
		return nil
	}

	var signals []schema.Signal

	if len(ctx.MaintainerPackages) == 1 {
		age := time.Since(ctx.MaintainerPackages[0].Created)
		if age <= 30*24*time.Hour {
			signals = append(signals, schema.Signal{
				ID:          "B-MAINTAINER-NEW",
				Description: "maintainer's only package was created within the last 30 days",
				Points:      30,
				Category:    schema.CategoryBehavioral,
			})
		} else {
			signals = append(signals, schema.Signal{
				ID:          "B-MAINTAINER-SINGLE",
				Description: "maintainer has exactly one package",
				Points:      15,
				Category:    schema.CategoryBehavioral,
			})
		}
	}

	if hasBatchWindow(ctx.MaintainerPackages, 48*time.Hour, 3) {
		signals = append(signals, schema.Signal{
			ID:          "B-MAINTAINER-BATCH",
			Description: "maintainer created three or more packages within a 48-hour window",
			Points:      45,
			Category:    schema.CategoryBehavioral,
		})
	}

	return signals
}

// hasBatchWindow reports whether at least minCount entries have creation
// timestamps falling within any window-length span.
func hasBatchWindow(pkgs []schema.MaintainerPackage, window time.Duration, minCount int) bool {
	if len(pkgs) < minCount {
		return false
	}
	times := make([]time.Time, len(pkgs))
	for i, p := range pkgs {
		times[i] = p.Created
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i := 0; i+minCount-1 < len(times); i++ {
		if times[i+minCount-1].Sub(times[i]) <= window {
			return true
		}
	}
	return false
}
