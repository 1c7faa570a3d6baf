package core

import "github.com/pkgguard/pkgguard/schema"

// upstreamStarsFeature flags packages whose declared upstream repository is
// missing or has little community traction.
type upstreamStarsFeature struct{}

func (f *upstreamStarsFeature) Name() string { return "upstream_stars" }

func (f *upstreamStarsFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.UpstreamNotFound {
		return []schema.Signal{{
			ID:          "B-UPSTREAM-NOT-FOUND",
			Description: "declared upstream repository could not be found",
			Points:      25,
			Category:    schema.CategoryBehavioral,
		}}
	}

	if ctx.UpstreamStars == nil {
		return nil
	}

	switch {
	case *ctx.UpstreamStars == 0:
		return []schema.Signal{{
			ID:          "B-UPSTREAM-ZERO-STARS",
			Description: "declared upstream repository has zero stars",
			Points:      20,
			Category:    schema.CategoryBehavioral,
		}}
	case *ctx.UpstreamStars < 5:
		return []schema.Signal{{
			ID:          "B-UPSTREAM-LOW-STARS",
			Description: "declared upstream repository has fewer than five stars",
			Points:      10,
			Category:    schema.CategoryBehavioral,
		}}
	}
	return nil
}
