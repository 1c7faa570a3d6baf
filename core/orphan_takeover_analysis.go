package core

import (
	"time"

	"github.com/pkgguard/pkgguard/schema"
)

// orphanTakeoverFeature flags packages whose ownership appears to have
// changed hands quietly: a new maintainer distinct from the original
// submitter, especially combined with a change in the git commit author on
// an established package.
type orphanTakeoverFeature struct{}

func (f *orphanTakeoverFeature) Name() string { return "orphan_takeover_analysis" }

func (f *orphanTakeoverFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.Metadata == nil || ctx.Metadata.Submitter == "" || ctx.Metadata.Maintainer == "" {
		return nil
	}
	if ctx.Metadata.Submitter == ctx.Metadata.Maintainer {
		return nil
	}

	signals := []schema.Signal{{
		ID:          "B-SUBMITTER-CHANGED",
		Description: "current maintainer differs from the original submitter",
		Points:      15,
		Category:    schema.CategoryBehavioral,
	}}

	if len(ctx.GitLog) == 0 {
		return signals
	}

	newestAuthor := ctx.GitLog[0].Author
	authorChanged := false
	for _, c := range ctx.GitLog[1:] {
		if c.Author != newestAuthor {
			authorChanged = true
			break
		}
	}

	isOld := !ctx.Metadata.FirstReported.IsZero() && time.Since(ctx.Metadata.FirstReported) > 90*24*time.Hour

	if authorChanged && isOld {
		signals = append(signals, schema.Signal{
			ID:          "B-ORPHAN-TAKEOVER",
			Description: "maintainer changed, git commit authorship changed, and the package is over 90 days old",
			Points:      50,
			Category:    schema.CategoryBehavioral,
		})
	}

	return signals
}
