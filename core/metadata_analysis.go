package core

import "github.com/pkgguard/pkgguard/schema"

// metadataAnalysisFeature flags absent or weak repository reputation
// signals: votes, popularity, maintainer, URL, license, and staleness.
type metadataAnalysisFeature struct{}

func (f *metadataAnalysisFeature) Name() string { return "metadata_analysis" }

func (f *metadataAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.Metadata == nil {
		return nil
	}
	m := ctx.Metadata

	var signals []schema.Signal
	metaSig := func(id, desc string, points int) schema.Signal {
		return schema.Signal{ID: id, Description: desc, Points: points, Category: schema.CategoryMetadata}
	}

	switch {
	case m.Votes == 0:
		signals = append(signals, metaSig("M-VOTES-ZERO", "package has zero votes", 30))
	case m.Votes < 5:
		signals = append(signals, metaSig("M-VOTES-LOW", "package has fewer than five votes", 20))
	}

	if m.Popularity == 0 {
		signals = append(signals, metaSig("M-POP-ZERO", "package has zero popularity", 25))
	}
	if m.Maintainer == "" {
		signals = append(signals, metaSig("M-NO-MAINTAINER", "package is orphaned (no maintainer)", 20))
	}
	if m.UpstreamURL == "" {
		signals = append(signals, metaSig("M-NO-URL", "package declares no upstream URL", 15))
	}
	if m.License == "" {
		signals = append(signals, metaSig("M-NO-LICENSE", "package declares no license", 10))
	}
	if m.OutOfDate {
		signals = append(signals, metaSig("M-OUT-OF-DATE", "package is flagged out-of-date", 5))
	}

	return signals
}
