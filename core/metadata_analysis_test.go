package core

import (
	"testing"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func TestMetadataAnalysisNilMetadataReturnsNil(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo"}
	assert.Nil(t, (&metadataAnalysisFeature{}).Analyze(ctx))
}

func TestMetadataAnalysisZeroVotes(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo", Metadata: &schema.CommunityMetadata{Votes: 0}}
	signals := (&metadataAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "M-VOTES-ZERO"))
	assert.False(t, hasSignal(signals, "M-VOTES-LOW"))
}

func TestMetadataAnalysisLowVotes(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo", Metadata: &schema.CommunityMetadata{Votes: 3}}
	signals := (&metadataAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "M-VOTES-LOW"))
	assert.False(t, hasSignal(signals, "M-VOTES-ZERO"))
}

func TestMetadataAnalysisHealthyPackageHasNoSignals(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo", Metadata: &schema.CommunityMetadata{
		Votes: 50, Popularity: 1.2, Maintainer: "alice", UpstreamURL: "https://example.com", License: "MIT",
	}}
	signals := (&metadataAnalysisFeature{}).Analyze(ctx)
	assert.Empty(t, signals)
}

func TestMetadataAnalysisFlagsEveryWeakness(t *testing.T) {
	ctx := &schema.PackageContext{Name: "foo", Metadata: &schema.CommunityMetadata{
		Votes: 0, Popularity: 0, Maintainer: "", UpstreamURL: "", License: "", OutOfDate: true,
	}}
	signals := (&metadataAnalysisFeature{}).Analyze(ctx)
	for _, id := range []string{"M-VOTES-ZERO", "M-POP-ZERO", "M-NO-MAINTAINER", "M-NO-URL", "M-NO-LICENSE", "M-OUT-OF-DATE"} {
		assert.True(t, hasSignal(signals, id), id)
	}
}
