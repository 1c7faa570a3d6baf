package core

import (
	"testing"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func TestNameAnalysisSkipsEstablishedPackages(t *testing.T) {
	ctx := &schema.PackageContext{Name: "vscod-fix", Metadata: &schema.CommunityMetadata{Votes: 10}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.Empty(t, signals)
}

func TestNameAnalysisFlagsBrandImpersonation(t *testing.T) {
	ctx := &schema.PackageContext{Name: "discord-fix", Metadata: &schema.CommunityMetadata{Votes: 2}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-NAME-IMPERSONATE"))
}

func TestNameAnalysisAllowsNormalBinAndGitSuffixes(t *testing.T) {
	ctx := &schema.PackageContext{Name: "discord-bin", Metadata: &schema.CommunityMetadata{Votes: 2}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.False(t, hasSignal(signals, "B-NAME-IMPERSONATE"))
}

func TestNameAnalysisFlagsTyposquatByOneEdit(t *testing.T) {
	ctx := &schema.PackageContext{Name: "firefoxx", Metadata: &schema.CommunityMetadata{Votes: 0}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-TYPOSQUAT"))
}

func TestNameAnalysisFlagsStrictContainment(t *testing.T) {
	ctx := &schema.PackageContext{Name: "postgresql-old", Metadata: &schema.CommunityMetadata{Votes: 0}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-TYPOSQUAT"))
}

func TestNameAnalysisNoMetadataStillAnalyzes(t *testing.T) {
	ctx := &schema.PackageContext{Name: "firefoxx"}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.True(t, hasSignal(signals, "B-TYPOSQUAT"))
}

func TestNameAnalysisExactMatchNotFlagged(t *testing.T) {
	ctx := &schema.PackageContext{Name: "firefox", Metadata: &schema.CommunityMetadata{Votes: 0}}
	signals := (&nameAnalysisFeature{}).Analyze(ctx)
	assert.Empty(t, signals)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("firefox", "firefox"))
	assert.Equal(t, 1, levenshtein("firefox", "firefoxx"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
