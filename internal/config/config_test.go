package config

import (
	"testing"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg, err := ProcessAndValidate(&ConfigRawInput{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, DefaultPerPackageTimeout, cfg.PerPackageTimeout)
	assert.True(t, cfg.UseColor)
	assert.Empty(t, cfg.Whitelist)
}

func TestProcessAndValidateWhitelistAndIgnores(t *testing.T) {
	cfg, err := ProcessAndValidate(&ConfigRawInput{
		Whitelist:        []string{"trusted-pkg", " spaced-pkg "},
		IgnoreSignals:    []string{"M-VOTES-ZERO"},
		IgnoreCategories: []string{"Metadata"},
	})
	require.NoError(t, err)
	assert.True(t, cfg.Whitelist["trusted-pkg"])
	assert.True(t, cfg.Whitelist["spaced-pkg"])
	assert.True(t, cfg.IgnoreSignals["M-VOTES-ZERO"])
	assert.True(t, cfg.IgnoreCategories[schema.CategoryMetadata])
}

func TestProcessAndValidateRejectsUnknownCategory(t *testing.T) {
	_, err := ProcessAndValidate(&ConfigRawInput{IgnoreCategories: []string{"bogus"}})
	assert.Error(t, err)
}

func TestProcessAndValidateRejectsExcessiveConcurrency(t *testing.T) {
	_, err := ProcessAndValidate(&ConfigRawInput{Concurrency: MaxConcurrency + 1})
	assert.Error(t, err)
}

func TestProcessAndValidateParsesTimeout(t *testing.T) {
	cfg, err := ProcessAndValidate(&ConfigRawInput{PerPackageTimeout: "5s"})
	require.NoError(t, err)
	assert.Equal(t, 5e9, float64(cfg.PerPackageTimeout))
}

func TestProcessAndValidateRejectsBadColorValue(t *testing.T) {
	_, err := ProcessAndValidate(&ConfigRawInput{Color: "maybe"})
	assert.Error(t, err)
}

func TestScoreFilterMirrorsConfig(t *testing.T) {
	cfg, err := ProcessAndValidate(&ConfigRawInput{IgnoreSignals: []string{"X"}})
	require.NoError(t, err)
	filter := cfg.ScoreFilter()
	assert.True(t, filter.IgnoreSignals["X"])
}
