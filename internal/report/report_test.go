package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkgguard/pkgguard/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintResultListsSignalsSortedByCategoryThenPoints(t *testing.T) {
	var buf bytes.Buffer
	result := schema.ScanResult{
		Package: "example",
		Score:   40,
		Tier:    schema.TierSuspicious,
		Signals: []schema.Signal{
			{ID: "M-VOTES-ZERO", Category: schema.CategoryMetadata, Points: 30, Description: "no votes"},
			{ID: "P-NO-CHECKSUMS", Category: schema.CategoryPkgbuild, Points: 30, Description: "no checksums"},
			{ID: "P-CHECKSUM-MISMATCH", Category: schema.CategoryPkgbuild, Points: 40, Description: "mismatch"},
		},
		Duration: 2 * time.Millisecond,
	}

	PrintResult(&buf, result, false)
	out := buf.String()

	mismatchIdx := indexOf(out, "P-CHECKSUM-MISMATCH")
	noChecksumIdx := indexOf(out, "P-NO-CHECKSUMS")
	metadataIdx := indexOf(out, "M-VOTES-ZERO")

	assert.True(t, mismatchIdx < noChecksumIdx, "higher-point pkgbuild signal should print first")
	assert.True(t, metadataIdx < noChecksumIdx, "metadata category should print before pkgbuild")
}

func TestPrintResultReportsScanFailure(t *testing.T) {
	var buf bytes.Buffer
	PrintResult(&buf, schema.ScanResult{Package: "broken", Error: "timeout"}, false)
	assert.Contains(t, buf.String(), "scan failed (timeout)")
}

func TestPrintBatchSummaryCountsTiers(t *testing.T) {
	var buf bytes.Buffer
	results := []schema.ScanResult{
		{Package: "a", Tier: schema.TierOK},
		{Package: "b", Tier: schema.TierSketchy},
		{Package: "c", Tier: schema.TierSuspicious},
		{Package: "d", Error: "timeout"},
	}
	PrintBatchSummary(&buf, results, false)
	out := buf.String()
	assert.Contains(t, out, "1 ok")
	assert.Contains(t, out, "1 sketchy")
	assert.Contains(t, out, "1 suspicious")
	assert.Contains(t, out, "1 failed")
}

func TestWorstTierIgnoresErroredResults(t *testing.T) {
	results := []schema.ScanResult{
		{Package: "a", Tier: schema.TierOK},
		{Package: "b", Error: "timeout"},
	}
	worst, anyError := WorstTier(results)
	assert.Equal(t, schema.TierOK, worst)
	assert.True(t, anyError)
}

func TestWorstTierPicksLeastTrusted(t *testing.T) {
	results := []schema.ScanResult{
		{Package: "a", Tier: schema.TierOK},
		{Package: "b", Tier: schema.TierMalicious},
		{Package: "c", Tier: schema.TierSketchy},
	}
	worst, anyError := WorstTier(results)
	assert.Equal(t, schema.TierMalicious, worst)
	assert.False(t, anyError)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
