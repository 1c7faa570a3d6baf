package core

import (
	"strings"
	"time"

	"github.com/pkgguard/pkgguard/schema"
)

var maliciousDiffKeywords = []string{"curl", "wget", "nc", "socat"}

// gitHistoryAnalysisFeature flags temporal red flags in a package's commit
// history: brand-new packages, single-commit history, author churn, and a
// newly introduced network/exec line relative to the prior recipe version.
type gitHistoryAnalysisFeature struct{}

func (f *gitHistoryAnalysisFeature) Name() string { return "git_history_analysis" }

func (f *gitHistoryAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	var signals []schema.Signal

	if len(ctx.GitLog) == 1 {
		signals = append(signals, schema.Signal{
			ID:          "T-SINGLE-COMMIT",
			Description: "package repository has exactly one commit",
			Points:      20,
			Category:    schema.CategoryTemporal,
		})
	}

	if isNewPackage(ctx) {
		signals = append(signals, schema.Signal{
			ID:          "T-NEW-PACKAGE",
			Description: "package was first submitted within the last 7 days",
			Points:      25,
			Category:    schema.CategoryTemporal,
		})
	}

	if distinctAuthorCount(ctx.GitLog) >= 2 {
		signals = append(signals, schema.Signal{
			ID:          "T-AUTHOR-CHANGE",
			Description: "commit history has at least two distinct authors",
			Points:      25,
			Category:    schema.CategoryTemporal,
		})
	}

	if line := newlyIntroducedMaliciousLine(ctx); line != "" {
		signals = append(signals, schema.Signal{
			ID:          "T-MALICIOUS-DIFF",
			Description: "newest recipe version introduces a network/exec command absent from the prior version",
			Points:      55,
			Category:    schema.CategoryTemporal,
			MatchedLine: line,
		})
	}

	return signals
}

func isNewPackage(ctx *schema.PackageContext) bool {
	if ctx.Metadata != nil && !ctx.Metadata.FirstReported.IsZero() {
		return time.Since(ctx.Metadata.FirstReported) <= 7*24*time.Hour
	}
	if len(ctx.GitLog) == 0 {
		return false
	}
	oldest := ctx.GitLog[len(ctx.GitLog)-1]
	return time.Since(oldest.Timestamp) <= 7*24*time.Hour
}

func distinctAuthorCount(commits []schema.GitCommit) int {
	authors := make(map[string]struct{})
	for _, c := range commits {
		authors[c.Author] = struct{}{}
	}
	return len(authors)
}

func newlyIntroducedMaliciousLine(ctx *schema.PackageContext) string {
	if ctx.PkgbuildContent == "" || ctx.PriorPkgbuildContent == "" {
		return ""
	}
	priorLines := make(map[string]struct{})
	for _, line := range strings.Split(ctx.PriorPkgbuildContent, "\n") {
		priorLines[strings.TrimSpace(line)] = struct{}{}
	}
	for _, line := range strings.Split(ctx.PkgbuildContent, "\n") {
		trimmed := strings.TrimSpace(line)
		if _, existed := priorLines[trimmed]; existed {
			continue
		}
		lower := strings.ToLower(trimmed)
		for _, kw := range maliciousDiffKeywords {
			if strings.Contains(lower, kw) {
				return trimmed
			}
		}
	}
	return ""
}
