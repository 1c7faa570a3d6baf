package core

import (
	"strings"

	"github.com/pkgguard/pkgguard/schema"
)

var commentConcernKeywords = []string{"malware", "virus", "backdoor", "compromis", "hijack", "stolen", "exfiltrat", "ransom"}

const commentConcernPointsPerHit = 15
const commentConcernPointsCap = 60

// commentsAnalysisFeature scans user comments for keywords indicating a
// prior trouble report against the package.
type commentsAnalysisFeature struct{}

func (f *commentsAnalysisFeature) Name() string { return "comments_analysis" }

func (f *commentsAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if len(ctx.Comments) == 0 {
		return nil
	}

	hits := 0
	var matched string
	for _, comment := range ctx.Comments {
		lower := strings.ToLower(comment)
		for _, kw := range commentConcernKeywords {
			if strings.Contains(lower, kw) {
				hits++
				if matched == "" {
					matched = strings.TrimSpace(comment)
				}
				break
			}
		}
	}
	if hits == 0 {
		return nil
	}

	points := hits * commentConcernPointsPerHit
	if points > commentConcernPointsCap {
		points = commentConcernPointsCap
	}

	return []schema.Signal{{
		ID:          "B-COMMENT-CONCERN",
		Description: "user comments reference malware, compromise, or theft concerns",
		Points:      points,
		Category:    schema.CategoryBehavioral,
		MatchedLine: matched,
	}}
}
