package core

import (
	"sort"
	"strings"

	"github.com/pkgguard/pkgguard/schema"
)

// checksumAnalysisFeature verifies the recipe's checksum arrays against its
// source arrays, per arch-suffixed group. It requires counting rather than
// regex matching, so it is not implemented as a patternFeature.
type checksumAnalysisFeature struct{}

func (f *checksumAnalysisFeature) Name() string { return "checksum_analysis" }

var vcsNameSuffixes = []string{"-git", "-svn", "-hg", "-bzr"}

func isVCSPackage(name string) bool {
	for _, suf := range vcsNameSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

func (f *checksumAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.PkgbuildContent == "" {
		return nil
	}
	content := ctx.PkgbuildContent

	sourceGroups := extractArrayGroups(content, "source")

	var checksumGroups []arrayGroup
	hasMD5 := false
	hasStrongerChecksum := false
	for _, prefix := range checksumPrefixes {
		groups := extractArrayGroups(content, prefix)
		checksumGroups = append(checksumGroups, groups...)
		if len(groups) > 0 {
			if prefix == "md5sums" {
				hasMD5 = true
			} else {
				hasStrongerChecksum = true
			}
		}
	}

	var signals []schema.Signal

	if len(checksumGroups) == 0 {
		signals = append(signals, schema.Signal{
			ID:          "P-NO-CHECKSUMS",
			Description: "recipe declares no checksum array of any kind",
			Points:      30,
			Category:    schema.CategoryPkgbuild,
		})
		return signals
	}

	if !isVCSPackage(ctx.Name) {
		allSkip := true
		anyEntry := false
		for _, g := range checksumGroups {
			for _, e := range g.entries {
				anyEntry = true
				if e != "SKIP" {
					allSkip = false
				}
			}
		}
		if anyEntry && allSkip {
			signals = append(signals, schema.Signal{
				ID:          "P-SKIP-ALL",
				Description: "every checksum entry is SKIP on a non-VCS package",
				Points:      25,
				Category:    schema.CategoryPkgbuild,
			})
		}
	}

	if hasMD5 && !hasStrongerChecksum {
		signals = append(signals, schema.Signal{
			ID:          "P-WEAK-CHECKSUMS",
			Description: "only md5sums present with no stronger checksum alternative",
			Points:      10,
			Category:    schema.CategoryPkgbuild,
		})
	}

	mismatchedSuffixes := make(map[string]string) // suffix -> matched source line, for dedup
	for _, sg := range sourceGroups {
		matched := false
		for _, cg := range checksumGroups {
			if cg.suffix != sg.suffix {
				continue
			}
			matched = true
			if len(sg.entries) != len(cg.entries) {
				mismatchedSuffixes[sg.suffix] = strings.TrimSpace(sg.raw)
			}
		}
		if !matched && len(sg.entries) > 0 {
			// no checksum array at all for this arch group: N source entries vs 0 checksums.
			mismatchedSuffixes[sg.suffix] = strings.TrimSpace(sg.raw)
		}
	}
	suffixes := make([]string, 0, len(mismatchedSuffixes))
	for suf := range mismatchedSuffixes {
		suffixes = append(suffixes, suf)
	}
	sort.Strings(suffixes)
	for _, suf := range suffixes {
		signals = append(signals, schema.Signal{
			ID:          "P-CHECKSUM-MISMATCH",
			Description: "source and checksum array element counts differ within an arch group",
			Points:      40,
			Category:    schema.CategoryPkgbuild,
			MatchedLine: mismatchedSuffixes[suf],
		})
	}

	return signals
}
