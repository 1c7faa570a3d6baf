// Package schema has the value types shared across every part of pkgguard:
// the signal and scoring model, the package context passed to feature
// analyzers, and the pattern-rule shape loaded by the pattern store.
package schema

import "time"

// SignalCategory groups signals for weighted scoring.
type SignalCategory string

// The four categories a Signal can belong to, weighted independently by the scorer.
const (
	CategoryMetadata   SignalCategory = "metadata"
	CategoryPkgbuild   SignalCategory = "pkgbuild"
	CategoryBehavioral SignalCategory = "behavioral"
	CategoryTemporal   SignalCategory = "temporal"
)

// Tier is a coarse categorical severity label mapped from the numeric trust score.
type Tier string

// Tiers ordered from most to least trusted.
const (
	TierTrusted    Tier = "TRUSTED"
	TierOK         Tier = "OK"
	TierSketchy    Tier = "SKETCHY"
	TierSuspicious Tier = "SUSPICIOUS"
	TierMalicious  Tier = "MALICIOUS"
)

// Signal represents one observation made by a feature analyzer.
// Points are additive within a category before weighting; OverrideGate,
// if true and not filtered by user config, forces the worst tier
// regardless of the numeric score.
type Signal struct {
	ID           string
	Description  string
	Points       int
	Category     SignalCategory
	OverrideGate bool
	MatchedLine  string // offending text, empty if not applicable
}

// GitCommit is one entry in a recipe repository's commit history, newest first.
type GitCommit struct {
	Hash      string
	Author    string
	Timestamp time.Time
	Message   string
	Diff      string // unified diff against the parent commit, empty if unavailable
}

// MaintainerPackage names one other package owned by the same maintainer.
type MaintainerPackage struct {
	Name    string
	Created time.Time
}

// CommunityMetadata holds repository-hosted metadata for a package, as
// reported by the community metadata interface.
type CommunityMetadata struct {
	Votes         float64
	Popularity    float64
	Maintainer    string // empty if orphaned
	Submitter     string // empty if unknown
	FirstReported time.Time
	LastModified  time.Time
	UpstreamURL   string
	License       string
	OutOfDate     bool
}

// PackageContext is the immutable snapshot passed to every feature. Fields
// are populated best-effort by an external context builder: missing data
// is not an error, and every feature must tolerate any subset being absent.
type PackageContext struct {
	Name string

	Metadata *CommunityMetadata // nil if unavailable

	PkgbuildContent      string // empty if unavailable
	InstallScriptContent string // empty if unavailable
	PriorPkgbuildContent string // empty if no prior version exists

	GitLog []GitCommit // newest first

	MaintainerPackages []MaintainerPackage // nil if unavailable

	UpstreamStars    *int // nil if unknown
	UpstreamNotFound bool

	Comments []string // nil if unavailable
}

// ScanResult is the outcome of scanning a single package.
//
// Invariant: if Signals contains an unfiltered override-gated signal,
// Tier is TierMalicious and Score is 0.
type ScanResult struct {
	Package  string
	Score    int
	Tier     Tier
	Signals  []Signal
	Duration time.Duration
	Error    string // empty on success
}

// PatternRule is one declarative rule loaded from the pattern database.
type PatternRule struct {
	ID           string
	Section      string // matches a feature's name
	Pattern      string // regex source
	Points       int
	Description  string
	OverrideGate bool
}
