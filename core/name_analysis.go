package core

import (
	"strings"

	"github.com/pkgguard/pkgguard/schema"
)

// impersonationSuffixes are suspicious suffixes attached to a well-known
// brand name that suggest an unofficial "fixed" or "patched" fork.
var impersonationSuffixes = []string{
	"-fix", "-patch", "-patched", "-cracked", "-secure", "-plus", "-pro", "-hack",
	"-fix-bin", "-patch-bin", "-patched-bin", "-cracked-bin", "-secure-bin", "-plus-bin", "-pro-bin", "-hack-bin",
	"-fix-git", "-patch-git", "-patched-git", "-cracked-git", "-secure-git", "-plus-git", "-pro-git", "-hack-git",
}

// brandNames are well-known upstream projects worth protecting against
// impersonation via a suspicious suffix.
var brandNames = []string{
	"firefox", "chrome", "chromium", "vscode", "code", "discord", "slack", "spotify",
	"steam", "zoom", "telegram", "signal", "docker", "kubernetes", "nodejs", "python",
	"java", "openssl", "openssh", "curl", "git", "vim", "nvidia", "cuda", "vlc",
	"obs-studio", "gimp", "blender",
}

// topPackages is a static reference list used for typosquat detection via
// edit distance and containment checks against very popular package names.
var topPackages = []string{
	"firefox", "chromium", "vlc", "gimp", "blender", "vim", "neovim", "git", "curl",
	"wget", "python", "nodejs", "docker", "kubernetes", "openssl", "openssh", "htop",
	"tmux", "zsh", "bash", "ffmpeg", "imagemagick", "postgresql", "mysql", "redis",
	"nginx", "apache", "cmake", "make", "gcc",
}

// nameAnalysisFeature flags package names that impersonate or typosquat a
// well-known package. Gated by reputation: established packages (votes >= 10)
// skip all name checks.
type nameAnalysisFeature struct{}

func (f *nameAnalysisFeature) Name() string { return "name_analysis" }

func (f *nameAnalysisFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.Metadata != nil && ctx.Metadata.Votes >= 10 {
		return nil
	}

	name := ctx.Name

	for _, brand := range brandNames {
		if !strings.HasPrefix(name, brand) {
			continue
		}
		rest := name[len(brand):]
		if rest == "-bin" || rest == "-git" || rest == "" {
			continue // normal suffixes alone are not flagged
		}
		for _, suf := range impersonationSuffixes {
			if rest == suf {
				return []schema.Signal{{
					ID:          "B-NAME-IMPERSONATE",
					Description: "package name pairs a well-known brand with a suspicious suffix",
					Points:      65,
					Category:    schema.CategoryBehavioral,
					MatchedLine: name,
				}}
			}
		}
	}

	for _, top := range topPackages {
		if name == top {
			continue
		}
		if levenshtein(name, top) == 1 {
			return []schema.Signal{{
				ID:          "B-TYPOSQUAT",
				Description: "package name is one edit away from a popular package name",
				Points:      55,
				Category:    schema.CategoryBehavioral,
				MatchedLine: name,
			}}
		}
		if strictContainment(name, top) {
			return []schema.Signal{{
				ID:          "B-TYPOSQUAT",
				Description: "package name strictly contains a popular package name",
				Points:      55,
				Category:    schema.CategoryBehavioral,
				MatchedLine: name,
			}}
		}
	}

	return nil
}

// strictContainment reports whether name starts-with or ends-with top
// separated by a non-letter character, excluding the normal -bin/-git
// suffix pattern and an exact match.
func strictContainment(name, top string) bool {
	if name == top {
		return false
	}
	if strings.HasPrefix(name, top) {
		rest := name[len(top):]
		if rest != "" && !isLetter(rest[0]) && rest != "-bin" && rest != "-git" {
			return true
		}
	}
	if strings.HasSuffix(name, top) {
		prefix := name[:len(name)-len(top)]
		if prefix != "" && !isLetter(prefix[len(prefix)-1]) {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// levenshtein computes the edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
