package core

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkgguard/pkgguard/schema"
)

var renamePrefixRe = regexp.MustCompile(`^[^:\s]+::`)
var vcsSchemeRe = regexp.MustCompile(`^(git|svn|hg|bzr)\+`)
var unresolvedVarRe = regexp.MustCompile(`\$\{?[A-Za-z_][A-Za-z0-9_]*\}?`)

// binSourceVerificationFeature checks that "-bin" packages fetch their
// binary from the same organization as the declared upstream URL, a common
// tell for a malicious drop-in replacement.
type binSourceVerificationFeature struct{}

func (f *binSourceVerificationFeature) Name() string { return "bin_source_verification" }

func (f *binSourceVerificationFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if !strings.HasSuffix(ctx.Name, "-bin") {
		return nil
	}
	if ctx.Metadata == nil || ctx.Metadata.UpstreamURL == "" || ctx.PkgbuildContent == "" {
		return nil
	}

	upstream, err := url.Parse(ctx.Metadata.UpstreamURL)
	if err != nil || upstream.Host == "" {
		return nil
	}
	upstreamHost := normalizeHost(upstream.Host)

	groups := extractArrayGroups(ctx.PkgbuildContent, "source")
	var githubMismatch, domainMismatch bool

	for _, g := range groups {
		for _, entry := range g.entries {
			resolved := resolveSourceEntry(entry, ctx.Metadata.UpstreamURL)
			if resolved == "" {
				continue
			}
			u, err := url.Parse(resolved)
			if err != nil || u.Host == "" {
				continue
			}
			sourceHost := normalizeHost(u.Host)

			if upstreamHost == "github.com" && sourceHost == "github.com" {
				if firstPathSegment(upstream.Path) != firstPathSegment(u.Path) {
					githubMismatch = true
				}
				continue
			}
			if sourceHost != upstreamHost {
				domainMismatch = true
			}
		}
	}

	var signals []schema.Signal
	if githubMismatch {
		signals = append(signals, schema.Signal{
			ID:          "B-BIN-GITHUB-ORG-MISMATCH",
			Description: "binary source is hosted under a different GitHub organization than the declared upstream",
			Points:      50,
			Category:    schema.CategoryBehavioral,
		})
	}
	if domainMismatch {
		signals = append(signals, schema.Signal{
			ID:          "B-BIN-DOMAIN-MISMATCH",
			Description: "binary source domain does not match the declared upstream URL's domain",
			Points:      30,
			Category:    schema.CategoryBehavioral,
		})
	}
	return signals
}

func resolveSourceEntry(entry, upstreamURL string) string {
	entry = renamePrefixRe.ReplaceAllString(entry, "")
	entry = vcsSchemeRe.ReplaceAllString(entry, "")
	expanded := strings.ReplaceAll(entry, "${url}", upstreamURL)
	expanded = strings.ReplaceAll(expanded, "$url", upstreamURL)
	if unresolvedVarRe.MatchString(expanded) {
		return ""
	}
	return expanded
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	for _, prefix := range []string{"www.", "dl.", "download."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}

func firstPathSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.Index(trimmed, "/"); idx >= 0 {
		return trimmed[:idx]
	}
	return trimmed
}
