package core

import (
	"regexp"
	"strings"

	"github.com/pkgguard/pkgguard/internal/patterns"
	"github.com/pkgguard/pkgguard/schema"
)

// patternFeature is the shared implementation behind pkgbuild_analysis and
// install_script_analysis: both take the pkgbuild_analysis rules from the
// pattern store, scan a text field selected per feature (recipe or install
// hook), and emit one Signal per matching rule, copying id, description,
// points and override_gate from the rule. Signals use category Pkgbuild.
// source_url_analysis and gtfobins_analysis have their own types below.
type patternFeature struct {
	name     string
	rules    []patterns.CompiledRule
	idPrefix string
	content  func(*schema.PackageContext) string
}

func newPatternFeature(name string, store *patterns.Store, _ schema.SignalCategory, idPrefix string) *patternFeature {
	return &patternFeature{
		name:     name,
		rules:    store.RulesFor("pkgbuild_analysis"),
		idPrefix: idPrefix,
		content:  func(ctx *schema.PackageContext) string { return contentForPatternFeature(name, ctx) },
	}
}

func contentForPatternFeature(name string, ctx *schema.PackageContext) string {
	if name == "install_script_analysis" {
		return ctx.InstallScriptContent
	}
	return ctx.PkgbuildContent
}

func (f *patternFeature) Name() string { return f.name }

func (f *patternFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	text := f.content(ctx)
	if text == "" {
		return nil
	}

	var signals []schema.Signal
	lines := strings.Split(text, "\n")
	for _, rule := range f.rules {
		if !rule.Regex.MatchString(text) {
			continue
		}
		matched := firstMatchingLine(rule.Regex, lines)
		signals = append(signals, schema.Signal{
			ID:           f.idPrefix + rule.ID,
			Description:  rule.Description,
			Points:       rule.Points,
			Category:     schema.CategoryPkgbuild,
			OverrideGate: rule.OverrideGate,
			MatchedLine:  matched,
		})
	}
	return signals
}

func firstMatchingLine(re *regexp.Regexp, lines []string) string {
	for _, line := range lines {
		if re.MatchString(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

// sourceURLFeature scans only the tokens inside source=(...) and its
// arch-suffixed variants, per the source_url_analysis contract.
type sourceURLFeature struct {
	rules []patterns.CompiledRule
}

func newSourceURLFeature(store *patterns.Store) *sourceURLFeature {
	return &sourceURLFeature{rules: store.RulesFor("source_url_analysis")}
}

func (f *sourceURLFeature) Name() string { return "source_url_analysis" }

func (f *sourceURLFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	if ctx.PkgbuildContent == "" {
		return nil
	}

	groups := extractSourceArrayGroups(ctx.PkgbuildContent)
	if len(groups) == 0 {
		return nil
	}

	var text strings.Builder
	for _, g := range groups {
		text.WriteString(g.raw)
		text.WriteByte('\n')
	}
	scanText := text.String()
	lines := strings.Split(scanText, "\n")

	var signals []schema.Signal
	for _, rule := range f.rules {
		if !rule.Regex.MatchString(scanText) {
			continue
		}
		signals = append(signals, schema.Signal{
			ID:           rule.ID,
			Description:  rule.Description,
			Points:       rule.Points,
			Category:     schema.CategoryPkgbuild,
			OverrideGate: rule.OverrideGate,
			MatchedLine:  firstMatchingLine(rule.Regex, lines),
		})
	}
	return signals
}

// gtfobinsFeature scans both the recipe and install-hook text for
// living-off-the-land binary abuse patterns.
type gtfobinsFeature struct {
	rules []patterns.CompiledRule
}

func newGTFOBinsFeature(store *patterns.Store) *gtfobinsFeature {
	return &gtfobinsFeature{rules: store.RulesFor("gtfobins_analysis")}
}

func (f *gtfobinsFeature) Name() string { return "gtfobins_analysis" }

func (f *gtfobinsFeature) Analyze(ctx *schema.PackageContext) []schema.Signal {
	text := ctx.PkgbuildContent
	if ctx.InstallScriptContent != "" {
		text += "\n" + ctx.InstallScriptContent
	}
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")

	var signals []schema.Signal
	for _, rule := range f.rules {
		if !rule.Regex.MatchString(text) {
			continue
		}
		signals = append(signals, schema.Signal{
			ID:           rule.ID,
			Description:  rule.Description,
			Points:       rule.Points,
			Category:     schema.CategoryPkgbuild,
			OverrideGate: rule.OverrideGate,
			MatchedLine:  firstMatchingLine(rule.Regex, lines),
		})
	}
	return signals
}
