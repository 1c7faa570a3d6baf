// Package patterns loads and compiles the declarative pattern database
// consumed by the pattern-driven feature analyzers (pkgbuild_analysis,
// install_script_analysis, source_url_analysis, gtfobins_analysis).
package patterns

import (
	"embed"
	"fmt"
	"regexp"

	"github.com/pkgguard/pkgguard/schema"
	"gopkg.in/yaml.v3"
)

//go:embed data/patterns.yaml
var embeddedPatterns embed.FS

// CompiledRule is a PatternRule with its regex pre-compiled.
type CompiledRule struct {
	ID           string
	Regex        *regexp.Regexp
	Points       int
	Description  string
	OverrideGate bool
}

// Store is a read-only, compiled pattern database grouped by section. It is
// constructed once at process start and shared read-only across workers.
type Store struct {
	bySection map[string][]CompiledRule
}

type rawRule struct {
	ID           string `yaml:"id"`
	Pattern      string `yaml:"pattern"`
	Points       int    `yaml:"points"`
	Description  string `yaml:"description"`
	OverrideGate bool   `yaml:"override_gate"`
}

// Load reads and compiles the embedded pattern database. A missing file,
// unparseable YAML, duplicate id, or invalid regex is a fatal configuration
// error — the process should not start with a broken pattern store.
func Load() (*Store, error) {
	data, err := embeddedPatterns.ReadFile("data/patterns.yaml")
	if err != nil {
		return nil, fmt.Errorf("read pattern database: %w", err)
	}

	var raw map[string][]rawRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse pattern database: %w", err)
	}

	seen := make(map[string]struct{})
	store := &Store{bySection: make(map[string][]CompiledRule, len(raw))}

	for section, rules := range raw {
		compiled := make([]CompiledRule, 0, len(rules))
		for _, r := range rules {
			if r.ID == "" {
				return nil, fmt.Errorf("pattern database section %q: rule missing id", section)
			}
			if _, dup := seen[r.ID]; dup {
				return nil, fmt.Errorf("pattern database: duplicate rule id %q", r.ID)
			}
			seen[r.ID] = struct{}{}

			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern database rule %q: invalid regex: %w", r.ID, err)
			}
			compiled = append(compiled, CompiledRule{
				ID:           r.ID,
				Regex:        re,
				Points:       r.Points,
				Description:  r.Description,
				OverrideGate: r.OverrideGate,
			})
		}
		store.bySection[section] = compiled
	}

	return store, nil
}

// RulesFor returns the compiled rules registered under section, or nil if
// the section has no rules.
func (s *Store) RulesFor(section string) []CompiledRule {
	return s.bySection[section]
}

// Rule returns a rule as a schema.PatternRule for reporting purposes.
func (r CompiledRule) Rule(section string) schema.PatternRule {
	return schema.PatternRule{
		ID:           r.ID,
		Section:      section,
		Pattern:      r.Regex.String(),
		Points:       r.Points,
		Description:  r.Description,
		OverrideGate: r.OverrideGate,
	}
}
