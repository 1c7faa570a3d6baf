// Package config loads pkgguard's user configuration: the whitelist and
// ignore lists consulted by the scorer, plus the batch/hook runtime knobs.
// It follows the raw-input/validated-config split used across the
// command-line surface: Viper unmarshals every source (flags, environment,
// config file) into a ConfigRawInput, and ProcessAndValidate turns that into
// a Config the rest of the program actually consumes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkgguard/pkgguard/core"
	"github.com/pkgguard/pkgguard/schema"
)

// Default values for the batch/hook runtime.
const (
	DefaultConcurrency       = 8
	DefaultPerPackageTimeout = 30 * time.Second
	MaxConcurrency           = 64
)

// Config holds the final, validated configuration used by the CLI and the
// pre-transaction hook.
type Config struct {
	Whitelist        map[string]bool
	IgnoreSignals    map[string]bool
	IgnoreCategories map[schema.SignalCategory]bool
	Concurrency      int
	PerPackageTimeout time.Duration
	UseColor         bool
}

// ConfigRawInput holds the raw string/slice inputs from all sources before
// validation. Viper unmarshals into this struct via mapstructure tags.
type ConfigRawInput struct {
	Whitelist        []string `mapstructure:"whitelist"`
	IgnoreSignals    []string `mapstructure:"ignore_signals"`
	IgnoreCategories []string `mapstructure:"ignore_categories"`
	Concurrency      int      `mapstructure:"concurrency"`
	PerPackageTimeout string  `mapstructure:"per_package_timeout"`
	Color            string   `mapstructure:"color"`
}

var validCategories = map[string]schema.SignalCategory{
	"metadata":   schema.CategoryMetadata,
	"pkgbuild":   schema.CategoryPkgbuild,
	"behavioral": schema.CategoryBehavioral,
	"temporal":   schema.CategoryTemporal,
}

// ProcessAndValidate turns raw input into a validated Config.
func ProcessAndValidate(input *ConfigRawInput) (*Config, error) {
	cfg := &Config{
		Whitelist:        toSet(input.Whitelist),
		IgnoreSignals:    toSet(input.IgnoreSignals),
		IgnoreCategories: map[schema.SignalCategory]bool{},
	}

	for _, name := range input.IgnoreCategories {
		category, ok := validCategories[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("invalid ignore_categories entry %q: must be one of metadata, pkgbuild, behavioral, temporal", name)
		}
		cfg.IgnoreCategories[category] = true
	}

	if input.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	} else if input.Concurrency > MaxConcurrency {
		return nil, fmt.Errorf("concurrency must not exceed %d (received %d)", MaxConcurrency, input.Concurrency)
	} else {
		cfg.Concurrency = input.Concurrency
	}

	if input.PerPackageTimeout == "" {
		cfg.PerPackageTimeout = DefaultPerPackageTimeout
	} else {
		d, err := time.ParseDuration(input.PerPackageTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid per_package_timeout %q: %w", input.PerPackageTimeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("per_package_timeout must be positive (received %q)", input.PerPackageTimeout)
		}
		cfg.PerPackageTimeout = d
	}

	useColor, err := parseBoolString(input.Color)
	if err != nil {
		return nil, fmt.Errorf("invalid color value %q: %w", input.Color, err)
	}
	cfg.UseColor = useColor

	return cfg, nil
}

// ScoreFilter converts the ignore lists into the core package's filter type.
func (c *Config) ScoreFilter() core.ScoreFilter {
	return core.ScoreFilter{
		IgnoreSignals:    c.IgnoreSignals,
		IgnoreCategories: c.IgnoreCategories,
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			set[item] = true
		}
	}
	return set
}

// parseBoolString accepts the same yes/no/true/false/1/0 vocabulary as the
// rest of the command-line surface; empty defaults to true (color on when
// writing to a terminal, gated separately by the report package).
func parseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("must be yes/no, true/false, or 1/0")
	}
}

// Path resolves the well-known per-user config file path:
// $XDG_CONFIG_HOME/pkgguard/config.yaml, falling back to
// ~/.config/pkgguard/config.yaml.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pkgguard", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pkgguard", "config.yaml"), nil
}
