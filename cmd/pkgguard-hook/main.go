// pkgguard-hook is the pre-transaction hook binary: it reads package names
// from standard input, one per line, and exits non-zero to block the
// transaction. It takes no flags, per the hook CLI contract.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkgguard/pkgguard/core"
	"github.com/pkgguard/pkgguard/internal/config"
	"github.com/pkgguard/pkgguard/internal/hostpm"
	"github.com/pkgguard/pkgguard/internal/log"
	"github.com/pkgguard/pkgguard/internal/patterns"
	"github.com/pkgguard/pkgguard/internal/recipesource"
	"github.com/pkgguard/pkgguard/internal/report"
	"github.com/pkgguard/pkgguard/schema"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func main() {
	ctx := context.Background()

	names, err := readNames(os.Stdin)
	if err != nil {
		log.FatalError("reading package names from stdin", err)
	}
	if len(names) == 0 {
		os.Exit(0)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.FatalError("loading configuration", err)
	}

	filtered := filterOfficial(ctx, names)
	if len(filtered) == 0 {
		os.Exit(0)
	}

	store, err := patterns.Load()
	if err != nil {
		log.FatalError("loading pattern database", err)
	}
	registry := core.NewRegistry(store)
	cacheRoot := viper.GetString("cache_root")
	if cacheRoot == "" {
		cacheRoot = defaultCacheRoot()
	}
	source := recipesource.NewSource(cacheRoot)
	coordinator := core.NewCoordinator(source, registry, cfg.ScoreFilter(), cfg.Whitelist)

	concurrency := len(filtered)
	if concurrency > 8 {
		concurrency = 8
	}
	batch := core.NewBatch(coordinator, concurrency, 30*time.Second)
	results := batch.ScanMany(ctx, filtered, nil)

	useColor := cfg.UseColor && report.UseColor(os.Stderr)
	report.PrintBatchSummary(os.Stderr, results, useColor)

	os.Exit(decide(results, useColor))
}

func readNames(f *os.File) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			names = append(names, line)
		}
	}
	return names, scanner.Err()
}

func loadConfig() (*config.Config, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	viper.SetConfigFile(path)
	viper.SetDefault("concurrency", config.DefaultConcurrency)
	viper.SetDefault("per_package_timeout", config.DefaultPerPackageTimeout)
	viper.SetDefault("color", "")
	viper.SetDefault("whitelist", []string{})
	viper.SetDefault("ignore_signals", []string{})
	viper.SetDefault("ignore_categories", []string{})
	viper.SetDefault("cache_root", defaultCacheRoot())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	input := &config.ConfigRawInput{}
	if err := viper.Unmarshal(input); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return config.ProcessAndValidate(input)
}

func defaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pkgguard-cache"
	}
	return home + "/.cache/pkgguard/recipes"
}

func filterOfficial(ctx context.Context, names []string) []string {
	pm := hostpm.Pacman{}
	official, err := pm.OfficialPackages(ctx)
	if err != nil {
		log.Warning(fmt.Sprintf("listing official packages: %v (treating as nothing filtered)", err))
		return names
	}
	var remaining []string
	for _, name := range names {
		if _, isOfficial := official[name]; !isOfficial {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

// decide applies the fail-closed decision policy from the pre-transaction
// hook contract and returns the process exit code.
func decide(results []schema.ScanResult, useColor bool) int {
	var failed []schema.ScanResult
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		for _, r := range failed {
			report.PrintResult(os.Stderr, r, useColor)
		}
		return 1
	}

	worst, _ := report.WorstTier(results)
	switch worst {
	case schema.TierTrusted, schema.TierOK:
		log.Notice("pkgguard: all packages passed trust checks")
		return 0
	case schema.TierSuspicious, schema.TierMalicious:
		printOffending(results, worst, useColor)
		log.Notice("pkgguard: blocked. Add the package to your whitelist deliberately if this is expected.")
		return 1
	default: // SKETCHY
		printOffending(results, schema.TierSketchy, useColor)
		return promptContinue()
	}
}

func printOffending(results []schema.ScanResult, minTier schema.Tier, useColor bool) {
	for _, r := range results {
		if r.Error == "" && tierAtLeast(r.Tier, minTier) {
			report.PrintResult(os.Stderr, r, useColor)
		}
	}
}

func tierAtLeast(t, min schema.Tier) bool {
	rank := map[schema.Tier]int{
		schema.TierTrusted: 0, schema.TierOK: 1, schema.TierSketchy: 2,
		schema.TierSuspicious: 3, schema.TierMalicious: 4,
	}
	return rank[t] >= rank[min]
}

// promptContinue solicits the SKETCHY-tier [y/N] confirmation from the
// controlling terminal directly, never from os.Stdin: pacman has already
// piped the transaction's target list there and readNames has drained it
// to EOF, and in real deployment stdin is always a pipe, never a TTY.
func promptContinue() int {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil || !term.IsTerminal(int(tty.Fd())) {
		log.Notice("pkgguard: sketchy signals found, no controlling terminal to confirm; blocking")
		return 1
	}
	defer tty.Close()

	log.Notice("Proceed with installation despite sketchy signals? [y/N] ")
	reader := bufio.NewReader(tty)
	answer, _ := reader.ReadString('\n')
	if answer == "y\n" || answer == "Y\n" || answer == "y" || answer == "Y" {
		return 0
	}
	return 1
}
