// Package cmd wires the pkgguard CLI together: configuration loading,
// the scan/batch/export/version subcommands, and the shared coordinator
// each of them drives.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkgguard/pkgguard/core"
	"github.com/pkgguard/pkgguard/internal/config"
	"github.com/pkgguard/pkgguard/internal/contract"
	"github.com/pkgguard/pkgguard/internal/history"
	"github.com/pkgguard/pkgguard/internal/log"
	"github.com/pkgguard/pkgguard/internal/patterns"
	"github.com/pkgguard/pkgguard/internal/recipesource"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set by goreleaser (or an equivalent release pipeline) at build time via
// linker flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg holds the validated, final configuration, populated by sharedSetup.
var cfg *config.Config

// input holds the raw, unvalidated configuration from file, env, and flags.
// Viper unmarshals into this struct before ProcessAndValidate runs.
var input = &config.ConfigRawInput{}

// coordinator is the shared scan pipeline, built once configuration and the
// pattern store are ready.
var coordinator *core.Coordinator

// historyStore is non-nil only when --history-backend is set.
var historyStore contract.HistoryStore

var rootCmd = &cobra.Command{
	Use:                "pkgguard",
	Short:              "Score community package recipes for pre-install trust signals.",
	Long:               `pkgguard inspects a community-repository package recipe and reports a trust score before you install it.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to config file (defaults to the well-known per-user config path)")
	rootCmd.PersistentFlags().Int("concurrency", config.DefaultConcurrency, "number of packages scanned concurrently")
	rootCmd.PersistentFlags().Duration("per-package-timeout", config.DefaultPerPackageTimeout, "wall-clock deadline per package scan")
	rootCmd.PersistentFlags().String("color", "", "colorize output when writing to a terminal: yes or no (default yes)")
	rootCmd.PersistentFlags().String("cache-root", defaultCacheRoot(), "directory used to clone/pull recipe repositories")
	rootCmd.PersistentFlags().String("history-backend", "", "record scan history: sqlite, mysql, or postgresql (default disabled)")
	rootCmd.PersistentFlags().String("history-connect", "", "history database connection string (file path for sqlite)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	_ = viper.BindPFlag("per_package_timeout", rootCmd.PersistentFlags().Lookup("per-package-timeout"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("cache_root", rootCmd.PersistentFlags().Lookup("cache-root"))
	_ = viper.BindPFlag("history_backend", rootCmd.PersistentFlags().Lookup("history-backend"))
	_ = viper.BindPFlag("history_connect", rootCmd.PersistentFlags().Lookup("history-connect"))

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(scanCmd, batchCmd, versionCmd, exportCmd)
}

func defaultCacheRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pkgguard-cache"
	}
	return filepath.Join(home, ".cache", "pkgguard", "recipes")
}

// initConfig reads the user config file and environment variables.
func initConfig() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else if path, err := config.Path(); err == nil {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("PKGGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("concurrency", config.DefaultConcurrency)
	viper.SetDefault("per_package_timeout", config.DefaultPerPackageTimeout)
	viper.SetDefault("color", "")
	viper.SetDefault("whitelist", []string{})
	viper.SetDefault("ignore_signals", []string{})
	viper.SetDefault("ignore_categories", []string{})
	viper.SetDefault("cache_root", defaultCacheRoot())
	viper.SetDefault("history_backend", "")
	viper.SetDefault("history_connect", "")
}

// sharedSetup unmarshals configuration, validates it, and assembles the
// coordinator every subcommand shares.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}

	validated, err := config.ProcessAndValidate(input)
	if err != nil {
		return err
	}
	cfg = validated

	store, err := patterns.Load()
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfig, err)
	}

	registry := core.NewRegistry(store)
	source := recipesource.NewSource(viper.GetString("cache_root"))
	coordinator = core.NewCoordinator(source, registry, cfg.ScoreFilter(), cfg.Whitelist)

	if backendName := viper.GetString("history_backend"); backendName != "" {
		backend, err := history.ParseBackend(backendName)
		if err != nil {
			return err
		}
		store, err := history.NewStore(backend, viper.GetString("history_connect"))
		if err != nil {
			return fmt.Errorf("initializing scan history store: %w", err)
		}
		historyStore = store
	}

	return nil
}

func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// closeHistory closes the history store, if one was opened, logging (not
// failing) on error since history is best-effort observation.
func closeHistory() {
	if historyStore == nil {
		return
	}
	if err := historyStore.Close(); err != nil {
		log.Warning(fmt.Sprintf("closing scan history store: %v", err))
	}
}

// Execute runs the root command.
func Execute() error {
	defer closeHistory()
	return rootCmd.Execute()
}
