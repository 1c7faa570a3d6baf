package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkgguard/pkgguard/core"
	"github.com/pkgguard/pkgguard/internal/report"
	"github.com/pkgguard/pkgguard/schema"
	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch <package>...",
	Short: "Scan several package recipes concurrently and print a summary.",
	Long: `Scan several package recipes concurrently and print a summary table.

Package names are taken from the command line arguments, or read one per
line from standard input when no arguments are given.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		names := args
		if len(names) == 0 {
			var err error
			names, err = readLines(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading package names from stdin: %w", err)
			}
		}
		if len(names) == 0 {
			return fmt.Errorf("no package names given")
		}

		batch := core.NewBatch(coordinator, cfg.Concurrency, cfg.PerPackageTimeout)
		results := batch.ScanMany(rootCtx, names, nil)

		if historyStore != nil {
			for _, result := range results {
				if err := historyStore.Record(rootCtx, result); err != nil {
					fmt.Fprintln(os.Stderr, "⚠️ ", "recording scan history:", err)
				}
			}
		}

		useColor := cfg.UseColor && report.UseColor(os.Stdout)
		report.PrintBatchSummary(os.Stdout, results, useColor)

		worst, anyError := report.WorstTier(results)
		if anyError || (worst != schema.TierTrusted && worst != schema.TierOK) {
			return fmt.Errorf("one or more packages were not trusted")
		}
		return nil
	},
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
