package cmd

import (
	"fmt"
	"os"

	"github.com/pkgguard/pkgguard/internal/report"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:     "scan <package>",
	Short:   "Scan one package recipe and print its trust score.",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		result := coordinator.ScanWithTimeout(rootCtx, args[0], cfg.PerPackageTimeout)

		if historyStore != nil {
			if err := historyStore.Record(rootCtx, result); err != nil {
				fmt.Fprintln(os.Stderr, "⚠️ ", "recording scan history:", err)
			}
		}

		useColor := cfg.UseColor && report.UseColor(os.Stdout)
		report.PrintResult(os.Stdout, result, useColor)

		if result.Error != "" {
			return fmt.Errorf("scan failed: %s", result.Error)
		}
		return nil
	},
}
