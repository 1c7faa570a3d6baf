package cmd

import (
	"fmt"

	"github.com/pkgguard/pkgguard/internal/history"
	"github.com/pkgguard/pkgguard/internal/parquet"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export recorded scan history to a Parquet file.",
	Long:    `Export the scan-history store (see --history-backend) to a Parquet file for offline analysis.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if historyStore == nil {
			return fmt.Errorf("scan history is disabled; pass --history-backend to enable it before exporting")
		}
		store, ok := historyStore.(*history.Store)
		if !ok {
			return fmt.Errorf("history store does not support bulk export")
		}

		results, err := store.All(rootCtx, 0)
		if err != nil {
			return fmt.Errorf("reading scan history: %w", err)
		}

		records := parquet.FromScanResults(results)
		if err := parquet.WriteScanRecords(records, exportOutput); err != nil {
			return err
		}

		fmt.Printf("exported %d scan record(s) to %s\n", len(records), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "pkgguard-history.parquet", "output Parquet file path")
}
