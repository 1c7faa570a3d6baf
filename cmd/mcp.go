package cmd

import (
	"github.com/pkgguard/pkgguard/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Short:   "Start the pkgguard MCP server.",
	Long:    `Launch an MCP server exposing scan_package and scan_batch tools over stdio.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcpserver.Serve(rootCtx, coordinator)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
