package cmd

import (
	"github.com/huangsam/metricsagg/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [root-path]",
	Short: "Start the metricsagg MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents summarize and extract metrics via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager, version)
	},
}
