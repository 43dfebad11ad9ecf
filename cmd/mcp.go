package cmd

import (
	"github.com/huangsam/cryptofeed/internal/mcp"
	"github.com/huangsam/cryptofeed/internal/remote"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the cryptofeed MCP server",
	Long:  `Launch an MCP server that lets AI agents read and refresh the cached crypto feed via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Logs go to stderr so stdio stays clean for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager, remote.NewClient(cfg))
	},
}
