package cmd

import (
	"github.com/huangsam/cryptofeed/core"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/remote"
	"github.com/spf13/cobra"
)

// runExecutor runs executeFunc against the global config and store manager.
func runExecutor(action string, executeFunc core.ExecutorFunc) {
	if err := executeFunc(rootCtx, cfg, storeManager); err != nil {
		contract.LogFatal("Cannot "+action, err)
	}
}

// refreshCmd replaces the cached feed with a fresh download.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the latest feed and replace the cached snapshot.",
	Long: `Download the top coins by volume with USD prices and replace the cached snapshot.

The previous snapshot is deleted first. The new one is written only when the
delete succeeds, so a failed refresh never leaves a mix of old and new rows.

Examples:
  # Refresh the default SQLite cache and print a table
  cryptofeed refresh

  # Fetch the top 50 coins and print JSON
  cryptofeed refresh --feed-limit 50 --output json

  # Refresh a Redis cache
  CRYPTOFEED_CACHE_BACKEND=redis CRYPTOFEED_CACHE_DB_CONNECT=redis://localhost:6379/0 cryptofeed refresh`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("refresh feed", core.NewRefreshExecutor(remote.NewClient(cfg)))
	},
}

// showCmd prints the cached feed without going to the network.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached feed without contacting the API.",
	Long: `Print the most recent cached snapshot.

Examples:
  # Show the top 5 cached coins
  cryptofeed show --limit 5

  # Export the cached feed to CSV
  cryptofeed show --output csv --output-file feed.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("show feed", core.ExecuteShow)
	},
}
