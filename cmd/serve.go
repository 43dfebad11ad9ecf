package cmd

import (
	"os/signal"
	"syscall"

	"github.com/huangsam/cryptofeed/internal/remote"
	"github.com/huangsam/cryptofeed/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd keeps the cache fresh and serves it over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh the feed on a schedule and serve it over HTTP.",
	Long: `Run a long-lived process that refreshes the cached feed on a cron schedule.

Endpoints:
  GET /healthz      - liveness and store status
  GET /feed         - cached snapshot as JSON (404 when empty)
  GET /feed/stream  - websocket that pushes every new snapshot
  GET /metrics      - Prometheus metrics

Examples:
  # Refresh every 5 minutes (default) and listen on :8080
  cryptofeed serve

  # Refresh every minute with an in-memory cache
  cryptofeed serve --schedule "@every 1m" --cache-backend memory`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(cfg, storeManager, remote.NewClient(cfg)).Run(ctx)
	},
}
