package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/feedstore"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// loadStoreConfig reads only the store settings needed by cache commands.
func loadStoreConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need store access without full shared setup.
func cacheSetup() error {
	if err := loadStoreConfig(); err != nil {
		return err
	}
	if err := feedstore.InitStores(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("failed to initialize feed store: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheConfigWrapper loads store settings without opening the store.
func cacheConfigWrapper(_ *cobra.Command, _ []string) error {
	return loadStoreConfig()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization instead of the full
// sharedSetup used by feed commands. This skips API and output validation.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cached feed snapshot",
	Long: `Manage the cached crypto feed snapshot.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, memory, or none

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  migrate - Apply or roll back SQL schema migrations
  export  - Write the cached snapshot to Parquet

Examples:
  # Check cache status
  cryptofeed cache status

  # Clear cache
  cryptofeed cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached feed data",
	Long: `Delete all cached feed data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the feed tables
For Redis: Deletes the snapshot key

Examples:
  # Clear SQLite cache (default)
  cryptofeed cache clear

  # Clear MySQL cache (set connection string via env variable)
  CRYPTOFEED_CACHE_BACKEND=mysql CRYPTOFEED_CACHE_DB_CONNECT="..." cryptofeed cache clear`,
	PreRunE: cacheConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		dbFilePath := feedstore.GetDBFilePath()
		if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect != "" {
			dbFilePath = cfg.CacheDBConnect
		}
		if err := feedstore.ClearStore(cfg.CacheBackend, dbFilePath, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the cached feed.

Displays:
- Backend type and connection status
- Number of cached coins
- When the snapshot was cached
- Storage size estimate

Examples:
  # Check cache status
  cryptofeed cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetFeedStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("feed store is not initialized"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		feedstore.PrintStoreStatus(os.Stdout, status)
	},
}

// cacheMigrateCmd runs database migrations for the SQL feed store.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for SQL cache backends.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  cryptofeed cache migrate

  # Migrate to specific version
  cryptofeed cache migrate --target-version 2

  # Roll back everything
  cryptofeed cache migrate --target-version 0`,
	PreRunE: cacheConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := feedstore.MigrateStore(os.Stdout, cfg.CacheBackend, cfg.CacheDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// cacheExportCmd exports the cached snapshot to Parquet.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the cached snapshot to Parquet",
	Long: `Export the cached feed snapshot to a Parquet file for analytics tools.

Requires: --output-file parameter

Examples:
  # Export the snapshot
  cryptofeed cache export --output-file feed.parquet

  # Query with DuckDB
  duckdb -c "SELECT coin_id, price_usd FROM read_parquet('feed.parquet')"`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		outputFile := viper.GetString("output-file")
		if err := feedstore.ExecuteFeedExport(rootCtx, os.Stdout, storeManager, outputFile); err != nil {
			contract.LogFatal("Failed to export cache", err)
		}
	},
}
