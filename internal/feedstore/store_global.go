package feedstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/jmoiron/sqlx"
)

// Global Manager instance for main logic.
var (
	Manager   = &FeedStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for feed storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// NewFeedStore builds the FeedStore for backend, wrapped with metrics.
func NewFeedStore(backend schema.DatabaseBackend, connStr string) (contract.FeedStore, error) {
	var store contract.FeedStore
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		sqlStore, err := NewSQLFeedStore(backend, connStr)
		if err != nil {
			return nil, err
		}
		store = sqlStore

	case schema.RedisBackend:
		redisStore, err := NewRedisFeedStore(context.Background(), connStr)
		if err != nil {
			return nil, err
		}
		store = redisStore

	case schema.MemoryBackend:
		store = NewMemoryFeedStore()

	case schema.NoneBackend:
		store = NoneFeedStore{}

	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, redis, memory, or none", backend)
	}
	return NewInstrumentedFeedStore(store, backend), nil
}

// InitStores initializes the global store manager.
// Only the first call has any effect, even with concurrent calls.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		store, err := NewFeedStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize feed store: %w", err)
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.feed = store
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.feed != nil {
			_ = Manager.feed.Close()
		}
	})
}

// ClearStore removes all cached feed data for the specified backend.
// For SQLite, it deletes the database file.
// For MySQL and PostgreSQL, it drops the feed tables.
// For Redis, it deletes the snapshot key.
// For memory and none, it does nothing.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, itemsTable, snapshotTable)

	case schema.RedisBackend:
		return clearRedisKey(connStr)

	case schema.MemoryBackend, schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driver, err := driverName(backend)
	if err != nil {
		return err
	}
	db, err := sqlx.Open(driver, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driver, err)
	}
	return dropTables(db, backend, tables...)
}

// dropTables drops each table if it exists.
func dropTables(db *sqlx.DB, backend schema.DatabaseBackend, tables ...string) error {
	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
