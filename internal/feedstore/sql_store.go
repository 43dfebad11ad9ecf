package feedstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

// Table names for the SQL backends.
const (
	snapshotTable = "crypto_feed_cache"
	itemsTable    = "crypto_feed_items"
)

// snapshotID is the primary key of the single cached snapshot row.
const snapshotID = 1

func init() {
	// modernc registers as "sqlite", which sqlx does not know about by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLFeedStore stores the feed snapshot in SQLite, MySQL or PostgreSQL.
type SQLFeedStore struct {
	db            *sqlx.DB
	backend       schema.DatabaseBackend
	connStr       string
	snapshotTable string
	itemsTable    string
}

var _ contract.FeedStore = &SQLFeedStore{} // Compile-time check

// NewSQLFeedStore opens the database, verifies the connection and creates the tables.
func NewSQLFeedStore(backend schema.DatabaseBackend, connStr string) (*SQLFeedStore, error) {
	driver, err := driverName(backend)
	if err != nil {
		return nil, err
	}
	dsn := resolveDSN(backend, connStr)

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		switch backend {
		case schema.SQLiteBackend:
			return nil, fmt.Errorf("failed to initialize SQLite store at %q: %w. Ensure the directory is writable", dsn, err)
		case schema.MySQLBackend:
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		default:
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
	}
	if backend == schema.SQLiteBackend {
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	store, err := newSQLFeedStoreWithDB(db, backend, connStr, snapshotTable, itemsTable)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.createTables(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// newSQLFeedStoreWithDB wraps an open connection without touching the schema.
func newSQLFeedStoreWithDB(db *sqlx.DB, backend schema.DatabaseBackend, connStr, snapshot, items string) (*SQLFeedStore, error) {
	for _, name := range []string{snapshot, items} {
		if err := validateTableName(name); err != nil {
			return nil, err
		}
	}
	return &SQLFeedStore{
		db:            db,
		backend:       backend,
		connStr:       connStr,
		snapshotTable: snapshot,
		itemsTable:    items,
	}, nil
}

// createTables runs the CREATE TABLE statements for the backend.
func (s *SQLFeedStore) createTables() error {
	for _, query := range getCreateTableQueries(s.snapshotTable, s.itemsTable, s.backend) {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create feed tables: %w", err)
		}
	}
	return nil
}

// getCreateTableQueries returns the CREATE TABLE queries for the given backend.
func getCreateTableQueries(snapshot, items string, backend schema.DatabaseBackend) []string {
	qs := quoteTableName(snapshot, backend)
	qi := quoteTableName(items, backend)
	switch backend {
	case schema.MySQLBackend:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INT PRIMARY KEY,
				cache_timestamp BIGINT NOT NULL,
				item_count INT NOT NULL
			);`, qs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position INT PRIMARY KEY,
				coin_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				full_name VARCHAR(255) NOT NULL,
				image_url VARCHAR(1024) NOT NULL,
				price DOUBLE NOT NULL,
				change_pct_day DOUBLE NOT NULL
			);`, qi),
		}

	case schema.PostgreSQLBackend:
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				cache_timestamp BIGINT NOT NULL,
				item_count INTEGER NOT NULL
			);`, qs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position INTEGER PRIMARY KEY,
				coin_id TEXT NOT NULL,
				name TEXT NOT NULL,
				full_name TEXT NOT NULL,
				image_url TEXT NOT NULL,
				price DOUBLE PRECISION NOT NULL,
				change_pct_day DOUBLE PRECISION NOT NULL
			);`, qi),
		}

	default: // SQLite
		return []string{
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY,
				cache_timestamp INTEGER NOT NULL,
				item_count INTEGER NOT NULL
			);`, qs),
			fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				position INTEGER PRIMARY KEY,
				coin_id TEXT NOT NULL,
				name TEXT NOT NULL,
				full_name TEXT NOT NULL,
				image_url TEXT NOT NULL,
				price REAL NOT NULL,
				change_pct_day REAL NOT NULL
			);`, qi),
		}
	}
}

// DeleteCache removes the snapshot row and all items in one transaction.
func (s *SQLFeedStore) DeleteCache(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quoteTableName(s.itemsTable, s.backend))); err != nil {
			return fmt.Errorf("failed to delete feed items: %w", err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quoteTableName(s.snapshotTable, s.backend))); err != nil {
			return fmt.Errorf("failed to delete feed snapshot: %w", err)
		}
		return nil
	})
}

// Insert writes the snapshot row and every item in one transaction.
func (s *SQLFeedStore) Insert(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		snapshotQuery := tx.Rebind(fmt.Sprintf(
			"INSERT INTO %s (id, cache_timestamp, item_count) VALUES (?, ?, ?)",
			quoteTableName(s.snapshotTable, s.backend)))
		if _, err := tx.ExecContext(ctx, snapshotQuery, snapshotID, timestamp.UnixMilli(), len(feeds)); err != nil {
			return fmt.Errorf("failed to insert feed snapshot: %w", err)
		}

		itemQuery := fmt.Sprintf(
			`INSERT INTO %s (position, coin_id, name, full_name, image_url, price, change_pct_day)
			VALUES (:position, :coin_id, :name, :full_name, :image_url, :price, :change_pct_day)`,
			quoteTableName(s.itemsTable, s.backend))
		for i, feed := range feeds {
			if _, err := tx.NamedExecContext(ctx, itemQuery, schema.NewFeedItemRecord(i, feed)); err != nil {
				return fmt.Errorf("failed to insert feed item %s: %w", feed.CoinInfo.ID, err)
			}
		}
		return nil
	})
}

// Retrieve returns the cached snapshot in its original order.
func (s *SQLFeedStore) Retrieve(ctx context.Context) (schema.CachedFeed, error) {
	var ts int64
	snapshotQuery := s.db.Rebind(fmt.Sprintf(
		"SELECT cache_timestamp FROM %s WHERE id = ?",
		quoteTableName(s.snapshotTable, s.backend)))
	if err := s.db.QueryRowxContext(ctx, snapshotQuery, snapshotID).Scan(&ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.CachedFeed{}, contract.ErrEmptyCache
		}
		return schema.CachedFeed{}, fmt.Errorf("failed to read feed snapshot: %w", err)
	}

	var records []schema.FeedItemRecord
	itemsQuery := fmt.Sprintf(
		"SELECT position, coin_id, name, full_name, image_url, price, change_pct_day FROM %s ORDER BY position",
		quoteTableName(s.itemsTable, s.backend))
	if err := s.db.SelectContext(ctx, &records, itemsQuery); err != nil {
		return schema.CachedFeed{}, fmt.Errorf("failed to read feed items: %w", err)
	}

	feeds := make([]schema.CryptoFeed, 0, len(records))
	for _, r := range records {
		feeds = append(feeds, r.ToFeed())
	}
	return schema.CachedFeed{Feeds: feeds, Timestamp: time.UnixMilli(ts).UTC()}, nil
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *SQLFeedStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (s *SQLFeedStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the feed store.
func (s *SQLFeedStore) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(s.itemsTable, s.backend))
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalItems); err != nil {
		return status, fmt.Errorf("failed to get total items: %w", err)
	}

	var lastTs sql.NullInt64
	lastQuery := fmt.Sprintf("SELECT MAX(cache_timestamp) FROM %s", quoteTableName(s.snapshotTable, s.backend))
	if err := s.db.QueryRow(lastQuery).Scan(&lastTs); err != nil {
		return status, fmt.Errorf("failed to get last cached time: %w", err)
	}
	if lastTs.Valid {
		status.LastCachedTime = time.UnixMilli(lastTs.Int64).UTC()
	}

	status.TableSizeBytes = s.estimateSize(status.TotalItems)
	return status, nil
}

// estimateSize reports the storage footprint, falling back to a rough per-row estimate.
func (s *SQLFeedStore) estimateSize(totalItems int) int64 {
	fallback := int64(totalItems) * 256
	var size int64

	switch s.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := s.db.QueryRow(sizeQuery).Scan(&size); err != nil {
			return 0
		}
		return size

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		sizeQuery := `SELECT COALESCE(SUM(data_length + index_length), 0) FROM information_schema.tables
			WHERE table_schema = ? AND table_name IN (?, ?)`
		if err := s.db.QueryRow(sizeQuery, cfg.DBName, s.snapshotTable, s.itemsTable).Scan(&size); err != nil {
			return fallback
		}
		return size

	case schema.PostgreSQLBackend:
		sizeQuery := "SELECT pg_total_relation_size($1) + pg_total_relation_size($2)"
		if err := s.db.QueryRow(sizeQuery, s.snapshotTable, s.itemsTable).Scan(&size); err != nil {
			return fallback
		}
		return size

	default:
		return fallback
	}
}
