package feedstore

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendOperations(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLFeedStore(schema.SQLiteBackend, tempSQLitePath(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	t.Run("empty cache", func(t *testing.T) {
		_, err := store.Retrieve(ctx)
		assert.ErrorIs(t, err, contract.ErrEmptyCache)
		assert.NoError(t, store.DeleteCache(ctx), "deleting an empty cache should succeed")
	})

	feeds := makeFeeds(4)

	t.Run("insert and retrieve", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, feeds, testTimestamp))

		cached, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.Equal(t, testTimestamp, cached.Timestamp)
		require.Len(t, cached.Feeds, len(feeds))
		for i := range feeds {
			assert.Equal(t, feeds[i].CoinInfo, cached.Feeds[i].CoinInfo)
			assert.InDelta(t, feeds[i].Raw.Usd.Price, cached.Feeds[i].Raw.Usd.Price, 1e-9)
			assert.InDelta(t, feeds[i].Raw.Usd.ChangePctDay, cached.Feeds[i].Raw.Usd.ChangePctDay, 1e-6)
		}
	})

	t.Run("insert over existing snapshot fails", func(t *testing.T) {
		err := store.Insert(ctx, makeFeeds(1), testTimestamp)
		assert.Error(t, err)

		// The failed transaction must not leave partial rows behind
		cached, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.Len(t, cached.Feeds, len(feeds))
	})

	t.Run("status", func(t *testing.T) {
		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.True(t, status.Connected)
		assert.Equal(t, len(feeds), status.TotalItems)
		assert.Equal(t, testTimestamp, status.LastCachedTime)
		assert.Greater(t, status.TableSizeBytes, int64(0))
	})

	t.Run("delete then retrieve", func(t *testing.T) {
		require.NoError(t, store.DeleteCache(ctx))
		_, err := store.Retrieve(ctx)
		assert.ErrorIs(t, err, contract.ErrEmptyCache)

		status, err := store.GetStatus()
		require.NoError(t, err)
		assert.Zero(t, status.TotalItems)
		assert.True(t, status.LastCachedTime.IsZero())
	})

	t.Run("empty snapshot", func(t *testing.T) {
		require.NoError(t, store.Insert(ctx, nil, testTimestamp))
		cached, err := store.Retrieve(ctx)
		require.NoError(t, err)
		assert.Empty(t, cached.Feeds)
		assert.Equal(t, testTimestamp, cached.Timestamp)
	})
}

func TestSQLiteCancelledContext(t *testing.T) {
	store, err := NewSQLFeedStore(schema.SQLiteBackend, tempSQLitePath(t))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.DeleteCache(ctx))
	assert.Error(t, store.Insert(ctx, makeFeeds(1), testTimestamp))
}

func newMockSQLStore(t *testing.T, backend schema.DatabaseBackend, driver string) (*SQLFeedStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := newSQLFeedStoreWithDB(sqlx.NewDb(db, driver), backend, "", snapshotTable, itemsTable)
	require.NoError(t, err)
	return store, mock
}

func TestSQLDeleteCache_MySQL(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.MySQLBackend, "mysql")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `crypto_feed_items`")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `crypto_feed_cache`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteCache(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLDeleteCache_RollbackOnError(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.PostgreSQLBackend, "pgx")
	lockErr := errors.New("lock timeout")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "crypto_feed_items"`)).WillReturnError(lockErr)
	mock.ExpectRollback()

	err := store.DeleteCache(context.Background())
	assert.ErrorIs(t, err, lockErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLInsert_PostgresPlaceholders(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.PostgreSQLBackend, "pgx")
	feeds := makeFeeds(2)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "crypto_feed_cache" (id, cache_timestamp, item_count) VALUES ($1, $2, $3)`)).
		WithArgs(snapshotID, testTimestamp.UnixMilli(), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for i, feed := range feeds {
		r := schema.NewFeedItemRecord(i, feed)
		mock.ExpectExec(`(?s)`+regexp.QuoteMeta(`INSERT INTO "crypto_feed_items"`)+`.*VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\)`).
			WithArgs(r.Position, r.CoinID, r.Name, r.FullName, r.ImageURL, r.Price, r.ChangePctDay).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, store.Insert(context.Background(), feeds, testTimestamp))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLInsert_MySQLItemFailureRollsBack(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.MySQLBackend, "mysql")
	feeds := makeFeeds(2)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `crypto_feed_cache` (id, cache_timestamp, item_count) VALUES (?, ?, ?)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `crypto_feed_items`")).
		WillReturnError(errors.New("duplicate entry"))
	mock.ExpectRollback()

	err := store.Insert(context.Background(), feeds, testTimestamp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), feeds[0].CoinInfo.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRetrieve_MySQL(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.MySQLBackend, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT cache_timestamp FROM `crypto_feed_cache` WHERE id = ?")).
		WithArgs(snapshotID).
		WillReturnRows(sqlmock.NewRows([]string{"cache_timestamp"}).AddRow(testTimestamp.UnixMilli()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT position, coin_id, name, full_name, image_url, price, change_pct_day FROM `crypto_feed_items` ORDER BY position")).
		WillReturnRows(sqlmock.NewRows([]string{"position", "coin_id", "name", "full_name", "image_url", "price", "change_pct_day"}).
			AddRow(0, "1182", "BTC", "Bitcoin", "/btc.png", 64000.5, 1.5).
			AddRow(1, "7605", "ETH", "Ethereum", "/eth.png", 3100.25, -2.0))

	cached, err := store.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testTimestamp, cached.Timestamp)
	require.Len(t, cached.Feeds, 2)
	assert.Equal(t, "BTC", cached.Feeds[0].CoinInfo.Name)
	assert.Equal(t, float32(-2.0), cached.Feeds[1].Raw.Usd.ChangePctDay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRetrieve_EmptyCache(t *testing.T) {
	store, mock := newMockSQLStore(t, schema.PostgreSQLBackend, "pgx")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT cache_timestamp FROM "crypto_feed_cache" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"cache_timestamp"}))

	_, err := store.Retrieve(context.Background())
	assert.ErrorIs(t, err, contract.ErrEmptyCache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCreateTableQueries(t *testing.T) {
	tests := []struct {
		backend  schema.DatabaseBackend
		contains []string
	}{
		{schema.SQLiteBackend, []string{`"crypto_feed_cache"`, "price REAL"}},
		{schema.MySQLBackend, []string{"`crypto_feed_items`", "price DOUBLE NOT NULL", "VARCHAR(255)"}},
		{schema.PostgreSQLBackend, []string{`"crypto_feed_items"`, "DOUBLE PRECISION"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			queries := getCreateTableQueries(snapshotTable, itemsTable, tt.backend)
			require.Len(t, queries, 2)
			joined := queries[0] + queries[1]
			for _, want := range tt.contains {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestNewSQLFeedStoreErrors(t *testing.T) {
	_, err := NewSQLFeedStore(schema.RedisBackend, "")
	assert.Error(t, err, "redis is not a SQL backend")

	_, err = newSQLFeedStoreWithDB(nil, schema.SQLiteBackend, "", "bad-name", itemsTable)
	assert.Error(t, err)
}

func TestSQLCloseNil(t *testing.T) {
	store := &SQLFeedStore{}
	assert.NoError(t, store.Close())
}
