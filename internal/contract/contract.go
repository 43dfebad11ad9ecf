// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/cryptofeed/schema"
)

// ErrEmptyCache is returned by Retrieve when no feed snapshot is cached.
var ErrEmptyCache = errors.New("feed cache is empty")

// FeedStore defines the interface for cached feed storage.
// This allows the store to be mocked for testing.
type FeedStore interface {
	// DeleteCache removes the cached snapshot. Deleting an empty cache succeeds.
	DeleteCache(ctx context.Context) error

	// Insert stores a new snapshot of feeds tagged with timestamp.
	Insert(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error

	// Retrieve returns the cached snapshot or ErrEmptyCache.
	Retrieve(ctx context.Context) (schema.CachedFeed, error)

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager defines the interface for managing feed stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetFeedStore() FeedStore
}

// FeedLoader fetches a fresh feed from an upstream source.
type FeedLoader interface {
	Load(ctx context.Context) ([]schema.CryptoFeed, error)
}

// FeedCache saves and loads feed snapshots on top of a FeedStore.
type FeedCache interface {
	Save(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error
	Load(ctx context.Context) (schema.CachedFeed, error)
}
