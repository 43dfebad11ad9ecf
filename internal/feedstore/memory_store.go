package feedstore

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
)

// MemoryFeedStore keeps the snapshot in process memory.
type MemoryFeedStore struct {
	mu       sync.RWMutex
	snapshot *schema.CachedFeed
}

var _ contract.FeedStore = &MemoryFeedStore{} // Compile-time check

// NewMemoryFeedStore returns an empty in-memory store.
func NewMemoryFeedStore() *MemoryFeedStore {
	return &MemoryFeedStore{}
}

// DeleteCache drops the snapshot.
func (s *MemoryFeedStore) DeleteCache(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	return nil
}

// Insert replaces the snapshot with a copy of feeds.
func (s *MemoryFeedStore) Insert(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]schema.CryptoFeed, len(feeds))
	copy(stored, feeds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = &schema.CachedFeed{Feeds: stored, Timestamp: timestamp}
	return nil
}

// Retrieve returns a copy of the snapshot.
func (s *MemoryFeedStore) Retrieve(ctx context.Context) (schema.CachedFeed, error) {
	if err := ctx.Err(); err != nil {
		return schema.CachedFeed{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return schema.CachedFeed{}, contract.ErrEmptyCache
	}
	feeds := make([]schema.CryptoFeed, len(s.snapshot.Feeds))
	copy(feeds, s.snapshot.Feeds)
	return schema.CachedFeed{Feeds: feeds, Timestamp: s.snapshot.Timestamp}, nil
}

// GetStatus returns status information about the feed store.
func (s *MemoryFeedStore) GetStatus() (schema.StoreStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := schema.StoreStatus{Backend: string(schema.MemoryBackend), Connected: true}
	if s.snapshot != nil {
		status.TotalItems = len(s.snapshot.Feeds)
		status.LastCachedTime = s.snapshot.Timestamp
	}
	return status, nil
}

// Close is a no-op.
func (s *MemoryFeedStore) Close() error { return nil }

// NoneFeedStore discards everything written to it.
type NoneFeedStore struct{}

var _ contract.FeedStore = NoneFeedStore{} // Compile-time check

// DeleteCache implements the FeedStore interface.
func (NoneFeedStore) DeleteCache(context.Context) error { return nil }

// Insert implements the FeedStore interface.
func (NoneFeedStore) Insert(context.Context, []schema.CryptoFeed, time.Time) error { return nil }

// Retrieve always reports an empty cache.
func (NoneFeedStore) Retrieve(context.Context) (schema.CachedFeed, error) {
	return schema.CachedFeed{}, contract.ErrEmptyCache
}

// GetStatus implements the FeedStore interface.
func (NoneFeedStore) GetStatus() (schema.StoreStatus, error) {
	return schema.StoreStatus{Backend: string(schema.NoneBackend)}, nil
}

// Close implements the FeedStore interface.
func (NoneFeedStore) Close() error { return nil }
