// Package feedstore persists cached crypto feed snapshots across backends.
package feedstore

import (
	"sync"

	"github.com/huangsam/cryptofeed/internal/contract"
)

// FeedStoreManager holds the process-wide FeedStore.
type FeedStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	feed         contract.FeedStore
}

var _ contract.StoreManager = &FeedStoreManager{} // Compile-time check

// GetFeedStore returns the configured FeedStore.
func (mgr *FeedStoreManager) GetFeedStore() contract.FeedStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.feed
}

// NewFeedStoreManager wraps an already built store, for tests and embedded use.
func NewFeedStoreManager(store contract.FeedStore) *FeedStoreManager {
	return &FeedStoreManager{feed: store}
}
