package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
)

// CryptoFeedCacheUseCase writes feed snapshots through a FeedStore.
// A snapshot is only inserted once the previous one has been deleted.
type CryptoFeedCacheUseCase struct {
	store contract.FeedStore
}

var _ contract.FeedCache = &CryptoFeedCacheUseCase{} // Compile-time check

// NewCryptoFeedCacheUseCase returns a use case bound to store. No store calls are made here.
func NewCryptoFeedCacheUseCase(store contract.FeedStore) *CryptoFeedCacheUseCase {
	return &CryptoFeedCacheUseCase{store: store}
}

// Save replaces the cached snapshot with feeds tagged by timestamp.
// The delete error is returned wrapped and Insert is skipped. The insert error is
// returned as is.
func (uc *CryptoFeedCacheUseCase) Save(ctx context.Context, feeds []schema.CryptoFeed, timestamp time.Time) error {
	if err := uc.store.DeleteCache(ctx); err != nil {
		return fmt.Errorf("delete cached feed: %w", err)
	}
	return uc.store.Insert(ctx, feeds, timestamp)
}

// Load returns the cached snapshot or contract.ErrEmptyCache.
func (uc *CryptoFeedCacheUseCase) Load(ctx context.Context) (schema.CachedFeed, error) {
	return uc.store.Retrieve(ctx)
}
