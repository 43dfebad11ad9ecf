// Package core has core logic for refreshing and serving the cached crypto feed.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing different CLI modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// NewRefreshExecutor binds loader so refresh fits the ExecutorFunc shape.
func NewRefreshExecutor(loader contract.FeedLoader) ExecutorFunc {
	return func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		return ExecuteRefresh(ctx, cfg, mgr, loader)
	}
}

// ExecuteRefresh fetches the remote feed, replaces the cached snapshot and prints it.
// It serves as the main entry point for the 'refresh' mode.
func ExecuteRefresh(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, loader contract.FeedLoader) error {
	store := mgr.GetFeedStore()
	if store == nil {
		return errors.New("feed store is not initialized")
	}
	cached, err := RefreshFeed(ctx, loader, NewCryptoFeedCacheUseCase(store), time.Now)
	if err != nil {
		return err
	}
	return outwriter.WriteFeed(cached, cfg)
}

// ExecuteShow prints the cached snapshot without contacting the remote API.
// It serves as the main entry point for the 'show' mode.
func ExecuteShow(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetFeedStore()
	if store == nil {
		return errors.New("feed store is not initialized")
	}
	cached, err := NewCryptoFeedCacheUseCase(store).Load(ctx)
	if errors.Is(err, contract.ErrEmptyCache) {
		return errors.New("no cached feed found, run 'cryptofeed refresh' first")
	}
	if err != nil {
		return err
	}
	return outwriter.WriteFeed(cached, cfg)
}
