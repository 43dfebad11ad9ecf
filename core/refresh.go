package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/sirupsen/logrus"
)

// RefreshFeed pulls a fresh feed from loader and saves it through cache.
// A loader failure leaves the cache untouched.
func RefreshFeed(ctx context.Context, loader contract.FeedLoader, cache contract.FeedCache, now func() time.Time) (schema.CachedFeed, error) {
	feeds, err := loader.Load(ctx)
	if err != nil {
		return schema.CachedFeed{}, fmt.Errorf("load remote feed: %w", err)
	}

	timestamp := now()
	if err := cache.Save(ctx, feeds, timestamp); err != nil {
		return schema.CachedFeed{}, err
	}

	contract.Logger.WithFields(logrus.Fields{
		"items":     len(feeds),
		"timestamp": timestamp.Format(contract.DateTimeFormat),
	}).Debug("feed cache refreshed")

	return schema.CachedFeed{Feeds: feeds, Timestamp: timestamp}, nil
}
