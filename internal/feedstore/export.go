package feedstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/internal/parquet"
)

// ExecuteFeedExport writes the cached snapshot held by mgr to a Parquet file.
func ExecuteFeedExport(ctx context.Context, w io.Writer, mgr contract.StoreManager, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetFeedStore()
	if store == nil {
		return errors.New("feed store is not initialized")
	}

	cached, err := store.Retrieve(ctx)
	if errors.Is(err, contract.ErrEmptyCache) {
		return errors.New("no cached feed found to export")
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve cached feed: %w", err)
	}

	items := parquet.ConvertCachedFeed(cached)
	if err := parquet.WriteFeedItemsParquet(items, outputFile); err != nil {
		return fmt.Errorf("failed to write feed items: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Exported %d feed items cached at %s to: %s\n",
		len(items), cached.Timestamp.Format(contract.DateTimeFormat), outputFile)
	return nil
}
