// Package parquet exports cached crypto feed snapshots to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/cryptofeed/schema"
	"github.com/parquet-go/parquet-go"
)

// FeedItem is one coin quote of a cached snapshot.
// Each row repeats the snapshot time so exports can be concatenated.
type FeedItem struct {
	// Position is the rank of the coin within the snapshot
	Position int32 `parquet:"position,snappy"`

	// CoinID is the upstream coin identifier
	CoinID string `parquet:"coin_id,snappy"`

	// Name is the ticker symbol
	Name string `parquet:"name,snappy"`

	// FullName is the display name of the coin
	FullName string `parquet:"full_name,snappy"`

	// ImageURL is the relative logo path (nullable)
	ImageURL *string `parquet:"image_url,optional,snappy"`

	// PriceUSD is the last traded price in USD
	PriceUSD float64 `parquet:"price_usd,snappy"`

	// ChangePctDay is the percent change since 00:00 UTC
	ChangePctDay float32 `parquet:"change_pct_day,snappy"`

	// CachedAt is when the snapshot was taken (stored as TIMESTAMP with millisecond precision)
	CachedAt time.Time `parquet:"cached_at,timestamp(millisecond),snappy"`
}

// ConvertCachedFeed flattens a snapshot into Parquet rows.
func ConvertCachedFeed(cached schema.CachedFeed) []FeedItem {
	items := make([]FeedItem, 0, len(cached.Feeds))
	for i, feed := range cached.Feeds {
		var image *string
		if feed.CoinInfo.ImageURL != "" {
			url := feed.CoinInfo.ImageURL
			image = &url
		}
		items = append(items, FeedItem{
			Position:     int32(i),
			CoinID:       feed.CoinInfo.ID,
			Name:         feed.CoinInfo.Name,
			FullName:     feed.CoinInfo.FullName,
			ImageURL:     image,
			PriceUSD:     feed.Raw.Usd.Price,
			ChangePctDay: feed.Raw.Usd.ChangePctDay,
			CachedAt:     cached.Timestamp.UTC(),
		})
	}
	return items
}

// WriteFeedItemsParquet writes a slice of FeedItem structs to a Parquet file.
func WriteFeedItemsParquet(data []FeedItem, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the FeedItem struct tags
	writer := parquet.NewGenericWriter[FeedItem](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	// Close flushes the row group and writes the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
