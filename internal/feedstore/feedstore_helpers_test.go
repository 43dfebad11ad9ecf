package feedstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cryptofeed/schema"
)

var testTimestamp = time.Date(2024, 6, 1, 9, 30, 15, 250_000_000, time.UTC)

// makeFeeds builds n feed entries with unique coin ids.
func makeFeeds(n int) []schema.CryptoFeed {
	feeds := make([]schema.CryptoFeed, 0, n)
	for i := range n {
		feeds = append(feeds, schema.CryptoFeed{
			CoinInfo: schema.CoinInfo{
				ID:       uuid.NewString(),
				Name:     "C" + string(rune('A'+i)),
				FullName: "Coin " + string(rune('A'+i)),
				ImageURL: "/media/c.png",
			},
			Raw: schema.Raw{Usd: schema.Usd{Price: 10.5 * float64(i+1), ChangePctDay: 0.5 * float32(i)}},
		})
	}
	return feeds
}

// tempSQLitePath returns a database path inside the test's temp dir.
func tempSQLitePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "feed_cache.db")
}
