package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cryptofeed/schema"
)

var fixedNow = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

// makeFeeds builds n feed entries with unique coin ids.
func makeFeeds(n int) []schema.CryptoFeed {
	feeds := make([]schema.CryptoFeed, 0, n)
	for i := range n {
		feeds = append(feeds, schema.CryptoFeed{
			CoinInfo: schema.CoinInfo{
				ID:       uuid.NewString(),
				Name:     "COIN",
				FullName: "Test Coin",
				ImageURL: "/media/coin.png",
			},
			Raw: schema.Raw{Usd: schema.Usd{Price: float64(i+1) * 100.5, ChangePctDay: float32(i) - 1}},
		})
	}
	return feeds
}
