package schema

// FeedItemRecord represents a row from the crypto_feed_items table.
type FeedItemRecord struct {
	Position     int     `db:"position"`
	CoinID       string  `db:"coin_id"`
	Name         string  `db:"name"`
	FullName     string  `db:"full_name"`
	ImageURL     string  `db:"image_url"`
	Price        float64 `db:"price"`
	ChangePctDay float64 `db:"change_pct_day"`
}

// ToFeed converts the record back into a feed item.
func (r FeedItemRecord) ToFeed() CryptoFeed {
	return CryptoFeed{
		CoinInfo: CoinInfo{
			ID:       r.CoinID,
			Name:     r.Name,
			FullName: r.FullName,
			ImageURL: r.ImageURL,
		},
		Raw: Raw{Usd: Usd{
			Price:        r.Price,
			ChangePctDay: float32(r.ChangePctDay),
		}},
	}
}

// NewFeedItemRecord converts a feed item into a record at the given position.
func NewFeedItemRecord(position int, feed CryptoFeed) FeedItemRecord {
	return FeedItemRecord{
		Position:     position,
		CoinID:       feed.CoinInfo.ID,
		Name:         feed.CoinInfo.Name,
		FullName:     feed.CoinInfo.FullName,
		ImageURL:     feed.CoinInfo.ImageURL,
		Price:        feed.Raw.Usd.Price,
		ChangePctDay: float64(feed.Raw.Usd.ChangePctDay),
	}
}
