// Package schema has configs, models and constants for all parts of cryptofeed.
package schema

import "time"

// CryptoFeed represents a single priced asset in the feed.
// It pairs the coin's display metadata with its latest USD quote.
type CryptoFeed struct {
	CoinInfo CoinInfo `json:"coin_info" yaml:"coin_info"`
	Raw      Raw      `json:"raw" yaml:"raw"`
}

// CoinInfo holds the identifying and display fields for a coin.
type CoinInfo struct {
	ID       string `json:"id" yaml:"id"`               // Unique identifier from the upstream API
	Name     string `json:"name" yaml:"name"`           // Ticker symbol, e.g. BTC
	FullName string `json:"full_name" yaml:"full_name"` // Display name, e.g. Bitcoin
	ImageURL string `json:"image_url" yaml:"image_url"` // Relative or absolute image path
}

// Raw wraps the raw quote values keyed by currency.
type Raw struct {
	Usd Usd `json:"usd" yaml:"usd"`
}

// Usd is a quote in US dollars.
type Usd struct {
	Price        float64 `json:"price" yaml:"price"`
	ChangePctDay float32 `json:"change_pct_day" yaml:"change_pct_day"` // Percent change since 00:00 UTC
}

// CachedFeed is a feed snapshot together with the time it was cached.
type CachedFeed struct {
	Feeds     []CryptoFeed `json:"feeds" yaml:"feeds"`
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
}

// Len returns the number of feed items in the snapshot.
func (c CachedFeed) Len() int {
	return len(c.Feeds)
}
