package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// feedRow is one ranked coin as presented to users.
type feedRow struct {
	Rank         int     `json:"rank" yaml:"rank"`
	ID           string  `json:"id" yaml:"id"`
	Symbol       string  `json:"symbol" yaml:"symbol"`
	Name         string  `json:"name" yaml:"name"`
	ImageURL     string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	PriceUSD     float64 `json:"price_usd" yaml:"price_usd"`
	ChangePctDay float32 `json:"change_pct_day" yaml:"change_pct_day"`
	Trend        string  `json:"trend" yaml:"trend"`
}

// feedDocument is the JSON and YAML envelope.
type feedDocument struct {
	CachedAt   string    `json:"cached_at" yaml:"cached_at"`
	TotalItems int       `json:"total_items" yaml:"total_items"`
	Items      []feedRow `json:"items" yaml:"items"`
}

// buildFeedRows ranks the snapshot, keeping at most limit rows when limit > 0.
func buildFeedRows(cached schema.CachedFeed, limit int) []feedRow {
	feeds := cached.Feeds
	if limit > 0 && len(feeds) > limit {
		feeds = feeds[:limit]
	}
	rows := make([]feedRow, 0, len(feeds))
	for i, f := range feeds {
		rows = append(rows, feedRow{
			Rank:         i + 1,
			ID:           f.CoinInfo.ID,
			Symbol:       f.CoinInfo.Name,
			Name:         f.CoinInfo.FullName,
			ImageURL:     f.CoinInfo.ImageURL,
			PriceUSD:     f.Raw.Usd.Price,
			ChangePctDay: f.Raw.Usd.ChangePctDay,
			Trend:        contract.GetPlainLabel(f.Raw.Usd.ChangePctDay),
		})
	}
	return rows
}

func newFeedDocument(cached schema.CachedFeed, rows []feedRow) feedDocument {
	return feedDocument{
		CachedAt:   formatCachedAt(cached.Timestamp),
		TotalItems: cached.Len(),
		Items:      rows,
	}
}

func formatCachedAt(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(contract.DateTimeFormat)
}

// writeFeedTable generates and writes the human-readable table.
func writeFeedTable(w io.Writer, rows []feedRow, cached schema.CachedFeed, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Symbol", "Name", "Price (USD)", "24h %", "Trend"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for _, r := range rows {
		trend := r.Trend
		if cfg.UseColors {
			trend = contract.GetColorLabel(r.ChangePctDay)
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.Symbol,
			contract.TruncateText(r.Name, nameWidth),
			fmtFloat(r.PriceUSD),
			fmtFloat(float64(r.ChangePctDay)),
			trend,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Showing top %d of %d coins. Cached at %s. Cache backend: %s\n",
		len(rows), cached.Len(), formatCachedAt(cached.Timestamp), cfg.CacheBackend)
	return err
}

// writeFeedCSV writes the snapshot in CSV format.
func writeFeedCSV(w io.Writer, rows []feedRow, cached schema.CachedFeed, fmtFloat func(float64) string) error {
	header := []string{"rank", "id", "symbol", "name", "price_usd", "change_pct_day", "trend", "cached_at"}
	cachedAt := formatCachedAt(cached.Timestamp)
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.ID,
				r.Symbol,
				r.Name,
				fmtFloat(r.PriceUSD),
				fmtFloat(float64(r.ChangePctDay)),
				r.Trend,
				cachedAt,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
