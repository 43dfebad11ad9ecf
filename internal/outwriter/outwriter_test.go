package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testCachedAt = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func sampleCachedFeed() schema.CachedFeed {
	return schema.CachedFeed{
		Timestamp: testCachedAt,
		Feeds: []schema.CryptoFeed{
			{
				CoinInfo: schema.CoinInfo{ID: "1182", Name: "BTC", FullName: "Bitcoin", ImageURL: "/media/btc.png"},
				Raw:      schema.Raw{Usd: schema.Usd{Price: 62000.5, ChangePctDay: 1.25}},
			},
			{
				CoinInfo: schema.CoinInfo{ID: "7605", Name: "ETH", FullName: "Ethereum"},
				Raw:      schema.Raw{Usd: schema.Usd{Price: 3400.125, ChangePctDay: -2.5}},
			},
			{
				CoinInfo: schema.CoinInfo{ID: "925809", Name: "USDT", FullName: "Tether"},
				Raw:      schema.Raw{Usd: schema.Usd{Price: 1, ChangePctDay: 0}},
			},
		},
	}
}

func testConfig(t *testing.T, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		ResultLimit:  10,
		Precision:    2,
		Output:       output,
		OutputFile:   filepath.Join(t.TempDir(), "out"),
		Width:        120,
		CacheBackend: schema.MemoryBackend,
	}
}

func readOutput(t *testing.T, cfg *contract.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	return string(data)
}

func TestBuildFeedRows(t *testing.T) {
	cached := sampleCachedFeed()

	t.Run("ranks all rows without limit", func(t *testing.T) {
		rows := buildFeedRows(cached, 0)
		require.Len(t, rows, 3)
		assert.Equal(t, 1, rows[0].Rank)
		assert.Equal(t, "BTC", rows[0].Symbol)
		assert.Equal(t, "Bitcoin", rows[0].Name)
		assert.Equal(t, contract.UpValue, rows[0].Trend)
		assert.Equal(t, contract.DownValue, rows[1].Trend)
		assert.Equal(t, contract.FlatValue, rows[2].Trend)
		assert.Equal(t, 3, rows[2].Rank)
	})

	t.Run("limit truncates", func(t *testing.T) {
		rows := buildFeedRows(cached, 2)
		require.Len(t, rows, 2)
		assert.Equal(t, "ETH", rows[1].Symbol)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		rows := buildFeedRows(schema.CachedFeed{}, 5)
		assert.Empty(t, rows)
	})
}

func TestWriteFeedJSON(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)
	cfg.ResultLimit = 2

	require.NoError(t, WriteFeed(sampleCachedFeed(), cfg))

	var doc feedDocument
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &doc))
	assert.Equal(t, "2024-03-01T12:30:00Z", doc.CachedAt)
	assert.Equal(t, 3, doc.TotalItems)
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "1182", doc.Items[0].ID)
	assert.InDelta(t, 62000.5, doc.Items[0].PriceUSD, 0.0001)
	assert.Equal(t, "/media/btc.png", doc.Items[0].ImageURL)
}

func TestWriteFeedYAML(t *testing.T) {
	cfg := testConfig(t, schema.YAMLOut)

	require.NoError(t, WriteFeed(sampleCachedFeed(), cfg))

	var doc feedDocument
	require.NoError(t, yaml.Unmarshal([]byte(readOutput(t, cfg)), &doc))
	assert.Equal(t, 3, doc.TotalItems)
	require.Len(t, doc.Items, 3)
	assert.Equal(t, "USDT", doc.Items[2].Symbol)
	assert.Equal(t, contract.FlatValue, doc.Items[2].Trend)
}

func TestWriteFeedCSV(t *testing.T) {
	cfg := testConfig(t, schema.CSVOut)
	cfg.Precision = 1

	require.NoError(t, WriteFeed(sampleCachedFeed(), cfg))

	records, err := csv.NewReader(strings.NewReader(readOutput(t, cfg))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"2", "7605", "ETH", "Ethereum", "3400.1", "-2.5", "Down", "2024-03-01T12:30:00Z"}, records[2])
}

func TestWriteFeedTable(t *testing.T) {
	cfg := testConfig(t, schema.TextOut)

	require.NoError(t, WriteFeed(sampleCachedFeed(), cfg))

	out := readOutput(t, cfg)
	assert.Contains(t, out, "BTC")
	assert.Contains(t, out, "Ethereum")
	assert.Contains(t, out, "62000.50")
	assert.Contains(t, out, "Showing top 3 of 3 coins")
	assert.Contains(t, out, "Cache backend: memory")
}

func TestWriteFeedTableTruncatesNames(t *testing.T) {
	cfg := testConfig(t, schema.TextOut)
	cfg.Width = 70
	cached := sampleCachedFeed()
	cached.Feeds[0].CoinInfo.FullName = "An Extremely Long Coin Name That Keeps Going"

	require.NoError(t, WriteFeed(cached, cfg))

	out := readOutput(t, cfg)
	assert.NotContains(t, out, "Keeps Going")
	assert.Contains(t, out, "...")
}

func TestWriteFeedEmpty(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)

	require.NoError(t, WriteFeed(schema.CachedFeed{}, cfg))

	var doc feedDocument
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, cfg)), &doc))
	assert.Equal(t, "", doc.CachedAt)
	assert.Empty(t, doc.Items)
}

func TestWriteFeedBadOutputFile(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "out.json")

	err := WriteFeed(sampleCachedFeed(), cfg)
	assert.Error(t, err)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 50, expected: 10},
		{width: 80, expected: 20},
		{width: 90, expected: 30},
		{width: 200, expected: 40},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg), "width %d", tt.width)
	}
}

func TestWriteHelpers(t *testing.T) {
	t.Run("writeJSON indents", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
		assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
	})

	t.Run("createFormatters honors precision", func(t *testing.T) {
		fmtFloat, intFmt := createFormatters(3)
		assert.Equal(t, "1.235", fmtFloat(1.23456))
		assert.Equal(t, "%d", intFmt)
	})
}
