// Package remote loads the crypto feed from the CryptoCompare API.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/huangsam/cryptofeed/internal/contract"
	"github.com/huangsam/cryptofeed/schema"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// topListPath is the "top coins by total volume" endpoint.
const topListPath = "/data/top/totalvolfull"

// quoteSymbol is the currency every price is quoted in.
const quoteSymbol = "USD"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client fetches the top-volume feed from CryptoCompare.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ contract.FeedLoader = &Client{} // Compile-time check

// NewClient creates a client from the validated configuration.
func NewClient(cfg *contract.Config) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = contract.DefaultRequestTimeout
	}
	limit := cfg.FeedLimit
	if limit <= 0 {
		limit = contract.DefaultFeedLimit
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = contract.DefaultRateLimit
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = contract.DefaultRateBurst
	}

	return &Client{
		baseURL:    cfg.APIURL,
		apiKey:     cfg.APIKey,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Load implements the FeedLoader interface.
func (c *Client) Load(ctx context.Context) ([]schema.CryptoFeed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint, err := c.topListURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed: %s - %s", resp.Status, contract.TruncateText(string(body), 200))
	}

	feeds, err := ParseTopList(body)
	if err != nil {
		return nil, err
	}
	contract.Logger.WithField("items", len(feeds)).Debug("remote feed loaded")
	return feeds, nil
}

func (c *Client) topListURL() (string, error) {
	u, err := url.Parse(c.baseURL + topListPath)
	if err != nil {
		return "", fmt.Errorf("invalid api url %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.limit))
	q.Set("tsym", quoteSymbol)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseTopList extracts feed entries from a totalvolfull response body.
// Entries without a USD quote or coin id are skipped.
func ParseTopList(body []byte) ([]schema.CryptoFeed, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode response: invalid JSON")
	}
	root := gjson.ParseBytes(body)

	if root.Get("Response").String() == "Error" {
		return nil, fmt.Errorf("cryptocompare error: %s", root.Get("Message").String())
	}

	data := root.Get("Data")
	if !data.IsArray() {
		return nil, fmt.Errorf("decode response: missing Data array")
	}

	feeds := make([]schema.CryptoFeed, 0, len(data.Array()))
	data.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("CoinInfo.Id").String()
		usd := item.Get("RAW." + quoteSymbol)
		if id == "" || !usd.Exists() {
			return true
		}
		feeds = append(feeds, schema.CryptoFeed{
			CoinInfo: schema.CoinInfo{
				ID:       id,
				Name:     item.Get("CoinInfo.Name").String(),
				FullName: item.Get("CoinInfo.FullName").String(),
				ImageURL: item.Get("CoinInfo.ImageUrl").String(),
			},
			Raw: schema.Raw{Usd: schema.Usd{
				Price:        usd.Get("PRICE").Float(),
				ChangePctDay: float32(usd.Get("CHANGEPCTDAY").Float()),
			}},
		})
		return true
	})
	return feeds, nil
}
