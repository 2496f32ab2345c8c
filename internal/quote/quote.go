package quote

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Response decoding
	"errors"        // Sentinel error
	"net/http"      // HTTP client
	"net/url"       // Query escaping
	"strings"       // Symbol normalization
	"time"          // Timeouts and cache TTL

	"trading_sim/internal/utils" // Redis cache helpers

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// ErrNotFound is returned for every failed lookup. Transport errors,
// non-2xx responses and malformed payloads are deliberately not
// distinguished from an unknown ticker, so callers stay single-branch.
var ErrNotFound = errors.New("quote not found")

// cacheTTL is how long a fetched quote is served from Redis.
const cacheTTL = 60 * time.Second

// Quote is one priced symbol from the lookup service
type Quote struct {
	Symbol string  `json:"symbol"` // Ticker symbol, uppercase
	Name   string  `json:"name"`   // Company display name
	Price  float64 `json:"price"`  // Latest price
}

// Client looks up quotes against an HTTP JSON endpoint, with a
// best-effort Redis read-through cache in front of it.
type Client struct {
	baseURL string
	http    *http.Client
	rdb     *redis.Client // nil disables caching
}

// NewClient builds a quote client with a bounded per-request timeout
func NewClient(baseURL string, timeout time.Duration, rdb *redis.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		rdb:     rdb,
	}
}

// payload is the wire format of the quote service
type payload struct {
	CompanyName string   `json:"companyName"`
	LatestPrice *float64 `json:"latestPrice"`
	Symbol      string   `json:"symbol"`
}

// Lookup fetches the current quote for a symbol. The symbol is
// normalized to uppercase first. One attempt, no retry; any failure
// is reported as ErrNotFound.
func (c *Client) Lookup(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, ErrNotFound
	}

	cacheKey := "quote:" + symbol
	if c.rdb != nil {
		var cached Quote
		if found, err := utils.GetCache(ctx, c.rdb, cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return Quote{}, ErrNotFound
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{"symbol": symbol, "error": err.Error()}).Warn("Quote request failed")
		return Quote{}, ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Quote{}, ErrNotFound
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		logrus.WithFields(logrus.Fields{"symbol": symbol, "error": err.Error()}).Warn("Quote payload malformed")
		return Quote{}, ErrNotFound
	}
	// A usable payload needs both a name and a price
	if p.CompanyName == "" || p.LatestPrice == nil {
		return Quote{}, ErrNotFound
	}

	q := Quote{Symbol: symbol, Name: p.CompanyName, Price: *p.LatestPrice}
	if c.rdb != nil {
		// Cache failures never fail a lookup
		_ = utils.SetCache(ctx, c.rdb, cacheKey, q, cacheTTL)
	}
	return q, nil
}
