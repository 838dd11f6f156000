// Package datasource is the boundary to the upstream market data provider.
// It defines the Source interface (quote, option chain, daily history) and a
// Yahoo Finance implementation. Every call is fallible and latency-bearing;
// callers decide how failures degrade.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

// Source is the upstream market data provider.
type Source interface {
	// Name returns the human-readable name of this data source.
	Name() string

	// GetQuote returns a snapshot quote for the given ticker.
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)

	// GetOptions returns the option chain for the given ticker. A zero expiry
	// lets the source pick its default (nearest) expiration; otherwise the
	// response is pinned to that expiration date.
	GetOptions(ctx context.Context, ticker string, expiry time.Time) (*OptionsSnapshot, error)

	// GetHistory returns daily candles for the given ticker and date range.
	GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCV, error)
}

// OptionsSnapshot is the upstream view of a ticker's option chain: every listed
// expiration date plus the contracts of the expiration(s) actually returned.
type OptionsSnapshot struct {
	Symbol          string
	Price           null.Float
	ExpirationDates []time.Time
	Expirations     []Expiration
}

// Expiration holds the raw contracts of one expiration date.
type Expiration struct {
	Date  time.Time
	Calls []Contract
	Puts  []Contract
}

// Contract is a raw upstream option contract. ImpliedVolatility is the
// provider's 0-1 fraction, not yet normalized to a percentage.
type Contract struct {
	ContractSymbol    string     `json:"contractSymbol"`
	Strike            float64    `json:"strike"`
	LastPrice         null.Float `json:"lastPrice"`
	Change            null.Float `json:"change"`
	Volume            null.Int   `json:"volume"`
	OpenInterest      null.Int   `json:"openInterest"`
	Bid               null.Float `json:"bid"`
	Ask               null.Float `json:"ask"`
	ImpliedVolatility null.Float `json:"impliedVolatility"`
	InTheMoney        bool       `json:"inTheMoney"`
	Expiration        int64      `json:"expiration"`
}

// --- Sentinel errors ---

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = errors.New("ticker not found")

// ErrNoOptions is returned when a ticker has no listed options.
var ErrNoOptions = errors.New("no options listed")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = errors.New("rate limited by data source")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) match a 429 response.
func (e *ErrHTTP) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// doGet performs a GET request with the given client, URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	// Set default headers.
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	// Override/add custom headers.
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, resp.StatusCode, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, resp.StatusCode, nil
}
