// Package marketdata turns raw upstream quotes, option chains and price
// history into the request-scoped values handed to the presenter and the
// advisor: normalized quotes, bounded multi-expiration chains, realized
// volatility series and IV rank / percentile.
//
// Every Fetch method converts upstream failures into data (a populated Error
// field) instead of returning an error, so one ticker can never abort a batch.
// The client applies no timeouts or retries; cancellation comes from ctx.
package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/internal/metrics"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// Defaults for a Client built without options.
const (
	DefaultExtraExpirations = 5
	DefaultLookbackDays     = 365
)

// Client fetches market data from a Source. It holds no mutable state and is
// safe for concurrent use; construct one per process and share it.
type Client struct {
	source           datasource.Source
	now              utils.Clock
	log              zerolog.Logger
	metrics          *metrics.Recorder
	extraExpirations int
	lookbackDays     int
}

// Option configures a Client.
type Option func(*Client)

// WithClock sets the clock used for DTE and history windows.
func WithClock(clock utils.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMetrics sets the metrics recorder. A nil recorder disables metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// WithExtraExpirations sets how many expirations beyond the nearest one are fetched.
func WithExtraExpirations(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.extraExpirations = n
		}
	}
}

// WithLookbackDays sets the calendar-day span of price history used for volatility.
func WithLookbackDays(days int) Option {
	return func(c *Client) {
		if days > 0 {
			c.lookbackDays = days
		}
	}
}

// New creates a Client reading from source.
func New(source datasource.Source, opts ...Option) *Client {
	c := &Client{
		source:           source,
		now:              utils.SystemClock,
		log:              zerolog.Nop(),
		extraExpirations: DefaultExtraExpirations,
		lookbackDays:     DefaultLookbackDays,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SourceName returns the name of the underlying data source.
func (c *Client) SourceName() string { return c.source.Name() }

// --- instrumented upstream calls ---

func (c *Client) getQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	start := time.Now()
	q, err := c.source.GetQuote(ctx, symbol)
	c.metrics.RecordUpstream("quote", start, err)
	return q, err
}

func (c *Client) getOptions(ctx context.Context, symbol string, expiry time.Time) (*datasource.OptionsSnapshot, error) {
	start := time.Now()
	snap, err := c.source.GetOptions(ctx, symbol, expiry)
	c.metrics.RecordUpstream("options", start, err)
	return snap, err
}

func (c *Client) getHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.OHLCV, error) {
	start := time.Now()
	candles, err := c.source.GetHistory(ctx, symbol, from, to)
	c.metrics.RecordUpstream("history", start, err)
	return candles, err
}
