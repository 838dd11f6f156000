// Package models defines the core data structures used throughout wheelcommittee.
//
// Every value here is request-scoped and immutable once built. Analytic fields that
// an upstream source may omit are nullable so that JSON responses carry an explicit
// null rather than a misleading zero.
package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// OHLCV represents a single daily candlestick bar of price data.
// A zero Close means the upstream source reported no close for that bar.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// Quote is a snapshot of price and fundamental fields for one ticker.
//
// A failed fetch yields a Quote with only Ticker, FetchedAt and Error set.
type Quote struct {
	Ticker               string      `json:"ticker"`
	Name                 null.String `json:"name"`
	Price                null.Float  `json:"price"`
	Change               null.Float  `json:"change"`
	ChangePercent        null.Float  `json:"changePercent"`
	Volume               null.Int    `json:"volume"`
	MarketCap            null.Float  `json:"marketCap"`
	FiftyTwoWeekHigh     null.Float  `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow      null.Float  `json:"fiftyTwoWeekLow"`
	FiftyDayAverage      null.Float  `json:"fiftyDayAverage"`
	TwoHundredDayAverage null.Float  `json:"twoHundredDayAverage"`
	DividendYield        null.Float  `json:"dividendYield"` // ratio, 0.0044 = 0.44%
	TrailingPE           null.Float  `json:"trailingPE"`
	ForwardPE            null.Float  `json:"forwardPE"`
	Beta                 null.Float  `json:"beta"`
	Bid                  null.Float  `json:"bid"`
	Ask                  null.Float  `json:"ask"`
	FetchedAt            time.Time   `json:"fetchedAt"`
	Error                null.String `json:"error"`
}

// Failed reports whether the quote carries an upstream error.
func (q Quote) Failed() bool { return q.Error.Valid }

// QuoteSummary is the lightweight price-only view returned by quote batches.
type QuoteSummary struct {
	Price         null.Float  `json:"price"`
	Change        null.Float  `json:"change"`
	ChangePercent null.Float  `json:"changePercent"`
	Error         null.String `json:"error"`
}

// MarketData pairs the quote and options chain fetched for one ticker.
type MarketData struct {
	Stock   Quote        `json:"stock"`
	Options OptionsChain `json:"options"`
}

// Unavailable reports whether neither the quote nor the chain could be fetched.
func (m MarketData) Unavailable() bool {
	return m.Stock.Failed() && m.Options.Failed()
}
