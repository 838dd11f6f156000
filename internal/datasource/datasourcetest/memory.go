// Package datasourcetest provides an in-memory datasource.Source for tests
// of packages built on top of the market data layer.
package datasourcetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/pkg/models"
)

// Memory serves canned quotes, chains and history. Unknown tickers fail with
// datasource.ErrTickerNotFound. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	quotes  map[string]models.Quote
	options map[string]datasource.OptionsSnapshot
	history map[string][]models.OHLCV
}

// NewMemory returns an empty source.
func NewMemory() *Memory {
	return &Memory{
		quotes:  map[string]models.Quote{},
		options: map[string]datasource.OptionsSnapshot{},
		history: map[string][]models.OHLCV{},
	}
}

// Name implements datasource.Source.
func (m *Memory) Name() string { return "memory" }

// SetQuote registers the quote returned for q.Ticker.
func (m *Memory) SetQuote(q models.Quote) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.Ticker] = q
	return m
}

// SetOptions registers the chain returned for ticker regardless of the
// requested expiry.
func (m *Memory) SetOptions(ticker string, snap datasource.OptionsSnapshot) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[ticker] = snap
	return m
}

// SetHistory registers the candles returned for ticker.
func (m *Memory) SetHistory(ticker string, candles []models.OHLCV) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[ticker] = candles
	return m
}

// GetQuote implements datasource.Source.
func (m *Memory) GetQuote(_ context.Context, ticker string) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	return &q, nil
}

// GetOptions implements datasource.Source. The expiry argument selects the
// matching Expiration when one is registered.
func (m *Memory) GetOptions(_ context.Context, ticker string, expiry time.Time) (*datasource.OptionsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.options[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	out := snap
	if !expiry.IsZero() {
		out.Expirations = nil
		for _, e := range snap.Expirations {
			if e.Date.Equal(expiry) {
				out.Expirations = append(out.Expirations, e)
			}
		}
		if len(out.Expirations) == 0 {
			return nil, fmt.Errorf("no contracts for %s on %s", ticker, expiry.Format("2006-01-02"))
		}
	} else if len(snap.Expirations) > 1 {
		out.Expirations = snap.Expirations[:1]
	}
	return &out, nil
}

// GetHistory implements datasource.Source.
func (m *Memory) GetHistory(_ context.Context, ticker string, _, _ time.Time) ([]models.OHLCV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	candles, ok := m.history[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	return candles, nil
}

// Chain builds a snapshot listing dates, with three calls and three puts
// struck around price on every date.
func Chain(ticker string, price float64, dates ...time.Time) datasource.OptionsSnapshot {
	snap := datasource.OptionsSnapshot{
		Symbol:          ticker,
		Price:           null.FloatFrom(price),
		ExpirationDates: dates,
	}
	for _, d := range dates {
		exp := datasource.Expiration{Date: d}
		for _, k := range []float64{price * 0.95, price, price * 1.05} {
			exp.Calls = append(exp.Calls, contract(ticker, "C", d, k, price))
			exp.Puts = append(exp.Puts, contract(ticker, "P", d, k, price))
		}
		snap.Expirations = append(snap.Expirations, exp)
	}
	return snap
}

func contract(ticker, side string, exp time.Time, strike, price float64) datasource.Contract {
	itm := strike < price
	if side == "P" {
		itm = strike > price
	}
	return datasource.Contract{
		ContractSymbol:    fmt.Sprintf("%s%s%s%08d", ticker, exp.Format("060102"), side, int(strike*1000)),
		Strike:            strike,
		LastPrice:         null.FloatFrom(2),
		Bid:               null.FloatFrom(1.9),
		Ask:               null.FloatFrom(2.1),
		Volume:            null.IntFrom(100),
		OpenInterest:      null.IntFrom(1000),
		ImpliedVolatility: null.FloatFrom(0.3),
		InTheMoney:        itm,
		Expiration:        exp.Unix(),
	}
}

// Quote builds a minimal successful quote.
func Quote(ticker string, price float64) models.Quote {
	return models.Quote{
		Ticker: ticker,
		Name:   null.StringFrom(ticker + " Inc."),
		Price:  null.FloatFrom(price),
		Change: null.FloatFrom(1),
	}
}

// Closes builds one daily candle per close, ending the day before end.
func Closes(end time.Time, closes ...float64) []models.OHLCV {
	out := make([]models.OHLCV, len(closes))
	start := end.AddDate(0, 0, -len(closes))
	for i, c := range closes {
		out[i] = models.OHLCV{Timestamp: start.AddDate(0, 0, i), Close: c}
	}
	return out
}
