package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// testNow is the fixed "now" for every test in this package.
var testNow = time.Date(2025, 11, 1, 14, 0, 0, 0, time.UTC)

// fakeSource is an in-memory datasource.Source. Missing entries behave like
// an unknown ticker.
type fakeSource struct {
	mu      sync.Mutex
	quotes  map[string]*models.Quote
	options map[string]map[int64]*datasource.OptionsSnapshot // 0 keys the unpinned response
	history map[string][]models.OHLCV
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		quotes:  map[string]*models.Quote{},
		options: map[string]map[int64]*datasource.OptionsSnapshot{},
		history: map[string][]models.OHLCV{},
		calls:   map[string]int{},
	}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) record(op, symbol string) {
	f.mu.Lock()
	f.calls[op+":"+symbol]++
	f.mu.Unlock()
}

func (f *fakeSource) callCount(op, symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op+":"+symbol]
}

func (f *fakeSource) GetQuote(_ context.Context, ticker string) (*models.Quote, error) {
	f.record("quote", ticker)
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	cp := *q
	return &cp, nil
}

func (f *fakeSource) GetOptions(_ context.Context, ticker string, expiry time.Time) (*datasource.OptionsSnapshot, error) {
	f.record("options", ticker)
	byDate, ok := f.options[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	var key int64
	if !expiry.IsZero() {
		key = expiry.Unix()
	}
	snap, ok := byDate[key]
	if !ok {
		return nil, fmt.Errorf("expiration %d unavailable for %s", key, ticker)
	}
	return snap, nil
}

func (f *fakeSource) GetHistory(_ context.Context, ticker string, _, _ time.Time) ([]models.OHLCV, error) {
	f.record("history", ticker)
	h, ok := f.history[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	return h, nil
}

func newTestClient(src datasource.Source) *Client {
	return New(src, WithClock(utils.FixedClock(testNow)))
}

// expiryDates returns n weekly expirations starting 2025-11-21.
func expiryDates(n int) []time.Time {
	first := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, 7*i)
	}
	return out
}

func contract(symbol string, strike, bid, ask, iv float64, oi int64, itm bool) datasource.Contract {
	return datasource.Contract{
		ContractSymbol:    symbol,
		Strike:            strike,
		LastPrice:         null.FloatFrom((bid + ask) / 2),
		Bid:               null.FloatFrom(bid),
		Ask:               null.FloatFrom(ask),
		ImpliedVolatility: null.FloatFrom(iv),
		OpenInterest:      null.IntFrom(oi),
		InTheMoney:        itm,
	}
}

func expirationFor(date time.Time, price float64) datasource.Expiration {
	return datasource.Expiration{
		Date: date,
		Calls: []datasource.Contract{
			contract("C95", price-5, 6.0, 6.2, 0.30, 100, true),
			contract("C100", price, 2.4, 2.6, 0.25, 500, false),
			contract("C105", price+5, 0.9, 1.0, 0.28, 50, false),
		},
		Puts: []datasource.Contract{
			contract("P95", price-5, 0.8, 0.9, 0.33, 80, false),
			contract("P100", price, 2.3, 2.5, 0.27, 400, true),
		},
	}
}

// addChain registers a ticker whose unpinned response carries the first of
// dates, with every date fetchable individually unless listed in missing.
func (f *fakeSource) addChain(ticker string, price float64, dates []time.Time, missing ...time.Time) {
	byDate := map[int64]*datasource.OptionsSnapshot{}
	byDate[0] = &datasource.OptionsSnapshot{
		Symbol:          ticker,
		Price:           null.FloatFrom(price),
		ExpirationDates: dates,
		Expirations:     []datasource.Expiration{expirationFor(dates[0], price)},
	}
outer:
	for _, d := range dates {
		for _, m := range missing {
			if d.Equal(m) {
				continue outer
			}
		}
		byDate[d.Unix()] = &datasource.OptionsSnapshot{
			Symbol:          ticker,
			Price:           null.FloatFrom(price),
			ExpirationDates: dates,
			Expirations:     []datasource.Expiration{expirationFor(d, price)},
		}
	}
	f.options[ticker] = byDate
}

func (f *fakeSource) addQuote(ticker string, price float64) {
	f.quotes[ticker] = &models.Quote{
		Ticker: ticker,
		Name:   null.StringFrom(ticker + " Inc."),
		Price:  null.FloatFrom(price),
		Change: null.FloatFrom(1.5),
	}
}

// alternatingCandles returns n daily candles alternating between 100 and 110.
func alternatingCandles(n int) []models.OHLCV {
	out := make([]models.OHLCV, n)
	start := testNow.AddDate(-1, 0, 0)
	for i := range out {
		c := 100.0
		if i%2 == 1 {
			c = 110.0
		}
		out[i] = models.OHLCV{Timestamp: start.AddDate(0, 0, i), Close: c}
	}
	return out
}
