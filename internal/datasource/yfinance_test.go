package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseYFCandlesEmpty(t *testing.T) {
	result := yfChartResult{}
	candles := parseYFCandles(result)
	if candles != nil {
		t.Fatalf("expected nil candles for empty result, got %d", len(candles))
	}
}

func TestParseYFCandles(t *testing.T) {
	open := 100.0
	high := 105.0
	low := 98.0
	close_ := 103.0
	vol := int64(1000)
	adj := 102.5

	result := yfChartResult{
		Timestamp: []int64{1700000000, 1700086400},
		Indicators: yfIndicators{
			Quote: []yfOHLCV{
				{
					Open:   []*float64{&open, &open},
					High:   []*float64{&high, &high},
					Low:    []*float64{&low, &low},
					Close:  []*float64{&close_, &close_},
					Volume: []*int64{&vol, &vol},
				},
			},
			AdjClose: []yfAdjClose{
				{AdjClose: []*float64{&adj, &adj}},
			},
		},
	}

	candles := parseYFCandles(result)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}

	c := candles[0]
	if c.Open != 100.0 || c.High != 105.0 || c.Low != 98.0 || c.Close != 103.0 {
		t.Errorf("OHLC mismatch: %+v", c)
	}
	if c.Volume != 1000 {
		t.Errorf("volume = %d, want 1000", c.Volume)
	}
	if c.AdjClose != 102.5 {
		t.Errorf("adjclose = %f, want 102.5", c.AdjClose)
	}
}

func TestParseYFCandlesNilPointers(t *testing.T) {
	// Some entries may be nil (halts, holidays, etc.)
	open := 100.0
	result := yfChartResult{
		Timestamp: []int64{1700000000},
		Indicators: yfIndicators{
			Quote: []yfOHLCV{
				{
					Open:   []*float64{&open},
					High:   []*float64{nil},
					Low:    []*float64{nil},
					Close:  []*float64{nil},
					Volume: []*int64{nil},
				},
			},
		},
	}

	candles := parseYFCandles(result)
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}
	if candles[0].Open != 100.0 {
		t.Errorf("open = %f, want 100.0", candles[0].Open)
	}
	if candles[0].High != 0 || candles[0].Low != 0 || candles[0].Close != 0 {
		t.Error("expected zero for nil pointer fields")
	}
}

func TestYFinanceName(t *testing.T) {
	yf := NewYFinance()
	if yf.Name() != "Yahoo Finance" {
		t.Errorf("Name() = %q, want %q", yf.Name(), "Yahoo Finance")
	}
}

// fakeYahoo serves canned Yahoo Finance payloads.
func fakeYahoo(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbols") != "AAPL" {
			w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
			return
		}
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"AAPL","shortName":"Apple","longName":"Apple Inc.",
			"regularMarketPrice":190.5,"regularMarketChange":-1.25,"regularMarketChangePercent":-0.65,
			"regularMarketVolume":51234567,"marketCap":2930000000000,
			"fiftyTwoWeekHigh":199.62,"fiftyTwoWeekLow":164.08,
			"fiftyDayAverage":185.1,"twoHundredDayAverage":180.2,
			"trailingAnnualDividendYield":0.0051,"trailingPE":29.4,"forwardPE":27.1,
			"bid":190.4,"ask":190.6}],"error":null}}`))
	})
	mux.HandleFunc("/v7/finance/options/AAPL", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "1766102400" {
			w.Write([]byte(`{"optionChain":{"result":[{"underlyingSymbol":"AAPL",
				"expirationDates":[1763683200,1766102400],
				"quote":{"regularMarketPrice":190.5},
				"options":[{"expirationDate":1766102400,
					"calls":[{"contractSymbol":"AAPL251219C00200000","strike":200,"lastPrice":3.1,"bid":3.0,"ask":3.2,"impliedVolatility":0.25,"inTheMoney":false}],
					"puts":[]}]}],"error":null}}`))
			return
		}
		w.Write([]byte(`{"optionChain":{"result":[{"underlyingSymbol":"AAPL",
			"expirationDates":[1763683200,1766102400],
			"quote":{"regularMarketPrice":190.5},
			"options":[{"expirationDate":1763683200,
				"calls":[{"contractSymbol":"AAPL251121C00190000","strike":190,"lastPrice":4.5,"bid":4.4,"ask":4.6,"volume":120,"openInterest":3000,"impliedVolatility":0.2812,"inTheMoney":true}],
				"puts":[{"contractSymbol":"AAPL251121P00185000","strike":185,"lastPrice":2.05,"impliedVolatility":0.3,"inTheMoney":false}]}]}],"error":null}}`))
	})
	mux.HandleFunc("/v7/finance/options/NOOPT", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"optionChain":{"result":[{"underlyingSymbol":"NOOPT","expirationDates":[],"options":[]}],"error":null}}`))
	})
	mux.HandleFunc("/v8/finance/chart/AAPL", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "1d" {
			http.Error(w, "bad interval", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL"},
			"timestamp":[1700000000,1700086400],
			"indicators":{"quote":[{"open":[1,2],"high":[1,2],"low":[1,2],"close":[189.5,null],"volume":[10,20]}]}}],"error":null}}`))
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	mux.HandleFunc("/v7/finance/options/LIMIT", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	})
	return httptest.NewServer(mux)
}

func newTestYFinance(t *testing.T) *YFinance {
	t.Helper()
	srv := fakeYahoo(t)
	t.Cleanup(srv.Close)
	return NewYFinance(WithYahooBaseURL(srv.URL+"/"), WithYahooHTTPClient(srv.Client()))
}

func TestYFinanceGetQuote(t *testing.T) {
	yf := newTestYFinance(t)

	q, err := yf.GetQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetQuote() error: %v", err)
	}
	if q.Ticker != "AAPL" || q.Name.String != "Apple Inc." {
		t.Errorf("ticker/name = %q/%q", q.Ticker, q.Name.String)
	}
	if q.Price.Float64 != 190.5 || q.Change.Float64 != -1.25 {
		t.Errorf("price/change = %v/%v", q.Price, q.Change)
	}
	if q.Volume.Int64 != 51234567 {
		t.Errorf("volume = %d", q.Volume.Int64)
	}
	if q.DividendYield.Float64 != 0.0051 {
		t.Errorf("dividend yield = %v", q.DividendYield.Float64)
	}
	if q.Beta.Valid {
		t.Error("beta absent upstream should stay null")
	}
}

func TestYFinanceGetQuoteNotFound(t *testing.T) {
	yf := newTestYFinance(t)

	_, err := yf.GetQuote(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected ErrTickerNotFound, got %v", err)
	}
}

func TestYFinanceGetOptions(t *testing.T) {
	yf := newTestYFinance(t)

	snap, err := yf.GetOptions(context.Background(), "AAPL", time.Time{})
	if err != nil {
		t.Fatalf("GetOptions() error: %v", err)
	}
	if snap.Price.Float64 != 190.5 {
		t.Errorf("price = %v", snap.Price)
	}
	if len(snap.ExpirationDates) != 2 {
		t.Fatalf("expected 2 expiration dates, got %d", len(snap.ExpirationDates))
	}
	if got := snap.ExpirationDates[0].Format("2006-01-02"); got != "2025-11-21" {
		t.Errorf("first expiration = %s", got)
	}
	if len(snap.Expirations) != 1 {
		t.Fatalf("expected 1 returned expiration, got %d", len(snap.Expirations))
	}

	exp := snap.Expirations[0]
	if len(exp.Calls) != 1 || len(exp.Puts) != 1 {
		t.Fatalf("calls/puts = %d/%d", len(exp.Calls), len(exp.Puts))
	}
	call := exp.Calls[0]
	if call.ImpliedVolatility.Float64 != 0.2812 || call.OpenInterest.Int64 != 3000 || !call.InTheMoney {
		t.Errorf("call mismatch: %+v", call)
	}
	put := exp.Puts[0]
	if put.Bid.Valid || put.Ask.Valid || put.Volume.Valid {
		t.Errorf("missing put fields should be null: %+v", put)
	}
}

func TestYFinanceGetOptionsPinnedExpiry(t *testing.T) {
	yf := newTestYFinance(t)

	expiry := time.Unix(1766102400, 0)
	snap, err := yf.GetOptions(context.Background(), "AAPL", expiry)
	if err != nil {
		t.Fatalf("GetOptions() error: %v", err)
	}
	if len(snap.Expirations) != 1 || !snap.Expirations[0].Date.Equal(expiry) {
		t.Fatalf("expected pinned expiration %v, got %+v", expiry, snap.Expirations)
	}
}

func TestYFinanceGetOptionsNoneListed(t *testing.T) {
	yf := newTestYFinance(t)

	_, err := yf.GetOptions(context.Background(), "NOOPT", time.Time{})
	if !errors.Is(err, ErrNoOptions) {
		t.Fatalf("expected ErrNoOptions, got %v", err)
	}
}

func TestYFinanceGetOptionsRateLimited(t *testing.T) {
	yf := newTestYFinance(t)

	_, err := yf.GetOptions(context.Background(), "LIMIT", time.Time{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestYFinanceGetHistory(t *testing.T) {
	yf := newTestYFinance(t)

	to := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	candles, err := yf.GetHistory(context.Background(), "AAPL", to.AddDate(-1, 0, 0), to)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 189.5 || candles[1].Close != 0 {
		t.Errorf("closes = %v, %v", candles[0].Close, candles[1].Close)
	}
}

func TestYFinanceGetHistoryNotFound(t *testing.T) {
	yf := newTestYFinance(t)

	to := time.Now()
	_, err := yf.GetHistory(context.Background(), "ZZZZ", to.AddDate(-1, 0, 0), to)
	if !errors.Is(err, ErrTickerNotFound) {
		t.Fatalf("expected ErrTickerNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "ZZZZ") {
		t.Errorf("error should name the symbol: %v", err)
	}
}
