package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YFinance implements Source using the public Yahoo Finance API
// (v7 quote, v7 options, v8 chart). It keeps no cache: every call goes upstream.
type YFinance struct {
	baseURL string
	client  *http.Client
}

// YFinanceOption configures the Yahoo Finance source.
type YFinanceOption func(*YFinance)

// WithYahooBaseURL sets a custom base URL (used by tests and proxies).
func WithYahooBaseURL(u string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(u, "/") }
}

// WithYahooHTTPClient sets the HTTP client used for every request.
func WithYahooHTTPClient(c *http.Client) YFinanceOption {
	return func(y *YFinance) { y.client = c }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL: DefaultYahooBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string     `json:"symbol"`
	ShortName                  string     `json:"shortName"`
	LongName                   string     `json:"longName"`
	RegularMarketPrice         null.Float `json:"regularMarketPrice"`
	RegularMarketChange        null.Float `json:"regularMarketChange"`
	RegularMarketChangePercent null.Float `json:"regularMarketChangePercent"`
	RegularMarketVolume        null.Int   `json:"regularMarketVolume"`
	MarketCap                  null.Float `json:"marketCap"`
	FiftyTwoWeekHigh           null.Float `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            null.Float `json:"fiftyTwoWeekLow"`
	FiftyDayAverage            null.Float `json:"fiftyDayAverage"`
	TwoHundredDayAverage       null.Float `json:"twoHundredDayAverage"`
	DividendYield              null.Float `json:"trailingAnnualDividendYield"`
	TrailingPE                 null.Float `json:"trailingPE"`
	ForwardPE                  null.Float `json:"forwardPE"`
	Beta                       null.Float `json:"beta"`
	Bid                        null.Float `json:"bid"`
	Ask                        null.Float `json:"ask"`
}

type yfOptionsResponse struct {
	OptionChain struct {
		Result []yfOptionsResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"optionChain"`
}

type yfOptionsResult struct {
	UnderlyingSymbol string          `json:"underlyingSymbol"`
	ExpirationDates  []int64         `json:"expirationDates"`
	Strikes          []float64       `json:"strikes"`
	Quote            yfQuoteResult   `json:"quote"`
	Options          []yfOptionChain `json:"options"`
}

type yfOptionChain struct {
	ExpirationDate int64      `json:"expirationDate"`
	Calls          []Contract `json:"calls"`
	Puts           []Contract `json:"puts"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetQuote returns a snapshot quote from Yahoo Finance.
func (y *YFinance) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	symbol := utils.NormalizeTicker(ticker)

	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, url.QueryEscape(symbol))
	var resp yfQuoteResponse
	if err := y.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", symbol, err)
	}

	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	r := resp.QuoteResponse.Result[0]
	quote := &models.Quote{
		Ticker:               coalesce(r.Symbol, symbol),
		Name:                 null.StringFrom(coalesce(r.LongName, r.ShortName, symbol)),
		Price:                r.RegularMarketPrice,
		Change:               r.RegularMarketChange,
		ChangePercent:        r.RegularMarketChangePercent,
		Volume:               r.RegularMarketVolume,
		MarketCap:            r.MarketCap,
		FiftyTwoWeekHigh:     r.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:      r.FiftyTwoWeekLow,
		FiftyDayAverage:      r.FiftyDayAverage,
		TwoHundredDayAverage: r.TwoHundredDayAverage,
		DividendYield:        r.DividendYield,
		TrailingPE:           r.TrailingPE,
		ForwardPE:            r.ForwardPE,
		Beta:                 r.Beta,
		Bid:                  r.Bid,
		Ask:                  r.Ask,
	}
	return quote, nil
}

// GetOptions returns the option chain from Yahoo Finance, optionally pinned to one expiry.
func (y *YFinance) GetOptions(ctx context.Context, ticker string, expiry time.Time) (*OptionsSnapshot, error) {
	symbol := utils.NormalizeTicker(ticker)

	u := fmt.Sprintf("%s/v7/finance/options/%s", y.baseURL, url.PathEscape(symbol))
	if !expiry.IsZero() {
		u += fmt.Sprintf("?date=%d", expiry.Unix())
	}

	var resp yfOptionsResponse
	if err := y.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance options %s: %w", symbol, err)
	}
	if resp.OptionChain.Error != nil {
		return nil, fmt.Errorf("yfinance options error: %s", resp.OptionChain.Error.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	r := resp.OptionChain.Result[0]
	if len(r.ExpirationDates) == 0 && len(r.Options) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOptions, symbol)
	}

	snap := &OptionsSnapshot{
		Symbol:          coalesce(r.UnderlyingSymbol, symbol),
		Price:           r.Quote.RegularMarketPrice,
		ExpirationDates: make([]time.Time, 0, len(r.ExpirationDates)),
		Expirations:     make([]Expiration, 0, len(r.Options)),
	}
	for _, ts := range r.ExpirationDates {
		snap.ExpirationDates = append(snap.ExpirationDates, time.Unix(ts, 0).UTC())
	}
	for _, opt := range r.Options {
		snap.Expirations = append(snap.Expirations, Expiration{
			Date:  time.Unix(opt.ExpirationDate, 0).UTC(),
			Calls: opt.Calls,
			Puts:  opt.Puts,
		})
	}
	return snap, nil
}

// GetHistory returns daily OHLCV candles from the Yahoo Finance chart API.
func (y *YFinance) GetHistory(ctx context.Context, ticker string, from, to time.Time) ([]models.OHLCV, error) {
	symbol := utils.NormalizeTicker(ticker)

	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		y.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix(),
	)

	var resp yfChartResponse
	if err := y.fetchJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, symbol)
	}

	return parseYFCandles(resp.Chart.Result[0]), nil
}

// --- Helpers ---

// fetchJSON GETs u and decodes the JSON body into v. A 404 maps to ErrTickerNotFound.
func (y *YFinance) fetchJSON(ctx context.Context, u string, v any) error {
	body, _, err := doGet(ctx, y.client, u, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		var he *ErrHTTP
		if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w (%s)", ErrTickerNotFound, he.Status)
		}
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Close) && q.Close[i] != nil {
			c.Close = *q.Close[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
