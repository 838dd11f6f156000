// Package advisor turns a watchlist into a strategy analysis: it fetches live
// market data, renders it for the selected mode, asks the language model for
// a committee review and parses the structured trades out of the answer.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/seenimoa/wheelcommittee/internal/llm"
	"github.com/seenimoa/wheelcommittee/internal/marketdata"
	"github.com/seenimoa/wheelcommittee/internal/presenter"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// ErrNoTickers is returned when the watchlist holds no valid symbol.
var ErrNoTickers = errors.New("no tickers provided")

// Advisor runs one analysis per call. It is safe for concurrent use.
type Advisor struct {
	market *marketdata.Client
	llm    llm.Completer
	opts   llm.ChatOptions
	log    zerolog.Logger
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithLogger sets the advisor's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Advisor) { a.log = l }
}

// WithMaxTokens caps the length of the model's answer.
func WithMaxTokens(n int) Option {
	return func(a *Advisor) {
		if n > 0 {
			a.opts.MaxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature of every request.
func WithTemperature(t float64) Option {
	return func(a *Advisor) { a.opts.Temperature = t }
}

// New creates an Advisor backed by market and completer.
func New(market *marketdata.Client, completer llm.Completer, opts ...Option) *Advisor {
	a := &Advisor{
		market: market,
		llm:    completer,
		opts:   llm.ChatOptions{System: SystemPrompt},
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fetches market data for tickers, renders it for mode and returns the
// model's parsed answer. Market data failures degrade into the prompt; only a
// completion failure is returned as an error.
func (a *Advisor) Analyze(ctx context.Context, mode models.StrategyMode, account Account, tickers []string) (Result, error) {
	tickers = utils.CapTickers(utils.NormalizeTickers(tickers), utils.MaxTickers)
	if len(tickers) == 0 {
		return Result{}, ErrNoTickers
	}
	if err := account.Prepare(); err != nil {
		return Result{}, err
	}
	if !mode.Valid() {
		mode = models.ModeWheel
	}

	marketText := a.marketText(ctx, mode, tickers)
	prompt := BuildPrompt(mode, account, tickers, marketText)

	opts := a.opts
	resp, err := a.llm.Complete(ctx, prompt, &opts)
	if err != nil {
		a.log.Error().Err(err).Str("mode", string(mode)).Msg("completion failed")
		return Result{}, fmt.Errorf("%s analysis: %w", mode, err)
	}

	res := ParseResponse(mode, resp.Content)
	res.Truncated = resp.Truncated()
	a.log.Info().
		Str("mode", string(mode)).
		Int("tickers", len(tickers)).
		Str("kind", string(res.Kind)).
		Int("trades", len(res.Trades)).
		Int("tokens", resp.Usage.TotalTokens).
		Msg("analysis complete")
	return res, nil
}

// marketText renders live data, or the unavailable notice when every ticker failed.
func (a *Advisor) marketText(ctx context.Context, mode models.StrategyMode, tickers []string) string {
	sections := presenter.Render(mode, tickers, a.market.FetchAll(ctx, tickers))
	for _, s := range sections {
		if !s.Unavailable {
			return presenter.Join(sections)
		}
	}
	a.log.Warn().Strs("tickers", tickers).Msg("market data unavailable for every ticker")
	return MarketDataUnavailable
}
