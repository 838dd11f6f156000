package main

import (
	"fmt"
	"net/http"

	"github.com/seenimoa/wheelcommittee/internal/advisor"
	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/internal/llm"
	"github.com/seenimoa/wheelcommittee/internal/marketdata"
	"github.com/seenimoa/wheelcommittee/internal/metrics"
)

// newMarketClient builds the Yahoo-backed market data client from cfg.
// rec may be nil.
func newMarketClient(rec *metrics.Recorder) *marketdata.Client {
	src := datasource.NewYFinance(
		datasource.WithYahooBaseURL(cfg.MarketData.BaseURL),
		datasource.WithYahooHTTPClient(&http.Client{Timeout: cfg.MarketData.HTTPTimeout}),
	)
	return marketdata.New(src,
		marketdata.WithLogger(logger.With().Str("component", "marketdata").Logger()),
		marketdata.WithMetrics(rec),
		marketdata.WithExtraExpirations(cfg.MarketData.ExtraExpirations),
		marketdata.WithLookbackDays(cfg.MarketData.LookbackDays),
	)
}

// newAdvisor returns nil, nil when no LLM key is configured.
func newAdvisor(market *marketdata.Client) (*advisor.Advisor, error) {
	if !cfg.LLM.Enabled() {
		return nil, nil
	}
	provider, err := llm.NewAnthropicProvider(cfg.LLM.AnthropicKey,
		llm.WithAnthropicBaseURL(cfg.LLM.BaseURL),
		llm.WithAnthropicModel(cfg.LLM.Model),
		llm.WithAnthropicMaxTokens(cfg.LLM.MaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("LLM setup failed: %w", err)
	}
	return advisor.New(market, provider,
		advisor.WithLogger(logger.With().Str("component", "advisor").Logger()),
		advisor.WithMaxTokens(cfg.LLM.MaxTokens),
		advisor.WithTemperature(cfg.LLM.Temperature),
	), nil
}
