package marketdata

import (
	"context"
	"errors"
	"strings"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

var errEmptyQuote = errors.New("empty quote from data source")

// FetchQuote returns a snapshot quote for ticker. On failure the Quote carries
// only Ticker, FetchedAt and Error.
func (c *Client) FetchQuote(ctx context.Context, ticker string) models.Quote {
	symbol := utils.NormalizeTicker(ticker)
	now := c.now()

	q, err := c.getQuote(ctx, symbol)
	if err == nil && q == nil {
		err = errEmptyQuote
	}
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", symbol).Str("op", "quote").Msg("quote fetch failed")
		return models.Quote{
			Ticker:    symbol,
			FetchedAt: now,
			Error:     null.StringFrom(err.Error()),
		}
	}

	out := *q
	if out.Ticker == "" {
		out.Ticker = symbol
	}
	if strings.TrimSpace(out.Name.String) == "" {
		out.Name = null.StringFrom(out.Ticker)
	}
	out.FetchedAt = now
	out.Error = null.String{}
	return out
}

// Summarize reduces a quote to its price-only view.
func Summarize(q models.Quote) models.QuoteSummary {
	return models.QuoteSummary{
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Error:         q.Error,
	}
}
