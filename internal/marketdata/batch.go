package marketdata

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// FetchAll fetches the quote and the options chain of every distinct ticker
// concurrently. The result has exactly one entry per distinct normalized
// ticker; a failure on one ticker never affects another.
func (c *Client) FetchAll(ctx context.Context, tickers []string) map[string]models.MarketData {
	return fanOut(ctx, c, "market", tickers, func(ctx context.Context, symbol string) models.MarketData {
		var data models.MarketData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			data.Stock = c.FetchQuote(gctx, symbol)
			return nil
		})
		g.Go(func() error {
			data.Options = c.FetchOptionsChain(gctx, symbol)
			return nil
		})
		_ = g.Wait()
		return data
	})
}

// FetchQuotes fetches price-only quote summaries for every distinct ticker.
func (c *Client) FetchQuotes(ctx context.Context, tickers []string) map[string]models.QuoteSummary {
	return fanOut(ctx, c, "quotes", tickers, func(ctx context.Context, symbol string) models.QuoteSummary {
		return Summarize(c.FetchQuote(ctx, symbol))
	})
}

// FetchIVRanks computes IV rank for every distinct ticker.
func (c *Client) FetchIVRanks(ctx context.Context, tickers []string) map[string]models.IVRankResult {
	return fanOut(ctx, c, "ivrank", tickers, c.FetchIVRank)
}

// fanOut runs fetch once per distinct ticker and collects the results by
// ticker. fetch must report failures in its result, never by panicking.
func fanOut[T any](ctx context.Context, c *Client, kind string, tickers []string, fetch func(context.Context, string) T) map[string]T {
	symbols := distinctSymbols(tickers)
	c.metrics.RecordBatch(kind, len(symbols))

	results := make(map[string]T, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		g.Go(func() error {
			v := fetch(gctx, symbol)
			mu.Lock()
			results[symbol] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.log.Debug().Str("kind", kind).Int("tickers", len(symbols)).Msg("batch complete")
	return results
}

func distinctSymbols(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		s := utils.NormalizeTicker(t)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
