package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// FetchOptionsChain returns the ticker's nearest expiration plus up to the
// configured number of further expirations, each fetched on its own. A failed
// extra expiration is dropped; a failed initial fetch yields an empty chain
// with Error set. Chains are ordered by DTE.
func (c *Client) FetchOptionsChain(ctx context.Context, ticker string) models.OptionsChain {
	symbol := utils.NormalizeTicker(ticker)
	now := c.now()

	snap, err := c.getOptions(ctx, symbol, time.Time{})
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", symbol).Str("op", "options").Msg("options fetch failed")
		return models.OptionsChain{
			Ticker:          symbol,
			ExpirationDates: []time.Time{},
			Chains:          []models.OptionChainSnapshot{},
			FetchedAt:       now,
			Error:           null.StringFrom(err.Error()),
		}
	}

	chain := models.OptionsChain{
		Ticker:           symbol,
		CurrentPrice:     snap.Price,
		ExpirationDates:  snap.ExpirationDates,
		TotalExpirations: len(snap.ExpirationDates),
		Chains:           make([]models.OptionChainSnapshot, 0, len(snap.Expirations)+c.extraExpirations),
		FetchedAt:        now,
	}
	if chain.ExpirationDates == nil {
		chain.ExpirationDates = []time.Time{}
	}
	for _, exp := range snap.Expirations {
		chain.Chains = append(chain.Chains, buildSnapshot(exp, now))
	}

	var fetched time.Time
	if len(snap.Expirations) > 0 {
		fetched = snap.Expirations[0].Date
	}
	extras := extraExpirationDates(snap.ExpirationDates, fetched, c.extraExpirations)

	// Each goroutine owns one slot, so no locking is needed.
	slots := make([]*models.OptionChainSnapshot, len(extras))
	g, gctx := errgroup.WithContext(ctx)
	for i, date := range extras {
		g.Go(func() error {
			es, err := c.getOptions(gctx, symbol, date)
			if err != nil {
				c.log.Debug().Err(err).Str("ticker", symbol).Time("expiration", date).Msg("skipping expiration")
				return nil
			}
			if len(es.Expirations) == 0 {
				return nil
			}
			s := buildSnapshot(es.Expirations[0], now)
			slots[i] = &s
			return nil
		})
	}
	_ = g.Wait()

	for _, s := range slots {
		if s != nil {
			chain.Chains = append(chain.Chains, *s)
		}
	}
	sort.SliceStable(chain.Chains, func(i, j int) bool {
		return chain.Chains[i].DTE < chain.Chains[j].DTE
	})
	return chain
}

// extraExpirationDates returns the first n listed dates that differ from the
// already fetched one. A zero fetched date excludes nothing.
func extraExpirationDates(dates []time.Time, fetched time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for _, d := range dates {
		if len(out) == n {
			break
		}
		if !fetched.IsZero() && d.Equal(fetched) {
			continue
		}
		out = append(out, d)
	}
	return out
}

func buildSnapshot(exp datasource.Expiration, now time.Time) models.OptionChainSnapshot {
	return models.OptionChainSnapshot{
		ExpirationDate: exp.Date,
		DTE:            DaysToExpiration(exp.Date, now),
		Calls:          normalizeContracts(exp.Calls),
		Puts:           normalizeContracts(exp.Puts),
	}
}

func normalizeContracts(raw []datasource.Contract) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(raw))
	for _, rc := range raw {
		out = append(out, NormalizeContract(rc))
	}
	return out
}

// NormalizeContract converts a raw upstream contract: IV becomes a percentage
// rounded to 2 decimals, mid is derived, volume and open interest default to 0.
func NormalizeContract(rc datasource.Contract) models.OptionContract {
	oc := models.OptionContract{
		ContractSymbol: rc.ContractSymbol,
		Strike:         rc.Strike,
		LastPrice:      rc.LastPrice,
		Bid:            rc.Bid,
		Ask:            rc.Ask,
		Mid:            MidPrice(rc.Bid, rc.Ask, rc.LastPrice),
		Change:         rc.Change,
		Volume:         rc.Volume.Int64,
		OpenInterest:   rc.OpenInterest.Int64,
		InTheMoney:     rc.InTheMoney,
	}
	if rc.ImpliedVolatility.Valid {
		oc.ImpliedVolatility = null.FloatFrom(round2(rc.ImpliedVolatility.Float64 * 100))
	}
	return oc
}

// MidPrice is the bid/ask midpoint rounded to 2 decimals, else the last price,
// else null.
func MidPrice(bid, ask, last null.Float) null.Float {
	if bid.Valid && ask.Valid {
		return null.FloatFrom(round2((bid.Float64 + ask.Float64) / 2))
	}
	return last
}

// DaysToExpiration is the whole number of days from now to expiration, rounded
// to the nearest day. It is zero or negative for expirations at or before now.
func DaysToExpiration(expiration, now time.Time) int {
	return utils.DaysBetween(now, expiration)
}
