package marketdata

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/floats"

	"github.com/seenimoa/wheelcommittee/internal/datasource"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// Number of contracts nearest the money averaged into current IV.
const atmContracts = 4

// Error texts reported in IVRankResult.Error.
const (
	MsgNoOptionsData       = "No options data"
	MsgNoIVData            = "No IV data"
	MsgInsufficientHistory = "Insufficient history"
	MsgNoVolatility        = "Could not compute HV"
)

// CurrentIV averages the implied volatility of the (up to) four contracts with
// positive IV whose strikes are closest to price. Contracts carry the raw
// upstream 0-1 IV; the result is a percentage rounded to 1 decimal.
func CurrentIV(price float64, contracts []datasource.Contract) (float64, bool) {
	usable := make([]datasource.Contract, 0, len(contracts))
	for _, c := range contracts {
		if c.ImpliedVolatility.Valid && c.ImpliedVolatility.Float64 > 0 {
			usable = append(usable, c)
		}
	}
	if len(usable) == 0 {
		return 0, false
	}

	sort.SliceStable(usable, func(i, j int) bool {
		return math.Abs(usable[i].Strike-price) < math.Abs(usable[j].Strike-price)
	})
	if len(usable) > atmContracts {
		usable = usable[:atmContracts]
	}

	var sum float64
	for _, c := range usable {
		sum += c.ImpliedVolatility.Float64
	}
	return round1(sum / float64(len(usable)) * 100), true
}

// Rank places a current IV within a volatility series.
type Rank struct {
	IVRank       float64
	IVPercentile float64
	High         float64
	Low          float64
}

// RankIV computes IV rank and percentile of currentIV against series. Rank is
// 50 for a flat series. Both are whole numbers clamped to [0, 100]. It
// returns false for an empty series.
func RankIV(currentIV float64, series []float64) (Rank, bool) {
	if len(series) == 0 {
		return Rank{}, false
	}

	lo, hi := floats.Min(series), floats.Max(series)
	rank := 50.0
	if hi > lo {
		rank = math.Round((currentIV - lo) / (hi - lo) * 100)
	}

	below := 0
	for _, v := range series {
		if v < currentIV {
			below++
		}
	}
	percentile := math.Round(float64(below) / float64(len(series)) * 100)

	return Rank{
		IVRank:       clamp(rank, 0, 100),
		IVPercentile: clamp(percentile, 0, 100),
		High:         round1(hi),
		Low:          round1(lo),
	}, true
}

// FetchIVRank computes current IV from the nearest expiration and ranks it
// against the ticker's realized volatility history. Missing prerequisites
// leave the dependent fields null and set Error.
func (c *Client) FetchIVRank(ctx context.Context, ticker string) models.IVRankResult {
	symbol := utils.NormalizeTicker(ticker)
	res := models.IVRankResult{Ticker: symbol}

	snap, err := c.getOptions(ctx, symbol, time.Time{})
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", symbol).Str("op", "ivrank").Msg("options fetch failed")
		res.Error = null.StringFrom(err.Error())
		return res
	}
	if !snap.Price.Valid || snap.Price.Float64 == 0 || len(snap.Expirations) == 0 {
		res.Error = null.StringFrom(MsgNoOptionsData)
		return res
	}

	nearest := snap.Expirations[0]
	contracts := make([]datasource.Contract, 0, len(nearest.Calls)+len(nearest.Puts))
	contracts = append(contracts, nearest.Calls...)
	contracts = append(contracts, nearest.Puts...)
	iv, ok := CurrentIV(snap.Price.Float64, contracts)
	if !ok {
		res.Error = null.StringFrom(MsgNoIVData)
		return res
	}
	res.CurrentIV = null.FloatFrom(iv)

	series := c.FetchHistoricalVolatility(ctx, symbol)
	res.Observations = len(series.Observations)
	res.SkippedWindows = series.SkippedWindows
	switch {
	case errors.Is(series.Err, ErrInsufficientHistory):
		res.Error = null.StringFrom(MsgInsufficientHistory)
		return res
	case errors.Is(series.Err, ErrNoVolatility):
		res.Error = null.StringFrom(MsgNoVolatility)
		return res
	case series.Err != nil:
		res.Error = null.StringFrom(series.Err.Error())
		return res
	}

	rank, _ := RankIV(iv, series.Values())
	res.IVRank = null.FloatFrom(rank.IVRank)
	res.IVPercentile = null.FloatFrom(rank.IVPercentile)
	res.IV52WeekHigh = null.FloatFrom(rank.High)
	res.IV52WeekLow = null.FloatFrom(rank.Low)
	return res
}
