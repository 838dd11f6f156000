package marketdata

import (
	"context"
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// Realized volatility parameters.
const (
	VolatilityWindow   = 21  // trailing closes per observation
	TradingDaysPerYear = 252 // annualization factor
	MinWindowReturns   = 6   // valid log returns needed to emit an observation
	MinHistoryPoints   = 30  // closes needed before any series is attempted
)

var (
	// ErrInsufficientHistory means fewer than MinHistoryPoints closes were available.
	ErrInsufficientHistory = errors.New("insufficient price history")
	// ErrNoVolatility means every rolling window was skipped.
	ErrNoVolatility = errors.New("no volatility window had enough valid returns")
)

// VolatilitySeries is a ticker's rolling realized volatility. Windows with too
// few valid returns are skipped and counted in SkippedWindows; the series is
// not gap-filled. Err is set when no usable series exists.
type VolatilitySeries struct {
	Observations   []models.VolatilityObservation
	SkippedWindows int
	Err            error
}

// Values returns the volatility of each observation in order.
func (s VolatilitySeries) Values() []float64 {
	out := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Volatility
	}
	return out
}

// HistoricalVolatility computes the rolling 21-day annualized volatility, in
// percent, of daily closes. A non-positive close counts as missing.
func HistoricalVolatility(closes []float64) VolatilitySeries {
	return rollingVolatility(closes, nil)
}

// HistoricalVolatilityFromCandles is HistoricalVolatility over candle closes,
// dating each observation with the candle that follows its window.
func HistoricalVolatilityFromCandles(candles []models.OHLCV) VolatilitySeries {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return rollingVolatility(closes, func(i int) time.Time { return candles[i].Timestamp })
}

func rollingVolatility(closes []float64, dateAt func(int) time.Time) VolatilitySeries {
	if len(closes) < MinHistoryPoints {
		return VolatilitySeries{Observations: []models.VolatilityObservation{}, Err: ErrInsufficientHistory}
	}

	series := VolatilitySeries{
		Observations: make([]models.VolatilityObservation, 0, len(closes)-VolatilityWindow),
	}
	returns := make([]float64, 0, VolatilityWindow-1)
	for i := VolatilityWindow; i < len(closes); i++ {
		window := closes[i-VolatilityWindow : i]
		returns = returns[:0]
		for j := 1; j < len(window); j++ {
			if window[j] > 0 && window[j-1] > 0 {
				returns = append(returns, math.Log(window[j]/window[j-1]))
			}
		}
		if len(returns) < MinWindowReturns {
			series.SkippedWindows++
			continue
		}

		// MeanVariance returns the unbiased (N-1) sample variance.
		_, variance := stat.MeanVariance(returns, nil)
		obs := models.VolatilityObservation{
			Volatility: math.Sqrt(variance*TradingDaysPerYear) * 100,
		}
		if dateAt != nil {
			obs.Date = dateAt(i)
		}
		series.Observations = append(series.Observations, obs)
	}

	if len(series.Observations) == 0 {
		series.Err = ErrNoVolatility
	}
	return series
}

// FetchHistoricalVolatility fetches the lookback span of daily closes for
// ticker and computes its volatility series. Upstream failures land in Err.
func (c *Client) FetchHistoricalVolatility(ctx context.Context, ticker string) VolatilitySeries {
	symbol := utils.NormalizeTicker(ticker)
	to := c.now()
	from := to.AddDate(0, 0, -c.lookbackDays)

	candles, err := c.getHistory(ctx, symbol, from, to)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", symbol).Str("op", "history").Msg("history fetch failed")
		return VolatilitySeries{Observations: []models.VolatilityObservation{}, Err: err}
	}

	series := HistoricalVolatilityFromCandles(candles)
	if series.SkippedWindows > 0 {
		c.log.Debug().Str("ticker", symbol).
			Int("skipped", series.SkippedWindows).
			Int("observations", len(series.Observations)).
			Msg("sparse volatility series")
	}
	return series
}
