package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// VolatilityObservation is one trading day's trailing realized volatility,
// annualized and expressed as a percentage.
type VolatilityObservation struct {
	Date       time.Time `json:"date"`
	Volatility float64   `json:"volatility"`
}

// IVRankResult classifies a ticker's current ATM implied volatility against its
// one-year realized volatility history. Missing prerequisites leave the dependent
// fields null and populate Error.
type IVRankResult struct {
	Ticker         string      `json:"ticker"`
	CurrentIV      null.Float  `json:"currentIV"`
	IVRank         null.Float  `json:"ivRank"`
	IVPercentile   null.Float  `json:"ivPercentile"`
	IV52WeekHigh   null.Float  `json:"iv52wkHigh"`
	IV52WeekLow    null.Float  `json:"iv52wkLow"`
	Observations   int         `json:"observations"`
	SkippedWindows int         `json:"skippedWindows"`
	Error          null.String `json:"error"`
}
