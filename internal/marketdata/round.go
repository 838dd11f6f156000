package marketdata

import "github.com/shopspring/decimal"

// round rounds the decimal value of v half away from zero to places decimals.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func round2(v float64) float64 { return round(v, 2) }

func round1(v float64) float64 { return round(v, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
