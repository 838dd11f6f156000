package utils

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/guregu/null/v6"
)

// Dash is rendered in tables for a missing value.
const Dash = "—"

// FormatNumber renders f with the shortest representation that round-trips,
// so 1.5 prints as "1.5" and 180 as "180".
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatNull renders a nullable number, or Dash when it is null.
func FormatNull(f null.Float) string {
	if !f.Valid {
		return Dash
	}
	return FormatNumber(f.Float64)
}

// FormatFixed renders a nullable number with fixed decimals, or fallback when null.
func FormatFixed(f null.Float, decimals int, fallback string) string {
	if !f.Valid {
		return fallback
	}
	return strconv.FormatFloat(f.Float64, 'f', decimals, 64)
}

// FormatSigned renders f with an explicit sign and two decimals ("+1.25", "-0.40").
func FormatSigned(f float64) string {
	if f >= 0 {
		return fmt.Sprintf("+%.2f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

// FormatDollars renders an amount with thousands separators, e.g. 23,456.5.
func FormatDollars(amount float64) string {
	return humanize.CommafWithDigits(amount, 2)
}

// FormatBillions renders a raw amount in billions with one decimal ("2.9B").
func FormatBillions(amount float64) string {
	return fmt.Sprintf("%.1fB", amount/1e9)
}
