// Package utils provides common utility functions for wheelcommittee.
package utils

import (
	"regexp"
	"strings"
)

// MaxTickers is the largest watchlist any single request may fan out over.
const MaxTickers = 20

// usTicker matches plain US equity symbols (1-5 letters, no class suffix).
var usTicker = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTicker upper-cases and trims a user-input ticker.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	return strings.TrimPrefix(ticker, "$")
}

// IsValidTicker reports whether a normalized ticker is a plain 1-5 letter symbol.
func IsValidTicker(ticker string) bool {
	return usTicker.MatchString(ticker)
}

// ParseWatchlist splits a free-text watchlist (one symbol per line, commas and
// spaces also accepted) into normalized tickers. Invalid entries are dropped and
// duplicates removed, preserving first-seen order.
func ParseWatchlist(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ',' || r == ' ' || r == '\t'
	})
	return NormalizeTickers(fields)
}

// NormalizeTickers normalizes, validates and de-duplicates a ticker list.
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = NormalizeTicker(t)
		if !IsValidTicker(t) || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CapTickers truncates tickers to at most n entries.
func CapTickers(tickers []string, n int) []string {
	if n > 0 && len(tickers) > n {
		return tickers[:n]
	}
	return tickers
}
