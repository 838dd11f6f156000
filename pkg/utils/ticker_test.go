package utils

import (
	"reflect"
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"$TSLA", "TSLA"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := NormalizeTicker(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsValidTicker(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"A", true},
		{"GOOGL", true},
		{"TOOLONG", false},
		{"BRK.B", false},
		{"AB1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidTicker(tt.input); got != tt.want {
			t.Errorf("IsValidTicker(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseWatchlist(t *testing.T) {
	text := "aapl\n MSFT \n\nbrk.b\nZZZZINVALID\nAAPL\nko, pep\r\nT"
	got := ParseWatchlist(text)
	want := []string{"AAPL", "MSFT", "KO", "PEP", "T"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseWatchlist() = %v, want %v", got, want)
	}
}

func TestParseWatchlistEmpty(t *testing.T) {
	if got := ParseWatchlist("  \n\n"); len(got) != 0 {
		t.Errorf("expected empty watchlist, got %v", got)
	}
}

func TestCapTickers(t *testing.T) {
	tickers := []string{"A", "B", "C"}
	if got := CapTickers(tickers, 2); len(got) != 2 {
		t.Errorf("CapTickers(3, 2) len = %d, want 2", len(got))
	}
	if got := CapTickers(tickers, 5); len(got) != 3 {
		t.Errorf("CapTickers(3, 5) len = %d, want 3", len(got))
	}
	if got := CapTickers(tickers, 0); len(got) != 3 {
		t.Errorf("CapTickers(3, 0) should not truncate, got %d", len(got))
	}
}
