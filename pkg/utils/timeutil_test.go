package utils

import (
	"testing"
	"time"

	"github.com/guregu/null/v6"
)

func TestDaysBetween(t *testing.T) {
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		to   time.Time
		want int
	}{
		{"same instant", now, 0},
		{"expiry later today rounds to zero", time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC), 0},
		{"tomorrow midnight", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), 0},
		{"two days", time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), 1},
		{"thirty-six days", time.Date(2026, 11, 20, 14, 0, 0, 0, time.UTC), 36},
		{"past expiry", time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(now, tt.to); got != tt.want {
				t.Errorf("DaysBetween() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFixedClock(t *testing.T) {
	pinned := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := FixedClock(pinned)
	if !clock().Equal(pinned) {
		t.Errorf("FixedClock() = %v, want %v", clock(), pinned)
	}
}

func TestFormatExpiry(t *testing.T) {
	exp := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)
	if got := FormatExpiry(exp); got != "Fri, Nov 21, 2025" {
		t.Errorf("FormatExpiry() = %q", got)
	}
}

func TestMarketStatus(t *testing.T) {
	tests := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 2, 21, 10, 0, 0, 0, ET), "CLOSED (Weekend)"},
		{time.Date(2026, 2, 18, 8, 0, 0, 0, ET), "PRE-MARKET"},
		{time.Date(2026, 2, 18, 9, 29, 0, 0, ET), "PRE-MARKET"},
		{time.Date(2026, 2, 18, 9, 30, 0, 0, ET), "OPEN"},
		{time.Date(2026, 2, 18, 11, 0, 0, 0, ET), "OPEN"},
		{time.Date(2026, 2, 18, 16, 0, 0, 0, ET), "CLOSED"},
		{time.Date(2026, 2, 18, 17, 0, 0, 0, ET), "CLOSED"},
	}
	for _, tt := range tests {
		if got := MarketStatus(tt.at); got != tt.want {
			t.Errorf("MarketStatus(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatNumber(180); got != "180" {
		t.Errorf("FormatNumber(180) = %q", got)
	}
	if got := FormatNumber(1.5); got != "1.5" {
		t.Errorf("FormatNumber(1.5) = %q", got)
	}
	if got := FormatNull(null.Float{}); got != Dash {
		t.Errorf("FormatNull(null) = %q", got)
	}
	if got := FormatFixed(null.FloatFrom(1.234), 2, "N/A"); got != "1.23" {
		t.Errorf("FormatFixed() = %q", got)
	}
	if got := FormatFixed(null.Float{}, 2, "N/A"); got != "N/A" {
		t.Errorf("FormatFixed(null) = %q", got)
	}
	if got := FormatSigned(1.254); got != "+1.25" {
		t.Errorf("FormatSigned(1.254) = %q", got)
	}
	if got := FormatSigned(-0.4); got != "-0.40" {
		t.Errorf("FormatSigned(-0.4) = %q", got)
	}
	if got := FormatDollars(15000); got != "15,000" {
		t.Errorf("FormatDollars(15000) = %q", got)
	}
	if got := FormatBillions(2.93e12); got != "2930.0B" {
		t.Errorf("FormatBillions() = %q", got)
	}
}
