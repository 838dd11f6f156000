package marketdata

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

func closesOf(candles []models.OHLCV) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func TestHistoricalVolatilityInsufficient(t *testing.T) {
	for _, n := range []int{0, 1, 25, 29} {
		series := HistoricalVolatility(closesOf(alternatingCandles(n)))
		if !errors.Is(series.Err, ErrInsufficientHistory) {
			t.Errorf("n=%d: err = %v, want ErrInsufficientHistory", n, series.Err)
		}
		if len(series.Observations) != 0 {
			t.Errorf("n=%d: expected empty series, got %d", n, len(series.Observations))
		}
	}
}

func TestHistoricalVolatilityAlternating(t *testing.T) {
	series := HistoricalVolatility(closesOf(alternatingCandles(60)))
	if series.Err != nil {
		t.Fatalf("unexpected error: %v", series.Err)
	}
	if len(series.Observations) != 60-VolatilityWindow {
		t.Fatalf("observations = %d, want %d", len(series.Observations), 60-VolatilityWindow)
	}
	if series.SkippedWindows != 0 {
		t.Errorf("skipped = %d, want 0", series.SkippedWindows)
	}

	// 20 returns of +/- ln(1.1) with zero mean.
	r := math.Log(1.1)
	want := math.Sqrt(20*r*r/19*252) * 100
	for i, v := range series.Values() {
		if math.Abs(v-want) > 1e-6 {
			t.Fatalf("observation %d = %f, want %f", i, v, want)
		}
	}
}

func TestHistoricalVolatilityFlatPrices(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100
	}
	series := HistoricalVolatility(closes)
	for _, v := range series.Values() {
		if v != 0 {
			t.Fatalf("flat prices should have zero volatility, got %f", v)
		}
	}
}

func TestHistoricalVolatilitySparse(t *testing.T) {
	closes := closesOf(alternatingCandles(40))
	for i := 5; i <= 20; i++ {
		closes[i] = 0
	}

	series := HistoricalVolatility(closes)
	if series.Err != nil {
		t.Fatalf("unexpected error: %v", series.Err)
	}
	if series.SkippedWindows == 0 {
		t.Fatal("expected skipped windows")
	}
	if got := len(series.Observations) + series.SkippedWindows; got != 40-VolatilityWindow {
		t.Errorf("observations + skipped = %d, want %d", got, 40-VolatilityWindow)
	}
	for _, v := range series.Values() {
		if v <= 0 {
			t.Errorf("skipped windows must not be zero-filled, got %f", v)
		}
	}
}

func TestHistoricalVolatilityAllMissing(t *testing.T) {
	series := HistoricalVolatility(make([]float64, 30))
	if !errors.Is(series.Err, ErrNoVolatility) {
		t.Fatalf("err = %v, want ErrNoVolatility", series.Err)
	}
	if series.SkippedWindows != 30-VolatilityWindow {
		t.Errorf("skipped = %d, want %d", series.SkippedWindows, 30-VolatilityWindow)
	}
}

func TestHistoricalVolatilityFromCandlesDates(t *testing.T) {
	candles := alternatingCandles(35)
	series := HistoricalVolatilityFromCandles(candles)
	if len(series.Observations) != 35-VolatilityWindow {
		t.Fatalf("observations = %d", len(series.Observations))
	}
	if !series.Observations[0].Date.Equal(candles[VolatilityWindow].Timestamp) {
		t.Errorf("first observation dated %v, want %v", series.Observations[0].Date, candles[VolatilityWindow].Timestamp)
	}
}

func TestFetchHistoricalVolatility(t *testing.T) {
	src := newFakeSource()
	src.history["AAPL"] = alternatingCandles(252)
	c := newTestClient(src)

	series := c.FetchHistoricalVolatility(context.Background(), "AAPL")
	if series.Err != nil {
		t.Fatalf("unexpected error: %v", series.Err)
	}
	if len(series.Observations) != 252-VolatilityWindow {
		t.Errorf("observations = %d", len(series.Observations))
	}

	failed := c.FetchHistoricalVolatility(context.Background(), "NOPE")
	if failed.Err == nil || len(failed.Observations) != 0 {
		t.Errorf("expected upstream error and empty series, got %+v", failed)
	}
}
