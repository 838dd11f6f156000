package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
)

// ── Strategy mode ──

func TestParseStrategyMode(t *testing.T) {
	tests := []struct {
		input string
		want  StrategyMode
		ok    bool
	}{
		{"wheel", ModeWheel, true},
		{"income", ModeWheel, true},
		{"pmcc", ModePMCC, true},
		{"PMCC", ModePMCC, true},
		{"spreads", ModeSpreads, true},
		{"vertical", ModeSpreads, true},
		{"straddle", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseStrategyMode(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseStrategyMode(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStrategyModeValid(t *testing.T) {
	for _, m := range []StrategyMode{ModeWheel, ModePMCC, ModeSpreads} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if StrategyMode("income").Valid() {
		t.Error("aliases are not canonical modes")
	}
}

// ── Failure state ──

func TestMarketDataUnavailable(t *testing.T) {
	failed := Quote{Ticker: "ZZZZ", Error: null.StringFrom("ticker not found")}
	okQuote := Quote{Ticker: "AAPL", Price: null.FloatFrom(200)}
	failedChain := OptionsChain{Ticker: "ZZZZ", Error: null.StringFrom("ticker not found")}
	okChain := OptionsChain{Ticker: "AAPL"}

	tests := []struct {
		name string
		md   MarketData
		want bool
	}{
		{"both failed", MarketData{Stock: failed, Options: failedChain}, true},
		{"quote only failed", MarketData{Stock: failed, Options: okChain}, false},
		{"chain only failed", MarketData{Stock: okQuote, Options: failedChain}, false},
		{"both ok", MarketData{Stock: okQuote, Options: okChain}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.md.Unavailable(); got != tt.want {
				t.Errorf("Unavailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ── Options ──

func TestOptionContractActive(t *testing.T) {
	tests := []struct {
		c    OptionContract
		want bool
	}{
		{OptionContract{}, false},
		{OptionContract{Volume: 1}, true},
		{OptionContract{OpenInterest: 10}, true},
	}
	for _, tt := range tests {
		if got := tt.c.Active(); got != tt.want {
			t.Errorf("%+v.Active() = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestOptionsChainDTEs(t *testing.T) {
	chain := OptionsChain{Chains: []OptionChainSnapshot{{DTE: 0}, {DTE: 7}, {DTE: 35}}}
	got := chain.DTEs()
	if len(got) != 3 || got[0] != 0 || got[1] != 7 || got[2] != 35 {
		t.Errorf("DTEs() = %v", got)
	}
	if len((OptionsChain{}).DTEs()) != 0 {
		t.Error("empty chain should have no DTEs")
	}
}

// ── JSON ──

func TestNullFieldsMarshalAsNull(t *testing.T) {
	q := Quote{
		Ticker:    "ZZZZ",
		FetchedAt: time.Date(2025, 11, 1, 14, 0, 0, 0, time.UTC),
		Error:     null.StringFrom("ticker not found"),
	}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("json.Marshal(Quote) error: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"price":null`, `"beta":null`, `"error":"ticker not found"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}

	r := IVRankResult{Ticker: "AAPL", CurrentIV: null.FloatFrom(27.5), Error: null.StringFrom("Insufficient history")}
	data, _ = json.Marshal(r)
	s = string(data)
	for _, want := range []string{`"currentIV":27.5`, `"ivRank":null`, `"iv52wkHigh":null`, `"observations":0`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}
