package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// OptionContract is one strike of one expiration on one side.
type OptionContract struct {
	ContractSymbol    string     `json:"contractSymbol"`
	Strike            float64    `json:"strike"`
	LastPrice         null.Float `json:"lastPrice"`
	Bid               null.Float `json:"bid"`
	Ask               null.Float `json:"ask"`
	Mid               null.Float `json:"mid"` // bid/ask midpoint, else last price
	Change            null.Float `json:"change"`
	Volume            int64      `json:"volume"`
	OpenInterest      int64      `json:"openInterest"`
	ImpliedVolatility null.Float `json:"impliedVolatility"` // percent, 32.5 = 32.5%
	InTheMoney        bool       `json:"inTheMoney"`
}

// Active reports whether the contract has traded or carries open interest.
func (c OptionContract) Active() bool {
	return c.OpenInterest > 0 || c.Volume > 0
}

// OptionChainSnapshot holds one expiration of a ticker's chain.
// DTE may be zero or negative for an expiration dated today or earlier.
type OptionChainSnapshot struct {
	ExpirationDate time.Time        `json:"expirationDate"`
	DTE            int              `json:"dte"`
	Calls          []OptionContract `json:"calls"`
	Puts           []OptionContract `json:"puts"`
}

// OptionsChain is a ticker's bounded multi-expiration chain, ordered by DTE.
type OptionsChain struct {
	Ticker           string                `json:"ticker"`
	CurrentPrice     null.Float            `json:"currentPrice"`
	ExpirationDates  []time.Time           `json:"expirationDates"`
	TotalExpirations int                   `json:"totalExpirations"`
	Chains           []OptionChainSnapshot `json:"chains"`
	FetchedAt        time.Time             `json:"fetchedAt"`
	Error            null.String           `json:"error"`
}

// Failed reports whether the chain fetch failed entirely.
func (o OptionsChain) Failed() bool { return o.Error.Valid }

// DTEs lists the DTE of every fetched expiration in chain order.
func (o OptionsChain) DTEs() []int {
	out := make([]int, 0, len(o.Chains))
	for _, c := range o.Chains {
		out = append(out, c.DTE)
	}
	return out
}

// StrategyMode selects which strategy-specific view the presenter renders.
type StrategyMode string

const (
	ModeWheel   StrategyMode = "wheel"
	ModePMCC    StrategyMode = "pmcc"
	ModeSpreads StrategyMode = "spreads"
)

// Valid reports whether m is a known strategy mode.
func (m StrategyMode) Valid() bool {
	switch m {
	case ModeWheel, ModePMCC, ModeSpreads:
		return true
	}
	return false
}

// ParseStrategyMode maps user input (including the original UI labels) to a mode.
func ParseStrategyMode(s string) (StrategyMode, bool) {
	switch s {
	case "wheel", "wheel-income", "wheel_income", "income":
		return ModeWheel, true
	case "pmcc", "PMCC":
		return ModePMCC, true
	case "spreads", "spread", "vertical", "verticals":
		return ModeSpreads, true
	}
	return "", false
}
