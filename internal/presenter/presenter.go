// Package presenter renders batch market data as compact markdown, one section
// per requested ticker, shaped for the strategy being evaluated. The output is
// embedded verbatim in the LLM prompt.
package presenter

import (
	"fmt"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// SectionSeparator joins rendered sections.
const SectionSeparator = "\n---\n\n"

// Section is the rendered view of one ticker.
type Section struct {
	Ticker      string `json:"ticker"`
	Unavailable bool   `json:"unavailable"`
	Text        string `json:"text"`
}

type renderFunc func(ticker string, data models.MarketData) string

// Render produces one section per distinct requested ticker, in request order.
// A ticker that is missing from data, or whose quote and chain both failed,
// renders as a DATA UNAVAILABLE placeholder. An unknown mode renders as wheel.
func Render(mode models.StrategyMode, tickers []string, data map[string]models.MarketData) []Section {
	render := rendererFor(mode)

	seen := make(map[string]bool, len(tickers))
	sections := make([]Section, 0, len(tickers))
	for _, t := range tickers {
		ticker := utils.NormalizeTicker(t)
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true

		md, ok := data[ticker]
		switch {
		case !ok:
			sections = append(sections, unavailable(ticker, "no data returned"))
		case md.Unavailable():
			sections = append(sections, unavailable(ticker, md.Stock.Error.String))
		default:
			sections = append(sections, Section{Ticker: ticker, Text: render(ticker, md)})
		}
	}
	return sections
}

// Join concatenates section texts with SectionSeparator.
func Join(sections []Section) string {
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	return strings.Join(texts, SectionSeparator)
}

// RenderText is Join(Render(mode, tickers, data)).
func RenderText(mode models.StrategyMode, tickers []string, data map[string]models.MarketData) string {
	return Join(Render(mode, tickers, data))
}

func rendererFor(mode models.StrategyMode) renderFunc {
	switch mode {
	case models.ModePMCC:
		return renderPMCC
	case models.ModeSpreads:
		return renderSpreads
	default:
		return renderWheel
	}
}

func unavailable(ticker, reason string) Section {
	return Section{
		Ticker:      ticker,
		Unavailable: true,
		Text:        fmt.Sprintf("### %s — DATA UNAVAILABLE\nFailed to fetch live data: %s. Use your best estimates.\n", ticker, reason),
	}
}

// referencePrice is the price used for strike filters: the quote's price,
// falling back to the chain's underlying price when the quote failed.
func referencePrice(md models.MarketData) (float64, bool) {
	if md.Stock.Price.Valid {
		return md.Stock.Price.Float64, true
	}
	if md.Options.CurrentPrice.Valid {
		return md.Options.CurrentPrice.Float64, true
	}
	return 0, false
}

func expiryHeading(chain models.OptionChainSnapshot) string {
	return fmt.Sprintf("Expiry: %s (%d DTE)", utils.FormatExpiry(chain.ExpirationDate), chain.DTE)
}
