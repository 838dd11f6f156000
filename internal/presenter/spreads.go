package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

const (
	putFloorRatio = 0.85 // OTM puts at or above this share of price
	callCeilRatio = 1.15 // OTM calls at or below this share of price
	spreadRows    = 10
)

// renderSpreads lists active OTM puts and calls near the money for every
// expiration in the 20-60 DTE window.
func renderSpreads(ticker string, md models.MarketData) string {
	var sb strings.Builder
	q := md.Stock

	writeTitle(&sb, ticker, q)
	writePrice(&sb, q, true)
	writeRange(&sb, q)
	writeAverages(&sb, q)
	writeBeta(&sb, q)
	writeMarketCap(&sb, q)

	if len(md.Options.Chains) == 0 {
		writeChainError(&sb, md.Options, ". Use estimates.")
		return sb.String()
	}

	putFloor := func(models.OptionContract) bool { return true }
	callCeiling := putFloor
	if price, ok := referencePrice(md); ok {
		putFloor = func(c models.OptionContract) bool { return c.Strike >= price*putFloorRatio }
		callCeiling = func(c models.OptionContract) bool { return c.Strike <= price*callCeilRatio }
	}

	window := chainsWhere(md.Options.Chains, inShortWindow)
	if len(window) == 0 {
		dtes := make([]string, 0, len(md.Options.Chains))
		for _, d := range md.Options.DTEs() {
			dtes = append(dtes, strconv.Itoa(d))
		}
		sb.WriteString(fmt.Sprintf("\n**Options Chains:** No expirations in the 20-60 DTE window found. Available DTEs: %s. Use closest available.\n",
			strings.Join(dtes, ", ")))
		return sb.String()
	}

	sb.WriteString("\n**Options Chains (20-60 DTE) — For Credit Spreads:**\n")
	for _, chain := range window {
		sb.WriteString("\n**" + expiryHeading(chain) + "**\n")

		if puts := pick(chain.Puts, true, spreadRows, outOfTheMoney, active, putFloor); len(puts) > 0 {
			sb.WriteString("\nPUTS (OTM — for Bull Put Spreads):\n")
			writeTable(&sb, otmColumns, puts)
		}
		if calls := pick(chain.Calls, false, spreadRows, outOfTheMoney, active, callCeiling); len(calls) > 0 {
			sb.WriteString("\nCALLS (OTM — for Bear Call Spreads):\n")
			writeTable(&sb, otmColumns, calls)
		}
	}
	return sb.String()
}
