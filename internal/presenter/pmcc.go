package presenter

import (
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

const (
	leapsMinDTE    = 300  // LEAPS chains have DTE strictly above this
	deepITMRatio   = 0.90 // LEAPS strikes at or below this share of price
	shortLegMinDTE = 20
	shortLegMaxDTE = 60
	pmccRows       = 8
)

// renderPMCC separates deep in-the-money LEAPS calls for the long leg from
// active out-of-the-money near-term calls for the short leg.
func renderPMCC(ticker string, md models.MarketData) string {
	var sb strings.Builder
	q := md.Stock

	writeTitle(&sb, ticker, q)
	writePrice(&sb, q, false)
	writeRange(&sb, q)
	writeDividend(&sb, q)
	writeMarketCap(&sb, q)
	writeShareCost(&sb, q)

	if len(md.Options.Chains) == 0 {
		writeChainError(&sb, md.Options, ". Use estimates.")
		return sb.String()
	}

	price, hasPrice := referencePrice(md)
	deepITM := func(c models.OptionContract) bool {
		return c.InTheMoney && hasPrice && c.Strike <= price*deepITMRatio
	}

	leaps := chainsWhere(md.Options.Chains, func(dte int) bool { return dte > leapsMinDTE })
	if len(leaps) > 0 {
		sb.WriteString("\n**LEAPS Calls (DTE > 300) — For Long Leg:**\n")
		for _, chain := range leaps {
			sb.WriteString("\n" + expiryHeading(chain) + "\n")
			if calls := pick(chain.Calls, true, pmccRows, deepITM); len(calls) > 0 {
				writeTable(&sb, leapsColumns, calls)
			} else {
				sb.WriteString("(No deep ITM calls found for this expiry)\n")
			}
		}
	} else {
		sb.WriteString("\n**LEAPS:** No expirations with DTE > 300 found in the fetched data. Use estimates based on typical LEAPS pricing.\n")
	}

	short := chainsWhere(md.Options.Chains, inShortWindow)
	if len(short) > 0 {
		sb.WriteString("\n**Short-Term Calls (20-60 DTE) — For Short Leg:**\n")
		for _, chain := range short {
			sb.WriteString("\n" + expiryHeading(chain) + "\n")
			if calls := pick(chain.Calls, false, pmccRows, outOfTheMoney, active); len(calls) > 0 {
				writeTable(&sb, otmColumns, calls)
			}
		}
	}
	return sb.String()
}

func inShortWindow(dte int) bool {
	return dte >= shortLegMinDTE && dte <= shortLegMaxDTE
}

func chainsWhere(chains []models.OptionChainSnapshot, keep func(dte int) bool) []models.OptionChainSnapshot {
	var out []models.OptionChainSnapshot
	for _, c := range chains {
		if keep(c.DTE) {
			out = append(out, c)
		}
	}
	return out
}
