package presenter

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

const (
	wheelBand = 0.15 // max |strike - price| / price
	wheelRows = 8
)

// renderWheel shows every fetched expiration with active near-the-money puts
// (strike descending) and calls (strike ascending).
func renderWheel(ticker string, md models.MarketData) string {
	var sb strings.Builder
	q := md.Stock

	writeTitle(&sb, ticker, q)
	writePrice(&sb, q, true)
	writeRange(&sb, q)
	writeAverages(&sb, q)
	writeDividend(&sb, q)
	writeMarketCap(&sb, q)
	writeBeta(&sb, q)
	writePE(&sb, q)

	if len(md.Options.Chains) == 0 {
		writeChainError(&sb, md.Options, "")
		return sb.String()
	}

	nearMoney := func(models.OptionContract) bool { return true }
	if price, ok := referencePrice(md); ok && price > 0 {
		nearMoney = func(c models.OptionContract) bool {
			return math.Abs(c.Strike-price)/price < wheelBand
		}
	}

	sb.WriteString(fmt.Sprintf("\n**Options Chain** (%d expirations available):\n", md.Options.TotalExpirations))
	for _, chain := range md.Options.Chains {
		sb.WriteString("\n**" + expiryHeading(chain) + "**\n")

		if puts := pick(chain.Puts, true, wheelRows, active, nearMoney); len(puts) > 0 {
			sb.WriteString("PUTS (near-money):\n")
			writeTable(&sb, nearMoneyColumns, puts)
		}
		if calls := pick(chain.Calls, false, wheelRows, active, nearMoney); len(calls) > 0 {
			sb.WriteString("CALLS (near-money):\n")
			writeTable(&sb, nearMoneyColumns, calls)
		}
	}
	return sb.String()
}
