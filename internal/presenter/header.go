package presenter

import (
	"fmt"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

func writeTitle(sb *strings.Builder, ticker string, q models.Quote) {
	sb.WriteString("### " + ticker)
	if q.Name.Valid && q.Name.String != "" {
		sb.WriteString(" — " + q.Name.String)
	}
	sb.WriteString("\n")
}

func writePrice(sb *strings.Builder, q models.Quote, withChange bool) {
	if !q.Price.Valid {
		return
	}
	sb.WriteString("**Current Price:** $" + utils.FormatNumber(q.Price.Float64))
	if withChange && q.Change.Valid {
		sb.WriteString(fmt.Sprintf(" (%s, %s%%)", utils.FormatSigned(q.Change.Float64), utils.FormatFixed(q.ChangePercent, 2, "?")))
	}
	sb.WriteString("\n")
}

func writeRange(sb *strings.Builder, q models.Quote) {
	if !q.FiftyTwoWeekHigh.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("**52-Week Range:** $%s — $%s\n",
		utils.FormatNull(q.FiftyTwoWeekLow), utils.FormatNumber(q.FiftyTwoWeekHigh.Float64)))
}

func writeAverages(sb *strings.Builder, q models.Quote) {
	if !q.FiftyDayAverage.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("**50-Day Avg:** $%.2f | **200-Day Avg:** $%s\n",
		q.FiftyDayAverage.Float64, utils.FormatFixed(q.TwoHundredDayAverage, 2, "N/A")))
}

func writeDividend(sb *strings.Builder, q models.Quote) {
	if !q.DividendYield.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("**Dividend Yield:** %.2f%%\n", q.DividendYield.Float64*100))
}

func writeMarketCap(sb *strings.Builder, q models.Quote) {
	if !q.MarketCap.Valid {
		return
	}
	sb.WriteString("**Market Cap:** $" + utils.FormatBillions(q.MarketCap.Float64) + "\n")
}

func writeBeta(sb *strings.Builder, q models.Quote) {
	if !q.Beta.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("**Beta:** %.2f\n", q.Beta.Float64))
}

func writePE(sb *strings.Builder, q models.Quote) {
	if !q.TrailingPE.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("**P/E (TTM):** %.1f | **Forward P/E:** %s\n",
		q.TrailingPE.Float64, utils.FormatFixed(q.ForwardPE, 1, "N/A")))
}

func writeShareCost(sb *strings.Builder, q models.Quote) {
	cost := "N/A"
	if q.Price.Valid {
		cost = utils.FormatDollars(q.Price.Float64 * 100)
	}
	sb.WriteString("**Cost of 100 Shares:** $" + cost + "\n")
}

// writeChainError notes a failed chain fetch. suffix follows the reason.
func writeChainError(sb *strings.Builder, o models.OptionsChain, suffix string) {
	if !o.Error.Valid {
		return
	}
	sb.WriteString(fmt.Sprintf("\n**Options Chain:** Unavailable (%s)%s\n", o.Error.String, suffix))
}
