package advisor

import (
	"fmt"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// MarketDataUnavailable replaces the market data section when no ticker
// could be fetched.
const MarketDataUnavailable = "**Live market data unavailable.** Use your best estimates.\n"

// SystemPrompt frames every analysis request.
const SystemPrompt = `You are the **Wheel Committee**, a panel of options-income specialists reviewing a retail trader's watchlist.

## Guidelines
1. Use the live market data provided. Never estimate a value that is given to you.
2. If a ticker is marked DATA UNAVAILABLE, use your best estimates and say so.
3. Size every trade against the account's cash and collateral limits.
4. Prefer liquid strikes: meaningful open interest and a tight bid/ask spread.
5. Flag earnings, ex-dividend dates and IV crush risk when they fall inside the trade window.
6. When uncertain, say so. Never fabricate prices.`

// keys names the JSON fields a mode's structured answer uses.
type keys struct {
	trades  string
	summary string
}

var modeKeys = map[models.StrategyMode]keys{
	models.ModeWheel:   {trades: "trades", summary: "summary"},
	models.ModePMCC:    {trades: "pmccTrades", summary: "pmccSummary"},
	models.ModeSpreads: {trades: "spreadTrades", summary: "spreadsSummary"},
}

func keysFor(mode models.StrategyMode) keys {
	if k, ok := modeKeys[mode]; ok {
		return k
	}
	return modeKeys[models.ModeWheel]
}

var modeHeadings = map[models.StrategyMode]string{
	models.ModeWheel:   "Wheel Strategy Analysis (cash-secured puts and covered calls)",
	models.ModePMCC:    "Poor Man's Covered Call Analysis (LEAPS long call plus short near-term calls)",
	models.ModeSpreads: "Vertical Credit Spread Analysis (bull put, bear call and iron condor)",
}

var modeFocus = map[models.StrategyMode]string{
	models.ModeWheel: `- Sell puts near the target delta and DTE on stocks you are willing to own.
- Strike times 100 must fit inside available cash for cash-secured accounts.
- Score each ticker for wheel suitability and rank the trades.`,
	models.ModePMCC: `- Pick a deep ITM LEAPS call (300+ DTE, delta 0.70-0.85) as the long leg.
- Pick a short OTM call 20-60 DTE above the LEAPS breakeven.
- Report the net debit, max profit and the breakeven of the diagonal.`,
	models.ModeSpreads: `- Target 30-45 DTE with short strikes around 0.15-0.25 delta.
- Collect at least one third of the spread width as credit.
- Estimate probability of profit as 1 - credit / width.`,
}

// BuildPrompt assembles the user prompt for one analysis request.
func BuildPrompt(mode models.StrategyMode, account Account, tickers []string, marketText string) string {
	if !mode.Valid() {
		mode = models.ModeWheel
	}
	k := keysFor(mode)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", modeHeadings[mode]))
	sb.WriteString("## Focus\n\n")
	sb.WriteString(modeFocus[mode])
	sb.WriteString("\n\n")

	sb.WriteString("## Account Context\n\n")
	sb.WriteString("| Setting | Value |\n|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Account Size | $%s |\n", utils.FormatDollars(account.AccountSize)))
	sb.WriteString(fmt.Sprintf("| Cash Available | $%s |\n", utils.FormatDollars(account.CashAvailable)))
	sb.WriteString(fmt.Sprintf("| Mode | %s |\n", account.modeLabel()))
	sb.WriteString(fmt.Sprintf("| Experience Level | %s |\n", account.ExperienceLevel))
	sb.WriteString(fmt.Sprintf("| Target Monthly Income | $%s |\n", utils.FormatDollars(account.TargetMonthlyIncome)))
	sb.WriteString(fmt.Sprintf("| Market Outlook | %s |\n", account.MarketOutlook))
	sb.WriteString(fmt.Sprintf("| Target Delta | %s |\n", utils.FormatNumber(account.TargetDelta)))
	sb.WriteString(fmt.Sprintf("| Target DTE | %d days |\n\n", account.TargetDTE))

	sb.WriteString("## Watchlist to Analyze\n\n")
	for _, t := range tickers {
		sb.WriteString(fmt.Sprintf("- %s\n", t))
	}
	sb.WriteString("\n")

	if marketText != "" {
		sb.WriteString("## Live Market Data (from Yahoo Finance)\n\n")
		sb.WriteString("**IMPORTANT: Use the live data below. Do NOT estimate values that are provided here.**\n\n")
		sb.WriteString(marketText)
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Required Output\n\n")
	sb.WriteString("Give your analysis for each ticker, then END the response with one fenced ```json block shaped like:\n\n")
	sb.WriteString("```json\n")
	sb.WriteString(fmt.Sprintf("{\n  %q: [ { \"ticker\": \"...\", \"strategy\": \"...\", \"strike\": 0, \"expiration\": \"YYYY-MM-DD\", \"premium\": 0, \"rationale\": \"...\" } ],\n", k.trades))
	sb.WriteString(fmt.Sprintf("  %q: { \"totalPremium\": 0, \"capitalRequired\": 0, \"notes\": \"...\" }\n}\n", k.summary))
	sb.WriteString("```\n")
	return sb.String()
}
