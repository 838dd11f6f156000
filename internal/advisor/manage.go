package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/guregu/null/v6"

	"github.com/seenimoa/wheelcommittee/internal/llm"
	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

// manageMaxTokens bounds a roll recommendation; it is much shorter than a
// full watchlist review.
const manageMaxTokens = 4096

// Roll actions.
const (
	ActionRoll  = "ROLL"
	ActionClose = "CLOSE"
	ActionHold  = "HOLD"
)

// Position is one open short option the trader wants managed.
type Position struct {
	Type    string  `json:"type" default:"PUT" validate:"oneof=PUT CALL"`
	Ticker  string  `json:"ticker" validate:"required,max=16"`
	Strike  float64 `json:"strike" validate:"gt=0"`
	Expiry  string  `json:"expiry" validate:"required"`
	Premium float64 `json:"premium" validate:"gte=0"`
	Opened  string  `json:"opened"`
	DTE     int     `json:"dte" validate:"gte=0"`
}

// Prepare normalizes the ticker and type, fills defaults and validates.
func (p *Position) Prepare() error {
	p.Ticker = utils.NormalizeTicker(p.Ticker)
	p.Type = strings.ToUpper(strings.TrimSpace(p.Type))
	if err := defaults.Set(p); err != nil {
		return fmt.Errorf("position defaults: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid position: %s", describe(err))
	}
	return nil
}

// RollRecommendation is the model's verdict on an open position. The new-leg
// fields are null for CLOSE and HOLD. Prices are per share.
type RollRecommendation struct {
	Action     string      `json:"action"`
	CloseCost  null.Float  `json:"closeCost"`
	NewStrike  null.Float  `json:"newStrike"`
	NewExpiry  null.String `json:"newExpiry"`
	NewPremium null.Float  `json:"newPremium"`
	NetCredit  null.Float  `json:"netCredit"`
	NewDTE     null.Int    `json:"newDTE"`
	Rationale  string      `json:"rationale"`
}

// ManageResult is the parsed answer to a roll request.
type ManageResult struct {
	RollRecommendation *RollRecommendation `json:"rollRecommendation"`
	FullAnalysis       string              `json:"fullAnalysis"`
	JSONParsed         bool                `json:"jsonParsed"`
	Truncated          bool                `json:"truncated,omitempty"`
}

// Manage asks the model whether to roll, close or hold position, given live
// data for its ticker. Only a completion failure is returned as an error.
func (a *Advisor) Manage(ctx context.Context, position Position, account Account) (ManageResult, error) {
	if err := position.Prepare(); err != nil {
		return ManageResult{}, err
	}
	if err := account.Prepare(); err != nil {
		return ManageResult{}, err
	}

	tickers := []string{position.Ticker}
	marketText := a.marketText(ctx, models.ModeSpreads, tickers)
	prompt := BuildManagePrompt(position, account, marketText)

	opts := llm.ChatOptions{MaxTokens: manageMaxTokens, Temperature: a.opts.Temperature}
	resp, err := a.llm.Complete(ctx, prompt, &opts)
	if err != nil {
		a.log.Error().Err(err).Str("ticker", position.Ticker).Msg("roll completion failed")
		return ManageResult{}, fmt.Errorf("manage analysis: %w", err)
	}

	res := ParseManageResponse(resp.Content)
	res.Truncated = resp.Truncated()
	ev := a.log.Info().Str("ticker", position.Ticker).Bool("parsed", res.JSONParsed)
	if res.RollRecommendation != nil {
		ev = ev.Str("action", res.RollRecommendation.Action)
	}
	ev.Msg("roll analysis complete")
	return res, nil
}

// BuildManagePrompt assembles the roll recommendation prompt for one position.
func BuildManagePrompt(position Position, account Account, marketText string) string {
	var sb strings.Builder
	sb.WriteString("# Trade Management: Roll Recommendation\n\n")
	sb.WriteString("You are an options trade management specialist. A trader has an open position that needs a rolling recommendation.\n\n")

	sb.WriteString("## Current Open Position\n\n")
	sb.WriteString("| Field | Value |\n|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Type | %s |\n", position.Type))
	sb.WriteString(fmt.Sprintf("| Ticker | %s |\n", position.Ticker))
	sb.WriteString(fmt.Sprintf("| Strike | $%s |\n", utils.FormatNumber(position.Strike)))
	sb.WriteString(fmt.Sprintf("| Expiration | %s |\n", position.Expiry))
	sb.WriteString(fmt.Sprintf("| Premium Received | $%s |\n", utils.FormatNumber(position.Premium)))
	if position.Opened != "" {
		sb.WriteString(fmt.Sprintf("| Date Opened | %s |\n", position.Opened))
	}
	sb.WriteString(fmt.Sprintf("| DTE Remaining | %d days |\n\n", position.DTE))

	sb.WriteString("## Account Context\n\n")
	sb.WriteString("| Setting | Value |\n|---------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Account Size | $%s |\n", utils.FormatDollars(account.AccountSize)))
	sb.WriteString(fmt.Sprintf("| Cash Available | $%s |\n", utils.FormatDollars(account.CashAvailable)))
	sb.WriteString(fmt.Sprintf("| Mode | %s |\n", account.modeLabel()))
	sb.WriteString(fmt.Sprintf("| Experience Level | %s |\n\n", account.ExperienceLevel))

	sb.WriteString("## Live Market Data\n\n")
	sb.WriteString(marketText)
	sb.WriteString("\n\n")

	sb.WriteString(`## Instructions

Analyse this position and recommend a roll. A roll closes the current option and opens a new one at a later expiration, possibly at a different strike.

Consider:
- Current market price relative to the strike
- Time remaining and theta decay
- Whether the stock is approaching the strike
- Rolling out at the same strike versus out-and-down or out-and-up
- The net credit or debit of the roll

## Required Output

Give a brief analysis, then END the response with one fenced ` + "```json" + ` block shaped like:

` + "```json" + `
{
  "rollRecommendation": {
    "action": "ROLL|CLOSE|HOLD",
    "closeCost": 0,
    "newStrike": 0,
    "newExpiry": "YYYY-MM-DD",
    "newPremium": 0,
    "netCredit": 0,
    "newDTE": 0,
    "rationale": "..."
  }
}
` + "```" + `

newStrike, newExpiry, newPremium and newDTE are null for CLOSE and HOLD. netCredit is newPremium minus closeCost. All prices are per share.
`)
	return sb.String()
}

// ParseManageResponse extracts the roll recommendation from the first fenced
// json block in text. RollRecommendation stays nil when the block is missing,
// undecodable or has no recommendation.
func ParseManageResponse(text string) ManageResult {
	res := ManageResult{FullAnalysis: text}

	m := jsonBlock.FindStringSubmatch(text)
	if m == nil {
		return res
	}
	var body struct {
		RollRecommendation *RollRecommendation `json:"rollRecommendation"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &body); err != nil {
		return res
	}

	res.JSONParsed = true
	if rr := body.RollRecommendation; rr != nil {
		rr.Action = strings.ToUpper(strings.TrimSpace(rr.Action))
		res.RollRecommendation = rr
	}
	return res
}
