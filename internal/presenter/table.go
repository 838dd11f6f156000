package presenter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/seenimoa/wheelcommittee/pkg/models"
	"github.com/seenimoa/wheelcommittee/pkg/utils"
)

type column struct {
	title string
	cell  func(models.OptionContract) string
}

var (
	colStrike = column{"Strike", func(c models.OptionContract) string { return "$" + utils.FormatNumber(c.Strike) }}
	colBid    = column{"Bid", func(c models.OptionContract) string { return utils.FormatNull(c.Bid) }}
	colAsk    = column{"Ask", func(c models.OptionContract) string { return utils.FormatNull(c.Ask) }}
	colMid    = column{"Mid", func(c models.OptionContract) string { return utils.FormatNull(c.Mid) }}
	colLast   = column{"Last", func(c models.OptionContract) string { return utils.FormatNull(c.LastPrice) }}
	colIV     = column{"IV%", func(c models.OptionContract) string { return utils.FormatNull(c.ImpliedVolatility) }}
	colOI     = column{"OI", func(c models.OptionContract) string { return strconv.FormatInt(c.OpenInterest, 10) }}
	colVol    = column{"Vol", func(c models.OptionContract) string { return strconv.FormatInt(c.Volume, 10) }}
	colITM    = column{"ITM", func(c models.OptionContract) string {
		if c.InTheMoney {
			return "Y"
		}
		return "N"
	}}
)

var (
	nearMoneyColumns = []column{colStrike, colBid, colAsk, colMid, colLast, colIV, colOI, colVol, colITM}
	leapsColumns     = []column{colStrike, colBid, colAsk, colMid, colLast, colIV, colOI, colITM}
	otmColumns       = []column{colStrike, colBid, colAsk, colMid, colLast, colIV, colOI, colVol}
)

// writeTable renders rows as a markdown table.
func writeTable(sb *strings.Builder, cols []column, rows []models.OptionContract) {
	sb.WriteString("|")
	for _, c := range cols {
		sb.WriteString(" " + c.title + " |")
	}
	sb.WriteString("\n|")
	for _, c := range cols {
		sb.WriteString(strings.Repeat("-", max(len(c.title)+2, 5)) + "|")
	}
	sb.WriteString("\n")
	for _, r := range rows {
		sb.WriteString("|")
		for _, c := range cols {
			sb.WriteString(" " + c.cell(r) + " |")
		}
		sb.WriteString("\n")
	}
}

// pick keeps contracts matching every predicate, orders them by strike and
// returns at most limit of them.
func pick(contracts []models.OptionContract, descending bool, limit int, keep ...func(models.OptionContract) bool) []models.OptionContract {
	out := make([]models.OptionContract, 0, len(contracts))
next:
	for _, c := range contracts {
		for _, k := range keep {
			if !k(c) {
				continue next
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Strike > out[j].Strike
		}
		return out[i].Strike < out[j].Strike
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func active(c models.OptionContract) bool { return c.Active() }

func outOfTheMoney(c models.OptionContract) bool { return !c.InTheMoney }
