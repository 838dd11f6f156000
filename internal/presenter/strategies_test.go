package presenter

import (
	"strings"
	"testing"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

func render(mode models.StrategyMode, md models.MarketData) string {
	return RenderText(mode, []string{"AAPL"}, map[string]models.MarketData{"AAPL": md})
}

func TestPMCC(t *testing.T) {
	leaps := snapshot(420, 400,
		[]models.OptionContract{
			opt(70, 5, 0, true),
			opt(85, 0, 0, true),
			opt(95, 5, 0, true), // ITM but not deep
			opt(110, 5, 0, false),
		}, nil)
	short := snapshot(14, 33,
		[]models.OptionContract{
			opt(115, 5, 0, false),
			opt(105, 0, 2, false),
			opt(98, 9, 9, true),
			opt(120, 0, 0, false),
		}, nil)
	text := render(models.ModePMCC, testMarketData(short, leaps))

	if !strings.Contains(text, "**Cost of 100 Shares:** $10,000\n") {
		t.Errorf("missing share cost:\n%s", text)
	}
	if !strings.Contains(text, "**Current Price:** $100\n") {
		t.Errorf("PMCC price line should omit change:\n%s", text)
	}

	leapsBlock := text[strings.Index(text, "**LEAPS Calls"):strings.Index(text, "**Short-Term Calls")]
	if !strings.Contains(leapsBlock, "(400 DTE)") {
		t.Errorf("missing LEAPS expiry:\n%s", leapsBlock)
	}
	if strings.Contains(leapsBlock, "$95 ") || strings.Contains(leapsBlock, "$110 ") {
		t.Errorf("non deep-ITM strike leaked:\n%s", leapsBlock)
	}
	if strings.Index(leapsBlock, "$85 ") > strings.Index(leapsBlock, "$70 ") {
		t.Errorf("LEAPS not strike-descending:\n%s", leapsBlock)
	}
	if !strings.Contains(leapsBlock, "| Strike | Bid | Ask | Mid | Last | IV% | OI | ITM |") {
		t.Errorf("LEAPS table header:\n%s", leapsBlock)
	}

	shortBlock := text[strings.Index(text, "**Short-Term Calls"):]
	if strings.Contains(shortBlock, "$98 ") || strings.Contains(shortBlock, "$120 ") {
		t.Errorf("ITM or inactive short call leaked:\n%s", shortBlock)
	}
	if strings.Index(shortBlock, "$105 ") > strings.Index(shortBlock, "$115 ") {
		t.Errorf("short calls not strike-ascending:\n%s", shortBlock)
	}
}

func TestPMCCNotes(t *testing.T) {
	noLeaps := render(models.ModePMCC, testMarketData(snapshot(14, 33, nil, nil)))
	if !strings.Contains(noLeaps, "**LEAPS:** No expirations with DTE > 300 found") {
		t.Errorf("missing no-LEAPS note:\n%s", noLeaps)
	}

	shallow := render(models.ModePMCC, testMarketData(snapshot(420, 400, []models.OptionContract{opt(95, 1, 1, true)}, nil)))
	if !strings.Contains(shallow, "(No deep ITM calls found for this expiry)\n") {
		t.Errorf("missing no-deep-ITM note:\n%s", shallow)
	}
}

func TestSpreads(t *testing.T) {
	chain := snapshot(14, 33,
		[]models.OptionContract{
			opt(120, 5, 0, false), // above 115%
			opt(110, 5, 0, false),
			opt(105, 5, 0, false),
			opt(95, 5, 0, true),
		},
		[]models.OptionContract{
			opt(80, 5, 0, false), // below 85%
			opt(90, 5, 0, false),
			opt(95, 0, 1, false),
			opt(105, 5, 0, true),
		})
	text := render(models.ModeSpreads, testMarketData(snapshot(0, 5, nil, nil), chain))

	if strings.Contains(text, "(5 DTE)") {
		t.Errorf("chain outside 20-60 DTE rendered:\n%s", text)
	}
	putBlock := text[strings.Index(text, "PUTS (OTM"):strings.Index(text, "CALLS (OTM")]
	if strings.Contains(putBlock, "$80 ") || strings.Contains(putBlock, "$105 ") {
		t.Errorf("filtered put leaked:\n%s", putBlock)
	}
	if strings.Index(putBlock, "$95 ") > strings.Index(putBlock, "$90 ") {
		t.Errorf("puts not strike-descending:\n%s", putBlock)
	}
	callBlock := text[strings.Index(text, "CALLS (OTM"):]
	if strings.Contains(callBlock, "$120 ") || strings.Contains(callBlock, "$95 ") {
		t.Errorf("filtered call leaked:\n%s", callBlock)
	}
	if strings.Index(callBlock, "$105 ") > strings.Index(callBlock, "$110 ") {
		t.Errorf("calls not strike-ascending:\n%s", callBlock)
	}
}

func TestSpreadsNoWindow(t *testing.T) {
	text := render(models.ModeSpreads, testMarketData(snapshot(0, 5, nil, nil), snapshot(420, 400, nil, nil)))
	if !strings.Contains(text, "Available DTEs: 5, 400. Use closest available.") {
		t.Errorf("missing available DTE note:\n%s", text)
	}
}

func TestSpreadsRowLimit(t *testing.T) {
	var puts []models.OptionContract
	for s := 86.0; s < 100; s++ {
		puts = append(puts, opt(s, 1, 0, false))
	}
	text := render(models.ModeSpreads, testMarketData(snapshot(14, 33, nil, puts)))
	if rows := strings.Count(text, "| 1 | 0 |"); rows != spreadRows {
		t.Errorf("rendered %d rows, want %d", rows, spreadRows)
	}
}
