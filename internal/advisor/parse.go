package advisor

import (
	"encoding/json"
	"regexp"

	"github.com/seenimoa/wheelcommittee/pkg/models"
)

// Kind tags which shape of Result a response produced.
type Kind string

const (
	// KindStructured means a fenced JSON block was found and decoded.
	KindStructured Kind = "structured"
	// KindRaw means only the prose analysis is available.
	KindRaw Kind = "raw"
)

// Result is the parsed model answer. Trades and Summary are set only when
// Kind is KindStructured; FullAnalysis always holds the complete text.
type Result struct {
	Mode         models.StrategyMode `json:"mode"`
	Kind         Kind                `json:"kind"`
	Trades       []json.RawMessage   `json:"trades,omitempty"`
	Summary      json.RawMessage     `json:"summary,omitempty"`
	FullAnalysis string              `json:"fullAnalysis"`
	JSONParsed   bool                `json:"jsonParsed"`
	Truncated    bool                `json:"truncated,omitempty"`
}

var jsonBlock = regexp.MustCompile("(?is)```json\\s*\\n?(.*?)\\n?```")

// ParseResponse extracts the mode's trades and summary from the first fenced
// json block in text. A missing or undecodable block yields a KindRaw result.
func ParseResponse(mode models.StrategyMode, text string) Result {
	if !mode.Valid() {
		mode = models.ModeWheel
	}
	res := Result{Mode: mode, Kind: KindRaw, FullAnalysis: text}

	m := jsonBlock.FindStringSubmatch(text)
	if m == nil {
		return res
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m[1]), &fields); err != nil {
		return res
	}

	k := keysFor(mode)
	trades := []json.RawMessage{}
	if raw, ok := fields[k.trades]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &trades); err != nil {
			return res
		}
	}

	res.Kind = KindStructured
	res.JSONParsed = true
	res.Trades = trades
	if raw, ok := fields[k.summary]; ok && !isNull(raw) {
		res.Summary = raw
	}
	return res
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
