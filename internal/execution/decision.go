package execution

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
)

// Action is the trade intent produced by the upstream decision pipeline.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionShort Action = "SHORT"
	ActionCover Action = "COVER"
	ActionHold  Action = "HOLD"
)

// Decision is one validated entry from the upstream decision batch. The
// batch itself is opaque input: the executor parses it, never mutates it.
type Decision struct {
	Symbol     string
	Action     Action
	Quantity   int
	Confidence float64
	Reasoning  string
}

type rawDecision struct {
	Action     string  `json:"action"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseBatch decodes an upstream `{ticker: {action, quantity, ...}}`
// document into typed decisions. Entries with an unrecognized action are
// rejected individually; the rest of the batch survives. Decisions come
// back in symbol order so runs are reproducible.
func ParseBatch(data []byte) ([]Decision, []Rejection, error) {
	var raw map[string]rawDecision
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, errs.Wrap(err, errs.ErrorCategoryInvalidInput, "decision-parser", "")
	}

	symbols := make([]string, 0, len(raw))
	for symbol := range raw {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var decisions []Decision
	var rejections []Rejection
	for _, symbol := range symbols {
		entry := raw[symbol]
		action, err := parseAction(entry.Action)
		if err != nil {
			rejections = append(rejections, Rejection{
				Symbol: symbol,
				Action: Action(strings.ToUpper(entry.Action)),
				Reason: err.Error(),
			})
			continue
		}
		decisions = append(decisions, Decision{
			Symbol:     symbol,
			Action:     action,
			Quantity:   entry.Quantity,
			Confidence: entry.Confidence,
			Reasoning:  entry.Reasoning,
		})
	}
	return decisions, rejections, nil
}

func parseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case ActionBuy:
		return ActionBuy, nil
	case ActionSell:
		return ActionSell, nil
	case ActionShort:
		return ActionShort, nil
	case ActionCover:
		return ActionCover, nil
	case ActionHold:
		return ActionHold, nil
	default:
		return "", fmt.Errorf("unrecognized action %q", s)
	}
}
