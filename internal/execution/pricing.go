package execution

import (
	"context"
	"fmt"
	"math"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
)

// maxQuoteDivergence is how far the quoted ask may sit from the last
// trade before the quote is treated as stale or crossed.
const maxQuoteDivergence = 0.02

// ResolvePrice picks a usable live price from the two sources. When the
// ask and the last trade disagree by more than maxQuoteDivergence the
// quote is considered unreliable (typical of thin books around the open)
// and the last trade wins. Returns 0 when neither source has a positive
// price.
func ResolvePrice(ask, lastTrade float64) float64 {
	if ask > 0 && lastTrade > 0 {
		if math.Abs(ask-lastTrade)/lastTrade > maxQuoteDivergence {
			return lastTrade
		}
	}
	if ask > 0 {
		return ask
	}
	if lastTrade > 0 {
		return lastTrade
	}
	return 0
}

// fetchLivePrice runs the two-source cross-check against the gateway.
func fetchLivePrice(ctx context.Context, gw broker.Gateway, symbol string) (float64, error) {
	quote, err := gw.GetLatestQuote(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("quote fetch failed for %s: %w", symbol, err)
	}
	trade, err := gw.GetLatestTrade(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("trade fetch failed for %s: %w", symbol, err)
	}
	return ResolvePrice(quote.AskPrice, trade.Price), nil
}
