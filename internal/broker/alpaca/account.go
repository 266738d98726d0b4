package alpaca

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
)

// GetAccount fetches the current cash and equity balances.
func (c *Client) GetAccount(ctx context.Context) (*broker.Account, error) {
	acct, err := c.trading.GetAccount()
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	cash, _ := acct.Cash.Float64()
	equity, _ := acct.Equity.Float64()
	return &broker.Account{
		Cash:   cash,
		Equity: equity,
	}, nil
}

// GetPositions fetches all open positions. Short positions come back with
// a negative signed quantity regardless of how the API encodes the side.
// A missing current price maps to zero; downstream evaluation treats that
// as a data anomaly, not a crossed stop.
func (c *Client) GetPositions(ctx context.Context) ([]broker.Position, error) {
	resp, err := c.trading.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}

	positions := make([]broker.Position, 0, len(resp))
	for _, p := range resp {
		qty, _ := p.Qty.Float64()
		if p.Side == "short" && qty > 0 {
			qty = -qty
		}
		entry, _ := p.AvgEntryPrice.Float64()

		var current float64
		if p.CurrentPrice != nil {
			current, _ = p.CurrentPrice.Float64()
		}

		positions = append(positions, broker.Position{
			Symbol:        p.Symbol,
			Qty:           qty,
			AvgEntryPrice: entry,
			CurrentPrice:  current,
		})
	}
	return positions, nil
}

// GetClock fetches the market session clock.
func (c *Client) GetClock(ctx context.Context) (*broker.Clock, error) {
	clock, err := c.trading.GetClock()
	if err != nil {
		return nil, fmt.Errorf("failed to get clock: %w", err)
	}

	return &broker.Clock{
		IsOpen:    clock.IsOpen,
		NextOpen:  clock.NextOpen,
		NextClose: clock.NextClose,
	}, nil
}
