package alpaca

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
)

// GetLatestQuote fetches the latest top-of-book quote for a symbol.
func (c *Client) GetLatestQuote(ctx context.Context, symbol string) (*broker.Quote, error) {
	quote, err := c.market.GetLatestQuote(symbol, marketdata.GetLatestQuoteRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quote for %s: %w", symbol, err)
	}

	return &broker.Quote{
		AskPrice: quote.AskPrice,
		BidPrice: quote.BidPrice,
	}, nil
}

// GetLatestTrade fetches the price of the most recent trade for a symbol.
func (c *Client) GetLatestTrade(ctx context.Context, symbol string) (*broker.Trade, error) {
	trade, err := c.market.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to get latest trade for %s: %w", symbol, err)
	}

	return &broker.Trade{Price: trade.Price}, nil
}
