package alpaca

import (
	"context"
	"fmt"

	alpaca_api "github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/shopspring/decimal"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
)

// SubmitOrder places a market order. The broker applies the order
// at-most-once per call; the bot never retries a send whose outcome is
// unknown, because a duplicate market order means a duplicate fill.
// Fractional quantities are passed through as-is: the order API accepts
// them for market day orders.
//
// A definite broker rejection (4xx response in hand, order not executed)
// comes back classified as a precondition failure; anything else is left
// for the caller to treat as ambiguous.
func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (*broker.OrderResult, error) {
	if req.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if req.Qty <= 0 {
		return nil, fmt.Errorf("qty must be positive, got %v", req.Qty)
	}
	if req.Side != broker.OrderSideBuy && req.Side != broker.OrderSideSell {
		return nil, fmt.Errorf("invalid order side %q", req.Side)
	}
	if req.TimeInForce == "" {
		req.TimeInForce = broker.TimeInForceDay
	}

	qty := decimal.NewFromFloat(req.Qty)
	order, err := c.trading.PlaceOrder(alpaca_api.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &qty,
		Side:        alpaca_api.Side(req.Side),
		Type:        alpaca_api.Market,
		TimeInForce: alpaca_api.TimeInForce(req.TimeInForce),
	})
	if err != nil {
		if IsOrderRejection(err) {
			return nil, errs.Wrap(err, errs.ErrorCategoryPrecondition, "alpaca", req.Symbol)
		}
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}

	resultQty := req.Qty
	if order.Qty != nil {
		resultQty, _ = order.Qty.Float64()
	}

	return &broker.OrderResult{
		OrderID:     order.ID,
		Symbol:      order.Symbol,
		Side:        broker.OrderSide(order.Side),
		Qty:         resultQty,
		Status:      string(order.Status),
		SubmittedAt: order.SubmittedAt,
	}, nil
}

// CancelAllOrders cancels every open order so a stale limit order cannot
// hold buying power against a new batch.
func (c *Client) CancelAllOrders(ctx context.Context) error {
	if err := c.trading.CancelAllOrders(); err != nil {
		return fmt.Errorf("failed to cancel orders: %w", err)
	}
	return nil
}
