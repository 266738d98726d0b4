package execution

import (
	"context"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/monitoring"
)

// Submitter wraps single order submissions to the broker. It never
// retries: a market order whose outcome is unknown may already have
// filled, and a blind resend risks a duplicate fill. Retry policy belongs
// to callers, who recover by reconciling against live positions instead.
type Submitter struct {
	gateway broker.Gateway
	log     *logger.Logger
}

// NewSubmitter creates a new order submitter.
func NewSubmitter(gateway broker.Gateway, log *logger.Logger) *Submitter {
	return &Submitter{gateway: gateway, log: log}
}

// Submit sends one market order and logs the attempt and outcome with the
// resolved quantity for audit. A failure the gateway has already
// classified as a definite rejection passes through unchanged: the order
// was refused, not lost. Everything else is wrapped as partial-execution
// ambiguity, because the request may have reached the broker, and the
// order is treated as possibly executed until the next position read says
// otherwise.
func (s *Submitter) Submit(ctx context.Context, symbol string, side broker.OrderSide, qty float64, tif broker.TimeInForce, reason string) (*broker.OrderResult, error) {
	s.log.Trade("submitting %s %v %s (%s, reason: %s)", side, qty, symbol, tif, reason)

	result, err := s.gateway.SubmitOrder(ctx, broker.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Qty:         qty,
		TimeInForce: tif,
	})
	if err != nil {
		s.log.Error("order submit failed for %s: %v", symbol, err)
		if errs.IsPrecondition(err) || errs.IsInvalidInput(err) {
			monitoring.RecordError("order_rejected")
			return nil, err
		}
		monitoring.RecordError("order_submit")
		return nil, errs.Wrap(err, errs.ErrorCategoryPartialExecution, "submitter", symbol)
	}

	s.log.Trade("order accepted: %s %s %v %s (id %s, status %s)",
		result.Side, result.Symbol, result.Qty, tif, result.OrderID, result.Status)
	monitoring.RecordOrder(symbol, string(side))
	return result, nil
}
