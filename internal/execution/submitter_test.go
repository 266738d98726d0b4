package execution

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
)

func newTestSubmitter(t *testing.T, gw *fakeGateway) *Submitter {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	log, err := logger.NewLogger("submitter-test")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return NewSubmitter(gw, log)
}

// TestSubmitter_SingleOrder checks one call produces exactly one order.
func TestSubmitter_SingleOrder(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSubmitter(t, gw)

	result, err := s.Submit(context.Background(), "AAPL", broker.OrderSideSell, 10,
		broker.TimeInForceDay, "trailing stop-loss")
	require.NoError(t, err)

	assert.Equal(t, "order-1", result.OrderID)
	require.Len(t, gw.orders, 1)
	assert.Equal(t, broker.OrderRequest{
		Symbol:      "AAPL",
		Side:        broker.OrderSideSell,
		Qty:         10,
		TimeInForce: broker.TimeInForceDay,
	}, gw.orders[0])
}

// TestSubmitter_FailureIsAmbiguousNotRetried checks a failed submit is
// surfaced as partial execution and never resent.
func TestSubmitter_FailureIsAmbiguousNotRetried(t *testing.T) {
	gw := &fakeGateway{submitErr: errors.New("gateway timeout")}
	s := newTestSubmitter(t, gw)

	_, err := s.Submit(context.Background(), "AAPL", broker.OrderSideSell, 10,
		broker.TimeInForceDay, "hard stop-loss")
	require.Error(t, err)

	assert.True(t, errs.IsPartialExecution(err))
	assert.Len(t, gw.orders, 1)
}

// TestSubmitter_RejectionPassesThrough checks a classified broker refusal
// keeps its category instead of being downgraded to ambiguity: a rejected
// order definitely did not execute.
func TestSubmitter_RejectionPassesThrough(t *testing.T) {
	gw := &fakeGateway{submitErr: errs.New(errs.ErrorCategoryPrecondition,
		"alpaca", "AAPL", "insufficient buying power")}
	s := newTestSubmitter(t, gw)

	_, err := s.Submit(context.Background(), "AAPL", broker.OrderSideBuy, 100,
		broker.TimeInForceDay, "BUY")
	require.Error(t, err)

	assert.True(t, errs.IsPrecondition(err))
	assert.False(t, errs.IsPartialExecution(err))
}

// TestSubmitter_FractionalQuantity checks sub-share quantities reach the
// gateway unrounded.
func TestSubmitter_FractionalQuantity(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSubmitter(t, gw)

	result, err := s.Submit(context.Background(), "AAPL", broker.OrderSideSell, 0.25,
		broker.TimeInForceDay, "trailing stop-loss")
	require.NoError(t, err)

	require.Len(t, gw.orders, 1)
	assert.Equal(t, 0.25, gw.orders[0].Qty)
	assert.Equal(t, 0.25, result.Qty)
}
