package broker

import (
	"context"
	"time"
)

// OrderSide is the direction of an order as the broker understands it.
// Market orders are directional: a Buy while short reduces the short, it
// does not open a long.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// TimeInForce represents how long an order remains active
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "day"
	TimeInForceGTC TimeInForce = "gtc"
)

// Position is a live holding as reported by the broker. Qty is signed:
// positive for long, negative for short. Positions are re-read every pass
// and never persisted.
type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
	CurrentPrice  float64
}

// IsLong reports whether the position is held long.
func (p Position) IsLong() bool {
	return p.Qty > 0
}

// Account holds the current cash and equity balances.
type Account struct {
	Cash   float64
	Equity float64
}

// Quote is the latest top-of-book quote for a symbol.
type Quote struct {
	AskPrice float64
	BidPrice float64
}

// Trade is the latest executed trade for a symbol.
type Trade struct {
	Price float64
}

// Clock reports the market session state.
type Clock struct {
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// OrderRequest describes a market order to submit. Qty may be
// fractional: sub-share positions must be closable in full.
type OrderRequest struct {
	Symbol      string
	Side        OrderSide
	Qty         float64
	TimeInForce TimeInForce
}

// OrderResult is the broker acknowledgement for a submitted order.
type OrderResult struct {
	OrderID     string
	Symbol      string
	Side        OrderSide
	Qty         float64
	Status      string
	SubmittedAt time.Time
}

// Gateway is the broker surface the risk monitor and the executor depend
// on. All calls are blocking network I/O; the broker applies orders
// at-most-once per call and reflects fills with unspecified latency, so
// callers reconcile from live positions rather than assume immediate
// consistency.
type Gateway interface {
	GetPositions(ctx context.Context) ([]Position, error)
	GetAccount(ctx context.Context) (*Account, error)
	GetLatestQuote(ctx context.Context, symbol string) (*Quote, error)
	GetLatestTrade(ctx context.Context, symbol string) (*Trade, error)
	GetClock(ctx context.Context) (*Clock, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
	CancelAllOrders(ctx context.Context) error
}
