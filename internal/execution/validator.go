package execution

import (
	"context"
	"fmt"
	"math"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/monitoring"
)

// Exposure is the long/short breakdown for one symbol.
type Exposure struct {
	LongQty  float64
	ShortQty float64
}

// PortfolioSnapshot is the account state one batch is validated against.
// It is read fresh immediately before validation and shared by every
// decision in the batch, so the batch cannot race against its own reads.
type PortfolioSnapshot struct {
	Cash      float64
	Positions map[string]Exposure
}

// Exposure returns the breakdown for a symbol, zero if none is held.
func (s *PortfolioSnapshot) Exposure(symbol string) Exposure {
	return s.Positions[symbol]
}

// OrderPlan is a decision that passed validation, resolved to a concrete
// broker side and a clamped quantity.
type OrderPlan struct {
	Symbol   string
	Action   Action
	Side     broker.OrderSide
	Qty      int
	Original int     // requested quantity before clamping
	Price    float64 // live price used for sizing, 0 when not fetched
}

// Rejection is a decision that failed validation, with the reason
// surfaced to the decision producer for the next cycle.
type Rejection struct {
	Symbol string
	Action Action
	Reason string
}

// Skip is a decision that required no order (HOLD or non-positive qty).
type Skip struct {
	Symbol string
	Action Action
}

// BatchResult is the outcome of validating one decision batch.
type BatchResult struct {
	Snapshot   PortfolioSnapshot
	Plans      []OrderPlan
	Rejections []Rejection
	Skips      []Skip
}

// Validator turns proposed decisions into safe, bounded orders. It
// enforces the opposite-position preconditions (the broker's market
// orders are directional, a BUY while short nets the short down instead
// of opening a long) and clamps every quantity against the snapshot so
// an order can never exceed cash or held quantity. It never sequences a
// COVER before a BUY on its own; conflicts are rejected and left to the
// producer.
type Validator struct {
	gateway   broker.Gateway
	log       *logger.Logger
	bufferPct float64
}

// NewValidator creates a validator with the configured cash buffer.
func NewValidator(gateway broker.Gateway, log *logger.Logger, bufferPct float64) *Validator {
	return &Validator{gateway: gateway, log: log, bufferPct: bufferPct}
}

// Snapshot reads the live portfolio once. Callers validate a whole batch
// against the same snapshot.
func (v *Validator) Snapshot(ctx context.Context) (*PortfolioSnapshot, error) {
	account, err := v.gateway.GetAccount(ctx)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorCategoryTransient, "validator", "")
	}
	positions, err := v.gateway.GetPositions(ctx)
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrorCategoryTransient, "validator", "")
	}

	snapshot := &PortfolioSnapshot{
		Cash:      account.Cash,
		Positions: make(map[string]Exposure, len(positions)),
	}
	for _, pos := range positions {
		exp := snapshot.Positions[pos.Symbol]
		if pos.IsLong() {
			exp.LongQty += pos.Qty
		} else {
			exp.ShortQty += -pos.Qty
		}
		snapshot.Positions[pos.Symbol] = exp
	}
	return snapshot, nil
}

// ValidateBatch fetches one fresh snapshot and resolves every decision
// against it. A snapshot read failure aborts the whole batch; individual
// decision failures only reject that item.
func (v *Validator) ValidateBatch(ctx context.Context, decisions []Decision) (*BatchResult, error) {
	snapshot, err := v.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Snapshot: *snapshot}
	for _, d := range decisions {
		v.resolve(ctx, d, snapshot, result)
	}
	return result, nil
}

func (v *Validator) resolve(ctx context.Context, d Decision, snapshot *PortfolioSnapshot, result *BatchResult) {
	if d.Action == ActionHold || d.Quantity <= 0 {
		result.Skips = append(result.Skips, Skip{Symbol: d.Symbol, Action: d.Action})
		v.log.Info("[%s] %s skipped (no order)", d.Symbol, d.Action)
		return
	}

	exp := snapshot.Exposure(d.Symbol)

	switch d.Action {
	case ActionBuy:
		if exp.ShortQty > 0 {
			v.reject(result, d, fmt.Sprintf("existing short position (%.0f), close it first", exp.ShortQty))
			return
		}
		price, err := fetchLivePrice(ctx, v.gateway, d.Symbol)
		if err != nil {
			v.reject(result, d, fmt.Sprintf("live price unavailable: %v", err))
			return
		}
		if price <= 0 {
			v.reject(result, d, "live price unavailable: no positive quote or trade")
			return
		}
		qty := d.Quantity
		maxQty := int(math.Floor(snapshot.Cash * (1 - v.bufferPct) / price))
		if qty > maxQty {
			v.log.Warning("[%s] BUY quantity clamped %d -> %d (cash %.2f @ %.2f)",
				d.Symbol, qty, maxQty, snapshot.Cash, price)
			qty = maxQty
		}
		// Held-back margin: the price can move between sizing and fill.
		qty = int(math.Floor(float64(qty) * (1 - v.bufferPct)))
		if qty <= 0 {
			v.reject(result, d, fmt.Sprintf("insufficient cash for BUY at %.2f", price))
			return
		}
		v.plan(result, d, broker.OrderSideBuy, qty, price)

	case ActionShort:
		if exp.LongQty > 0 {
			v.reject(result, d, fmt.Sprintf("existing long position (%.0f), close it first", exp.LongQty))
			return
		}
		v.plan(result, d, broker.OrderSideSell, d.Quantity, 0)

	case ActionSell:
		if exp.LongQty <= 0 {
			v.reject(result, d, "no long position to close")
			return
		}
		qty := d.Quantity
		if held := int(math.Floor(exp.LongQty)); qty > held {
			qty = held
		}
		v.plan(result, d, broker.OrderSideSell, qty, 0)

	case ActionCover:
		if exp.ShortQty <= 0 {
			v.reject(result, d, "no short position to cover")
			return
		}
		qty := d.Quantity
		if held := int(math.Floor(exp.ShortQty)); qty > held {
			qty = held
		}
		// Covering consumes cash too, so the same margin applies.
		qty = int(math.Floor(float64(qty) * (1 - v.bufferPct)))
		if qty <= 0 {
			result.Skips = append(result.Skips, Skip{Symbol: d.Symbol, Action: d.Action})
			v.log.Info("[%s] COVER reduced to zero by buffer, skipped", d.Symbol)
			return
		}
		v.plan(result, d, broker.OrderSideBuy, qty, 0)

	default:
		v.reject(result, d, fmt.Sprintf("unrecognized action %q", d.Action))
	}
}

func (v *Validator) plan(result *BatchResult, d Decision, side broker.OrderSide, qty int, price float64) {
	result.Plans = append(result.Plans, OrderPlan{
		Symbol:   d.Symbol,
		Action:   d.Action,
		Side:     side,
		Qty:      qty,
		Original: d.Quantity,
		Price:    price,
	})
	v.log.Info("[%s] %s resolved to %s %d", d.Symbol, d.Action, side, qty)
}

func (v *Validator) reject(result *BatchResult, d Decision, reason string) {
	result.Rejections = append(result.Rejections, Rejection{
		Symbol: d.Symbol,
		Action: d.Action,
		Reason: reason,
	})
	v.log.Warning("[%s] %s rejected: %s", d.Symbol, d.Action, reason)
	monitoring.RecordRejection(string(d.Action))
}
