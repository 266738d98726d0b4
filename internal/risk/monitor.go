package risk

import (
	"context"
	"math"
	"sync"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/monitoring"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/notifications"
)

// Monitor runs the position risk control loop. Each pass re-reads live
// positions from the broker, maintains the per-symbol extreme price,
// evaluates the hard and trailing stops, and submits a closing order for
// any position whose stop has been crossed.
//
// The loop is deliberately stateless across passes beyond the store:
// every pass starts from a fresh position read, so a pass that observed
// nothing leaves everything unchanged and a missed close is retried
// naturally on the next pass.
type Monitor struct {
	gateway   broker.Gateway
	store     *Store
	submitter *execution.Submitter
	notifier  notifications.Notifier
	log       *logger.Logger

	hardPct  float64
	trailPct float64

	mu sync.Mutex
}

// NewMonitor creates a monitor. The notifier may be a NopNotifier.
func NewMonitor(gateway broker.Gateway, store *Store, submitter *execution.Submitter, notifier notifications.Notifier, log *logger.Logger, hardPct, trailPct float64) *Monitor {
	return &Monitor{
		gateway:   gateway,
		store:     store,
		submitter: submitter,
		notifier:  notifier,
		log:       log,
		hardPct:   hardPct,
		trailPct:  trailPct,
	}
}

// RunPass executes one full monitoring pass. The pass mutex serializes
// overlapping invocations; the store is persisted once at the end of the
// pass. A position read failure aborts the pass before any state change.
func (m *Monitor) RunPass(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	positions, err := m.gateway.GetPositions(ctx)
	if err != nil {
		m.log.Error("position read failed, aborting pass: %v", err)
		monitoring.RecordError("position_read")
		return errs.Wrap(err, errs.ErrorCategoryTransient, "monitor", "")
	}

	if len(positions) == 0 {
		if m.store.Len() > 0 {
			m.log.Info("no open positions, clearing %d tracked record(s)", m.store.Len())
			m.store.Clear()
		}
		if err := m.store.Save(); err != nil {
			return errs.Wrap(err, errs.ErrorCategoryTransient, "monitor", "")
		}
		monitoring.RecordPass(0)
		return nil
	}

	live := make(map[string]bool, len(positions))
	for _, pos := range positions {
		if pos.Qty == 0 {
			continue
		}
		live[pos.Symbol] = true
		m.checkPosition(ctx, pos)
	}

	if removed := m.store.Prune(live); len(removed) > 0 {
		for _, symbol := range removed {
			m.log.Info("pruned %s: position no longer open", symbol)
		}
	}

	if err := m.store.Save(); err != nil {
		m.log.Error("failed to persist risk data: %v", err)
		return errs.Wrap(err, errs.ErrorCategoryTransient, "monitor", "")
	}

	monitoring.RecordPass(m.store.Len())
	return nil
}

// checkPosition maintains the extreme price for one position and closes
// it if a stop is crossed. The record is deleted the moment a close is
// submitted, success or not: if the order failed the position is still
// open on the next pass and gets re-seeded and re-evaluated from live
// state, which is the reconciliation path.
func (m *Monitor) checkPosition(ctx context.Context, pos broker.Position) {
	side := SideLong
	if !pos.IsLong() {
		side = SideShort
	}
	current := pos.CurrentPrice
	monitoring.UpdatePrice(pos.Symbol, current)

	rec, ok := m.store.Get(pos.Symbol)
	switch {
	case !ok:
		rec = m.store.Seed(pos.Symbol, side, current)
		m.log.Info("tracking %s %s, extreme seeded at %.2f", side, pos.Symbol, current)
	case rec.Side != side:
		// Side flip means the old position closed and a new one opened
		// between passes. The stale extreme belongs to the dead position.
		m.store.Delete(pos.Symbol)
		rec = m.store.Seed(pos.Symbol, side, current)
		m.log.Warning("%s flipped to %s, risk record reset, extreme %.2f", pos.Symbol, side, current)
	default:
		var changed bool
		rec, changed = m.store.UpdateExtreme(pos.Symbol, current)
		if changed {
			m.log.Info("%s extreme moved to %.2f", pos.Symbol, rec.ExtremePrice)
		}
	}

	ev := Evaluate(side, pos.AvgEntryPrice, rec.ExtremePrice, current, m.hardPct, m.trailPct)
	if !ev.Valid {
		m.log.Warning("%s skipped: unusable prices (entry %.4f extreme %.4f current %.4f)",
			pos.Symbol, pos.AvgEntryPrice, rec.ExtremePrice, current)
		return
	}
	if !ev.Triggered {
		return
	}

	m.log.Warning("%s stop triggered (%s): current %.2f crossed stop %.2f (hard %.2f, trail %.2f)",
		pos.Symbol, ev.Kind, current, ev.FinalStop, ev.HardStop, ev.TrailStop)
	monitoring.RecordStopTrigger(pos.Symbol, string(ev.Kind))

	m.closePosition(ctx, pos, side, ev)
}

func (m *Monitor) closePosition(ctx context.Context, pos broker.Position, side Side, ev Evaluation) {
	// Fractional positions close in full; the order API takes fractional
	// market day orders.
	qty := math.Abs(pos.Qty)
	if qty <= 0 {
		m.log.Warning("%s stop triggered but quantity is zero, nothing to close", pos.Symbol)
		return
	}

	// Delete before submitting: a record for a position we have decided to
	// close is stale either way. If the submit fails the position shows up
	// again next pass and is re-evaluated from scratch.
	m.store.Delete(pos.Symbol)

	orderSide := broker.OrderSideSell
	if side == SideShort {
		orderSide = broker.OrderSideBuy
	}

	reason := "hard stop-loss"
	if ev.Kind == TriggerTrail {
		reason = "trailing stop-loss"
	}

	_, err := m.submitter.Submit(ctx, pos.Symbol, orderSide, qty, broker.TimeInForceDay, reason)
	if err != nil {
		m.log.Error("close order for %s failed, will reconcile next pass: %v", pos.Symbol, err)
		m.notify("error", "Failed to close "+pos.Symbol+" after "+reason+" trigger. Position will be re-checked next pass.")
		return
	}

	m.notify("warning", "Closed "+pos.Symbol+" ("+string(side)+") on "+reason+" trigger.")
}

func (m *Monitor) notify(level, message string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.SendAlert(level, message); err != nil {
		m.log.Warning("notification failed: %v", err)
	}
}
