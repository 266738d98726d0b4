package risk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	errs "github.com/ducminhle1904/alpaca-risk-bot/internal/errors"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/notifications"
)

// fakeGateway is a scriptable broker for monitor tests.
type fakeGateway struct {
	positions    []broker.Position
	positionsErr error
	orders       []broker.OrderRequest
	submitErr    error
}

func (f *fakeGateway) GetPositions(ctx context.Context) ([]broker.Position, error) {
	return f.positions, f.positionsErr
}

func (f *fakeGateway) GetAccount(ctx context.Context) (*broker.Account, error) {
	return &broker.Account{}, nil
}

func (f *fakeGateway) GetLatestQuote(ctx context.Context, symbol string) (*broker.Quote, error) {
	return &broker.Quote{}, nil
}

func (f *fakeGateway) GetLatestTrade(ctx context.Context, symbol string) (*broker.Trade, error) {
	return &broker.Trade{}, nil
}

func (f *fakeGateway) GetClock(ctx context.Context) (*broker.Clock, error) {
	return &broker.Clock{IsOpen: true}, nil
}

func (f *fakeGateway) SubmitOrder(ctx context.Context, req broker.OrderRequest) (*broker.OrderResult, error) {
	f.orders = append(f.orders, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &broker.OrderResult{
		OrderID: "order-1",
		Symbol:  req.Symbol,
		Side:    req.Side,
		Qty:     req.Qty,
		Status:  "accepted",
	}, nil
}

func (f *fakeGateway) CancelAllOrders(ctx context.Context) error {
	return nil
}

func newTestMonitor(t *testing.T, gw *fakeGateway) (*Monitor, *Store) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	log, err := logger.NewLogger("monitor-test")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	store := NewStore(filepath.Join(t.TempDir(), "risk_data.json"))
	submitter := execution.NewSubmitter(gw, log)
	monitor := NewMonitor(gw, store, submitter, notifications.NopNotifier{}, log, 0.08, 0.05)
	return monitor, store
}

// TestMonitor_SeedsNewPosition checks a first sighting creates a record
// with the extreme at the current price.
func TestMonitor_SeedsNewPosition(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 105},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	rec, ok := store.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, SideLong, rec.Side)
	assert.Equal(t, 105.0, rec.ExtremePrice)
	assert.Empty(t, gw.orders)
}

// TestMonitor_ExtremeOnlyImproves checks the extreme tracks favorable
// moves across passes and ignores adverse ones.
func TestMonitor_ExtremeOnlyImproves(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 110},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	gw.positions[0].CurrentPrice = 120
	require.NoError(t, monitor.RunPass(context.Background()))

	gw.positions[0].CurrentPrice = 115
	require.NoError(t, monitor.RunPass(context.Background()))

	rec, _ := store.Get("AAPL")
	assert.Equal(t, 120.0, rec.ExtremePrice)
	assert.Empty(t, gw.orders)
}

// TestMonitor_TrailingStopClosesLong checks a long is sold for its full
// quantity when the trailing stop is crossed, and its record removed.
func TestMonitor_TrailingStopClosesLong(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 120},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	// extreme 120 -> trail 114; 113 crosses it
	gw.positions[0].CurrentPrice = 113
	require.NoError(t, monitor.RunPass(context.Background()))

	require.Len(t, gw.orders, 1)
	assert.Equal(t, "AAPL", gw.orders[0].Symbol)
	assert.Equal(t, broker.OrderSideSell, gw.orders[0].Side)
	assert.Equal(t, 10.0, gw.orders[0].Qty)

	_, ok := store.Get("AAPL")
	assert.False(t, ok)
}

// TestMonitor_HardStopClosesShort checks a short is bought back when the
// price rises through the hard stop.
func TestMonitor_HardStopClosesShort(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "TSLA", Qty: -5, AvgEntryPrice: 200, CurrentPrice: 210},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	// hard 216; trail from extreme 210 is 220.5, so hard governs
	gw.positions[0].CurrentPrice = 217
	require.NoError(t, monitor.RunPass(context.Background()))

	require.Len(t, gw.orders, 1)
	assert.Equal(t, broker.OrderSideBuy, gw.orders[0].Side)
	assert.Equal(t, 5.0, gw.orders[0].Qty)

	_, ok := store.Get("TSLA")
	assert.False(t, ok)
}

// TestMonitor_FractionalPositionClosedInFull checks a sub-share holding
// is sold at its exact fractional quantity when its stop is crossed, and
// that the trailing history is not lost along the way.
func TestMonitor_FractionalPositionClosedInFull(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 0.5, AvgEntryPrice: 100, CurrentPrice: 100},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))
	require.Empty(t, gw.orders)

	// Well below the hard stop at 92.
	gw.positions[0].CurrentPrice = 80
	require.NoError(t, monitor.RunPass(context.Background()))

	require.Len(t, gw.orders, 1)
	assert.Equal(t, "AAPL", gw.orders[0].Symbol)
	assert.Equal(t, broker.OrderSideSell, gw.orders[0].Side)
	assert.Equal(t, 0.5, gw.orders[0].Qty)

	_, ok := store.Get("AAPL")
	assert.False(t, ok)

	// Repeat passes at the collapsed price must not resubmit endlessly
	// once the broker no longer reports the position.
	gw.positions = nil
	require.NoError(t, monitor.RunPass(context.Background()))
	assert.Len(t, gw.orders, 1)
}

// TestMonitor_ZeroQuantityKeepsRecord checks a triggered stop on a
// zero-quantity position submits nothing and leaves the record in place.
func TestMonitor_ZeroQuantityKeepsRecord(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 100},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	// The broker reporting qty zero mid-close is an anomaly; the pass
	// filter skips zero-qty positions, so force the trigger path directly.
	rec, _ := store.Get("AAPL")
	ev := Evaluate(SideLong, 100, rec.ExtremePrice, 80, 0.08, 0.05)
	require.True(t, ev.Triggered)
	monitor.closePosition(context.Background(), broker.Position{
		Symbol: "AAPL", Qty: 0, AvgEntryPrice: 100, CurrentPrice: 80,
	}, SideLong, ev)

	assert.Empty(t, gw.orders)
	_, ok := store.Get("AAPL")
	assert.True(t, ok)
}

// TestMonitor_RecordDeletedEvenWhenCloseFails checks a failed close still
// drops the record; the next pass re-seeds from live state.
func TestMonitor_RecordDeletedEvenWhenCloseFails(t *testing.T) {
	gw := &fakeGateway{
		positions: []broker.Position{
			{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 120},
		},
		submitErr: errors.New("gateway timeout"),
	}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	gw.positions[0].CurrentPrice = 113
	require.NoError(t, monitor.RunPass(context.Background()))

	require.Len(t, gw.orders, 1)
	_, ok := store.Get("AAPL")
	assert.False(t, ok)

	// Position still open next pass: it is picked up again from scratch.
	require.NoError(t, monitor.RunPass(context.Background()))
	rec, ok := store.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 113.0, rec.ExtremePrice)
}

// TestMonitor_PrunesClosedPositions checks records for externally closed
// positions are removed.
func TestMonitor_PrunesClosedPositions(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 100, CurrentPrice: 105},
	}}
	monitor, store := newTestMonitor(t, gw)
	store.Seed("MSFT", SideLong, 300)

	require.NoError(t, monitor.RunPass(context.Background()))

	_, ok := store.Get("MSFT")
	assert.False(t, ok)
	_, ok = store.Get("AAPL")
	assert.True(t, ok)
}

// TestMonitor_EmptyPositionsClearsStore checks that no open positions
// means no tracked records.
func TestMonitor_EmptyPositionsClearsStore(t *testing.T) {
	gw := &fakeGateway{}
	monitor, store := newTestMonitor(t, gw)
	store.Seed("AAPL", SideLong, 150)

	require.NoError(t, monitor.RunPass(context.Background()))

	assert.Equal(t, 0, store.Len())
}

// TestMonitor_PositionReadFailureAbortsPass checks nothing changes when
// the broker cannot be read.
func TestMonitor_PositionReadFailureAbortsPass(t *testing.T) {
	gw := &fakeGateway{positionsErr: errors.New("connection refused")}
	monitor, store := newTestMonitor(t, gw)
	store.Seed("AAPL", SideLong, 150)

	err := monitor.RunPass(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))

	rec, ok := store.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, 150.0, rec.ExtremePrice)
	assert.Empty(t, gw.orders)
}

// TestMonitor_SideFlipResetsRecord checks a reversed position gets a
// fresh record instead of inheriting the old extreme.
func TestMonitor_SideFlipResetsRecord(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "TSLA", Qty: 5, AvgEntryPrice: 200, CurrentPrice: 205},
	}}
	monitor, store := newTestMonitor(t, gw)
	store.Seed("TSLA", SideShort, 180)

	require.NoError(t, monitor.RunPass(context.Background()))

	rec, ok := store.Get("TSLA")
	require.True(t, ok)
	assert.Equal(t, SideLong, rec.Side)
	assert.Equal(t, 205.0, rec.ExtremePrice)
	assert.Empty(t, gw.orders)
}

// TestMonitor_SkipsUnusablePrices checks a position with garbage prices
// is left alone rather than closed.
func TestMonitor_SkipsUnusablePrices(t *testing.T) {
	gw := &fakeGateway{positions: []broker.Position{
		{Symbol: "AAPL", Qty: 10, AvgEntryPrice: 0, CurrentPrice: 105},
	}}
	monitor, store := newTestMonitor(t, gw)

	require.NoError(t, monitor.RunPass(context.Background()))

	_, ok := store.Get("AAPL")
	assert.True(t, ok)
	assert.Empty(t, gw.orders)
}
