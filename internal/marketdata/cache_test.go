package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
)

// TestCache_SetGetFresh checks a fresh entry is a hit.
func TestCache_SetGetFresh(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "cache.json"))

	require.NoError(t, c.Set(CategoryPrices, "AAPL", 155.25))

	var price float64
	assert.True(t, c.Get(CategoryPrices, "AAPL", &price))
	assert.Equal(t, 155.25, price)
}

// TestCache_ExpiredEntryMisses checks an entry past its category window
// behaves as absent.
func TestCache_ExpiredEntryMisses(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "cache.json"))

	data, _ := json.Marshal(155.25)
	c.entries[cacheKey(CategoryPrices, "AAPL")] = entry{
		FetchedAt: time.Now().Add(-10 * time.Minute),
		Data:      data,
	}

	var price float64
	assert.False(t, c.Get(CategoryPrices, "AAPL", &price))
}

// TestCache_CategoryWindows checks the slower categories keep entries the
// price window would drop.
func TestCache_CategoryWindows(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "cache.json"))

	data, _ := json.Marshal("report")
	stale := entry{FetchedAt: time.Now().Add(-6 * time.Hour), Data: data}
	c.entries[cacheKey(CategoryFundamentals, "AAPL")] = stale
	c.entries[cacheKey(CategoryNews, "AAPL")] = stale

	var out string
	assert.True(t, c.Get(CategoryFundamentals, "AAPL", &out))
	assert.True(t, c.Get(CategoryNews, "AAPL", &out))
}

// TestCache_PersistenceRoundtrip checks entries survive a save and load.
func TestCache_PersistenceRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "cache.json")

	c := NewCache(path)
	require.NoError(t, c.Set(CategoryPrices, "AAPL", 155.25))
	require.NoError(t, c.Save())

	reloaded := NewCache(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.Len())

	var price float64
	assert.True(t, reloaded.Get(CategoryPrices, "AAPL", &price))
	assert.Equal(t, 155.25, price)
}

// TestCache_LoadMissingFile checks a missing cache file is empty, not an
// error.
func TestCache_LoadMissingFile(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

// tradeGateway is a counting stub for the price provider tests.
type tradeGateway struct {
	price float64
	err   error
	calls int
}

func (g *tradeGateway) GetPositions(ctx context.Context) ([]broker.Position, error) {
	return nil, nil
}
func (g *tradeGateway) GetAccount(ctx context.Context) (*broker.Account, error) {
	return &broker.Account{}, nil
}
func (g *tradeGateway) GetLatestQuote(ctx context.Context, symbol string) (*broker.Quote, error) {
	return &broker.Quote{}, nil
}
func (g *tradeGateway) GetLatestTrade(ctx context.Context, symbol string) (*broker.Trade, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &broker.Trade{Price: g.price}, nil
}
func (g *tradeGateway) GetClock(ctx context.Context) (*broker.Clock, error) {
	return &broker.Clock{}, nil
}
func (g *tradeGateway) SubmitOrder(ctx context.Context, req broker.OrderRequest) (*broker.OrderResult, error) {
	return nil, errors.New("not implemented")
}
func (g *tradeGateway) CancelAllOrders(ctx context.Context) error {
	return nil
}

// TestPriceProvider_ReadThrough checks the second read is served from
// cache without touching the gateway.
func TestPriceProvider_ReadThrough(t *testing.T) {
	gw := &tradeGateway{price: 155.25}
	p := NewPriceProvider(gw, NewCache(filepath.Join(t.TempDir(), "cache.json")))

	price, err := p.LastPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 155.25, price)

	price, err = p.LastPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 155.25, price)
	assert.Equal(t, 1, gw.calls)
}

// TestPriceProvider_GatewayFailure checks a miss plus a dead gateway is
// an error.
func TestPriceProvider_GatewayFailure(t *testing.T) {
	gw := &tradeGateway{err: errors.New("data host down")}
	p := NewPriceProvider(gw, NewCache(filepath.Join(t.TempDir(), "cache.json")))

	_, err := p.LastPrice(context.Background(), "AAPL")
	assert.Error(t, err)
}
