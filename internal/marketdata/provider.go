package marketdata

import (
	"context"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
)

// PriceProvider serves last trade prices through the cache. It exists for
// display and audit paths where a price a few minutes old is fine; order
// sizing always reads the broker directly.
type PriceProvider struct {
	gateway broker.Gateway
	cache   *Cache
}

// NewPriceProvider creates a cached price provider.
func NewPriceProvider(gateway broker.Gateway, cache *Cache) *PriceProvider {
	return &PriceProvider{gateway: gateway, cache: cache}
}

// LastPrice returns the most recent trade price for a symbol, from cache
// when fresh.
func (p *PriceProvider) LastPrice(ctx context.Context, symbol string) (float64, error) {
	var price float64
	if p.cache.Get(CategoryPrices, symbol, &price) {
		return price, nil
	}

	trade, err := p.gateway.GetLatestTrade(ctx, symbol)
	if err != nil {
		return 0, err
	}

	if err := p.cache.Set(CategoryPrices, symbol, trade.Price); err != nil {
		return 0, err
	}
	return trade.Price, nil
}
