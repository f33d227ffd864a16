package provider

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"smclens/pkg/model"
)

// CachingProvider keeps the most recently loaded instruments in memory
type CachingProvider struct {
	inner Provider
	cache *lru.Cache[model.Instrument, []model.Candle]
}

// NewCachingProvider creates a caching wrapper holding at most size instruments
func NewCachingProvider(inner Provider, size int) *CachingProvider {
	if size < 1 {
		size = 1
	}
	// only fails for a non-positive size
	cache, _ := lru.New[model.Instrument, []model.Candle](size)
	return &CachingProvider{inner: inner, cache: cache}
}

func (p *CachingProvider) Name() string      { return p.inner.Name() }
func (p *CachingProvider) IsAvailable() bool { return p.inner.IsAvailable() }

// GetCandles serves from cache, loading through the inner provider on a miss.
// Callers get their own copy of the slice.
func (p *CachingProvider) GetCandles(ctx context.Context, inst model.Instrument) ([]model.Candle, error) {
	if cached, ok := p.cache.Get(inst); ok {
		return slices.Clone(cached), nil
	}

	candles, err := p.inner.GetCandles(ctx, inst)
	if err != nil {
		return nil, err
	}

	p.cache.Add(inst, candles)
	return slices.Clone(candles), nil
}

// Len returns the number of cached instruments
func (p *CachingProvider) Len() int {
	return p.cache.Len()
}
