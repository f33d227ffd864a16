package provider

import (
	"context"

	"smclens/internal/ratelimit"
	"smclens/pkg/model"
)

// ThrottledProvider spaces out loads through a rate limiter
type ThrottledProvider struct {
	inner   Provider
	limiter *ratelimit.Limiter
}

// NewThrottledProvider wraps inner with limiter
func NewThrottledProvider(inner Provider, limiter *ratelimit.Limiter) *ThrottledProvider {
	return &ThrottledProvider{inner: inner, limiter: limiter}
}

func (p *ThrottledProvider) Name() string      { return p.inner.Name() }
func (p *ThrottledProvider) IsAvailable() bool { return p.inner.IsAvailable() }

// GetCandles waits for a token, then loads through the inner provider
func (p *ThrottledProvider) GetCandles(ctx context.Context, inst model.Instrument) ([]model.Candle, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.GetCandles(ctx, inst)
}
