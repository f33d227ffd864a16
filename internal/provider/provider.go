// Package provider loads candle histories for the scanner and CLI.
package provider

import (
	"context"
	"errors"
	"fmt"

	"smclens/pkg/model"
)

// Provider is a source of candle histories
type Provider interface {
	Name() string
	// GetCandles returns the candles of inst, oldest first
	GetCandles(ctx context.Context, inst model.Instrument) ([]model.Candle, error)
	IsAvailable() bool
}

// ErrNotFound is wrapped by providers that hold no data for an instrument
var ErrNotFound = errors.New("no candles for instrument")

// ProviderError attributes a load failure to a provider
type ProviderError struct {
	Provider  string
	Err       error
	Retryable bool // the next provider in a chain may still have the data
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err leaves room for another provider
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable
}

// FallbackProvider asks a chain of providers in order
type FallbackProvider struct {
	chain []Provider
}

// NewFallbackProvider keeps the providers that are available, in order
func NewFallbackProvider(providers ...Provider) *FallbackProvider {
	f := &FallbackProvider{}
	for _, p := range providers {
		if p.IsAvailable() {
			f.chain = append(f.chain, p)
		}
	}
	return f
}

func (f *FallbackProvider) Name() string { return "fallback" }

// GetCandles returns the first successful load. A failure that is not
// retryable (a corrupt file, say) ends the chain.
func (f *FallbackProvider) GetCandles(ctx context.Context, inst model.Instrument) ([]model.Candle, error) {
	if len(f.chain) == 0 {
		return nil, &ProviderError{Provider: f.Name(), Err: fmt.Errorf("%s: %w", inst, ErrNotFound), Retryable: true}
	}

	var err error
	for _, p := range f.chain {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var candles []model.Candle
		if candles, err = p.GetCandles(ctx, inst); err == nil {
			return candles, nil
		}
		if !IsRetryable(err) {
			break
		}
	}
	return nil, err
}

func (f *FallbackProvider) IsAvailable() bool { return len(f.chain) > 0 }

// Providers returns the available providers in chain order
func (f *FallbackProvider) Providers() []Provider {
	return f.chain
}
