// Package ratelimit paces candle loads with a token bucket.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// maxBurst caps how many loads may run back to back after an idle spell
const maxBurst = 5

// Limiter is a named token bucket sized from a per-minute budget
type Limiter struct {
	bucket    *rate.Limiter
	name      string
	perMinute int
}

// NewLimiter allows perMinute loads per minute; perMinute <= 0 never blocks
func NewLimiter(name string, perMinute int) *Limiter {
	l := &Limiter{name: name, perMinute: perMinute}
	if perMinute <= 0 {
		l.bucket = rate.NewLimiter(rate.Inf, 0)
		return l
	}
	l.bucket = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burstFor(perMinute))
	return l
}

// burstFor is a tenth of the minute budget, between 1 and maxBurst
func burstFor(perMinute int) int {
	return min(max(perMinute/10, 1), maxBurst)
}

// Wait blocks until a load may start or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%s: waiting for load slot: %w", l.name, err)
	}
	return nil
}

// Allow takes a token if one is free right now
func (l *Limiter) Allow() bool {
	return l.bucket.Allow()
}

// Unlimited reports whether the limiter never blocks
func (l *Limiter) Unlimited() bool {
	return l.bucket.Limit() == rate.Inf
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}

func (l *Limiter) String() string {
	if l.Unlimited() {
		return l.name + " (unlimited)"
	}
	return fmt.Sprintf("%s (%d/min, burst %d)", l.name, l.perMinute, l.bucket.Burst())
}
