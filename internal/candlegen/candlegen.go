// Package candlegen builds synthetic candle sequences for tests.
package candlegen

import (
	"math/rand"
	"time"

	"smclens/pkg/model"
)

// Start is the timestamp of the first generated candle
var Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Interval is the spacing between generated candles
const Interval = time.Hour

// Flat returns n candles with open=high=low=close=price
func Flat(n int, price float64) []model.Candle {
	candles := make([]model.Candle, n)
	for i := range candles {
		candles[i] = model.Candle{
			Time:   Start.Add(time.Duration(i) * Interval),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}
	return candles
}

// Uptrend returns n candles whose close rises by 1.0 or 1.5 alternately
func Uptrend(n int, start float64) []model.Candle {
	candles := make([]model.Candle, n)
	price := start
	for i := range candles {
		step := 1.0
		if i%2 == 1 {
			step = 1.5
		}
		open := price
		price += step
		candles[i] = model.Candle{
			Time:   Start.Add(time.Duration(i) * Interval),
			Open:   open,
			High:   price + 0.25,
			Low:    open - 0.25,
			Close:  price,
			Volume: 1000,
		}
	}
	return candles
}

// Downtrend mirrors Uptrend
func Downtrend(n int, start float64) []model.Candle {
	candles := make([]model.Candle, n)
	price := start
	for i := range candles {
		step := 1.0
		if i%2 == 1 {
			step = 1.5
		}
		open := price
		price -= step
		candles[i] = model.Candle{
			Time:   Start.Add(time.Duration(i) * Interval),
			Open:   open,
			High:   open + 0.25,
			Low:    price - 0.25,
			Close:  price,
			Volume: 1000,
		}
	}
	return candles
}

// FromCloses builds candles whose open is the previous close and whose
// wicks extend pad beyond the body.
func FromCloses(closes []float64, pad float64) []model.Candle {
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		high, low := open, c
		if c > open {
			high, low = c, open
		}
		candles[i] = model.Candle{
			Time:   Start.Add(time.Duration(i) * Interval),
			Open:   open,
			High:   high + pad,
			Low:    low - pad,
			Close:  c,
			Volume: 1000,
		}
	}
	return candles
}

// RandomWalk returns a reproducible random walk around start
func RandomWalk(n int, start float64, seed int64) []model.Candle {
	rng := rand.New(rand.NewSource(seed))
	closes := make([]float64, n)
	price := start
	for i := range closes {
		price += (rng.Float64() - 0.5) * 2
		if price < 1 {
			price = 1
		}
		closes[i] = price
	}

	candles := FromCloses(closes, 0)
	for i := range candles {
		candles[i].High += rng.Float64() * 0.8
		low := candles[i].Low - rng.Float64()*0.8
		if low < 0.5 {
			low = 0.5
		}
		candles[i].Low = low
	}
	return candles
}

// Wave returns a zig-zag of n candles oscillating between legs of the
// given length, drifting by drift per leg. It produces regular swing
// highs and lows.
func Wave(n, leg int, start, amplitude, drift float64) []model.Candle {
	closes := make([]float64, n)
	base := start
	for i := range closes {
		pos := i % (2 * leg)
		if pos == 0 && i > 0 {
			base += drift
		}
		var offset float64
		if pos < leg {
			offset = amplitude * float64(pos) / float64(leg)
		} else {
			offset = amplitude * float64(2*leg-pos) / float64(leg)
		}
		closes[i] = base + offset
	}

	// stretch the turning candles so every peak and trough is a strict extreme
	candles := FromCloses(closes, 0.1)
	for i := range candles {
		switch i % (2 * leg) {
		case leg:
			candles[i].High += 0.5
		case 0:
			if i > 0 {
				candles[i].Low -= 0.5
			}
		}
	}
	return candles
}
