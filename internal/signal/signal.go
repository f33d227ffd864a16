// Package signal turns a confluence score into entry, stop and target levels.
package signal

import (
	"fmt"
	"math"

	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/numeric"
	"smclens/internal/structure"
)

// NoSetup is the setup label when no factor contributed
const NoSetup = "NONE"

// ReasonLowVolatility is the WAIT reason when the stop distance collapses to zero
const ReasonLowVolatility = "insufficient volatility for risk placement"

// Signal is a directional trade plan
type Signal struct {
	Direction  confluence.Direction `json:"direction"`
	Confidence float64              `json:"confidence"`
	Entry      float64              `json:"entry"`
	StopLoss   float64              `json:"stopLoss"`
	TP1        float64              `json:"tp1"`
	TP2        float64              `json:"tp2"`
	TP3        float64              `json:"tp3"`
	RR         string               `json:"rr"`
	Reason     string               `json:"reason"`
	Setup      string               `json:"setup"`

	// distances from entry, percent of entry
	StopLossPct float64 `json:"stopLossPct"`
	Target1Pct  float64 `json:"target1Pct"`
	Target2Pct  float64 `json:"target2Pct"`
	Target3Pct  float64 `json:"target3Pct"`
}

// Wait returns a signal with no levels
func Wait(reason string) Signal {
	return Signal{
		Direction: confluence.Wait,
		RR:        "0.00",
		Reason:    reason,
		Setup:     NoSetup,
	}
}

// IsActionable reports whether the signal is a BUY or SELL
func (s Signal) IsActionable() bool {
	return s.Direction == confluence.Buy || s.Direction == confluence.Sell
}

// Config holds stop and target placement settings
type Config struct {
	StopATR         float64    // base stop distance in ATRs
	BlockBufferATR  float64    // buffer beyond an order block edge in ATRs
	TargetMultiples [3]float64 // tp1..tp3 as multiples of the stop distance
}

// DefaultConfig returns the standard placement settings
func DefaultConfig() Config {
	return Config{
		StopATR:         1.2,
		BlockBufferATR:  0.2,
		TargetMultiples: [3]float64{2, 2.5, 3},
	}
}

// Builder constructs signals
type Builder struct {
	config Config
}

// NewBuilder creates a new signal builder
func NewBuilder(cfg Config) *Builder {
	return &Builder{config: cfg}
}

// Build places entry at the current price, the stop at 1.2 ATR (or beyond
// the nearest protecting order block when that is further) and three
// targets at fixed multiples of the stop distance.
func (b *Builder) Build(ind indicator.Set, smc structure.Analysis, conf confluence.Score) Signal {
	setup := setupLabel(conf)

	if conf.Direction != confluence.Buy && conf.Direction != confluence.Sell {
		sig := Wait(fmt.Sprintf("No clear confluence (total score %.2f)", conf.TotalScore))
		sig.Confidence = conf.Confidence
		sig.Setup = setup
		return sig
	}

	price := ind.CurrentPrice
	buy := conf.Direction == confluence.Buy
	slDistance := b.stopDistance(price, ind.ATR, buy, smc.OrderBlocks.Active)
	if slDistance <= 0 || price <= 0 {
		sig := Wait(ReasonLowVolatility)
		sig.Confidence = conf.Confidence
		sig.Setup = setup
		return sig
	}

	dir := 1.0
	if !buy {
		dir = -1
	}
	m := b.config.TargetMultiples

	sig := Signal{
		Direction:  conf.Direction,
		Confidence: conf.Confidence,
		Entry:      numeric.Round(price),
		StopLoss:   numeric.Round(price - dir*slDistance),
		TP1:        numeric.Round(price + dir*slDistance*m[0]),
		TP2:        numeric.Round(price + dir*slDistance*m[1]),
		TP3:        numeric.Round(price + dir*slDistance*m[2]),
		Reason:     reason(conf, ind, smc),
		Setup:      setup,

		StopLossPct: numeric.Round(slDistance / price * 100),
		Target1Pct:  numeric.Round(slDistance * m[0] / price * 100),
		Target2Pct:  numeric.Round(slDistance * m[1] / price * 100),
		Target3Pct:  numeric.Round(slDistance * m[2] / price * 100),
	}

	// a stop that rounds onto the entry is no stop at all
	risk := math.Abs(sig.Entry - sig.StopLoss)
	if risk == 0 {
		wait := Wait(ReasonLowVolatility)
		wait.Confidence = conf.Confidence
		wait.Setup = setup
		return wait
	}
	sig.RR = numeric.Fixed(math.Abs(sig.TP2-sig.Entry)/risk, 2)
	return sig
}

// stopDistance extends the ATR stop past the nearest unmitigated order
// block on the protecting side of price
func (b *Builder) stopDistance(price, atr float64, buy bool, active []structure.OrderBlock) float64 {
	sl := b.config.StopATR * atr
	buffer := b.config.BlockBufferATR * atr

	if ob, ok := protectingBlock(price, buy, active); ok {
		var ext float64
		if buy {
			ext = price - ob.Low + buffer
		} else {
			ext = ob.High - price + buffer
		}
		if ext > sl {
			sl = ext
		}
	}
	return sl
}

// protectingBlock finds the closest bullish block below price for a BUY,
// or the closest bearish block above price for a SELL
func protectingBlock(price float64, buy bool, active []structure.OrderBlock) (structure.OrderBlock, bool) {
	var best structure.OrderBlock
	found := false
	for _, ob := range active {
		if ob.Mitigated {
			continue
		}
		if buy {
			if !ob.IsBullish() || ob.Low >= price {
				continue
			}
			if !found || ob.High > best.High {
				best, found = ob, true
			}
		} else {
			if ob.IsBullish() || ob.High <= price {
				continue
			}
			if !found || ob.Low < best.Low {
				best, found = ob, true
			}
		}
	}
	return best, found
}

// Reason thresholds, compared against absolute factor scores
const (
	zoneReason  = 15.0
	chochReason = 10.0
	blockReason = 10.0
	gapReason   = 8.0
)

// reason names the dominant zone factor, sided by the signal direction
func reason(conf confluence.Score, ind indicator.Set, smc structure.Analysis) string {
	f := conf.Scores
	side := "bullish"
	if conf.Direction == confluence.Sell {
		side = "bearish"
	}
	switch {
	case math.Abs(f.SMCZone) > zoneReason:
		return fmt.Sprintf("Price at %s SMC entry zone, structure %s", side, smc.Bias.Structure)
	case math.Abs(f.CHoCH) > chochReason:
		return fmt.Sprintf("Change of character signals a %s reversal", side)
	case math.Abs(f.OrderBlock) > blockReason:
		return fmt.Sprintf("Price reacting to %s order block", side)
	case math.Abs(f.FVG) > gapReason:
		return fmt.Sprintf("Price trading into %s fair value gap", side)
	}
	return fmt.Sprintf("%s %s trend, RSI %.1f, MACD %s",
		ind.Trend.Strength, ind.Trend.Direction, ind.RSI, ind.MACD.Trending)
}

func setupLabel(conf confluence.Score) string {
	top, ok := conf.Top()
	if !ok || top.Score == 0 {
		return NoSetup
	}
	return top.Factor
}
