package structure

import "time"

// SwingKind marks a swing point as a local high or low
type SwingKind string

const (
	SwingHigh SwingKind = "HIGH"
	SwingLow  SwingKind = "LOW"
)

// SwingPoint is a local extremum over a symmetric lookback window
type SwingPoint struct {
	Index int       `json:"index"`
	Price float64   `json:"price"`
	Time  time.Time `json:"time"`
	Kind  SwingKind `json:"type"`
}

// Swings groups swing points by kind; All is index ordered
type Swings struct {
	Highs []SwingPoint `json:"highs"`
	Lows  []SwingPoint `json:"lows"`
	All   []SwingPoint `json:"all"`
}

// BreakKind is the direction of a break of structure
type BreakKind string

const (
	BullishBOS BreakKind = "BULLISH_BOS"
	BearishBOS BreakKind = "BEARISH_BOS"
)

// Break is a close trading through a prior swing extreme (BOS)
type Break struct {
	Kind     BreakKind `json:"type"`
	Level    float64   `json:"level"`
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
	Distance float64   `json:"distance"` // |close - level| of the breaking candle
}

// IsBullish reports whether the break is to the upside
func (b Break) IsBullish() bool {
	return b.Kind == BullishBOS
}

// ReversalKind is the direction of a change of character
type ReversalKind string

const (
	BullishCHoCH ReversalKind = "BULLISH_CHOCH"
	BearishCHoCH ReversalKind = "BEARISH_CHOCH"
)

// ReversalStrength grades the triggering candle of a CHoCH
type ReversalStrength string

const (
	ReversalWeak     ReversalStrength = "WEAK"
	ReversalModerate ReversalStrength = "MODERATE"
	ReversalStrong   ReversalStrength = "STRONG"
	ReversalUnknown  ReversalStrength = "UNKNOWN"
)

// Reversal is a four-swing change of character (CHoCH)
type Reversal struct {
	Kind     ReversalKind     `json:"type"`
	Level    float64          `json:"level"`
	Index    int              `json:"index"`
	Time     time.Time        `json:"time"`
	Strength ReversalStrength `json:"strength"`
}

// IsBullish reports whether the reversal is to the upside
func (r Reversal) IsBullish() bool {
	return r.Kind == BullishCHoCH
}

// ZoneKind identifies order blocks and fair value gaps
type ZoneKind string

const (
	BullishOB  ZoneKind = "BULLISH_OB"
	BearishOB  ZoneKind = "BEARISH_OB"
	BullishFVG ZoneKind = "BULLISH_FVG"
	BearishFVG ZoneKind = "BEARISH_FVG"
)

// OrderBlock is the opposite-coloured candle preceding a break of structure
type OrderBlock struct {
	Kind           ZoneKind  `json:"type"`
	High           float64   `json:"high"`
	Low            float64   `json:"low"`
	Midpoint       float64   `json:"midpoint"`
	Index          int       `json:"index"`
	Time           time.Time `json:"time"`
	BreakIndex     int       `json:"breakIndex"`
	Strength       float64   `json:"strength"`
	Mitigated      bool      `json:"mitigated"`
	MitigatedIndex int       `json:"mitigatedIndex"` // -1 until mitigated
}

// IsBullish reports whether the block supports price from below
func (o OrderBlock) IsBullish() bool {
	return o.Kind == BullishOB
}

// OrderBlocks groups order blocks; Active holds the unmitigated ones
type OrderBlocks struct {
	All     []OrderBlock `json:"all"`
	Bullish []OrderBlock `json:"bullish"`
	Bearish []OrderBlock `json:"bearish"`
	Active  []OrderBlock `json:"active"`
}

// FairValueGap is a three-candle imbalance zone
type FairValueGap struct {
	Kind        ZoneKind  `json:"type"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Midpoint    float64   `json:"midpoint"`
	Size        float64   `json:"size"`
	Index       int       `json:"index"`
	Time        time.Time `json:"time"`
	Filled      bool      `json:"filled"`
	FillPercent float64   `json:"fillPercent"`
}

// IsBullish reports whether the gap was left by an up move
func (f FairValueGap) IsBullish() bool {
	return f.Kind == BullishFVG
}

// ActiveFillLimit is the fill percent at which a gap stops counting as active
const ActiveFillLimit = 60.0

// IsActive reports whether the gap is unfilled and under the fill limit
func (f FairValueGap) IsActive() bool {
	return !f.Filled && f.FillPercent < ActiveFillLimit
}

// FVGs groups fair value gaps; Active holds gaps under the fill limit
type FVGs struct {
	All     []FairValueGap `json:"all"`
	Bullish []FairValueGap `json:"bullish"`
	Bearish []FairValueGap `json:"bearish"`
	Active  []FairValueGap `json:"active"`
}

// LiquidityKind is buy-side (above highs) or sell-side (below lows)
type LiquidityKind string

const (
	BuySideLiquidity  LiquidityKind = "BSL"
	SellSideLiquidity LiquidityKind = "SSL"
)

// LiquidityZone is a cluster of near-equal swing extremes
type LiquidityZone struct {
	Kind     LiquidityKind `json:"type"`
	Level    float64       `json:"level"`
	Strength float64       `json:"strength"`
	Count    int           `json:"count"`
}

// Liquidity groups liquidity zones by side
type Liquidity struct {
	BSL []LiquidityZone `json:"bsl"`
	SSL []LiquidityZone `json:"ssl"`
	All []LiquidityZone `json:"all"`
}

// BiasDirection is the overall market structure label
type BiasDirection string

const (
	BiasBullish BiasDirection = "BULLISH"
	BiasBearish BiasDirection = "BEARISH"
	BiasRanging BiasDirection = "RANGING"
)

// Bias is the inferred market bias and what decided it
type Bias struct {
	Direction BiasDirection `json:"direction"`
	Structure string        `json:"structure"` // HH/HL, LH/LL or RANGING
	Source    string        `json:"source"`    // swings, choch or bos
}

// Summary counts the detected structure
type Summary struct {
	TotalCandles      int `json:"totalCandles"`
	SwingHighs        int `json:"swingHighs"`
	SwingLows         int `json:"swingLows"`
	ActiveOrderBlocks int `json:"activeOrderBlocks"`
	ActiveFVGs        int `json:"activeFvgs"`
}

// Analysis is the full structure bundle of one analysis call
type Analysis struct {
	Swings      Swings      `json:"swings"`
	BOS         []Break     `json:"bos"`
	CHoCH       []Reversal  `json:"choch"`
	OrderBlocks OrderBlocks `json:"orderBlocks"`
	FVGs        FVGs        `json:"fvgs"`
	Liquidity   Liquidity   `json:"liquidity"`
	Bias        Bias        `json:"marketBias"`
	Summary     Summary     `json:"summary"`
}

// Empty returns the structure bundle with no patterns
func Empty() Analysis {
	return Analysis{
		Swings:      Swings{Highs: []SwingPoint{}, Lows: []SwingPoint{}, All: []SwingPoint{}},
		BOS:         []Break{},
		CHoCH:       []Reversal{},
		OrderBlocks: OrderBlocks{All: []OrderBlock{}, Bullish: []OrderBlock{}, Bearish: []OrderBlock{}, Active: []OrderBlock{}},
		FVGs:        FVGs{All: []FairValueGap{}, Bullish: []FairValueGap{}, Bearish: []FairValueGap{}, Active: []FairValueGap{}},
		Liquidity:   Liquidity{BSL: []LiquidityZone{}, SSL: []LiquidityZone{}, All: []LiquidityZone{}},
		Bias:        Bias{Direction: BiasRanging, Structure: "RANGING", Source: "swings"},
	}
}
