package position

import (
	"math"
	"strconv"

	"smclens/internal/numeric"
	"smclens/internal/signal"
)

// Recommendation labels
const (
	RecommendWait     = "WAIT"
	RecommendAvoid    = "AVOID"
	RecommendSmall    = "SMALL_POSITION"
	RecommendStandard = "STANDARD_POSITION"
	RecommendFull     = "FULL_POSITION"
)

// relative slack before realised risk counts as above target
const riskTolerance = 1e-9

// Sizing is the recommended trade size for a signal
type Sizing struct {
	PositionSize       float64 `json:"positionSize"`       // units of the instrument
	PositionSizeUSD    float64 `json:"positionSizeUSD"`    // notional at entry
	RiskAmount         float64 `json:"riskAmount"`         // loss if the stop is hit
	AccountRiskPercent float64 `json:"accountRiskPercent"` // realised risk, % of account
	SLDistance         float64 `json:"slDistance"`
	Expectancy         float64 `json:"expectancy"` // in R per trade
	KellyFraction      float64 `json:"kellyFraction"`
	Recommendation     string  `json:"recommendation"`
}

// Wait returns the zero sizing for a non-actionable signal
func Wait() Sizing {
	return Sizing{Recommendation: RecommendWait}
}

// Sizer calculates position sizes from a fixed account risk
type Sizer struct {
	AccountSize  float64 // account value
	RiskPercent  float64 // risk per trade in percent (2 = 2%)
	WinRate      float64 // assumed win rate for expectancy; not derived from history
	ShrinkFactor float64 // applied when realised risk overshoots the target
}

// NewSizer creates a new sizer with the default risk settings
func NewSizer(accountSize float64) *Sizer {
	return &Sizer{
		AccountSize:  accountSize,
		RiskPercent:  2,
		WinRate:      0.60,
		ShrinkFactor: 0.95,
	}
}

// Size converts a signal into a position. WAIT signals size to zero.
func (p *Sizer) Size(sig signal.Signal) Sizing {
	if !sig.IsActionable() {
		return Wait()
	}

	slDistance := math.Abs(sig.Entry - sig.StopLoss)
	if slDistance == 0 || p.AccountSize <= 0 {
		return Wait()
	}

	target := p.RiskPercent / 100
	riskAmount := p.AccountSize * target
	size := riskAmount / slDistance

	// Never risk more than the target fraction of the account. Float
	// rounding in size*slDistance is not an overshoot.
	realised := size * slDistance
	if realised/p.AccountSize > target*(1+riskTolerance) {
		size *= p.ShrinkFactor
		realised = size * slDistance
	}

	rr, err := strconv.ParseFloat(sig.RR, 64)
	if err != nil {
		rr = 0
	}

	return Sizing{
		PositionSize:       numeric.Round(size),
		PositionSizeUSD:    numeric.Round(size * sig.Entry),
		RiskAmount:         numeric.Round(realised),
		AccountRiskPercent: numeric.Round(realised / p.AccountSize * 100),
		SLDistance:         numeric.Round(slDistance),
		Expectancy:         numeric.Round(p.WinRate*rr - (1 - p.WinRate)),
		KellyFraction:      numeric.Round(CalculateKelly(p.WinRate, rr, 1)),
		Recommendation:     Recommend(sig.Confidence),
	}
}

// Recommend maps signal confidence to a sizing tier
func Recommend(confidence float64) string {
	switch {
	case confidence < 50:
		return RecommendAvoid
	case confidence < 60:
		return RecommendSmall
	case confidence < 75:
		return RecommendStandard
	default:
		return RecommendFull
	}
}

// CalculateKelly calculates the Kelly fraction for given parameters
func CalculateKelly(winRate, avgWin, avgLoss float64) float64 {
	if avgLoss == 0 || avgWin == 0 {
		return 0
	}

	// Kelly = (W * B - L) / B
	// where W = win probability, L = loss probability, B = win/loss ratio
	b := avgWin / avgLoss
	kelly := (winRate*b - (1 - winRate)) / b

	return math.Max(0, math.Min(kelly, 1)) // Clamp between 0 and 1
}
