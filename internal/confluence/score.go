package confluence

import (
	"math"
	"sort"
)

// Direction is the directional call of a confluence score
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Wait Direction = "WAIT"
)

// Factor labels, in breakdown tie-break order
const (
	FactorSMCZone        = "SMC Entry Zone"
	FactorCHoCH          = "CHoCH"
	FactorOrderBlock     = "Order Block"
	FactorFVG            = "Fair Value Gap"
	FactorBOS            = "Break of Structure"
	FactorTechnical      = "Technical Indicators"
	FactorTrendAlignment = "Trend Alignment"
)

// Factors holds the seven signed factor scores
type Factors struct {
	SMCZone        float64 `json:"smcZone"`
	CHoCH          float64 `json:"choch"`
	OrderBlock     float64 `json:"orderBlock"`
	FVG            float64 `json:"fvg"`
	BOS            float64 `json:"bos"`
	Technical      float64 `json:"technical"`
	TrendAlignment float64 `json:"trendAlignment"`
}

// Sum returns the unweighted total of all factors
func (f Factors) Sum() float64 {
	return f.SMCZone + f.CHoCH + f.OrderBlock + f.FVG + f.BOS + f.Technical + f.TrendAlignment
}

// Contribution is one line of the score breakdown
type Contribution struct {
	Factor string  `json:"factor"`
	Score  float64 `json:"score"`
	Note   string  `json:"note"`
}

// Score is the combined directional score of one analysis
type Score struct {
	Scores     Factors        `json:"scores"`
	TotalScore float64        `json:"totalScore"`
	Direction  Direction      `json:"direction"`
	Confidence float64        `json:"confidence"`
	Breakdown  []Contribution `json:"breakdown"`
}

// Empty returns the neutral score used when scoring fails
func Empty() Score {
	return Score{
		Direction:  Wait,
		Confidence: 50,
		Breakdown:  []Contribution{},
	}
}

// Top returns the contribution with the largest absolute score
func (s Score) Top() (Contribution, bool) {
	if len(s.Breakdown) == 0 {
		return Contribution{}, false
	}
	return s.Breakdown[0], true
}

// sortBreakdown orders contributions by absolute score, keeping factor
// order for ties
func sortBreakdown(items []Contribution) {
	sort.SliceStable(items, func(a, b int) bool {
		return math.Abs(items[a].Score) > math.Abs(items[b].Score)
	})
}
