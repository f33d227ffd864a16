package confluence

import (
	"fmt"
	"math"
	"strings"

	"smclens/internal/indicator"
	"smclens/internal/numeric"
	"smclens/internal/structure"
)

// Config holds the scoring thresholds. Distances are percent of price.
type Config struct {
	EntryBlockPct      float64 // order block reach of the SMC entry zone
	EntryGapPct        float64 // FVG reach of the SMC entry zone
	BlockPct           float64 // order block factor reach
	GapPct             float64 // FVG factor reach
	ChochWindow        int     // candles a CHoCH stays relevant
	ChochAgeDecay      bool    // decay the CHoCH score by 0.25 per candle of age
	SignedZones        bool    // score bearish zones and CHoCHs negative instead of 0..max
	DirectionThreshold float64 // |total| above this is a BUY or SELL
}

// DefaultConfig returns the standard scoring thresholds
func DefaultConfig() Config {
	return Config{
		EntryBlockPct:      1.0,
		EntryGapPct:        0.8,
		BlockPct:           1.5,
		GapPct:             1.0,
		ChochWindow:        20,
		ChochAgeDecay:      false,
		SignedZones:        false,
		DirectionThreshold: 5,
	}
}

// Factor bounds
const (
	maxSMCZone   = 25.0
	maxTechnical = 15.0

	entryBlockPoints = 15.0
	entryGapPoints   = 10.0
	biasBonus        = 5.0

	chochBase        = 15.0
	chochStrongBonus = 5.0
	chochDecay       = 0.25

	blockPoints     = 20.0
	gapPoints       = 15.0
	bosPoints       = 10.0
	alignmentPoints = 8.0

	emaStackPoints = 8.0
	emaPairPoints  = 4.0
	rsiPoints      = 5.0
	macdPoints     = 4.0
	strongPoints   = 3.0

	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// Scorer combines indicators and market structure into one score
type Scorer struct {
	config Config
}

// NewScorer creates a new confluence scorer
func NewScorer(cfg Config) *Scorer {
	return &Scorer{config: cfg}
}

// Score evaluates the seven factors against the current price
func (s *Scorer) Score(ind indicator.Set, smc structure.Analysis) Score {
	price := ind.CurrentPrice

	var f Factors
	var notes [7]string
	f.SMCZone, notes[0] = s.smcZone(price, smc)
	f.CHoCH, notes[1] = s.choch(smc)
	f.OrderBlock, notes[2] = s.orderBlock(price, smc.OrderBlocks.Active)
	f.FVG, notes[3] = s.fairValueGap(price, smc.FVGs.Active)
	f.BOS, notes[4] = breakOfStructure(smc.BOS)
	f.Technical, notes[5] = technical(ind)
	f.TrendAlignment, notes[6] = trendAlignment(smc.Bias, ind.Trend)

	f = Factors{
		SMCZone:        numeric.Round(f.SMCZone),
		CHoCH:          numeric.Round(f.CHoCH),
		OrderBlock:     numeric.Round(f.OrderBlock),
		FVG:            numeric.Round(f.FVG),
		BOS:            numeric.Round(f.BOS),
		Technical:      numeric.Round(f.Technical),
		TrendAlignment: numeric.Round(f.TrendAlignment),
	}

	total := numeric.Round(f.Sum())
	result := Score{
		Scores:     f,
		TotalScore: total,
		Direction:  s.direction(total),
		Confidence: numeric.Round(numeric.Clamp(50+2*math.Abs(total), 30, 95)),
		Breakdown: []Contribution{
			{Factor: FactorSMCZone, Score: f.SMCZone, Note: notes[0]},
			{Factor: FactorCHoCH, Score: f.CHoCH, Note: notes[1]},
			{Factor: FactorOrderBlock, Score: f.OrderBlock, Note: notes[2]},
			{Factor: FactorFVG, Score: f.FVG, Note: notes[3]},
			{Factor: FactorBOS, Score: f.BOS, Note: notes[4]},
			{Factor: FactorTechnical, Score: f.Technical, Note: notes[5]},
			{Factor: FactorTrendAlignment, Score: f.TrendAlignment, Note: notes[6]},
		},
	}
	sortBreakdown(result.Breakdown)
	return result
}

func (s *Scorer) direction(total float64) Direction {
	switch {
	case total > s.config.DirectionThreshold:
		return Buy
	case total < -s.config.DirectionThreshold:
		return Sell
	}
	return Wait
}

// smcZone rewards price sitting at an unmitigated order block and/or an
// active FVG, with a bonus when the zone agrees with the market bias.
// The result is in [0, 25] unless SignedZones is set.
func (s *Scorer) smcZone(price float64, smc structure.Analysis) (float64, string) {
	var score float64
	var parts []string
	aligned := false

	if ob, d, ok := nearest(price, smc.OrderBlocks.Active, blockBounds, s.config.EntryBlockPct); ok {
		score += s.zoneSign(ob.IsBullish()) * entryBlockPoints * (1 - d/s.config.EntryBlockPct)
		parts = append(parts, fmt.Sprintf("%s %.2f%% away", ob.Kind, d))
		aligned = aligned || agrees(smc.Bias, ob.IsBullish())
	}
	if gap, d, ok := nearest(price, smc.FVGs.Active, gapBounds, s.config.EntryGapPct); ok {
		score += s.zoneSign(gap.IsBullish()) * entryGapPoints * (1 - d/s.config.EntryGapPct)
		parts = append(parts, fmt.Sprintf("%s %.2f%% away", gap.Kind, d))
		aligned = aligned || agrees(smc.Bias, gap.IsBullish())
	}

	if len(parts) == 0 {
		return 0, "no entry zone near price"
	}
	if aligned {
		score += s.zoneSign(smc.Bias.Direction == structure.BiasBullish) * biasBonus
		parts = append(parts, "aligned with "+string(smc.Bias.Direction)+" bias")
	}
	return s.bound(score, maxSMCZone), strings.Join(parts, ", ")
}

func (s *Scorer) choch(smc structure.Analysis) (float64, string) {
	if len(smc.CHoCH) == 0 {
		return 0, "no change of character"
	}
	latest := smc.CHoCH[0]

	age := 0
	if s.config.ChochAgeDecay {
		age = max(0, smc.Summary.TotalCandles-1-latest.Index)
	}
	if age > s.config.ChochWindow {
		return 0, fmt.Sprintf("%s %d candles old", latest.Kind, age)
	}

	points := chochBase
	if latest.Strength == structure.ReversalStrong {
		points += chochStrongBonus
	}
	points = math.Max(0, points-chochDecay*float64(age))
	return s.zoneSign(latest.IsBullish()) * points, fmt.Sprintf("%s (%s) at %.8g", latest.Kind, latest.Strength, latest.Level)
}

func (s *Scorer) orderBlock(price float64, active []structure.OrderBlock) (float64, string) {
	ob, d, ok := nearest(price, active, blockBounds, s.config.BlockPct)
	if !ok {
		return 0, "no active order block in reach"
	}
	score := s.zoneSign(ob.IsBullish()) * blockPoints * (1 - d/s.config.BlockPct)
	return s.bound(score, blockPoints), fmt.Sprintf("%s strength %.0f, %.2f%% away", ob.Kind, ob.Strength, d)
}

func (s *Scorer) fairValueGap(price float64, active []structure.FairValueGap) (float64, string) {
	gap, d, ok := nearest(price, active, gapBounds, s.config.GapPct)
	if !ok {
		return 0, "no active fair value gap in reach"
	}
	score := s.zoneSign(gap.IsBullish()) * gapPoints * (1 - d/s.config.GapPct) * (1 - gap.FillPercent/100)
	return s.bound(score, gapPoints), fmt.Sprintf("%s %.0f%% filled, %.2f%% away", gap.Kind, gap.FillPercent, d)
}

func breakOfStructure(breaks []structure.Break) (float64, string) {
	if len(breaks) == 0 {
		return 0, "no break of structure"
	}
	latest := breaks[0]
	return sign(latest.IsBullish()) * bosPoints, fmt.Sprintf("latest %s at %.8g", latest.Kind, latest.Level)
}

func technical(ind indicator.Set) (float64, string) {
	var score float64
	var parts []string

	switch {
	case ind.EMA20 > ind.EMA50 && ind.EMA50 > ind.EMA200:
		score += emaStackPoints
		parts = append(parts, "EMA stack bullish")
	case ind.EMA20 < ind.EMA50 && ind.EMA50 < ind.EMA200:
		score -= emaStackPoints
		parts = append(parts, "EMA stack bearish")
	case ind.EMA20 > ind.EMA50:
		score += emaPairPoints
		parts = append(parts, "EMA20 above EMA50")
	case ind.EMA20 < ind.EMA50:
		score -= emaPairPoints
		parts = append(parts, "EMA20 below EMA50")
	}

	switch {
	case ind.RSI < rsiOversold:
		score += rsiPoints
		parts = append(parts, fmt.Sprintf("RSI %.1f oversold", ind.RSI))
	case ind.RSI > rsiOverbought:
		score -= rsiPoints
		parts = append(parts, fmt.Sprintf("RSI %.1f overbought", ind.RSI))
	}

	switch ind.MACD.Trending {
	case indicator.TrendBullish:
		score += macdPoints
		parts = append(parts, "MACD bullish")
	case indicator.TrendBearish:
		score -= macdPoints
		parts = append(parts, "MACD bearish")
	}

	if ind.Trend.Strength == indicator.StrengthStrong {
		switch ind.Trend.Direction {
		case indicator.TrendBullish:
			score += strongPoints
		case indicator.TrendBearish:
			score -= strongPoints
		}
	}

	if len(parts) == 0 {
		return numeric.Clamp(score, -maxTechnical, maxTechnical), "indicators neutral"
	}
	return numeric.Clamp(score, -maxTechnical, maxTechnical), strings.Join(parts, ", ")
}

func trendAlignment(bias structure.Bias, trend indicator.Trend) (float64, string) {
	switch {
	case bias.Direction == structure.BiasBullish && trend.Direction == indicator.TrendBullish:
		return alignmentPoints, "structure and trend both bullish"
	case bias.Direction == structure.BiasBearish && trend.Direction == indicator.TrendBearish:
		return -alignmentPoints, "structure and trend both bearish"
	}
	return 0, fmt.Sprintf("structure %s, trend %s", bias.Direction, trend.Direction)
}

func blockBounds(ob structure.OrderBlock) (float64, float64) { return ob.Low, ob.High }

func gapBounds(g structure.FairValueGap) (float64, float64) { return g.Low, g.High }

// nearest returns the zone closest to price within maxPct percent.
// Price inside a zone is distance 0. Ties keep the earlier zone.
func nearest[Z any](price float64, zones []Z, bounds func(Z) (float64, float64), maxPct float64) (Z, float64, bool) {
	var best Z
	bestDist := math.Inf(1)
	found := false
	if price <= 0 || maxPct <= 0 {
		return best, 0, false
	}

	for _, z := range zones {
		low, high := bounds(z)
		d := DistancePct(price, low, high)
		if d <= maxPct && d < bestDist {
			best, bestDist, found = z, d, true
		}
	}
	if !found {
		return best, 0, false
	}
	return best, bestDist, true
}

// DistancePct is the distance from price to [low, high] in percent of price
func DistancePct(price, low, high float64) float64 {
	switch {
	case price <= 0:
		return math.Inf(1)
	case price < low:
		return (low - price) / price * 100
	case price > high:
		return (price - high) / price * 100
	}
	return 0
}

func agrees(bias structure.Bias, bullish bool) bool {
	if bullish {
		return bias.Direction == structure.BiasBullish
	}
	return bias.Direction == structure.BiasBearish
}

// zoneSign is 1 for every zone unless SignedZones is set
func (s *Scorer) zoneSign(bullish bool) float64 {
	if !s.config.SignedZones {
		return 1
	}
	return sign(bullish)
}

func (s *Scorer) bound(score, limit float64) float64 {
	if s.config.SignedZones {
		return numeric.Clamp(score, -limit, limit)
	}
	return numeric.Clamp(score, 0, limit)
}

func sign(bullish bool) float64 {
	if bullish {
		return 1
	}
	return -1
}
