package indicator

// TrendDirection classifies the direction of the EMA stack
type TrendDirection string

const (
	TrendBullish TrendDirection = "BULLISH"
	TrendBearish TrendDirection = "BEARISH"
	TrendNeutral TrendDirection = "NEUTRAL"
)

// TrendStrength classifies how much of the EMA stack agrees
type TrendStrength string

const (
	StrengthWeak     TrendStrength = "WEAK"
	StrengthModerate TrendStrength = "MODERATE"
	StrengthStrong   TrendStrength = "STRONG"
)

// VolatilityLevel compares recent range expansion to its baseline
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "LOW"
	VolatilityNormal  VolatilityLevel = "NORMAL"
	VolatilityHigh    VolatilityLevel = "HIGH"
	VolatilityUnknown VolatilityLevel = "UNKNOWN"
)

// Trend is the direction/strength pair
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Strength  TrendStrength  `json:"strength"`
}

// ClassifyTrend labels the fast/mid/slow EMA stack
func ClassifyTrend(fast, mid, slow float64) Trend {
	switch {
	case fast > mid && mid > slow:
		return Trend{Direction: TrendBullish, Strength: StrengthStrong}
	case fast < mid && mid < slow:
		return Trend{Direction: TrendBearish, Strength: StrengthStrong}
	case fast > mid:
		return Trend{Direction: TrendBullish, Strength: StrengthModerate}
	case fast < mid:
		return Trend{Direction: TrendBearish, Strength: StrengthModerate}
	}
	return NeutralTrend()
}

// NeutralTrend is the cold-start trend
func NeutralTrend() Trend {
	return Trend{Direction: TrendNeutral, Strength: StrengthWeak}
}

const (
	recentVolWindow   = 10
	baselineVolWindow = 20
	highVolRatio      = 1.3
	lowVolRatio       = 0.7
)

// ClassifyVolatility compares the mean range of the last 10 candles
// against the mean range of the last 20.
func ClassifyVolatility(ranges []float64) VolatilityLevel {
	n := len(ranges)
	if n < baselineVolWindow {
		return VolatilityUnknown
	}

	var recent, baseline float64
	for i := n - baselineVolWindow; i < n; i++ {
		baseline += ranges[i]
		if i >= n-recentVolWindow {
			recent += ranges[i]
		}
	}
	recent /= recentVolWindow
	baseline /= baselineVolWindow

	if baseline == 0 {
		return VolatilityNormal
	}

	ratio := recent / baseline
	switch {
	case ratio >= highVolRatio:
		return VolatilityHigh
	case ratio <= lowVolRatio:
		return VolatilityLow
	}
	return VolatilityNormal
}
