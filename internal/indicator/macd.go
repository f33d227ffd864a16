package indicator

// MACDResult holds the latest MACD values
type MACDResult struct {
	Line      float64        `json:"macd"`
	Signal    float64        `json:"signal"`
	Histogram float64        `json:"histogram"`
	Trending  TrendDirection `json:"trending"`
}

// MACD computes the fast/slow EMA difference, its signal EMA and the histogram
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if len(closes) == 0 {
		return MACDResult{Trending: TrendNeutral}
	}

	fastSeries := EMASeries(closes, fast)
	slowSeries := EMASeries(closes, slow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastSeries[i] - slowSeries[i]
	}
	signalSeries := EMASeries(line, signal)

	last := len(closes) - 1
	result := MACDResult{
		Line:      line[last],
		Signal:    signalSeries[last],
		Histogram: line[last] - signalSeries[last],
	}

	switch {
	case result.Histogram > 0:
		result.Trending = TrendBullish
	case result.Histogram < 0:
		result.Trending = TrendBearish
	default:
		result.Trending = TrendNeutral
	}
	return result
}
