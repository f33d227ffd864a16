package indicator

import "math"

// TrueRanges returns max(high-low, |high-prevClose|, |low-prevClose|)
// for every candle after the first.
func TrueRanges(highs, lows, closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	trs := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trs[i-1] = math.Max(hl, math.Max(hc, lc))
	}
	return trs
}

// ATR calculates the Average True Range: SMA seed over the first period
// true ranges, Wilder smoothing afterwards. With fewer true ranges than
// period it falls back to their plain mean.
func ATR(highs, lows, closes []float64, period int) float64 {
	trs := TrueRanges(highs, lows, closes)
	if len(trs) == 0 || period < 1 {
		return 0
	}

	if len(trs) < period {
		var sum float64
		for _, tr := range trs {
			sum += tr
		}
		return sum / float64(len(trs))
	}

	var atr float64
	for i := 0; i < period; i++ {
		atr += trs[i]
	}
	atr /= float64(period)

	p := float64(period)
	for i := period; i < len(trs); i++ {
		atr = (atr*(p-1) + trs[i]) / p
	}
	return atr
}
