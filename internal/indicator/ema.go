package indicator

// EMA returns the final value of the exponential moving average.
// The recurrence is seeded with series[0], k = 2/(period+1).
func EMA(series []float64, period int) float64 {
	if len(series) == 0 || period < 1 {
		return 0
	}

	k := 2.0 / float64(period+1)
	ema := series[0]
	for i := 1; i < len(series); i++ {
		ema = series[i]*k + ema*(1-k)
	}
	return ema
}

// EMASeries returns the full EMA recurrence, one value per input element
func EMASeries(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 || period < 1 {
		return out
	}

	k := 2.0 / float64(period+1)
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i]*k + out[i-1]*(1-k)
	}
	return out
}
