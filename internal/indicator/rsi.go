package indicator

// RSI calculates the Relative Strength Index with Wilder smoothing.
// Returns 50 (neutral) when fewer than period+1 closes are available.
func RSI(closes []float64, period int) float64 {
	if period < 1 || len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	p := float64(period)
	avgGain := gains / p
	avgLoss := losses / p

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}
