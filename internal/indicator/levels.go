package indicator

// LevelWindow is the trailing window used for support and resistance
const LevelWindow = 40

// SupportResistance returns the lowest low and highest high over the
// trailing window, clipped to the available length.
func SupportResistance(highs, lows []float64, window int) (support, resistance float64) {
	n := len(highs)
	if n == 0 {
		return 0, 0
	}
	if window > n || window <= 0 {
		window = n
	}

	support = lows[n-window]
	resistance = highs[n-window]
	for i := n - window + 1; i < n; i++ {
		if lows[i] < support {
			support = lows[i]
		}
		if highs[i] > resistance {
			resistance = highs[i]
		}
	}
	return support, resistance
}
