package structure

import "smclens/pkg/model"

// InferBias labels structure from the last two swing highs and lows
// (HH/HL bullish, LH/LL bearish, otherwise ranging). A CHoCH inside the
// last window candles overrides the label; failing that, a strict
// majority of BOS events inside the window does.
func InferBias(s *model.Series, swings Swings, breaks []Break, reversals []Reversal, window int) Bias {
	bias := Bias{Direction: BiasRanging, Structure: "RANGING", Source: "swings"}

	highs, lows := swings.Highs, swings.Lows
	if len(highs) >= 2 && len(lows) >= 2 {
		lastHigh, prevHigh := highs[len(highs)-1], highs[len(highs)-2]
		lastLow, prevLow := lows[len(lows)-1], lows[len(lows)-2]

		if lastHigh.Price > prevHigh.Price && lastLow.Price > prevLow.Price {
			bias.Direction, bias.Structure = BiasBullish, "HH/HL"
		} else if lastHigh.Price < prevHigh.Price && lastLow.Price < prevLow.Price {
			bias.Direction, bias.Structure = BiasBearish, "LH/LL"
		}
	}

	cutoff := s.Len() - window

	// reversals are most recent first
	if len(reversals) > 0 && reversals[0].Index >= cutoff {
		bias.Source = "choch"
		if reversals[0].IsBullish() {
			bias.Direction = BiasBullish
		} else {
			bias.Direction = BiasBearish
		}
		return bias
	}

	var bullish, bearish int
	for _, b := range breaks {
		if b.Index < cutoff {
			continue
		}
		if b.IsBullish() {
			bullish++
		} else {
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		bias.Direction, bias.Source = BiasBullish, "bos"
	case bearish > bullish:
		bias.Direction, bias.Source = BiasBearish, "bos"
	}
	return bias
}
