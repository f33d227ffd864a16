package structure

import (
	"smclens/internal/numeric"
	"smclens/pkg/model"
)

// FindSwings marks index i as a swing high when its high strictly exceeds
// every other high in [i-lookback, i+lookback], and as a swing low by the
// mirror rule. Indices without a full window are skipped. In All, a high
// is listed before a low at the same index.
func FindSwings(s *model.Series, lookback int) Swings {
	if lookback < 1 {
		lookback = 1
	}

	swings := Swings{Highs: []SwingPoint{}, Lows: []SwingPoint{}, All: []SwingPoint{}}
	n := s.Len()
	for i := lookback; i < n-lookback; i++ {
		isHigh, isLow := true, true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if s.Highs[j] >= s.Highs[i] {
				isHigh = false
			}
			if s.Lows[j] <= s.Lows[i] {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}

		if isHigh {
			p := SwingPoint{Index: i, Price: numeric.Round(s.Highs[i]), Time: s.Candles[i].Time, Kind: SwingHigh}
			swings.Highs = append(swings.Highs, p)
			swings.All = append(swings.All, p)
		}
		if isLow {
			p := SwingPoint{Index: i, Price: numeric.Round(s.Lows[i]), Time: s.Candles[i].Time, Kind: SwingLow}
			swings.Lows = append(swings.Lows, p)
			swings.All = append(swings.All, p)
		}
	}
	return swings
}
