package structure

import (
	"math"
	"sort"

	"smclens/internal/numeric"
	"smclens/pkg/model"
)

// rangeWindow is the trailing window for the average candle range
const rangeWindow = 20

// FindFairValueGaps checks every candle triple (c1, c2, c3). c3.low above
// c1.high is a bullish gap, c3.high below c1.low a bearish one. A gap must
// exceed significance times the trailing average range. Fill state is
// resolved separately by AnnotateFill.
func FindFairValueGaps(s *model.Series, significance float64) []FairValueGap {
	gaps := []FairValueGap{}
	threshold := significance * s.AvgRange(rangeWindow)

	for i := 2; i < s.Len(); i++ {
		var kind ZoneKind
		var low, high float64

		switch {
		case s.Lows[i] > s.Highs[i-2]:
			kind, low, high = BullishFVG, s.Highs[i-2], s.Lows[i]
		case s.Highs[i] < s.Lows[i-2]:
			kind, low, high = BearishFVG, s.Highs[i], s.Lows[i-2]
		default:
			continue
		}

		size := high - low
		if size <= threshold {
			continue
		}

		gaps = append(gaps, FairValueGap{
			Kind:     kind,
			High:     numeric.Round(high),
			Low:      numeric.Round(low),
			Midpoint: numeric.Round((high + low) / 2),
			Size:     numeric.Round(size),
			Index:    i - 1,
			Time:     s.Candles[i-1].Time,
		})
	}

	sort.SliceStable(gaps, func(a, b int) bool {
		return gaps[a].Index > gaps[b].Index
	})
	return gaps
}

// AnnotateFill returns a copy of gaps with fill state resolved from the
// candles after each gap. Intrusion is measured from the near edge toward
// the far edge; the fill percent only ever grows, and the gap is filled
// once the far edge is reached.
func AnnotateFill(s *model.Series, gaps []FairValueGap) []FairValueGap {
	out := make([]FairValueGap, len(gaps))
	for i, g := range gaps {
		g.Filled = false
		g.FillPercent = 0

		size := g.High - g.Low
		for j := g.Index + 2; j < s.Len() && size > 0; j++ {
			var intrusion float64
			if g.IsBullish() {
				intrusion = g.High - s.Lows[j]
			} else {
				intrusion = s.Highs[j] - g.Low
			}
			if intrusion <= 0 {
				continue
			}

			pct := math.Min(100, intrusion/size*100)
			if pct > g.FillPercent {
				g.FillPercent = pct
			}
			if pct >= 100 {
				g.Filled = true
				break
			}
		}

		g.FillPercent = numeric.Round(g.FillPercent)
		out[i] = g
	}
	return out
}

// groupFVGs splits gaps by kind and activity
func groupFVGs(gaps []FairValueGap) FVGs {
	g := FVGs{
		All:     gaps,
		Bullish: []FairValueGap{},
		Bearish: []FairValueGap{},
		Active:  []FairValueGap{},
	}
	for _, f := range gaps {
		if f.IsBullish() {
			g.Bullish = append(g.Bullish, f)
		} else {
			g.Bearish = append(g.Bearish, f)
		}
		if f.IsActive() {
			g.Active = append(g.Active, f)
		}
	}
	return g
}
