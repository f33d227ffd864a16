package structure

import (
	"sort"

	"smclens/internal/numeric"
	"smclens/pkg/model"
)

// FindBreaks scans the candles strictly between consecutive swing highs
// (and lows). The first close through the earlier swing's price is a
// break of structure. Results are most recent first.
func FindBreaks(s *model.Series, swings Swings) []Break {
	breaks := []Break{}

	for k := 1; k < len(swings.Highs); k++ {
		prev, cur := swings.Highs[k-1], swings.Highs[k]
		for j := prev.Index + 1; j < cur.Index; j++ {
			if s.Closes[j] > prev.Price {
				breaks = append(breaks, Break{
					Kind:     BullishBOS,
					Level:    prev.Price,
					Index:    j,
					Time:     s.Candles[j].Time,
					Distance: numeric.Round(s.Closes[j] - prev.Price),
				})
				break
			}
		}
	}

	for k := 1; k < len(swings.Lows); k++ {
		prev, cur := swings.Lows[k-1], swings.Lows[k]
		for j := prev.Index + 1; j < cur.Index; j++ {
			if s.Closes[j] < prev.Price {
				breaks = append(breaks, Break{
					Kind:     BearishBOS,
					Level:    prev.Price,
					Index:    j,
					Time:     s.Candles[j].Time,
					Distance: numeric.Round(prev.Price - s.Closes[j]),
				})
				break
			}
		}
	}

	sort.SliceStable(breaks, func(a, b int) bool {
		return breaks[a].Index > breaks[b].Index
	})
	return breaks
}
