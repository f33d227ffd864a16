package structure

import (
	"sort"

	"smclens/pkg/model"
)

const reversalRangeWindow = 5

// FindReversals slides a window of four consecutive swings over the
// index-ordered swing list. LOW,HIGH,LOW,HIGH with a lower second low and
// a higher second high is a bullish CHoCH; the mirror is bearish. Results
// are most recent first.
func FindReversals(s *model.Series, all []SwingPoint) []Reversal {
	reversals := []Reversal{}

	for i := 0; i+3 < len(all); i++ {
		s1, s2, s3, s4 := all[i], all[i+1], all[i+2], all[i+3]

		var kind ReversalKind
		switch {
		case s1.Kind == SwingLow && s2.Kind == SwingHigh && s3.Kind == SwingLow && s4.Kind == SwingHigh &&
			s3.Price < s1.Price && s4.Price > s2.Price:
			kind = BullishCHoCH
		case s1.Kind == SwingHigh && s2.Kind == SwingLow && s3.Kind == SwingHigh && s4.Kind == SwingLow &&
			s3.Price > s1.Price && s4.Price < s2.Price:
			kind = BearishCHoCH
		default:
			continue
		}

		reversals = append(reversals, Reversal{
			Kind:     kind,
			Level:    s2.Price,
			Index:    s4.Index,
			Time:     s4.Time,
			Strength: reversalStrength(s, s4.Index),
		})
	}

	sort.SliceStable(reversals, func(a, b int) bool {
		return reversals[a].Index > reversals[b].Index
	})
	return reversals
}

// reversalStrength compares the triggering candle's range with the mean
// range of the five candles before it
func reversalStrength(s *model.Series, index int) ReversalStrength {
	if index < reversalRangeWindow {
		return ReversalUnknown
	}

	var sum float64
	for i := index - reversalRangeWindow; i < index; i++ {
		sum += s.Ranges[i]
	}
	avg := sum / reversalRangeWindow
	if avg == 0 {
		return ReversalUnknown
	}

	ratio := s.Ranges[index] / avg
	switch {
	case ratio >= 1.5:
		return ReversalStrong
	case ratio >= 1.0:
		return ReversalModerate
	}
	return ReversalWeak
}
