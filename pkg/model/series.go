package model

// Series holds the per-candle arrays every analysis stage reads.
// It is built once per analysis and never mutated afterwards.
type Series struct {
	Candles []Candle
	Opens   []float64
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Ranges  []float64 // high - low
}

// NewSeries extracts the shared arrays from a candle sequence
func NewSeries(candles []Candle) *Series {
	n := len(candles)
	s := &Series{
		Candles: candles,
		Opens:   make([]float64, n),
		Highs:   make([]float64, n),
		Lows:    make([]float64, n),
		Closes:  make([]float64, n),
		Ranges:  make([]float64, n),
	}
	for i, c := range candles {
		s.Opens[i] = c.Open
		s.Highs[i] = c.High
		s.Lows[i] = c.Low
		s.Closes[i] = c.Close
		s.Ranges[i] = c.High - c.Low
	}
	return s
}

// Len returns the number of candles
func (s *Series) Len() int {
	return len(s.Candles)
}

// LastClose returns the most recent close, or 0 for an empty series
func (s *Series) LastClose() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// AvgRange returns the mean high-low range over the trailing n candles
func (s *Series) AvgRange(n int) float64 {
	return trailingMean(s.Ranges, n)
}

// AvgClose returns the mean close over the trailing n candles
func (s *Series) AvgClose(n int) float64 {
	return trailingMean(s.Closes, n)
}

func trailingMean(values []float64, n int) float64 {
	if n > len(values) {
		n = len(values)
	}
	if n <= 0 {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
