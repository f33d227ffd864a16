package indicator

import (
	"time"

	"smclens/internal/numeric"
	"smclens/pkg/model"
)

// Config holds indicator periods
type Config struct {
	EMAPeriods   [3]int // fast, mid, slow
	RSIPeriod    int
	MACDFast     int
	MACDSlow     int
	MACDSignal   int
	ATRPeriod    int
	SeriesLength int // trailing points kept in the EMA series
}

// DefaultConfig returns the standard indicator periods
func DefaultConfig() Config {
	return Config{
		EMAPeriods:   [3]int{20, 50, 200},
		RSIPeriod:    14,
		MACDFast:     12,
		MACDSlow:     26,
		MACDSignal:   9,
		ATRPeriod:    14,
		SeriesLength: 100,
	}
}

// SeriesPoint is one time-labelled value of an indicator series
type SeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Set is the indicator snapshot of one analysis
type Set struct {
	CurrentPrice float64         `json:"currentPrice"`
	EMA20        float64         `json:"ema20"`
	EMA50        float64         `json:"ema50"`
	EMA200       float64         `json:"ema200"`
	RSI          float64         `json:"rsi"`
	ATR          float64         `json:"atr"`
	Support      float64         `json:"support"`
	Resistance   float64         `json:"resistance"`
	MACD         MACDResult      `json:"macd"`
	EMA20Series  []SeriesPoint   `json:"ema20Series"`
	EMA50Series  []SeriesPoint   `json:"ema50Series"`
	Trend        Trend           `json:"trend"`
	Volatility   VolatilityLevel `json:"volatilityLevel"`
}

// Empty returns the neutral snapshot used when indicator calculation fails
func Empty(price float64) Set {
	price = numeric.Round(price)
	return Set{
		CurrentPrice: price,
		EMA20:        price,
		EMA50:        price,
		EMA200:       price,
		RSI:          50,
		Support:      price,
		Resistance:   price,
		MACD:         MACDResult{Trending: TrendNeutral},
		EMA20Series:  []SeriesPoint{},
		EMA50Series:  []SeriesPoint{},
		Trend:        NeutralTrend(),
		Volatility:   VolatilityUnknown,
	}
}

// Calculator computes the indicator snapshot from a candle series
type Calculator struct {
	config Config
}

// NewCalculator creates a new indicator calculator
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{config: cfg}
}

// Calculate computes every indicator over the series. The series is
// assumed to be validated.
func (c *Calculator) Calculate(s *model.Series) Set {
	if s.Len() == 0 {
		return Empty(0)
	}

	cfg := c.config
	fast := EMASeries(s.Closes, cfg.EMAPeriods[0])
	mid := EMASeries(s.Closes, cfg.EMAPeriods[1])
	slow := EMA(s.Closes, cfg.EMAPeriods[2])
	last := s.Len() - 1

	support, resistance := SupportResistance(s.Highs, s.Lows, LevelWindow)
	macd := MACD(s.Closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)

	set := Set{
		CurrentPrice: numeric.Round(s.Closes[last]),
		EMA20:        numeric.Round(fast[last]),
		EMA50:        numeric.Round(mid[last]),
		EMA200:       numeric.Round(slow),
		RSI:          numeric.Round(RSI(s.Closes, cfg.RSIPeriod)),
		ATR:          numeric.Round(ATR(s.Highs, s.Lows, s.Closes, cfg.ATRPeriod)),
		Support:      numeric.Round(support),
		Resistance:   numeric.Round(resistance),
		MACD: MACDResult{
			Line:      numeric.Round(macd.Line),
			Signal:    numeric.Round(macd.Signal),
			Histogram: numeric.Round(macd.Histogram),
			Trending:  macd.Trending,
		},
		EMA20Series: c.labelled(s, fast),
		EMA50Series: c.labelled(s, mid),
		Volatility:  ClassifyVolatility(s.Ranges),
	}

	// Not enough history for the mid EMA to mean anything
	if s.Len() < cfg.EMAPeriods[1] {
		set.Trend = NeutralTrend()
	} else {
		set.Trend = ClassifyTrend(set.EMA20, set.EMA50, set.EMA200)
	}

	return set
}

// labelled keeps the trailing SeriesLength values paired with candle times
func (c *Calculator) labelled(s *model.Series, values []float64) []SeriesPoint {
	start := 0
	if c.config.SeriesLength > 0 && len(values) > c.config.SeriesLength {
		start = len(values) - c.config.SeriesLength
	}

	points := make([]SeriesPoint, 0, len(values)-start)
	for i := start; i < len(values); i++ {
		points = append(points, SeriesPoint{
			Time:  s.Candles[i].Time,
			Value: numeric.Round(values[i]),
		})
	}
	return points
}
