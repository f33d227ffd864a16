package model

import "time"

// Candle represents a single candlestick (OHLCV data)
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"` // optional, 0 when the source has none
}

// Range returns high minus low
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsBullish reports whether the candle closed above its open
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// Metadata identifies the instrument a candle sequence belongs to.
// It is attached to the output only and never used in computation.
type Metadata struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// Instrument is a symbol/timeframe pair requested from a provider
type Instrument struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// Metadata converts the instrument into output metadata
func (i Instrument) Metadata() Metadata {
	return Metadata{Symbol: i.Symbol, Timeframe: i.Timeframe}
}

// String returns SYMBOL/timeframe
func (i Instrument) String() string {
	return i.Symbol + "/" + i.Timeframe
}
