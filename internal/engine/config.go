package engine

import (
	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/position"
	"smclens/internal/signal"
	"smclens/internal/structure"
)

// Config aggregates the settings of every pipeline stage
type Config struct {
	Indicator  indicator.Config
	Structure  structure.Config
	Confluence confluence.Config
	Signal     signal.Config

	MinCandles int

	// Risk
	AccountSize float64
	RiskPercent float64
	WinRate     float64 // assumed, not validated against history

	// CacheSize bounds the result memo; 0 disables it
	CacheSize int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Indicator:   indicator.DefaultConfig(),
		Structure:   structure.DefaultConfig(),
		Confluence:  confluence.DefaultConfig(),
		Signal:      signal.DefaultConfig(),
		MinCandles:  50,
		AccountSize: 10000,
		RiskPercent: 2,
		WinRate:     0.60,
	}
}

func (c Config) sizer() *position.Sizer {
	s := position.NewSizer(c.AccountSize)
	if c.RiskPercent > 0 {
		s.RiskPercent = c.RiskPercent
	}
	if c.WinRate > 0 {
		s.WinRate = c.WinRate
	}
	return s
}
