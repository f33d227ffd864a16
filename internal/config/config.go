package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"smclens/internal/engine"
)

// Config represents the application configuration
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Risk    RiskConfig    `yaml:"risk"`
	Scanner ScannerConfig `yaml:"scanner"`
	Log     LogConfig     `yaml:"log"`
}

// EngineConfig holds the analysis settings
type EngineConfig struct {
	EMAPeriods         []int      `yaml:"ema_periods"`
	RSIPeriod          int        `yaml:"rsi_period"`
	MACD               MACDConfig `yaml:"macd"`
	ATRPeriod          int        `yaml:"atr_period"`
	MinCandles         int        `yaml:"min_candles_required"`
	SwingLookback      int        `yaml:"swing_lookback"`
	BOSLookback        int        `yaml:"bos_lookback"`
	OBLookback         int        `yaml:"ob_lookback"`
	FVGSignificance    float64    `yaml:"fvg_significance"`
	LiquidityTolerance float64    `yaml:"liquidity_tolerance"`
	ChochAgeDecay      bool       `yaml:"choch_age_decay"`
	SignedZones        bool       `yaml:"signed_zones"`
	SeriesLength       int        `yaml:"series_length"`
	CacheSize          int        `yaml:"cache_size"`
}

// MACDConfig holds the MACD periods
type MACDConfig struct {
	Fast   int `yaml:"fast"`
	Slow   int `yaml:"slow"`
	Signal int `yaml:"signal"`
}

// RiskConfig holds position sizing settings
type RiskConfig struct {
	AccountSize float64 `yaml:"account_size"`
	RiskPercent float64 `yaml:"risk_percent"`
	WinRate     float64 `yaml:"win_rate"` // assumed, not validated against history
}

// ScannerConfig holds scanner settings
type ScannerConfig struct {
	Workers        int           `yaml:"workers"`
	Timeout        time.Duration `yaml:"timeout"`
	DataDir        string        `yaml:"data_dir"`
	LoadsPerMinute int           `yaml:"loads_per_minute"` // 0 = unthrottled
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			EMAPeriods:         []int{20, 50, 200},
			RSIPeriod:          14,
			MACD:               MACDConfig{Fast: 12, Slow: 26, Signal: 9},
			ATRPeriod:          14,
			MinCandles:         50,
			SwingLookback:      3,
			BOSLookback:        20,
			OBLookback:         20,
			FVGSignificance:    0.3,
			LiquidityTolerance: 0.001,
			SeriesLength:       100,
		},
		Risk: RiskConfig{
			AccountSize: 10000,
			RiskPercent: 2,
			WinRate:     0.60,
		},
		Scanner: ScannerConfig{
			Workers: 4,
			Timeout: 60 * time.Second,
			DataDir: "./data",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Override with environment variables if set
func (c *Config) applyEnv() error {
	if level := os.Getenv("SMCLENS_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if dir := os.Getenv("SMCLENS_DATA_DIR"); dir != "" {
		c.Scanner.DataDir = dir
	}
	if size := os.Getenv("SMCLENS_ACCOUNT_SIZE"); size != "" {
		v, err := strconv.ParseFloat(size, 64)
		if err != nil {
			return fmt.Errorf("parsing SMCLENS_ACCOUNT_SIZE: %w", err)
		}
		c.Risk.AccountSize = v
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	e := c.Engine
	if len(e.EMAPeriods) != 3 {
		return fmt.Errorf("ema_periods must list exactly 3 periods, got %d", len(e.EMAPeriods))
	}
	for _, p := range e.EMAPeriods {
		if p < 1 {
			return fmt.Errorf("ema_periods must be positive")
		}
	}
	if e.RSIPeriod < 1 || e.ATRPeriod < 1 {
		return fmt.Errorf("rsi_period and atr_period must be at least 1")
	}
	if e.MACD.Fast < 1 || e.MACD.Slow <= e.MACD.Fast || e.MACD.Signal < 1 {
		return fmt.Errorf("macd periods must satisfy 0 < fast < slow and signal > 0")
	}
	if e.MinCandles < 1 {
		return fmt.Errorf("min_candles_required must be at least 1")
	}
	if e.SwingLookback < 1 || e.BOSLookback < 1 || e.OBLookback < 1 {
		return fmt.Errorf("swing, bos and ob lookbacks must be at least 1")
	}
	if e.FVGSignificance < 0 || e.LiquidityTolerance < 0 {
		return fmt.Errorf("fvg_significance and liquidity_tolerance must not be negative")
	}
	if e.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative")
	}
	if c.Risk.AccountSize <= 0 {
		return fmt.Errorf("account_size must be positive")
	}
	if c.Risk.RiskPercent <= 0 || c.Risk.RiskPercent > 100 {
		return fmt.Errorf("risk_percent must be in (0, 100]")
	}
	if c.Risk.WinRate <= 0 || c.Risk.WinRate >= 1 {
		return fmt.Errorf("win_rate must be in (0, 1)")
	}
	if c.Scanner.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Scanner.LoadsPerMinute < 0 {
		return fmt.Errorf("loads_per_minute must not be negative")
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// EngineConfig maps the file settings onto the engine configuration
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	e := c.Engine

	if len(e.EMAPeriods) == 3 {
		cfg.Indicator.EMAPeriods = [3]int{e.EMAPeriods[0], e.EMAPeriods[1], e.EMAPeriods[2]}
	}
	cfg.Indicator.RSIPeriod = e.RSIPeriod
	cfg.Indicator.MACDFast = e.MACD.Fast
	cfg.Indicator.MACDSlow = e.MACD.Slow
	cfg.Indicator.MACDSignal = e.MACD.Signal
	cfg.Indicator.ATRPeriod = e.ATRPeriod
	cfg.Indicator.SeriesLength = e.SeriesLength

	cfg.Structure.SwingLookback = e.SwingLookback
	cfg.Structure.BOSLookback = e.BOSLookback
	cfg.Structure.OBLookback = e.OBLookback
	cfg.Structure.FVGSignificance = e.FVGSignificance
	cfg.Structure.LiquidityTolerance = e.LiquidityTolerance

	cfg.Confluence.ChochAgeDecay = e.ChochAgeDecay
	cfg.Confluence.SignedZones = e.SignedZones

	cfg.MinCandles = e.MinCandles
	cfg.CacheSize = e.CacheSize
	cfg.AccountSize = c.Risk.AccountSize
	cfg.RiskPercent = c.Risk.RiskPercent
	cfg.WinRate = c.Risk.WinRate
	return cfg
}
