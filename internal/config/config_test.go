package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smclens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
engine:
  ema_periods: [10, 30, 100]
  macd: {fast: 8, slow: 21, signal: 5}
  swing_lookback: 2
  choch_age_decay: true
  signed_zones: true
  cache_size: 32
risk:
  account_size: 25000
  win_rate: 0.55
scanner:
  workers: 8
  timeout: 90s
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int{10, 30, 100}, cfg.Engine.EMAPeriods)
	assert.Equal(t, 14, cfg.Engine.RSIPeriod) // untouched default
	assert.Equal(t, 90*time.Second, cfg.Scanner.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)

	ec := cfg.EngineConfig()
	assert.Equal(t, [3]int{10, 30, 100}, ec.Indicator.EMAPeriods)
	assert.Equal(t, 8, ec.Indicator.MACDFast)
	assert.Equal(t, 21, ec.Indicator.MACDSlow)
	assert.Equal(t, 2, ec.Structure.SwingLookback)
	assert.True(t, ec.Confluence.ChochAgeDecay)
	assert.True(t, ec.Confluence.SignedZones)
	assert.Equal(t, 32, ec.CacheSize)
	assert.Equal(t, 25000.0, ec.AccountSize)
	assert.Equal(t, 0.55, ec.WinRate)
	assert.Equal(t, 50, ec.MinCandles)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SMCLENS_LOG_LEVEL", "debug")
	t.Setenv("SMCLENS_DATA_DIR", "/tmp/candles")
	t.Setenv("SMCLENS_ACCOUNT_SIZE", "5000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/candles", cfg.Scanner.DataDir)
	assert.Equal(t, 5000.0, cfg.Risk.AccountSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "engine: [not, a, map"))
	assert.Error(t, err)

	t.Setenv("SMCLENS_ACCOUNT_SIZE", "lots")
	_, err = Load("")
	assert.ErrorContains(t, err, "SMCLENS_ACCOUNT_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"two ema periods", func(c *Config) { c.Engine.EMAPeriods = []int{20, 50} }},
		{"macd slow not above fast", func(c *Config) { c.Engine.MACD.Slow = 12 }},
		{"zero swing lookback", func(c *Config) { c.Engine.SwingLookback = 0 }},
		{"negative cache", func(c *Config) { c.Engine.CacheSize = -1 }},
		{"zero account", func(c *Config) { c.Risk.AccountSize = 0 }},
		{"certain win", func(c *Config) { c.Risk.WinRate = 1 }},
		{"no workers", func(c *Config) { c.Scanner.Workers = 0 }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
