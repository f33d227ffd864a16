package engine

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smclens/internal/candlegen"
	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/position"
	"smclens/internal/structure"
	"smclens/pkg/model"
)

type fakeRecorder struct {
	mu      sync.Mutex
	results map[string]int
	signals map[string]int
	faults  map[string]int
	hits    int
	misses  int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{results: map[string]int{}, signals: map[string]int{}, faults: map[string]int{}}
}

func (r *fakeRecorder) ObserveAnalysis(result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result]++
}

func (r *fakeRecorder) ObserveSignal(direction string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals[direction]++
}

func (r *fakeRecorder) StageFault(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[stage]++
}

func (r *fakeRecorder) CacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *fakeRecorder) CacheMiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

var btc = model.Metadata{Symbol: "BTCUSDT", Timeframe: "1h"}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]model.Candle) []model.Candle
		index  int
		field  string
	}{
		{"too short", func(c []model.Candle) []model.Candle { return c[:20] }, -1, ""},
		{"empty", func(c []model.Candle) []model.Candle { return nil }, -1, ""},
		{"zero open", func(c []model.Candle) []model.Candle { c[3].Open = 0; return c }, 3, "open"},
		{"negative close", func(c []model.Candle) []model.Candle { c[10].Close = -1; return c }, 10, "close"},
		{"NaN high", func(c []model.Candle) []model.Candle { c[5].High = math.NaN(); return c }, 5, "high"},
		{"infinite low", func(c []model.Candle) []model.Candle { c[7].Low = math.Inf(1); return c }, 7, "low"},
		{"negative volume", func(c []model.Candle) []model.Candle { c[9].Volume = -5; return c }, 9, "volume"},
		{"time goes backwards", func(c []model.Candle) []model.Candle {
			c[30].Time = c[28].Time
			return c
		}, 30, "time"},
	}

	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := tt.mutate(candlegen.RandomWalk(60, 100, 1))

			result, err := e.Analyze(candles, btc)
			require.Error(t, err)
			assert.Nil(t, result)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.index, invalid.Index)
			assert.Equal(t, tt.field, invalid.Field)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestValidate_AcceptsEqualTimesAndZeroVolume(t *testing.T) {
	candles := candlegen.RandomWalk(60, 100, 2)
	candles[10].Time = candles[9].Time
	candles[11].Volume = 0
	assert.NoError(t, Validate(candles, 50))
}

func TestAnalyze_Deterministic(t *testing.T) {
	candles := candlegen.RandomWalk(200, 100, 42)
	e := New(DefaultConfig())

	first, err := e.Analyze(candles, btc)
	require.NoError(t, err)
	second, err := e.Analyze(candles, btc)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAnalyze_ResultEnvelope(t *testing.T) {
	candles := candlegen.RandomWalk(80, 100, 3)
	result, err := New(DefaultConfig()).Analyze(candles, btc)
	require.NoError(t, err)

	assert.Equal(t, candles[79].Time, result.Timestamp)
	assert.Equal(t, "BTCUSDT", result.Symbol)
	assert.Equal(t, "1h", result.Timeframe)
	assert.Equal(t, 80, result.DataPoints)
	assert.Equal(t, 80, result.SMC.Summary.TotalCandles)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"timestamp", "symbol", "timeframe", "dataPoints", "indicators", "smc", "confluence", "signal", "risk"} {
		assert.Contains(t, fields, key)
	}
}

func TestAnalyze_Uptrend(t *testing.T) {
	result, err := New(DefaultConfig()).Analyze(candlegen.Uptrend(100, 100), btc)
	require.NoError(t, err)

	assert.Equal(t, indicator.TrendBullish, result.Indicators.Trend.Direction)
	assert.Equal(t, indicator.StrengthStrong, result.Indicators.Trend.Strength)
	assert.NotEqual(t, confluence.Sell, result.Confluence.Direction)
	assert.Contains(t, []confluence.Direction{confluence.Buy, confluence.Wait}, result.Confluence.Direction)
}

func TestAnalyze_SyntheticGap(t *testing.T) {
	candles := candlegen.Flat(57, 95)
	for i := range candles {
		candles[i].High = 95.5
		candles[i].Low = 94.5
	}
	next := candles[56].Time
	for i, bar := range [][4]float64{
		{99, 100, 98, 99.5},
		{100, 106, 99, 105.5},
		{105.5, 108, 105, 107},
	} {
		candles = append(candles, model.Candle{
			Time:  next.Add(time.Duration(i+1) * candlegen.Interval),
			Open:  bar[0],
			High:  bar[1],
			Low:   bar[2],
			Close: bar[3],
		})
	}

	result, err := New(DefaultConfig()).Analyze(candles, btc)
	require.NoError(t, err)

	var found bool
	for _, gap := range result.SMC.FVGs.All {
		if gap.Kind == structure.BullishFVG && gap.Low == 100 && gap.High == 105 {
			assert.Equal(t, 102.5, gap.Midpoint)
			assert.Equal(t, 58, gap.Index)
			found = true
		}
	}
	assert.True(t, found, "expected the 100-105 bullish gap in %+v", result.SMC.FVGs.All)
}

func TestAnalyze_NoStructure(t *testing.T) {
	result, err := New(DefaultConfig()).Analyze(candlegen.Flat(60, 100), btc)
	require.NoError(t, err)

	assert.Empty(t, result.SMC.BOS)
	assert.Empty(t, result.SMC.CHoCH)
	assert.Equal(t, confluence.Wait, result.Confluence.Direction)
	assert.Equal(t, confluence.Wait, result.Signal.Direction)
	assert.Equal(t, position.Wait(), result.Risk)

	raw, err := json.Marshal(result.SMC)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bos":[]`)
	assert.Contains(t, string(raw), `"choch":[]`)
}

func TestAnalyze_OutputBounds(t *testing.T) {
	e := New(DefaultConfig())
	for seed := int64(1); seed <= 30; seed++ {
		result, err := e.Analyze(candlegen.RandomWalk(150, 60, seed), btc)
		require.NoError(t, err)

		conf := result.Confluence
		assert.GreaterOrEqual(t, conf.Confidence, 30.0)
		assert.LessOrEqual(t, conf.Confidence, 95.0)
		assert.InDelta(t, conf.Scores.Sum(), conf.TotalScore, 1e-6)

		assert.GreaterOrEqual(t, result.Indicators.RSI, 0.0)
		assert.LessOrEqual(t, result.Indicators.RSI, 100.0)

		sig := result.Signal
		switch sig.Direction {
		case confluence.Buy:
			assert.True(t, sig.TP1 < sig.TP2 && sig.TP2 < sig.TP3, "seed %d", seed)
			assert.NotEqual(t, "0.00", sig.RR)
		case confluence.Sell:
			assert.True(t, sig.TP1 > sig.TP2 && sig.TP2 > sig.TP3, "seed %d", seed)
			assert.NotEqual(t, "0.00", sig.RR)
		default:
			assert.Equal(t, position.Wait(), result.Risk)
		}
	}
}

func TestNew_OptionsOverrideConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = 16

	assert.Equal(t, 16, New(cfg).Config().CacheSize)
	assert.Equal(t, 0, New(cfg, WithCache(0)).Config().CacheSize)
	assert.Equal(t, cfg.MinCandles, New(cfg, WithCache(4)).Config().MinCandles)
}

func TestAnalyze_Cache(t *testing.T) {
	rec := newFakeRecorder()
	e := New(DefaultConfig(), WithCache(4), WithRecorder(rec))
	candles := candlegen.RandomWalk(100, 100, 9)

	first, err := e.Analyze(candles, btc)
	require.NoError(t, err)
	second, err := e.Analyze(candles, btc)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = e.Analyze(candles, model.Metadata{Symbol: "ETHUSDT", Timeframe: "1h"})
	require.NoError(t, err)

	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 2, rec.misses)
	assert.Equal(t, 1, rec.results[ResultCached])
	assert.Equal(t, 2, rec.results[ResultOK])
}

func TestAnalyze_CacheKeySeesEveryCandle(t *testing.T) {
	e := New(DefaultConfig(), WithCache(4))
	candles := candlegen.RandomWalk(100, 100, 9)
	changed := append([]model.Candle(nil), candles...)
	changed[50].Volume++

	assert.NotEqual(t, e.cacheKey(candles, btc), e.cacheKey(changed, btc))
	assert.Equal(t, e.cacheKey(candles, btc), e.cacheKey(candles, btc))
}

func TestRunStage_RecoversPanics(t *testing.T) {
	rec := newFakeRecorder()
	e := New(DefaultConfig(), WithRecorder(rec))

	got := runStage(e, StageConfluence, confluence.Empty, func() confluence.Score {
		var blocks []structure.OrderBlock
		_ = blocks[3]
		return confluence.Score{}
	})

	assert.Equal(t, confluence.Empty(), got)
	assert.Equal(t, 1, rec.faults[StageConfluence])
}

func TestAnalyze_ConcurrentUse(t *testing.T) {
	e := New(DefaultConfig(), WithCache(16))
	candles := candlegen.RandomWalk(120, 100, 5)
	want, err := e.Analyze(candles, btc)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Analyze(candles, btc)
			assert.NoError(t, err)
			assert.Equal(t, want.Signal, got.Signal)
		}()
	}
	wg.Wait()
}
