package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smclens/internal/candlegen"
	"smclens/internal/confluence"
	"smclens/internal/engine"
	"smclens/internal/scanner"
	"smclens/internal/signal"
	"smclens/pkg/model"
)

func analyse(t *testing.T, candles []model.Candle) *engine.Result {
	t.Helper()
	result, err := engine.New(engine.DefaultConfig()).Analyze(candles, model.Metadata{Symbol: "BTCUSDT", Timeframe: "1h"})
	require.NoError(t, err)
	return result
}

func TestAnalysis_Wait(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, analyse(t, candlegen.Flat(60, 100))))

	out := buf.String()
	assert.Contains(t, out, "BTCUSDT 1h | 60 candles")
	assert.Contains(t, out, ">> WAIT")
	assert.Contains(t, out, "Technical Indicators")
	assert.Contains(t, out, "RANGING")
	assert.NotContains(t, out, "STANDARD_POSITION")
}

func TestAnalysis_Actionable(t *testing.T) {
	result := analyse(t, candlegen.RandomWalk(150, 100, 4))
	result.Signal = signal.Signal{
		Direction:  confluence.Buy,
		Confidence: 80,
		Entry:      100,
		StopLoss:   97.6,
		TP1:        104.8,
		TP2:        106,
		TP3:        107.2,
		RR:         "2.50",
		Reason:     "Price at a bullish order block",
		Setup:      confluence.FactorOrderBlock,
	}
	result.Risk.Recommendation = "STANDARD_POSITION"

	var buf bytes.Buffer
	require.NoError(t, Analysis(&buf, result))

	out := buf.String()
	assert.Contains(t, out, ">> BUY (confidence 80%)")
	assert.Contains(t, out, "97.60")
	assert.Contains(t, out, "2.50")
	assert.Contains(t, out, "STANDARD_POSITION")
}

func TestScan(t *testing.T) {
	ok := analyse(t, candlegen.Flat(60, 100))
	rep := &scanner.Report{
		RunID:        "run-1",
		TotalScanned: 2,
		Analyzed:     1,
		Failed:       1,
		ScanTime:     1500 * time.Millisecond,
		Results: []scanner.Result{
			{Instrument: model.Instrument{Symbol: "BTCUSDT", Timeframe: "1h"}, Status: scanner.StatusOK, Analysis: ok},
			{Instrument: model.Instrument{Symbol: "NOPE", Timeframe: "1h"}, Status: scanner.StatusLoadError, Error: "not found"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Scan(&buf, rep))

	out := buf.String()
	assert.Contains(t, out, "Scan run-1: 0 actionable of 1 analysed, 1 failed")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "load_error: not found")
	assert.Contains(t, out, "Scanned 2 instruments in 1.5s")
}

func TestScan_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Scan(&buf, &scanner.Report{}))
	assert.Equal(t, "No instruments scanned.\n", buf.String())
}

func TestJSON(t *testing.T) {
	rep := &scanner.Report{
		RunID: "run-2",
		Results: []scanner.Result{
			{Instrument: model.Instrument{Symbol: "X", Timeframe: "1d"}, Status: scanner.StatusInvalid, Error: "too short", Err: errors.New("too short")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, rep))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-2", decoded["runId"])
	assert.Contains(t, buf.String(), "\n  ")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate(" short ", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
