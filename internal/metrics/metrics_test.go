package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smclens/internal/candlegen"
	"smclens/internal/engine"
	"smclens/pkg/model"
)

func TestRegistry_RecordsEngineEvents(t *testing.T) {
	reg := NewRegistry()
	e := engine.New(engine.DefaultConfig(), engine.WithRecorder(reg), engine.WithCache(2))
	meta := model.Metadata{Symbol: "ETHUSDT", Timeframe: "4h"}
	candles := candlegen.RandomWalk(80, 100, 4)

	_, err := e.Analyze(candles, meta)
	require.NoError(t, err)
	_, err = e.Analyze(candles, meta)
	require.NoError(t, err)
	_, err = e.Analyze(candles[:10], meta)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Analyses.WithLabelValues(engine.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Analyses.WithLabelValues(engine.ResultCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Analyses.WithLabelValues(engine.ResultInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CacheMisses))
	assert.Equal(t, 1, testutil.CollectAndCount(reg.Signals))

	// ok, cached and invalid results
	n, err := testutil.GatherAndCount(reg.Gatherer(), "smclens_analyses_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRegistry_WriteTextfile(t *testing.T) {
	reg := NewRegistry()
	reg.ScanStarted()
	reg.ScanJob("ok")
	reg.StageFault(engine.StageStructure)
	reg.ObserveAnalysis(engine.ResultOK, 3*time.Millisecond)

	path := filepath.Join(t.TempDir(), "smclens.prom")
	require.NoError(t, reg.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, "smclens_scans_total 1")
	assert.Contains(t, body, `smclens_scan_jobs_total{status="ok"} 1`)
	assert.Contains(t, body, `smclens_stage_faults_total{stage="structure"} 1`)
	assert.Contains(t, body, "smclens_analysis_duration_seconds_count 1")
}
