package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smclens/internal/confluence"
	"smclens/internal/engine"
	"smclens/internal/provider"
	"smclens/pkg/model"
)

// Job outcomes
const (
	StatusOK        = "ok"
	StatusLoadError = "load_error"
	StatusInvalid   = "invalid"
	StatusCancelled = "cancelled"
)

// ProgressCallback is called with progress updates
type ProgressCallback func(scanned, total int)

// Recorder receives scan events; internal/metrics implements it
type Recorder interface {
	ScanStarted()
	ScanJob(status string)
}

type nopRecorder struct{}

func (nopRecorder) ScanStarted()   {}
func (nopRecorder) ScanJob(string) {}

// Result is the outcome of one instrument
type Result struct {
	Instrument model.Instrument `json:"instrument"`
	Status     string           `json:"status"`
	Analysis   *engine.Result   `json:"analysis,omitempty"`
	Error      string           `json:"error,omitempty"`
	Err        error            `json:"-"`
}

// Report summarises a scan run
type Report struct {
	RunID        string        `json:"runId"`
	TotalScanned int           `json:"totalScanned"`
	Analyzed     int           `json:"analyzed"`
	Actionable   int           `json:"actionable"`
	Failed       int           `json:"failed"`
	Results      []Result      `json:"results"`
	ScanTime     time.Duration `json:"scanTime"`
}

// Scanner analyses many instruments in parallel
type Scanner struct {
	provider     provider.Provider
	engine       *engine.Engine
	workers      int
	timeout      time.Duration
	progressFunc ProgressCallback
	logger       zerolog.Logger
	recorder     Recorder
}

// NewScanner creates a new scanner
func NewScanner(p provider.Provider, e *engine.Engine, workers int, timeout time.Duration) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		provider: p,
		engine:   e,
		workers:  workers,
		timeout:  timeout,
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
	}
}

// SetProgressCallback sets the progress callback function
func (s *Scanner) SetProgressCallback(fn ProgressCallback) {
	s.progressFunc = fn
}

// SetLogger sets the logger for run and job events
func (s *Scanner) SetLogger(logger zerolog.Logger) {
	s.logger = logger
}

// SetRecorder sets the metrics recorder
func (s *Scanner) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Scan loads and analyses every instrument. Per-instrument failures are
// reported in the results, never returned.
func (s *Scanner) Scan(ctx context.Context, instruments []model.Instrument) (*Report, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	log := s.logger.With().Str("run_id", runID).Logger()

	s.recorder.ScanStarted()
	if len(instruments) == 0 {
		return &Report{RunID: runID, Results: []Result{}, ScanTime: time.Since(startTime)}, nil
	}

	log.Info().
		Int("instruments", len(instruments)).
		Int("workers", s.workers).
		Str("provider", s.provider.Name()).
		Msg("scan started")

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	jobChan := make(chan model.Instrument, len(instruments))
	resultChan := make(chan Result, len(instruments))

	for _, inst := range instruments {
		jobChan <- inst
	}
	close(jobChan)

	var scannedCount int64

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inst := range jobChan {
				result := s.scanOne(ctx, inst)
				s.recorder.ScanJob(result.Status)
				if result.Err != nil {
					log.Warn().
						Str("instrument", inst.String()).
						Str("status", result.Status).
						Err(result.Err).
						Msg("scan job failed")
				}
				resultChan <- result

				count := atomic.AddInt64(&scannedCount, 1)
				if s.progressFunc != nil {
					s.progressFunc(int(count), len(instruments))
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	report := &Report{RunID: runID, TotalScanned: len(instruments)}
	for result := range resultChan {
		report.Results = append(report.Results, result)
		if result.Status != StatusOK {
			report.Failed++
			continue
		}
		report.Analyzed++
		if result.Analysis.Signal.IsActionable() {
			report.Actionable++
		}
	}
	sortResults(report.Results)
	report.ScanTime = time.Since(startTime)

	log.Info().
		Int("analyzed", report.Analyzed).
		Int("actionable", report.Actionable).
		Int("failed", report.Failed).
		Dur("elapsed", report.ScanTime).
		Msg("scan finished")

	return report, nil
}

// ScanSymbols scans symbols on a single timeframe
func (s *Scanner) ScanSymbols(ctx context.Context, symbols []string, timeframe string) (*Report, error) {
	instruments := make([]model.Instrument, len(symbols))
	for i, sym := range symbols {
		instruments[i] = model.Instrument{Symbol: sym, Timeframe: timeframe}
	}
	return s.Scan(ctx, instruments)
}

func (s *Scanner) scanOne(ctx context.Context, inst model.Instrument) Result {
	result := Result{Instrument: inst}
	fail := func(status string, err error) Result {
		result.Status = status
		result.Err = err
		result.Error = err.Error()
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(StatusCancelled, err)
	}

	candles, err := s.provider.GetCandles(ctx, inst)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fail(StatusCancelled, err)
		}
		return fail(StatusLoadError, err)
	}

	analysis, err := s.engine.Analyze(candles, inst.Metadata())
	if err != nil {
		return fail(StatusInvalid, err)
	}

	result.Status = StatusOK
	result.Analysis = analysis
	return result
}

// sortResults orders successful analyses first, actionable signals ahead
// of WAIT, then by confidence; failures follow by instrument
func sortResults(results []Result) {
	rank := func(r Result) int {
		switch {
		case r.Status != StatusOK:
			return 2
		case r.Analysis.Signal.Direction == confluence.Wait:
			return 1
		}
		return 0
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra < rb
		}
		if a.Status == StatusOK && a.Analysis.Signal.Confidence != b.Analysis.Signal.Confidence {
			return a.Analysis.Signal.Confidence > b.Analysis.Signal.Confidence
		}
		return a.Instrument.String() < b.Instrument.String()
	})
}
