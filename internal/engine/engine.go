// Package engine runs the full analysis pipeline over one candle sequence.
package engine

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"smclens/internal/confluence"
	"smclens/internal/indicator"
	"smclens/internal/position"
	"smclens/internal/signal"
	"smclens/internal/structure"
	"smclens/pkg/model"
)

// Stage names, as logged and counted on faults
const (
	StageIndicators = "indicators"
	StageStructure  = "structure"
	StageConfluence = "confluence"
	StageSignal     = "signal"
	StageSizing     = "sizing"
)

// Analysis outcomes reported to the Recorder
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultCached  = "cached"
)

// Result is the complete output of one analysis call
type Result struct {
	Timestamp  time.Time          `json:"timestamp"`
	Symbol     string             `json:"symbol"`
	Timeframe  string             `json:"timeframe"`
	DataPoints int                `json:"dataPoints"`
	Indicators indicator.Set      `json:"indicators"`
	SMC        structure.Analysis `json:"smc"`
	Confluence confluence.Score   `json:"confluence"`
	Signal     signal.Signal      `json:"signal"`
	Risk       position.Sizing    `json:"risk"`
}

// Recorder receives engine events; internal/metrics implements it
type Recorder interface {
	ObserveAnalysis(result string, elapsed time.Duration)
	ObserveSignal(direction string)
	StageFault(stage string)
	CacheHit()
	CacheMiss()
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(string, time.Duration) {}
func (nopRecorder) ObserveSignal(string)                  {}
func (nopRecorder) StageFault(string)                     {}
func (nopRecorder) CacheHit()                             {}
func (nopRecorder) CacheMiss()                            {}

// Engine is safe for concurrent use
type Engine struct {
	config     Config
	calculator *indicator.Calculator
	detector   *structure.Detector
	scorer     *confluence.Scorer
	builder    *signal.Builder
	sizer      *position.Sizer

	logger   zerolog.Logger
	recorder Recorder
	cache    *lru.Cache[uint64, *Result]
	seed     uint64 // config fingerprint mixed into cache keys
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for stage faults
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithCache overrides the result memo size; 0 disables it
func WithCache(size int) Option {
	return func(e *Engine) {
		e.config.CacheSize = size
	}
}

// New creates an engine from cfg
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		config:   cfg,
		logger:   zerolog.Nop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.calculator = indicator.NewCalculator(e.config.Indicator)
	e.detector = structure.NewDetector(e.config.Structure)
	e.scorer = confluence.NewScorer(e.config.Confluence)
	e.builder = signal.NewBuilder(e.config.Signal)
	e.sizer = e.config.sizer()
	e.seed = configSeed(e.config)

	if e.config.CacheSize > 0 {
		// only fails for a non-positive size
		e.cache, _ = lru.New[uint64, *Result](e.config.CacheSize)
	}
	return e
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Analyze validates the candles and runs every stage. Only an
// *InvalidInputError is ever returned; a stage that fails internally is
// replaced by its empty default. The returned result must be treated as
// read-only when the memo is enabled.
func (e *Engine) Analyze(candles []model.Candle, meta model.Metadata) (*Result, error) {
	start := time.Now()

	if err := Validate(candles, e.config.MinCandles); err != nil {
		e.recorder.ObserveAnalysis(ResultInvalid, time.Since(start))
		return nil, err
	}

	var key uint64
	if e.cache != nil {
		key = e.cacheKey(candles, meta)
		if cached, ok := e.cache.Get(key); ok {
			e.recorder.CacheHit()
			e.recorder.ObserveAnalysis(ResultCached, time.Since(start))
			res := *cached
			return &res, nil
		}
		e.recorder.CacheMiss()
	}

	result := e.run(candles, meta)

	if e.cache != nil {
		e.cache.Add(key, result)
	}
	e.recorder.ObserveSignal(string(result.Signal.Direction))
	e.recorder.ObserveAnalysis(ResultOK, time.Since(start))

	e.logger.Debug().
		Str("symbol", meta.Symbol).
		Str("timeframe", meta.Timeframe).
		Int("candles", len(candles)).
		Str("direction", string(result.Signal.Direction)).
		Float64("confidence", result.Signal.Confidence).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")

	return result, nil
}

func (e *Engine) run(candles []model.Candle, meta model.Metadata) *Result {
	s := model.NewSeries(candles)

	ind := runStage(e, StageIndicators, func() indicator.Set {
		return indicator.Empty(s.LastClose())
	}, func() indicator.Set {
		return e.calculator.Calculate(s)
	})

	smc := runStage(e, StageStructure, func() structure.Analysis {
		empty := structure.Empty()
		empty.Summary.TotalCandles = s.Len()
		return empty
	}, func() structure.Analysis {
		return e.detector.Detect(s)
	})

	conf := runStage(e, StageConfluence, confluence.Empty, func() confluence.Score {
		return e.scorer.Score(ind, smc)
	})

	sig := runStage(e, StageSignal, func() signal.Signal {
		wait := signal.Wait("signal construction failed")
		wait.Confidence = conf.Confidence
		return wait
	}, func() signal.Signal {
		return e.builder.Build(ind, smc, conf)
	})

	risk := runStage(e, StageSizing, position.Wait, func() position.Sizing {
		return e.sizer.Size(sig)
	})

	return &Result{
		Timestamp:  candles[len(candles)-1].Time,
		Symbol:     meta.Symbol,
		Timeframe:  meta.Timeframe,
		DataPoints: len(candles),
		Indicators: ind,
		SMC:        smc,
		Confluence: conf,
		Signal:     sig,
		Risk:       risk,
	}
}

// runStage isolates one pipeline stage: a panic is logged, counted and
// replaced by the stage's fallback value
func runStage[T any](e *Engine, stage string, fallback func() T, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().
				Str("stage", stage).
				Interface("panic", r).
				Msg("stage failed, using empty default")
			e.recorder.StageFault(stage)
			out = fallback()
		}
	}()
	return fn()
}
