// Package metrics exposes analysis and scan counters through a private
// prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics for smclens
type Registry struct {
	registry *prometheus.Registry

	// Analysis metrics
	Analyses         *prometheus.CounterVec
	Signals          *prometheus.CounterVec
	StageFaults      *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	// Memo metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Scan metrics
	Scans    prometheus.Counter
	ScanJobs *prometheus.CounterVec
}

// NewRegistry creates a registry with every smclens metric registered
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smclens_analyses_total",
				Help: "Analysis calls by outcome (ok, invalid, cached)",
			},
			[]string{"result"},
		),

		Signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smclens_signals_total",
				Help: "Signals emitted by direction",
			},
			[]string{"direction"},
		),

		StageFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smclens_stage_faults_total",
				Help: "Pipeline stages replaced by their empty default",
			},
			[]string{"stage"},
		),

		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smclens_analysis_duration_seconds",
				Help:    "Duration of one analysis call in seconds",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),

		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smclens_cache_hits_total",
				Help: "Analysis results served from the memo",
			},
		),

		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smclens_cache_misses_total",
				Help: "Analysis results computed with the memo enabled",
			},
		),

		Scans: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "smclens_scans_total",
				Help: "Batch scans started",
			},
		),

		ScanJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smclens_scan_jobs_total",
				Help: "Scan jobs by status (ok, load_error, invalid, cancelled)",
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(
		r.Analyses,
		r.Signals,
		r.StageFaults,
		r.AnalysisDuration,
		r.CacheHits,
		r.CacheMisses,
		r.Scans,
		r.ScanJobs,
	)
	return r
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveAnalysis records one analysis call
func (r *Registry) ObserveAnalysis(result string, elapsed time.Duration) {
	r.Analyses.WithLabelValues(result).Inc()
	r.AnalysisDuration.Observe(elapsed.Seconds())
}

// ObserveSignal records the direction of an emitted signal
func (r *Registry) ObserveSignal(direction string) {
	r.Signals.WithLabelValues(direction).Inc()
}

// StageFault records a recovered stage failure
func (r *Registry) StageFault(stage string) {
	r.StageFaults.WithLabelValues(stage).Inc()
}

// CacheHit records a memo hit
func (r *Registry) CacheHit() {
	r.CacheHits.Inc()
}

// CacheMiss records a memo miss
func (r *Registry) CacheMiss() {
	r.CacheMisses.Inc()
}

// ScanStarted records the start of a batch scan
func (r *Registry) ScanStarted() {
	r.Scans.Inc()
}

// ScanJob records the outcome of one scan job
func (r *Registry) ScanJob(status string) {
	r.ScanJobs.WithLabelValues(status).Inc()
}

// WriteTextfile writes every metric in the text exposition format for
// the node exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
