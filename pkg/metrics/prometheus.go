package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchesTotal *prometheus.CounterVec
	fetchBytes   *prometheus.CounterVec
	cacheEvents  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	dailyCost    *prometheus.GaugeVec
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		fetchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelvault_artifact_fetches_total",
				Help: "Total artifact fetches against the storage backend",
			},
			[]string{"backend"},
		),
		fetchBytes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelvault_artifact_fetch_bytes_total",
				Help: "Total bytes fetched from the storage backend",
			},
			[]string{"backend"},
		),
		cacheEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelvault_cache_events_total",
				Help: "Cache lookups by cache layer and result",
			},
			[]string{"cache", "result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelvault_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		loadDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modelvault_bundle_load_seconds",
				Help:    "Duration of full bundle loads in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"ticker"},
		),
		dailyCost: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modelvault_daily_cost_usd",
				Help: "Most recently fetched daily cloud spend by service",
			},
			[]string{"service"},
		),
	}
}

// RecordFetch records one backend fetch. The path label is dropped on
// purpose to keep cardinality bounded.
func (r *Recorder) RecordFetch(backend, _ string) {
	r.fetchesTotal.WithLabelValues(backend).Inc()
}

// RecordFetchBytes records payload bytes fetched from a backend.
func (r *Recorder) RecordFetchBytes(backend string, n int) {
	r.fetchBytes.WithLabelValues(backend).Add(float64(n))
}

// RecordCacheHit records a cache hit for the given layer.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheEvents.WithLabelValues(cache, "hit").Inc()
}

// RecordCacheMiss records a cache miss for the given layer.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheEvents.WithLabelValues(cache, "miss").Inc()
}

// RecordLoadDuration records how long a full bundle load took.
func (r *Recorder) RecordLoadDuration(ticker string, seconds float64) {
	r.loadDuration.WithLabelValues(ticker).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDailyCost records one service's spend for the latest fetched day.
func (r *Recorder) RecordDailyCost(service string, amount float64) {
	r.dailyCost.WithLabelValues(service).Set(amount)
}
