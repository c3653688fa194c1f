package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	requestsTotal     *prometheus.CounterVec
	normalizeDuration *prometheus.HistogramVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
	ingestTotal       *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		requestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osclens_api_requests_total",
				Help: "Total number of API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),
		normalizeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osclens_normalization_duration_seconds",
				Help:    "Duration of per-dataset normalization in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osclens_cache_hits_total",
				Help: "Total number of computed-series cache hits",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osclens_cache_misses_total",
				Help: "Total number of computed-series cache misses",
			},
			[]string{"cache"},
		),
		ingestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osclens_candles_ingested_total",
				Help: "Total number of candles ingested per symbol",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osclens_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osclens_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRequest records an API request outcome.
func (r *Recorder) RecordRequest(endpoint, status string) {
	r.requestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordNormalization records the time spent normalizing one dataset.
func (r *Recorder) RecordNormalization(dataset string, seconds float64) {
	r.normalizeDuration.WithLabelValues(dataset).Observe(seconds)
}

// RecordCacheHit records a hit on a named cache.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a miss on a named cache.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordIngest records one ingested candle.
func (r *Recorder) RecordIngest(symbol string) {
	r.ingestTotal.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
