package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	recommendations *prometheus.CounterVec
	snapshotsSent   *prometheus.CounterVec
	chainMisses     prometheus.Counter
	errorsTotal     *prometheus.CounterVec
	lastSpot        prometheus.Gauge
	lastVIX         prometheus.Gauge
	latency         *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		recommendations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "niftypulse_recommendations_total",
				Help: "Strike recommendations served, by degradation state",
			},
			[]string{"state"},
		),
		snapshotsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "niftypulse_snapshots_sent_total",
				Help: "Market snapshots written to the backend",
			},
			[]string{"backend"},
		),
		chainMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "niftypulse_chain_lookup_misses_total",
				Help: "Recommended strikes missing from the fetched chain",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "niftypulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSpot: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "niftypulse_last_spot",
				Help: "Last observed index spot price",
			},
		),
		lastVIX: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "niftypulse_last_vix",
				Help: "Last observed volatility index level",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "niftypulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRecommendation counts one served recommendation. state is "live"
// or "degraded".
func (r *Recorder) RecordRecommendation(state string) {
	r.recommendations.WithLabelValues(state).Inc()
}

// RecordSnapshotSent records a snapshot written to a backend.
func (r *Recorder) RecordSnapshotSent(backend string) {
	r.snapshotsSent.WithLabelValues(backend).Inc()
}

// RecordChainMiss counts a recommended strike absent from the chain.
func (r *Recorder) RecordChainMiss() {
	r.chainMisses.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSpot records the last observed spot and VIX levels.
func (r *Recorder) RecordSpot(spot, vix float64) {
	r.lastSpot.Set(spot)
	if vix > 0 {
		r.lastVIX.Set(vix)
	}
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
