// Package metrics exposes Prometheus instrumentation for upstream market data
// calls and HTTP requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder records upstream and request metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	gatherer       prometheus.Gatherer
	upstreamCalls  *prometheus.CounterVec
	upstreamTime   *prometheus.HistogramVec
	batchTickers   *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in tests
// so repeated construction does not collide with the default registry.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		gatherer: reg,
		upstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wheelcommittee_upstream_calls_total",
				Help: "Total number of upstream market data calls",
			},
			[]string{"op", "outcome"},
		),
		upstreamTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wheelcommittee_upstream_duration_seconds",
				Help:    "Duration of upstream market data calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		batchTickers: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wheelcommittee_batch_tickers",
				Help:    "Number of distinct tickers per batch",
				Buckets: []float64{1, 2, 5, 10, 20},
			},
			[]string{"kind"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wheelcommittee_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wheelcommittee_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// RecordUpstream records one upstream call for op ("quote", "options", "history").
func (r *Recorder) RecordUpstream(op string, started time.Time, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	r.upstreamCalls.WithLabelValues(op, outcome).Inc()
	r.upstreamTime.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// RecordBatch records the size of a batch fetch.
func (r *Recorder) RecordBatch(kind string, tickers int) {
	if r == nil {
		return
	}
	r.batchTickers.WithLabelValues(kind).Observe(float64(tickers))
}

// RecordRequest records a completed HTTP request.
func (r *Recorder) RecordRequest(route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(route, status).Inc()
	r.requestLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
