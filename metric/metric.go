// Package metric provides optional Prometheus instrumentation for the
// nswire client: request counts by endpoint and outcome, time spent waiting
// on the rate limiter, and parse failures. A nil *Metrics is a valid no-op,
// so callers that do not monitor pay nothing.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client-level collectors.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	RateLimitWait prometheus.Histogram
	ParseFailures prometheus.Counter
}

// New creates the collectors. Call Register to attach them to a registry.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nswire",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		RateLimitWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "nswire",
				Subsystem: "client",
				Name:      "ratelimit_wait_seconds",
				Help:      "Time spent waiting for a rate limiter slot",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		ParseFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "nswire",
				Subsystem: "client",
				Name:      "parse_failures_total",
				Help:      "Documents that failed to assemble",
			},
		),
	}
}

// Register attaches all collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.RequestsTotal, m.RateLimitWait, m.ParseFailures} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// ObserveWait records time spent blocked on the rate limiter.
func (m *Metrics) ObserveWait(d time.Duration) {
	if m == nil {
		return
	}
	m.RateLimitWait.Observe(d.Seconds())
}

// ObserveParseFailure records a document that could not be assembled.
func (m *Metrics) ObserveParseFailure() {
	if m == nil {
		return
	}
	m.ParseFailures.Inc()
}
