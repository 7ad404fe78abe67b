// Package metrics exposes prometheus collectors for the directory and
// booking flows. All methods are nil-safe so wiring metrics stays optional
// in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	bookingsTotal      *prometheus.CounterVec
	reviewsTotal       *prometheus.CounterVec
	recomputeFailures  prometheus.Counter
	enrichmentDropped  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carefind",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts",
		}, []string{"status"}),
		reviewsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carefind",
			Subsystem: "reviews",
			Name:      "created_total",
			Help:      "Total review creations",
		}, []string{"status"}),
		recomputeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carefind",
			Subsystem: "reviews",
			Name:      "rating_recompute_failures_total",
			Help:      "Reviews persisted whose provider rating recompute failed",
		}),
		enrichmentDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carefind",
			Subsystem: "listing",
			Name:      "enrichment_dropped_total",
			Help:      "Records excluded from an enriched listing due to unresolved references",
		}, []string{"collection"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carefind",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.reviewsTotal, m.recomputeFailures, m.enrichmentDropped, m.httpDuration)
	return m
}

func (m *Metrics) ObserveBooking(status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveReview(status string) {
	if m == nil {
		return
	}
	m.reviewsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRecomputeFailure() {
	if m == nil {
		return
	}
	m.recomputeFailures.Inc()
}

func (m *Metrics) ObserveEnrichmentDrop(collection string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.enrichmentDropped.WithLabelValues(collection).Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, path, status).Observe(seconds)
}
