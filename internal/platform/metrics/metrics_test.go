package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveBooking("created")
	m.ObserveReview("created")
	m.ObserveRecomputeFailure()
	m.ObserveEnrichmentDrop("appointments", 2)
	m.ObserveHTTP("GET", "/providers", "200", 0.01)
}

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBooking("created")
	m.ObserveBooking("created")
	m.ObserveRecomputeFailure()
	m.ObserveEnrichmentDrop("appointments", 3)

	if got := testutil.ToFloat64(m.bookingsTotal.WithLabelValues("created")); got != 2 {
		t.Errorf("bookings_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recomputeFailures); got != 1 {
		t.Errorf("recompute failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.enrichmentDropped.WithLabelValues("appointments")); got != 3 {
		t.Errorf("enrichment_dropped = %v, want 3", got)
	}
}

func TestEnrichmentDrop_IgnoresZero(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveEnrichmentDrop("appointments", 0)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if strings.Contains(f.GetName(), "enrichment_dropped") && len(f.GetMetric()) > 0 {
			t.Error("expected no enrichment_dropped series for zero drops")
		}
	}
}
