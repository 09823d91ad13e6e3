package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if matches(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(m *dto.Metric, labels map[string]string) bool {
	for _, lp := range m.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
			return false
		}
	}
	return true
}

func TestBookingMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveFetch("csv", "ok", 0.2)
	m.ObserveFetch("csv", "error", 0.1)
	m.ObserveFetch("csv", "ok", 0.3)
	m.ObserveCache("hit")
	m.ObserveQuote(true)
	m.ObserveQuote(false)
	m.ObserveSubmit("invalid")

	if got := counterValue(t, reg, "camping_reservations_fetch_total", map[string]string{"source": "csv", "status": "ok"}); got != 2 {
		t.Fatalf("expected 2 ok fetches, got %v", got)
	}
	if got := counterValue(t, reg, "camping_booking_quotes_total", map[string]string{"priced": "false"}); got != 1 {
		t.Fatalf("expected 1 unpriced quote, got %v", got)
	}
	if got := counterValue(t, reg, "camping_booking_submissions_total", map[string]string{"status": "invalid"}); got != 1 {
		t.Fatalf("expected 1 invalid submission, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *BookingMetrics
	m.ObserveFetch("csv", "ok", 1)
	m.ObserveCache("miss")
	m.ObserveQuote(true)
	m.ObserveSubmit("ok")
}
