package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	cacheTotal   *prometheus.CounterVec
	quotesTotal  *prometheus.CounterVec
	submitTotal  *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camping",
			Subsystem: "reservations",
			Name:      "fetch_total",
			Help:      "Reservation export fetches by source and outcome",
		}, []string{"source", "status"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "camping",
			Subsystem: "reservations",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of reservation export fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camping",
			Subsystem: "reservations",
			Name:      "cache_total",
			Help:      "Reservation cache lookups by result",
		}, []string{"result"}),
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camping",
			Subsystem: "booking",
			Name:      "quotes_total",
			Help:      "Price quotes computed, split by whether a total was produced",
		}, []string{"priced"}),
		submitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camping",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Booking submissions by outcome",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency, m.cacheTotal, m.quotesTotal, m.submitTotal)
	return m
}

func (m *BookingMetrics) ObserveFetch(source, status string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(source, status).Inc()
	m.fetchLatency.WithLabelValues(source).Observe(seconds)
}

func (m *BookingMetrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveQuote(priced bool) {
	if m == nil {
		return
	}
	label := "false"
	if priced {
		label = "true"
	}
	m.quotesTotal.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveSubmit(status string) {
	if m == nil {
		return
	}
	m.submitTotal.WithLabelValues(status).Inc()
}
