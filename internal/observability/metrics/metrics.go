package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	validationsTotal  *prometheus.CounterVec
	bookingsTotal     *prometheus.CounterVec
	validationLatency *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcare",
			Subsystem: "booking",
			Name:      "slot_validations_total",
			Help:      "Total slot conflict validations",
		}, []string{"outcome"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medcare",
			Subsystem: "booking",
			Name:      "appointments_total",
			Help:      "Total appointment creations and cancellations",
		}, []string{"action", "status"}),
		validationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medcare",
			Subsystem: "booking",
			Name:      "validation_latency_seconds",
			Help:      "Latency of slot conflict validation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.validationsTotal, m.bookingsTotal, m.validationLatency)
	return m
}

// ObserveValidation records one validation outcome ("accepted", "conflict"
// or "error") and its latency.
func (m *BookingMetrics) ObserveValidation(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(outcome).Inc()
	m.validationLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *BookingMetrics) ObserveBooking(action, status string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(action, status).Inc()
}
