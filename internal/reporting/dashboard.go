package reporting

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// validationLatencyMetric is the histogram emitted by the slot validator.
const validationLatencyMetric = "medcare_booking_validation_latency_seconds"

// ConsumedCounter counts capacity-consuming appointments per day.
type ConsumedCounter interface {
	CountConsumed(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) (int, error)
}

// UtilizationDay is one day of capacity accounting for a practice.
type UtilizationDay struct {
	Date string `json:"date"`
	schedule.Utilization
}

// Dashboard aggregates a practice's utilization over a reporting window.
type Dashboard struct {
	PracticeID        string                    `json:"practice_id"`
	PeriodStart       string                    `json:"period_start"`
	PeriodEnd         string                    `json:"period_end"`
	TotalCapacity     int                       `json:"total_capacity"`
	BookedSlots       int                       `json:"booked_slots"`
	AvailableSlots    int                       `json:"available_slots"`
	UtilizationRate   float64                   `json:"utilization_rate"`
	Daily             []UtilizationDay          `json:"daily"`
	ValidationLatency ValidationLatencySnapshot `json:"validation_latency"`
}

// Service computes utilization reports from practice settings and booked
// appointment counts.
type Service struct {
	settings schedule.SettingsGetter
	counter  ConsumedCounter
	logger   *logging.Logger
}

// NewService constructs a reporting service.
func NewService(settings schedule.SettingsGetter, counter ConsumedCounter, logger *logging.Logger) *Service {
	if settings == nil {
		panic("reporting: settings getter required")
	}
	if counter == nil {
		panic("reporting: consumed counter required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{settings: settings, counter: counter, logger: logger}
}

// ComputeRange returns one utilization row per calendar day in
// [start, end). Closed days report zero capacity, and so do days the
// report cannot account for: missing or unreadable settings and count
// failures degrade to all-zero rows. A report is advisory and never
// fails the caller.
func (s *Service) ComputeRange(ctx context.Context, practiceID string, start, end time.Time) []UtilizationDay {
	loc := time.UTC
	interval := schedule.DefaultInterval
	var hours *practice.OperatingHours

	settings, err := s.settings.Get(ctx, practiceID)
	switch {
	case err != nil:
		if !errors.Is(err, practice.ErrNotFound) {
			s.logger.Warn("utilization report degraded to zero capacity", "practice_id", practiceID, "error", err)
		}
	case settings != nil:
		loc = settings.Location()
		interval = settings.ConsultationInterval()
		hours = &settings.OperatingHours
	}

	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	var days []UtilizationDay
	for day := startDay; day.Before(endDay); day = day.AddDate(0, 0, 1) {
		var window *schedule.DayWindow
		if hours != nil {
			window = schedule.ResolveDayWindow(hours, day.Weekday())
		}

		booked := 0
		if window != nil {
			booked, err = s.counter.CountConsumed(ctx, practiceID, day, day.AddDate(0, 0, 1))
			if err != nil {
				s.logger.Error("utilization count failed, reporting zero for day",
					"practice_id", practiceID, "day", day.Format("2006-01-02"), "error", err)
				window, booked = nil, 0
			}
		}

		days = append(days, UtilizationDay{
			Date:        day.Format("2006-01-02"),
			Utilization: schedule.ComputeUtilization(window, interval, booked),
		})
	}
	return days
}

// BuildDashboard computes the per-day rows plus window totals and the
// current validation latency snapshot.
func (s *Service) BuildDashboard(ctx context.Context, practiceID string, start, end time.Time, gatherer prometheus.Gatherer) *Dashboard {
	daily := s.ComputeRange(ctx, practiceID, start, end)

	dash := &Dashboard{
		PracticeID:        practiceID,
		PeriodStart:       start.Format("2006-01-02"),
		PeriodEnd:         end.Format("2006-01-02"),
		Daily:             daily,
		ValidationLatency: snapshotValidationLatency(gatherer),
	}
	for _, day := range daily {
		dash.TotalCapacity += day.TotalCapacity
		dash.BookedSlots += day.BookedSlots
		dash.AvailableSlots += day.AvailableSlots
	}
	if dash.TotalCapacity > 0 {
		rate := float64(dash.BookedSlots) / float64(dash.TotalCapacity) * 100.0
		dash.UtilizationRate = math.Round(rate*10) / 10
	}
	return dash
}

// ValidationLatencySnapshot summarizes the validator latency histogram.
type ValidationLatencySnapshot struct {
	Total   int64           `json:"total"`
	P90Ms   float64         `json:"p90_ms"`
	P95Ms   float64         `json:"p95_ms"`
	Buckets []LatencyBucket `json:"buckets,omitempty"`
}

// LatencyBucket is one non-cumulative histogram bucket.
type LatencyBucket struct {
	LeSeconds float64 `json:"le_seconds"`
	Count     int64   `json:"count"`
}

// snapshotValidationLatency aggregates the validator histogram across
// outcome labels from the current metric registry state.
func snapshotValidationLatency(gatherer prometheus.Gatherer) ValidationLatencySnapshot {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mfs, err := gatherer.Gather()
	if err != nil {
		return ValidationLatencySnapshot{}
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == validationLatencyMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return ValidationLatencySnapshot{}
	}

	cumulativeByUpper := map[float64]uint64{}
	var sampleCount uint64
	for _, metric := range family.Metric {
		if metric == nil {
			continue
		}
		h := metric.GetHistogram()
		if h == nil {
			continue
		}
		sampleCount += h.GetSampleCount()
		for _, b := range h.Bucket {
			if b == nil {
				continue
			}
			cumulativeByUpper[b.GetUpperBound()] += b.GetCumulativeCount()
		}
	}
	if sampleCount == 0 || len(cumulativeByUpper) == 0 {
		return ValidationLatencySnapshot{}
	}

	uppers := make([]float64, 0, len(cumulativeByUpper))
	for upper := range cumulativeByUpper {
		uppers = append(uppers, upper)
	}
	sort.Float64s(uppers)

	buckets := make([]LatencyBucket, 0, len(uppers))
	var prev uint64
	for _, upper := range uppers {
		if math.IsInf(upper, 1) {
			continue
		}
		cum := cumulativeByUpper[upper]
		count := int64(cum)
		if cum >= prev {
			count = int64(cum - prev)
		}
		buckets = append(buckets, LatencyBucket{LeSeconds: upper, Count: count})
		prev = cum
	}

	return ValidationLatencySnapshot{
		Total:   int64(sampleCount),
		P90Ms:   histogramQuantile(0.90, sampleCount, uppers, cumulativeByUpper) * 1000.0,
		P95Ms:   histogramQuantile(0.95, sampleCount, uppers, cumulativeByUpper) * 1000.0,
		Buckets: buckets,
	}
}

func histogramQuantile(q float64, total uint64, uppers []float64, cumulativeByUpper map[float64]uint64) float64 {
	if total == 0 || q <= 0 {
		return 0
	}
	if q >= 1 {
		for i := len(uppers) - 1; i >= 0; i-- {
			if !math.IsInf(uppers[i], 1) {
				return uppers[i]
			}
		}
		return 0
	}

	target := q * float64(total)
	var prevUpper, prevCum float64

	for _, upper := range uppers {
		cum := float64(cumulativeByUpper[upper])
		if cum < target {
			prevUpper = upper
			prevCum = cum
			continue
		}

		bucketCount := cum - prevCum
		if bucketCount <= 0 || upper == prevUpper {
			return upper
		}
		if math.IsInf(upper, 1) {
			return prevUpper
		}

		fraction := (target - prevCum) / bucketCount
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		return prevUpper + fraction*(upper-prevUpper)
	}

	return uppers[len(uppers)-1]
}
