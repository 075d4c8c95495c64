package schedule

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/observability/metrics"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// ConflictMessage is the rejection shown to a patient whose proposed slot
// overlaps an existing booking.
const ConflictMessage = "This time slot is already booked. Please select a different time."

// unavailableMessage masks infrastructure failures as a validation
// rejection so the booking path fails closed.
const unavailableMessage = "Unable to verify slot availability. Please try again."

// HeldSlotLister returns the start times of appointments that currently
// hold a slot (status scheduled or pending) for a practice within a day.
type HeldSlotLister interface {
	ListHeldStarts(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) ([]time.Time, error)
}

// SettingsGetter loads practice settings.
type SettingsGetter interface {
	Get(ctx context.Context, practiceID string) (*practice.Settings, error)
}

// Result is the outcome of a slot validation.
type Result struct {
	Valid   bool   `json:"is_valid"`
	Message string `json:"message,omitempty"`
}

// Validator is the authoritative server-side gate for new bookings. The
// availability filter is advisory; every booking attempt passes through
// here before persistence. Read-only: it never writes.
type Validator struct {
	appointments HeldSlotLister
	settings     SettingsGetter
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	tracer       trace.Tracer
}

// NewValidator constructs a conflict validator.
func NewValidator(appointments HeldSlotLister, settings SettingsGetter, m *metrics.BookingMetrics, logger *logging.Logger) *Validator {
	if appointments == nil {
		panic("schedule: held slot lister required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Validator{
		appointments: appointments,
		settings:     settings,
		metrics:      m,
		logger:       logger,
		tracer:       otel.Tracer("medcare.internal.schedule"),
	}
}

// ValidateSlot decides accept/reject for a proposed appointment start.
// A proposal conflicts when [start, start+interval) overlaps any held
// appointment's range on the same calendar day. Store failures are
// converted to a rejection rather than propagated: a booking is never
// accepted on incomplete information.
func (v *Validator) ValidateSlot(ctx context.Context, practiceID string, proposedStart time.Time) Result {
	ctx, span := v.tracer.Start(ctx, "schedule.validate_slot")
	defer span.End()
	span.SetAttributes(
		attribute.String("medcare.practice_id", practiceID),
		attribute.String("medcare.proposed_start", proposedStart.Format(time.RFC3339)),
	)
	began := time.Now()

	interval, loc := v.practiceDefaults(ctx, practiceID)
	proposedStart = proposedStart.In(loc)

	dayStart := time.Date(proposedStart.Year(), proposedStart.Month(), proposedStart.Day(), 0, 0, 0, 0, proposedStart.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	heldStarts, err := v.appointments.ListHeldStarts(ctx, practiceID, dayStart, dayEnd)
	if err != nil {
		span.RecordError(err)
		v.logger.Error("slot validation failed to load bookings", "practice_id", practiceID, "error", err)
		v.metrics.ObserveValidation("error", time.Since(began).Seconds())
		return Result{Valid: false, Message: unavailableMessage}
	}

	proposedEnd := proposedStart.Add(interval)
	if conflictsWithAny(proposedStart, proposedEnd, heldStarts, interval) {
		v.metrics.ObserveValidation("conflict", time.Since(began).Seconds())
		return Result{Valid: false, Message: ConflictMessage}
	}

	v.metrics.ObserveValidation("accepted", time.Since(began).Seconds())
	return Result{Valid: true}
}

// practiceDefaults loads the practice's consultation interval and
// timezone, falling back to platform defaults when settings are missing
// or unreadable.
func (v *Validator) practiceDefaults(ctx context.Context, practiceID string) (time.Duration, *time.Location) {
	if v.settings == nil {
		return DefaultInterval, time.UTC
	}
	settings, err := v.settings.Get(ctx, practiceID)
	if err != nil {
		if !errors.Is(err, practice.ErrNotFound) {
			v.logger.Warn("slot validation using default settings", "practice_id", practiceID, "error", err)
		}
		return DefaultInterval, time.UTC
	}
	return settings.ConsultationInterval(), settings.Location()
}
