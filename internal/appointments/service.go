package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/observability/metrics"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

var appointmentsTracer = otel.Tracer("medcare.internal.appointments")

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, practiceID, id string) (*Appointment, error)
	ListForDay(ctx context.Context, practiceID string, dayStart, dayEnd time.Time) ([]Appointment, error)
	UpdateStatus(ctx context.Context, practiceID, id, status string) error
}

// SlotValidator decides whether a proposed start time may be booked.
type SlotValidator interface {
	ValidateSlot(ctx context.Context, practiceID string, start time.Time) schedule.Result
}

// Notifier sends patient-facing messages after booking events. Optional.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, appt *Appointment) error
	SendCancellationNotice(ctx context.Context, appt *Appointment) error
}

// Auditor records booking lifecycle events. Optional.
type Auditor interface {
	RecordBookingCreated(ctx context.Context, practiceID, appointmentID string, start time.Time)
	RecordBookingRejected(ctx context.Context, practiceID string, start time.Time, reason string)
	RecordBookingCancelled(ctx context.Context, practiceID, appointmentID string)
}

// Service books and cancels appointments. Every create passes through the
// slot validator; the database unique index backstops the race two
// concurrent requests can still win past it.
type Service struct {
	store     Store
	validator SlotValidator
	metrics   *metrics.BookingMetrics
	notifier  Notifier
	auditor   Auditor
	logger    *logging.Logger
}

// NewService constructs an appointments service.
func NewService(store Store, validator SlotValidator, m *metrics.BookingMetrics, notifier Notifier, auditor Auditor, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if validator == nil {
		panic("appointments: slot validator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:     store,
		validator: validator,
		metrics:   m,
		notifier:  notifier,
		auditor:   auditor,
		logger:    logger,
	}
}

// Book validates the requested slot and persists the appointment. A
// rejected slot returns the validator's verdict with a nil appointment and
// no error; errors are reserved for bad payloads and internal failures.
func (s *Service) Book(ctx context.Context, practiceID string, req *CreateAppointmentRequest) (*Appointment, schedule.Result, error) {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(attribute.String("medcare.practice_id", practiceID))

	if err := req.Validate(); err != nil {
		return nil, schedule.Result{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	result := s.validator.ValidateSlot(ctx, practiceID, req.Schedule)
	if !result.Valid {
		s.metrics.ObserveBooking("create", "rejected")
		if s.auditor != nil {
			s.auditor.RecordBookingRejected(ctx, practiceID, req.Schedule, result.Message)
		}
		s.logger.Info("booking rejected", "practice_id", practiceID, "schedule", req.Schedule)
		return nil, result, nil
	}

	appt := &Appointment{
		PracticeID:   practiceID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		PatientPhone: req.PatientPhone,
		Schedule:     req.Schedule,
		Status:       schedule.StatusScheduled,
		Reason:       req.Reason,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			// Lost the insert race after validation passed.
			s.metrics.ObserveBooking("create", "rejected")
			result := schedule.Result{Valid: false, Message: schedule.ConflictMessage}
			if s.auditor != nil {
				s.auditor.RecordBookingRejected(ctx, practiceID, req.Schedule, result.Message)
			}
			s.logger.Warn("booking lost insert race", "practice_id", practiceID, "schedule", req.Schedule)
			return nil, result, nil
		}
		span.RecordError(err)
		s.metrics.ObserveBooking("create", "error")
		return nil, schedule.Result{}, err
	}

	s.metrics.ObserveBooking("create", "created")
	if s.auditor != nil {
		s.auditor.RecordBookingCreated(ctx, practiceID, appt.ID, appt.Schedule)
	}
	if s.notifier != nil {
		if err := s.notifier.SendBookingConfirmation(ctx, appt); err != nil {
			s.logger.Error("booking confirmation failed", "practice_id", practiceID, "appointment_id", appt.ID, "error", err)
		}
	}
	s.logger.Info("booking created", "practice_id", practiceID, "appointment_id", appt.ID, "schedule", appt.Schedule)
	return appt, result, nil
}

// Cancel transitions an appointment to cancelled, releasing its slot.
func (s *Service) Cancel(ctx context.Context, practiceID, id string) error {
	ctx, span := appointmentsTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(
		attribute.String("medcare.practice_id", practiceID),
		attribute.String("medcare.appointment_id", id),
	)

	appt, err := s.store.GetByID(ctx, practiceID, id)
	if err != nil {
		return err
	}
	if appt.Status == schedule.StatusCancelled {
		return nil
	}

	if err := s.store.UpdateStatus(ctx, practiceID, id, schedule.StatusCancelled); err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("cancel", "error")
		return err
	}

	s.metrics.ObserveBooking("cancel", "cancelled")
	if s.auditor != nil {
		s.auditor.RecordBookingCancelled(ctx, practiceID, id)
	}
	if s.notifier != nil {
		appt.Status = schedule.StatusCancelled
		if err := s.notifier.SendCancellationNotice(ctx, appt); err != nil {
			s.logger.Error("cancellation notice failed", "practice_id", practiceID, "appointment_id", id, "error", err)
		}
	}
	s.logger.Info("booking cancelled", "practice_id", practiceID, "appointment_id", id)
	return nil
}

// ListForDay returns the practice's appointments on the calendar day that
// contains dayStart.
func (s *Service) ListForDay(ctx context.Context, practiceID string, dayStart time.Time) ([]Appointment, error) {
	return s.store.ListForDay(ctx, practiceID, dayStart, dayStart.AddDate(0, 0, 1))
}
