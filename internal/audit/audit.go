// Package audit provides an immutable event trail for booking and
// registration activity.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// EventType identifies what happened.
type EventType string

const (
	// EventPracticeRegistered is logged when a practice signs up.
	EventPracticeRegistered EventType = "practice.registered"
	// EventPracticeVerified is logged when an admin verifies a practice.
	EventPracticeVerified EventType = "practice.verified"
	// EventSettingsSaved is logged when operating hours or profile change.
	EventSettingsSaved EventType = "practice.settings_saved"
	// EventBookingCreated is logged when a slot is booked.
	EventBookingCreated EventType = "booking.created"
	// EventBookingRejected is logged when the validator or the database
	// rejects a slot.
	EventBookingRejected EventType = "booking.rejected"
	// EventBookingCancelled is logged when a booking is cancelled.
	EventBookingCancelled EventType = "booking.cancelled"
	// EventInviteIssued is logged when an admin invite token is created.
	EventInviteIssued EventType = "admin.invite_issued"
)

// Event is one immutable audit record.
type Event struct {
	ID            string          `json:"id"`
	EventType     EventType       `json:"event_type"`
	PracticeID    string          `json:"practice_id"`
	AppointmentID string          `json:"appointment_id,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Service writes and queries audit events.
type Service struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewService creates an audit service. A nil db disables persistence; the
// Record helpers become no-ops so callers never need to guard.
func NewService(db *sql.DB, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, logger: logger}
}

// LogEvent records one audit event.
func (s *Service) LogEvent(ctx context.Context, event Event) error {
	if s.db == nil {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_events (id, event_type, practice_id, appointment_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.PracticeID,
		nullString(event.AppointmentID),
		event.Details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: failed to log event: %w", err)
	}
	return nil
}

// record logs the event and swallows failures: an audit write never blocks
// the operation it describes.
func (s *Service) record(ctx context.Context, event Event) {
	if err := s.LogEvent(ctx, event); err != nil {
		s.logger.Error("audit write failed", "event_type", event.EventType, "practice_id", event.PracticeID, "error", err)
	}
}

// RecordPracticeRegistered logs a new practice signup.
func (s *Service) RecordPracticeRegistered(ctx context.Context, practiceID string, details any) {
	s.record(ctx, Event{
		EventType:  EventPracticeRegistered,
		PracticeID: practiceID,
		Details:    marshalDetails(details),
	})
}

// RecordPracticeVerified logs an admin verification.
func (s *Service) RecordPracticeVerified(ctx context.Context, practiceID string, details any) {
	s.record(ctx, Event{
		EventType:  EventPracticeVerified,
		PracticeID: practiceID,
		Details:    marshalDetails(details),
	})
}

// RecordSettingsSaved logs a settings change.
func (s *Service) RecordSettingsSaved(ctx context.Context, practiceID string, details any) {
	s.record(ctx, Event{
		EventType:  EventSettingsSaved,
		PracticeID: practiceID,
		Details:    marshalDetails(details),
	})
}

// RecordBookingCreated logs a successful booking.
func (s *Service) RecordBookingCreated(ctx context.Context, practiceID, appointmentID string, start time.Time) {
	s.record(ctx, Event{
		EventType:     EventBookingCreated,
		PracticeID:    practiceID,
		AppointmentID: appointmentID,
		Details:       marshalDetails(map[string]string{"schedule": start.Format(time.RFC3339)}),
	})
}

// RecordBookingRejected logs a rejected slot request.
func (s *Service) RecordBookingRejected(ctx context.Context, practiceID string, start time.Time, reason string) {
	s.record(ctx, Event{
		EventType:  EventBookingRejected,
		PracticeID: practiceID,
		Details: marshalDetails(map[string]string{
			"schedule": start.Format(time.RFC3339),
			"reason":   reason,
		}),
	})
}

// RecordBookingCancelled logs a cancellation.
func (s *Service) RecordBookingCancelled(ctx context.Context, practiceID, appointmentID string) {
	s.record(ctx, Event{
		EventType:     EventBookingCancelled,
		PracticeID:    practiceID,
		AppointmentID: appointmentID,
	})
}

// RecordInviteIssued logs an admin invite token grant.
func (s *Service) RecordInviteIssued(ctx context.Context, practiceID string, details any) {
	s.record(ctx, Event{
		EventType:  EventInviteIssued,
		PracticeID: practiceID,
		Details:    marshalDetails(details),
	})
}

// Filter specifies criteria for querying audit events.
type Filter struct {
	PracticeID string
	EventTypes []EventType
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
	Offset     int
}

// QueryEvents retrieves audit events, newest first.
func (s *Service) QueryEvents(ctx context.Context, filter Filter) ([]Event, error) {
	if s.db == nil {
		return nil, fmt.Errorf("audit: persistence not configured")
	}

	query := `
		SELECT id, event_type, practice_id, appointment_id, details, created_at
		FROM audit_events
		WHERE practice_id = $1
	`
	args := []interface{}{filter.PracticeID}
	argIdx := 2

	if len(filter.EventTypes) > 0 {
		types := make([]string, 0, len(filter.EventTypes))
		for _, et := range filter.EventTypes {
			types = append(types, string(et))
		}
		query += fmt.Sprintf(" AND event_type = ANY($%d)", argIdx)
		args = append(args, pq.Array(types))
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var appointmentID sql.NullString
		if err := rows.Scan(&e.ID, &e.EventType, &e.PracticeID, &appointmentID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: failed to scan event: %w", err)
		}
		e.AppointmentID = appointmentID.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: failed to iterate events: %w", err)
	}
	return events, nil
}

func marshalDetails(details any) json.RawMessage {
	if details == nil {
		return nil
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return raw
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
