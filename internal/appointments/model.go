package appointments

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an appointment does not exist for the
	// practice.
	ErrNotFound = errors.New("appointments: not found")
	// ErrSlotTaken is returned when the database unique index rejects a
	// second active booking for the same practice and start time.
	ErrSlotTaken = errors.New("appointments: slot already taken")
	// ErrInvalidRequest wraps payload validation failures.
	ErrInvalidRequest = errors.New("appointments: invalid request")
)

// Appointment is one booked consultation slot.
type Appointment struct {
	ID           string    `json:"id"`
	PracticeID   string    `json:"practice_id"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email,omitempty"`
	PatientPhone string    `json:"patient_phone,omitempty"`
	Schedule     time.Time `json:"schedule"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateAppointmentRequest is the booking payload from the patient surface.
type CreateAppointmentRequest struct {
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	PatientPhone string    `json:"patient_phone"`
	Schedule     time.Time `json:"schedule"`
	Reason       string    `json:"reason"`
}

// Validate checks required fields before the slot is considered.
func (r *CreateAppointmentRequest) Validate() error {
	if strings.TrimSpace(r.PatientName) == "" {
		return errors.New("patient_name is required")
	}
	if strings.TrimSpace(r.PatientEmail) == "" && strings.TrimSpace(r.PatientPhone) == "" {
		return errors.New("patient_email or patient_phone is required")
	}
	if r.Schedule.IsZero() {
		return errors.New("schedule is required")
	}
	return nil
}
