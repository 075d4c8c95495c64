package notify

import (
	"context"
	"fmt"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/appointments"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// SettingsGetter loads practice settings for addressing and timezone.
type SettingsGetter interface {
	Get(ctx context.Context, practiceID string) (*practice.Settings, error)
}

// Service sends booking lifecycle emails to patients and practices.
type Service struct {
	email    EmailSender
	settings SettingsGetter
	logger   *logging.Logger
}

// NewService creates a notification service. A nil email sender disables
// all sends.
func NewService(email EmailSender, settings SettingsGetter, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, settings: settings, logger: logger}
}

// SendBookingConfirmation emails the patient their appointment details.
func (s *Service) SendBookingConfirmation(ctx context.Context, appt *appointments.Appointment) error {
	if s.email == nil {
		return nil
	}
	if appt.PatientEmail == "" {
		s.logger.Debug("no patient email, skipping confirmation", "appointment_id", appt.ID)
		return nil
	}

	settings, err := s.loadSettings(ctx, appt.PracticeID)
	if err != nil {
		return err
	}

	when := appt.Schedule.In(settings.Location()).Format("Monday, January 2 at 3:04 PM")
	subject := fmt.Sprintf("Appointment confirmed - %s", settings.Name)
	body := fmt.Sprintf(`Hi %s,

Your appointment with %s is confirmed.

When: %s
Where: %s

If you need to reschedule or cancel, please contact the practice at %s.

— %s`, appt.PatientName, settings.Name, when, settings.Address, settings.Phone, settings.Name)

	msg := EmailMessage{
		To:      appt.PatientEmail,
		ToName:  appt.PatientName,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

// SendCancellationNotice emails the patient that their appointment was
// cancelled.
func (s *Service) SendCancellationNotice(ctx context.Context, appt *appointments.Appointment) error {
	if s.email == nil {
		return nil
	}
	if appt.PatientEmail == "" {
		return nil
	}

	settings, err := s.loadSettings(ctx, appt.PracticeID)
	if err != nil {
		return err
	}

	when := appt.Schedule.In(settings.Location()).Format("Monday, January 2 at 3:04 PM")
	subject := fmt.Sprintf("Appointment cancelled - %s", settings.Name)
	body := fmt.Sprintf(`Hi %s,

Your appointment with %s on %s has been cancelled.

To book a new time, please visit the booking page or contact the practice at %s.

— %s`, appt.PatientName, settings.Name, when, settings.Phone, settings.Name)

	msg := EmailMessage{
		To:      appt.PatientEmail,
		ToName:  appt.PatientName,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: cancellation notice: %w", err)
	}
	return nil
}

// SendPracticeVerified emails the practice that it can accept bookings.
func (s *Service) SendPracticeVerified(ctx context.Context, settings *practice.Settings) error {
	if s.email == nil || settings == nil {
		return nil
	}
	if settings.Email == "" {
		return nil
	}

	subject := "Your practice is verified"
	body := fmt.Sprintf(`Hi %s,

Your practice has been verified and can now accept online bookings.

Patients can book consultations during your configured operating hours.
You can adjust hours and consultation length at any time from the
practice settings page.

— MedCare Booking`, settings.Name)

	msg := EmailMessage{
		To:      settings.Email,
		ToName:  settings.Name,
		Subject: subject,
		Body:    body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: verification email: %w", err)
	}
	return nil
}

func (s *Service) loadSettings(ctx context.Context, practiceID string) (*practice.Settings, error) {
	if s.settings == nil {
		return practice.DefaultSettings(practiceID), nil
	}
	settings, err := s.settings.Get(ctx, practiceID)
	if err != nil {
		return nil, fmt.Errorf("notify: load settings: %w", err)
	}
	return settings, nil
}

var _ appointments.Notifier = (*Service)(nil)
