// Package practice provides practice-specific settings and their persistence.
package practice

import "time"

// DayHours represents the booking window for a single day.
// A nil record or Closed=true means the practice does not take
// appointments that day.
type DayHours struct {
	Open   string `json:"open,omitempty"`  // "09:00" in 24-hour format
	Close  string `json:"close,omitempty"` // "17:00" in 24-hour format
	Closed bool   `json:"closed"`
}

// OperatingHours maps days to their booking windows. PublicHolidays applies
// on dates the practice treats as holidays, regardless of weekday.
type OperatingHours struct {
	Monday         *DayHours `json:"monday,omitempty"`
	Tuesday        *DayHours `json:"tuesday,omitempty"`
	Wednesday      *DayHours `json:"wednesday,omitempty"`
	Thursday       *DayHours `json:"thursday,omitempty"`
	Friday         *DayHours `json:"friday,omitempty"`
	Saturday       *DayHours `json:"saturday,omitempty"`
	Sunday         *DayHours `json:"sunday,omitempty"`
	PublicHolidays *DayHours `json:"public_holidays,omitempty"`
}

// ForDay returns the hours record for a given weekday.
func (o *OperatingHours) ForDay(weekday time.Weekday) *DayHours {
	if o == nil {
		return nil
	}
	switch weekday {
	case time.Sunday:
		return o.Sunday
	case time.Monday:
		return o.Monday
	case time.Tuesday:
		return o.Tuesday
	case time.Wednesday:
		return o.Wednesday
	case time.Thursday:
		return o.Thursday
	case time.Friday:
		return o.Friday
	case time.Saturday:
		return o.Saturday
	default:
		return nil
	}
}

// Settings holds per-practice configuration.
type Settings struct {
	PracticeID string `json:"practice_id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Timezone   string `json:"timezone"` // e.g., "America/New_York"
	// Verified is set by the super-admin once the registration is reviewed.
	Verified bool `json:"verified"`
	// ConsultationMinutes is the fixed duration of every appointment slot.
	ConsultationMinutes int            `json:"consultation_minutes"`
	OperatingHours      OperatingHours `json:"operating_hours"`
}

// DefaultConsultationMinutes is used whenever a practice has no usable
// interval configured.
const DefaultConsultationMinutes = 30

// ConsultationInterval returns the slot duration, falling back to the
// default when the configured value is missing or non-positive.
func (s *Settings) ConsultationInterval() time.Duration {
	if s == nil || s.ConsultationMinutes <= 0 {
		return DefaultConsultationMinutes * time.Minute
	}
	return time.Duration(s.ConsultationMinutes) * time.Minute
}

// Location resolves the practice's IANA timezone, defaulting to UTC when
// the configured zone is missing or invalid.
func (s *Settings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultSettings returns the configuration a practice starts with at
// registration: weekdays 09:00-17:00, weekends and public holidays closed.
func DefaultSettings(practiceID string) *Settings {
	weekday := func() *DayHours { return &DayHours{Open: "09:00", Close: "17:00"} }
	return &Settings{
		PracticeID:          practiceID,
		Name:                "Practice",
		Timezone:            "America/New_York",
		Verified:            false,
		ConsultationMinutes: DefaultConsultationMinutes,
		OperatingHours: OperatingHours{
			Monday:         weekday(),
			Tuesday:        weekday(),
			Wednesday:      weekday(),
			Thursday:       weekday(),
			Friday:         weekday(),
			Saturday:       &DayHours{Closed: true},
			Sunday:         &DayHours{Closed: true},
			PublicHolidays: &DayHours{Closed: true},
		},
	}
}
