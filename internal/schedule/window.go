// Package schedule implements the appointment slot engine: resolving a
// practice's bookable window for a day, generating candidate slots,
// filtering them against existing bookings, validating proposed bookings
// and reporting capacity utilization.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
)

// DayWindow is the resolved open-to-close range for one day.
type DayWindow struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// DefaultWindow is used when practice-specific settings are unavailable.
var DefaultWindow = DayWindow{StartHour: 8, EndHour: 17}

// Start anchors the window's opening time on a calendar date.
func (w DayWindow) Start(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), w.StartHour, w.StartMinute, 0, 0, date.Location())
}

// End anchors the window's closing time on a calendar date.
func (w DayWindow) End(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), w.EndHour, w.EndMinute, 0, 0, date.Location())
}

// Minutes returns the window length. Inverted windows report zero.
func (w DayWindow) Minutes() int {
	minutes := (w.EndHour*60 + w.EndMinute) - (w.StartHour*60 + w.StartMinute)
	if minutes < 0 {
		return 0
	}
	return minutes
}

// ResolveDayWindow resolves the bookable window for a weekday from the
// practice's operating hours. It returns nil when the day record is
// missing, marked closed, lacks open/close times, or the times fail to
// parse. Malformed configuration is treated as closed, never as an error.
func ResolveDayWindow(hours *practice.OperatingHours, weekday time.Weekday) *DayWindow {
	return resolveWindow(hours.ForDay(weekday))
}

// ResolveHolidayWindow resolves the bookable window for dates the practice
// treats as public holidays.
func ResolveHolidayWindow(hours *practice.OperatingHours) *DayWindow {
	if hours == nil {
		return nil
	}
	return resolveWindow(hours.PublicHolidays)
}

func resolveWindow(day *practice.DayHours) *DayWindow {
	if day == nil || day.Closed || day.Open == "" || day.Close == "" {
		return nil
	}

	openHour, openMinute, ok := parseClock(day.Open)
	if !ok {
		return nil
	}
	closeHour, closeMinute, ok := parseClock(day.Close)
	if !ok {
		return nil
	}

	return &DayWindow{
		StartHour:   openHour,
		StartMinute: openMinute,
		EndHour:     closeHour,
		EndMinute:   closeMinute,
	}
}

// parseClock parses an "HH:MM" string. Extra components after the minute
// are ignored.
func parseClock(value string) (hour, minute int, ok bool) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

// BusinessDays returns the weekdays a practice accepts bookings on. A day
// counts only when it resolves to a fully valid window, so this predicate
// and ResolveDayWindow can never disagree about whether a day is open.
func BusinessDays(hours *practice.OperatingHours) []time.Weekday {
	var days []time.Weekday
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		if ResolveDayWindow(hours, weekday) != nil {
			days = append(days, weekday)
		}
	}
	return days
}
