package schedule

import (
	"testing"
	"time"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
)

func TestResolveDayWindow(t *testing.T) {
	tests := []struct {
		name string
		day  *practice.DayHours
		want *DayWindow
	}{
		{
			name: "open day",
			day:  &practice.DayHours{Open: "09:00", Close: "17:00"},
			want: &DayWindow{StartHour: 9, EndHour: 17},
		},
		{
			name: "open day with minutes",
			day:  &practice.DayHours{Open: "08:30", Close: "16:45"},
			want: &DayWindow{StartHour: 8, StartMinute: 30, EndHour: 16, EndMinute: 45},
		},
		{
			name: "missing record",
			day:  nil,
			want: nil,
		},
		{
			name: "marked closed",
			day:  &practice.DayHours{Open: "09:00", Close: "17:00", Closed: true},
			want: nil,
		},
		{
			name: "missing open",
			day:  &practice.DayHours{Close: "17:00"},
			want: nil,
		},
		{
			name: "missing close",
			day:  &practice.DayHours{Open: "09:00"},
			want: nil,
		},
		{
			name: "non-numeric open",
			day:  &practice.DayHours{Open: "abc", Close: "17:00"},
			want: nil,
		},
		{
			name: "non-numeric close minute",
			day:  &practice.DayHours{Open: "09:00", Close: "17:xx"},
			want: nil,
		},
		{
			name: "open missing colon",
			day:  &practice.DayHours{Open: "0900", Close: "17:00"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours := &practice.OperatingHours{Monday: tt.day}
			got := ResolveDayWindow(hours, time.Monday)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("expected nil window, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a window, got nil")
			}
			if *got != *tt.want {
				t.Fatalf("expected %+v, got %+v", *tt.want, *got)
			}
		})
	}
}

func TestResolveHolidayWindow(t *testing.T) {
	hours := &practice.OperatingHours{PublicHolidays: &practice.DayHours{Open: "10:00", Close: "14:00"}}
	got := ResolveHolidayWindow(hours)
	if got == nil || got.StartHour != 10 || got.EndHour != 14 {
		t.Fatalf("expected 10:00-14:00 holiday window, got %+v", got)
	}

	closed := &practice.OperatingHours{PublicHolidays: &practice.DayHours{Closed: true}}
	if ResolveHolidayWindow(closed) != nil {
		t.Error("expected nil window for closed holidays")
	}
	if ResolveHolidayWindow(nil) != nil {
		t.Error("expected nil window for nil hours")
	}
}

func TestBusinessDays(t *testing.T) {
	hours := &practice.OperatingHours{
		Monday:    &practice.DayHours{Open: "09:00", Close: "17:00"},
		Tuesday:   &practice.DayHours{Open: "09:00", Close: "17:00"},
		Wednesday: &practice.DayHours{Closed: true},
		// Open string present but close unparseable: still not a business day.
		Thursday: &practice.DayHours{Open: "09:00", Close: "bad"},
		Sunday:   &practice.DayHours{Closed: true},
	}

	days := BusinessDays(hours)
	if len(days) != 2 {
		t.Fatalf("expected 2 business days, got %v", days)
	}
	if days[0] != time.Monday || days[1] != time.Tuesday {
		t.Fatalf("expected Monday and Tuesday, got %v", days)
	}
}

func TestDayWindowMinutes(t *testing.T) {
	w := DayWindow{StartHour: 9, EndHour: 17}
	if w.Minutes() != 480 {
		t.Errorf("expected 480 minutes, got %d", w.Minutes())
	}

	inverted := DayWindow{StartHour: 17, EndHour: 9}
	if inverted.Minutes() != 0 {
		t.Errorf("expected inverted window to report 0, got %d", inverted.Minutes())
	}
}

func TestDayWindowAnchors(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, loc) // Monday
	w := DayWindow{StartHour: 9, StartMinute: 15, EndHour: 17}

	start := w.Start(date)
	if start.Hour() != 9 || start.Minute() != 15 || start.Location() != loc {
		t.Errorf("unexpected start anchor: %s", start)
	}
	if w.End(date).Hour() != 17 {
		t.Errorf("unexpected end anchor: %s", w.End(date))
	}
}
