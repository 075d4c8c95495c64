package schedule

import "time"

// Platform-wide fallback constraints applied by the advisory availability
// filter on top of practice-specific hours. Deliberately coarser than any
// practice window.
const (
	globalOpenHour    = 8
	globalCloseHour   = 17
	globalSlotMinutes = 30
)

// Gates are the named policies the availability filter applies in addition
// to booking-overlap checks. Both default on, matching the historical
// client-side behavior; the authoritative validator applies neither.
type Gates struct {
	// GlobalHours rejects slots outside the platform-wide business hours
	// (weekdays 08:00-17:00), even when the practice's own window is wider.
	GlobalHours bool
	// SlotAlignment rejects slots not aligned to the platform-wide
	// 30-minute grid.
	SlotAlignment bool
}

// DefaultGates returns the filter policies as historically applied on the
// availability path.
func DefaultGates() Gates {
	return Gates{GlobalHours: true, SlotAlignment: true}
}

// FilterAvailable returns the candidates that remain bookable: inside the
// enabled gates and not overlapping any booked slot. Order is preserved and
// the inputs are never mutated. Advisory only; bookings are re-validated
// server-side.
func FilterAvailable(candidates, booked []time.Time, interval time.Duration, gates Gates) []time.Time {
	if interval <= 0 {
		interval = DefaultInterval
	}

	available := make([]time.Time, 0, len(candidates))
	for _, slot := range candidates {
		if gates.GlobalHours && !withinGlobalHours(slot) {
			continue
		}
		if gates.SlotAlignment && !alignedToGrid(slot) {
			continue
		}
		if conflictsWithAny(slot, slot.Add(interval), booked, interval) {
			continue
		}
		available = append(available, slot)
	}
	return available
}

func withinGlobalHours(slot time.Time) bool {
	if slot.Weekday() == time.Saturday || slot.Weekday() == time.Sunday {
		return false
	}
	minutes := slot.Hour()*60 + slot.Minute()
	return minutes >= globalOpenHour*60 && minutes < globalCloseHour*60
}

func alignedToGrid(slot time.Time) bool {
	return slot.Minute()%globalSlotMinutes == 0 && slot.Second() == 0
}

// conflictsWithAny reports whether [start, end) overlaps any booked range.
// The three sub-conditions (start inside booked, end inside booked,
// candidate encloses booked) together implement half-open overlap, so a
// slot beginning exactly at a booked end never conflicts.
func conflictsWithAny(start, end time.Time, booked []time.Time, interval time.Duration) bool {
	for _, bookedStart := range booked {
		bookedEnd := bookedStart.Add(interval)

		startsInside := !start.Before(bookedStart) && start.Before(bookedEnd)
		endsInside := end.After(bookedStart) && !end.After(bookedEnd)
		encloses := !start.After(bookedStart) && !end.Before(bookedEnd)

		if startsInside || endsInside || encloses {
			return true
		}
	}
	return false
}
