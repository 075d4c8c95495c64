package schedule

import (
	"math"
	"time"
)

// Utilization summarizes how much of a day's theoretical capacity has
// been consumed.
type Utilization struct {
	TotalCapacity   int     `json:"total_capacity"`
	BookedSlots     int     `json:"booked_slots"`
	AvailableSlots  int     `json:"available_slots"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// ComputeUtilization derives utilization for a day: capacity is the number
// of whole intervals fitting in the window (zero when closed), booked is
// the consumed-appointment count, and the rate is booked over capacity as
// a percentage rounded to one decimal. Every value is clamped to zero so a
// bad input can never produce negative or NaN output.
func ComputeUtilization(window *DayWindow, interval time.Duration, bookedSlots int) Utilization {
	intervalMinutes := int(interval / time.Minute)
	if intervalMinutes <= 0 {
		intervalMinutes = int(DefaultInterval / time.Minute)
	}
	if bookedSlots < 0 {
		bookedSlots = 0
	}

	totalCapacity := 0
	if window != nil {
		totalCapacity = window.Minutes() / intervalMinutes
	}
	if totalCapacity < 0 {
		totalCapacity = 0
	}

	availableSlots := totalCapacity - bookedSlots
	if availableSlots < 0 {
		availableSlots = 0
	}

	rate := 0.0
	if totalCapacity > 0 {
		rate = math.Round(float64(bookedSlots)/float64(totalCapacity)*1000) / 10
	}
	if rate < 0 || math.IsNaN(rate) {
		rate = 0
	}

	return Utilization{
		TotalCapacity:   totalCapacity,
		BookedSlots:     bookedSlots,
		AvailableSlots:  availableSlots,
		UtilizationRate: rate,
	}
}
