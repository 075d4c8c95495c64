package schedule

import "time"

// DefaultInterval guards against zero or negative consultation intervals,
// which would otherwise loop forever.
const DefaultInterval = 30 * time.Minute

// GenerateSlots produces the ordered candidate appointment start times for
// a calendar date: the first slot opens the window and subsequent slots
// step by the interval, stopping strictly before the close time. A nil
// window (closed day) yields no slots. Pure: identical inputs always yield
// identical output.
func GenerateSlots(date time.Time, window *DayWindow, interval time.Duration) []time.Time {
	if window == nil {
		return nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := window.Start(date)
	end := window.End(date)

	var slots []time.Time
	for t := start; t.Before(end); t = t.Add(interval) {
		slots = append(slots, t)
	}
	return slots
}
