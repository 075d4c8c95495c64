package schedule

// Appointment status values shared by the conflict validator and the
// capacity reporter.
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no_show"
)

// IsHeld reports whether an appointment currently claims its slot. Held
// appointments block new bookings.
func IsHeld(status string) bool {
	return status == StatusScheduled || status == StatusPending
}

// IsConsumed reports whether an appointment consumed capacity. Consumed
// appointments count toward utilization. This is intentionally a different
// set from IsHeld: held means "the slot is claimed right now", consumed
// means "the slot was used".
func IsConsumed(status string) bool {
	return status == StatusScheduled || status == StatusCompleted
}

// HeldStatuses lists the statuses IsHeld accepts, for status-filtered
// store queries.
func HeldStatuses() []string {
	return []string{StatusScheduled, StatusPending}
}

// ConsumedStatuses lists the statuses IsConsumed accepts.
func ConsumedStatuses() []string {
	return []string{StatusScheduled, StatusCompleted}
}
