package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// Handler serves the advisory availability listing for the booking UI.
type Handler struct {
	settings     SettingsGetter
	appointments HeldSlotLister
	gates        Gates
	logger       *logging.Logger
}

// NewHandler creates an availability HTTP handler.
func NewHandler(settings SettingsGetter, appointments HeldSlotLister, gates Gates, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		settings:     settings,
		appointments: appointments,
		gates:        gates,
		logger:       logger,
	}
}

// Routes returns a chi router with availability routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetAvailability)
	return r
}

// AvailabilityResponse lists the bookable start times for one day.
type AvailabilityResponse struct {
	PracticeID string   `json:"practice_id"`
	Date       string   `json:"date"`
	Slots      []string `json:"slots"`
}

// GetAvailability returns the open slots for the caller's practice on a
// given date. Any internal failure degrades to an empty slot list; a
// patient cannot distinguish it from a fully booked day.
// GET /availability?date=2026-09-07
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		http.Error(w, `{"error": "date required, use YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	settings, err := h.settings.Get(r.Context(), practiceID)
	if err != nil && !errors.Is(err, practice.ErrNotFound) {
		h.logger.Error("availability failed to load settings", "practice_id", practiceID, "error", err)
		settings = nil
	}

	loc := time.UTC
	if settings != nil {
		loc = settings.Location()
	}

	date, err := time.ParseInLocation("2006-01-02", dateParam, loc)
	if err != nil {
		http.Error(w, `{"error": "invalid date, use YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	slots := h.availableSlots(r, practiceID, settings, date)

	resp := AvailabilityResponse{
		PracticeID: practiceID,
		Date:       dateParam,
		Slots:      make([]string, 0, len(slots)),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, slot.Format(time.RFC3339))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode availability", "practice_id", practiceID, "error", err)
	}
}

func (h *Handler) availableSlots(r *http.Request, practiceID string, settings *practice.Settings, date time.Time) []time.Time {
	window := &DefaultWindow
	interval := DefaultInterval
	if settings != nil {
		window = ResolveDayWindow(&settings.OperatingHours, date.Weekday())
		interval = settings.ConsultationInterval()
	}

	candidates := GenerateSlots(date, window, interval)
	if len(candidates) == 0 {
		return nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	heldStarts, err := h.appointments.ListHeldStarts(r.Context(), practiceID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("availability failed to load bookings", "practice_id", practiceID, "error", err)
		return nil
	}

	return FilterAvailable(candidates, heldStarts, interval, h.gates)
}
