package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// Handler exposes booking endpoints.
type Handler struct {
	service  *Service
	settings schedule.SettingsGetter
	logger   *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(service *Service, settings schedule.SettingsGetter, logger *logging.Logger) *Handler {
	if service == nil {
		panic("appointments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, settings: settings, logger: logger}
}

// Routes returns a chi router with appointment routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateAppointment)
	r.Get("/", h.ListAppointments)
	r.Post("/{id}/cancel", h.CancelAppointment)
	return r
}

// rejectionResponse mirrors the validator verdict for rejected bookings.
type rejectionResponse struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// CreateAppointment books a slot for the caller's practice.
// POST /appointments
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON payload"}`, http.StatusBadRequest)
		return
	}

	appt, result, err := h.service.Book(r.Context(), practiceID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("booking failed", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusConflict, rejectionResponse{IsValid: false, Message: result.Message})
		return
	}

	writeJSON(w, http.StatusCreated, appt)
}

// ListAppointments returns the practice's appointments for one day.
// GET /appointments?date=2026-09-07
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
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

	loc := time.UTC
	if h.settings != nil {
		if settings, err := h.settings.Get(r.Context(), practiceID); err == nil {
			loc = settings.Location()
		} else if !errors.Is(err, practice.ErrNotFound) {
			h.logger.Error("list failed to load settings", "practice_id", practiceID, "error", err)
		}
	}

	date, err := time.ParseInLocation("2006-01-02", dateParam, loc)
	if err != nil {
		http.Error(w, `{"error": "invalid date, use YYYY-MM-DD"}`, http.StatusBadRequest)
		return
	}

	appts, err := h.service.ListForDay(r.Context(), practiceID, date)
	if err != nil {
		h.logger.Error("list appointments failed", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	writeJSON(w, http.StatusOK, appts)
}

// CancelAppointment releases a booked slot.
// POST /appointments/{id}/cancel
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, `{"error": "appointment id required"}`, http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), practiceID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "appointment not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("cancel failed", "practice_id", practiceID, "appointment_id", id, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": schedule.StatusCancelled})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
