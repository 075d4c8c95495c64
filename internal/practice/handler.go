package practice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// Auditor records settings lifecycle events. Optional.
type Auditor interface {
	RecordSettingsSaved(ctx context.Context, practiceID string, details any)
	RecordPracticeRegistered(ctx context.Context, practiceID string, details any)
}

// Handler provides HTTP endpoints for practice registration and settings.
type Handler struct {
	store   *Store
	auditor Auditor
	logger  *logging.Logger
}

// NewHandler creates a new practice settings HTTP handler.
func NewHandler(store *Store, auditor Auditor, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:   store,
		auditor: auditor,
		logger:  logger,
	}
}

// Routes returns a chi router with practice routes. Settings routes expect
// the tenancy middleware to have resolved the practice id.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Register)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	return r
}

// RegisterRequest is the request body for registering a practice.
type RegisterRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	Timezone            string `json:"timezone,omitempty"`
	ConsultationMinutes int    `json:"consultation_minutes,omitempty"`
}

// Register creates a practice with default settings, pending super-admin
// verification.
// POST /practices
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, `{"error": "name required"}`, http.StatusBadRequest)
		return
	}

	settings := DefaultSettings(uuid.NewString())
	settings.Name = req.Name
	settings.Email = req.Email
	settings.Phone = req.Phone
	settings.Address = req.Address
	if req.Timezone != "" {
		settings.Timezone = req.Timezone
	}
	if req.ConsultationMinutes > 0 {
		settings.ConsultationMinutes = req.ConsultationMinutes
	}

	if err := h.store.Create(r.Context(), settings); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			http.Error(w, `{"error": "practice already registered"}`, http.StatusConflict)
			return
		}
		h.logger.Error("failed to register practice", "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if h.auditor != nil {
		h.auditor.RecordPracticeRegistered(r.Context(), settings.PracticeID, map[string]string{"name": settings.Name})
	}
	h.logger.Info("practice registered", "practice_id", settings.PracticeID, "name", settings.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(settings); err != nil {
		h.logger.Error("failed to encode practice settings", "practice_id", settings.PracticeID, "error", err)
	}
}

// GetSettings returns the settings for the caller's practice.
// GET /practices/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	settings, err := h.store.Get(r.Context(), practiceID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "practice not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get practice settings", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(settings); err != nil {
		h.logger.Error("failed to encode practice settings", "practice_id", practiceID, "error", err)
	}
}

// UpdateSettingsRequest is the request body for updating practice settings.
// All fields are optional; absent fields keep their stored value.
type UpdateSettingsRequest struct {
	Name                string          `json:"name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Address             string          `json:"address,omitempty"`
	Timezone            string          `json:"timezone,omitempty"`
	ConsultationMinutes *int            `json:"consultation_minutes,omitempty"`
	OperatingHours      *OperatingHours `json:"operating_hours,omitempty"`
}

// UpdateSettings applies a partial update to the caller's practice settings.
// PUT /practices/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	settings, err := h.store.Get(r.Context(), practiceID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, `{"error": "practice not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to get practice settings", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	if req.Name != "" {
		settings.Name = req.Name
	}
	if req.Email != "" {
		settings.Email = req.Email
	}
	if req.Phone != "" {
		settings.Phone = req.Phone
	}
	if req.Address != "" {
		settings.Address = req.Address
	}
	if req.Timezone != "" {
		settings.Timezone = req.Timezone
	}
	if req.ConsultationMinutes != nil && *req.ConsultationMinutes > 0 {
		settings.ConsultationMinutes = *req.ConsultationMinutes
	}
	if req.OperatingHours != nil {
		settings.OperatingHours = *req.OperatingHours
	}

	if err := h.store.Set(r.Context(), settings); err != nil {
		h.logger.Error("failed to save practice settings", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "failed to save settings"}`, http.StatusInternalServerError)
		return
	}

	if h.auditor != nil {
		h.auditor.RecordSettingsSaved(r.Context(), practiceID, req)
	}
	h.logger.Info("practice settings updated", "practice_id", practiceID, "name", settings.Name)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(settings); err != nil {
		h.logger.Error("failed to encode practice settings", "practice_id", practiceID, "error", err)
	}
}
