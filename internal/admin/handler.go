package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/audit"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// AuditQuerier reads the audit trail.
type AuditQuerier interface {
	QueryEvents(ctx context.Context, filter audit.Filter) ([]audit.Event, error)
}

// Handler exposes admin endpoints. Mounted behind the admin JWT
// middleware.
type Handler struct {
	service *Service
	audits  AuditQuerier
	logger  *logging.Logger
}

// NewHandler creates an admin HTTP handler.
func NewHandler(service *Service, audits AuditQuerier, logger *logging.Logger) *Handler {
	if service == nil {
		panic("admin: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, audits: audits, logger: logger}
}

// Routes returns a chi router with admin routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/practices/{practiceID}/verify", h.VerifyPractice)
	r.Post("/practices/{practiceID}/invites", h.IssueInvite)
	r.Get("/practices/{practiceID}/audit", h.ListAuditEvents)
	return r
}

// VerifyPractice marks a practice as verified.
// POST /admin/practices/{practiceID}/verify
func (h *Handler) VerifyPractice(w http.ResponseWriter, r *http.Request) {
	practiceID := chi.URLParam(r, "practiceID")
	if practiceID == "" {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	settings, err := h.service.VerifyPractice(r.Context(), practiceID)
	if err != nil {
		if errors.Is(err, practice.ErrNotFound) {
			http.Error(w, `{"error": "practice not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("verify failed", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(settings)
}

type issueInviteRequest struct {
	Email string `json:"email"`
}

// IssueInvite creates a practice-admin invite token.
// POST /admin/practices/{practiceID}/invites
func (h *Handler) IssueInvite(w http.ResponseWriter, r *http.Request) {
	practiceID := chi.URLParam(r, "practiceID")
	if practiceID == "" {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	var req issueInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		http.Error(w, `{"error": "email required"}`, http.StatusBadRequest)
		return
	}

	invite, err := h.service.IssueInvite(r.Context(), practiceID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, practice.ErrNotFound):
			http.Error(w, `{"error": "practice not found"}`, http.StatusNotFound)
		case errors.Is(err, ErrInvitesDisabled):
			http.Error(w, `{"error": "invites disabled"}`, http.StatusServiceUnavailable)
		default:
			h.logger.Error("invite failed", "practice_id", practiceID, "error", err)
			http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(invite)
}

// ListAuditEvents returns the audit trail for a practice.
// GET /admin/practices/{practiceID}/audit
// Query params:
//   - type: repeated event type filter (optional)
//   - start, end: RFC3339 bounds (optional)
//   - limit: max rows (default 100)
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	practiceID := chi.URLParam(r, "practiceID")
	if practiceID == "" {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}
	if h.audits == nil {
		http.Error(w, `{"error": "audit trail disabled"}`, http.StatusServiceUnavailable)
		return
	}

	filter := audit.Filter{PracticeID: practiceID, Limit: 100}
	for _, raw := range r.URL.Query()["type"] {
		if raw = strings.TrimSpace(raw); raw != "" {
			filter.EventTypes = append(filter.EventTypes, audit.EventType(raw))
		}
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, `{"error": "invalid start time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		filter.StartTime = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, `{"error": "invalid end time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		filter.EndTime = t
	}

	events, err := h.audits.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("audit query failed", "practice_id", practiceID, "error", err)
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}
