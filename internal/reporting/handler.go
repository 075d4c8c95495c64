package reporting

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
	"github.com/IAmASonOfGod/medcare-booking-platform/pkg/logging"
)

// Handler serves the utilization dashboard.
type Handler struct {
	service  *Service
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

// NewHandler creates a reporting HTTP handler.
func NewHandler(service *Service, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if service == nil {
		panic("reporting: service required")
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, gatherer: gatherer, logger: logger}
}

// Routes returns a chi router with reporting routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/utilization", h.GetUtilization)
	return r
}

// GetUtilization returns capacity accounting for the caller's practice.
// GET /reports/utilization
// Query params:
//   - date: YYYY-MM-DD for a single day (optional)
//   - days: integer window ending today (default 7) when date omitted
func (h *Handler) GetUtilization(w http.ResponseWriter, r *http.Request) {
	practiceID, ok := tenancy.PracticeIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error": "practice_id required"}`, http.StatusBadRequest)
		return
	}

	start, end, err := parseReportWindow(r)
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	dash := h.service.BuildDashboard(r.Context(), practiceID, start, end, h.gatherer)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dash); err != nil {
		h.logger.Error("failed to encode utilization dashboard", "practice_id", practiceID, "error", err)
	}
}

func parseReportWindow(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid date, use YYYY-MM-DD")
		}
		return day, day.AddDate(0, 0, 1), nil
	}

	days := 7
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid days; must be 1-90")
		}
		days = parsed
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -days), end, nil
}
