package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
)

func availabilityRequest(t *testing.T, date string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/availability?date="+date, nil)
	return req.WithContext(tenancy.WithPracticeID(req.Context(), "prac-1"))
}

func fullWeekSettings() *stubSettings {
	s := testSettings(30)
	s.settings.OperatingHours = practice.OperatingHours{
		Monday:  &practice.DayHours{Open: "09:00", Close: "17:00"},
		Sunday:  &practice.DayHours{Closed: true},
		Tuesday: &practice.DayHours{Open: "09:00", Close: "17:00"},
	}
	return s
}

func TestGetAvailabilityFullDay(t *testing.T) {
	handler := NewHandler(fullWeekSettings(), &stubHeldLister{}, DefaultGates(), nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, availabilityRequest(t, "2026-09-07")) // Monday

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(resp.Slots))
	}

	first, err := time.Parse(time.RFC3339, resp.Slots[0])
	if err != nil {
		t.Fatalf("parse slot: %v", err)
	}
	if first.Hour() != 9 || first.Minute() != 0 {
		t.Errorf("expected first slot 09:00, got %s", resp.Slots[0])
	}
}

func TestGetAvailabilityExcludesBooked(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	booked := time.Date(2026, 9, 7, 10, 0, 0, 0, loc)
	lister := &stubHeldLister{starts: []time.Time{booked}}

	handler := NewHandler(fullWeekSettings(), lister, DefaultGates(), nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, availabilityRequest(t, "2026-09-07"))

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 15 {
		t.Fatalf("expected 15 slots with one booking, got %d", len(resp.Slots))
	}
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	handler := NewHandler(fullWeekSettings(), &stubHeldLister{}, DefaultGates(), nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, availabilityRequest(t, "2026-09-06")) // Sunday

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(resp.Slots))
	}
}

func TestGetAvailabilityStoreFailureLooksEmpty(t *testing.T) {
	lister := &stubHeldLister{err: errors.New("db down")}
	handler := NewHandler(fullWeekSettings(), lister, DefaultGates(), nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, availabilityRequest(t, "2026-09-07"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected availability to degrade, got status %d", rec.Code)
	}
	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Slots) != 0 {
		t.Fatalf("expected failure to be indistinguishable from no availability, got %d slots", len(resp.Slots))
	}
}

func TestGetAvailabilityRequiresDate(t *testing.T) {
	handler := NewHandler(fullWeekSettings(), &stubHeldLister{}, DefaultGates(), nil)
	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	req = req.WithContext(tenancy.WithPracticeID(req.Context(), "prac-1"))
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetAvailabilityRequiresPractice(t *testing.T) {
	handler := NewHandler(fullWeekSettings(), &stubHeldLister{}, DefaultGates(), nil)
	req := httptest.NewRequest(http.MethodGet, "/availability?date=2026-09-07", nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetAvailabilityMissingSettingsUsesFallbackWindow(t *testing.T) {
	handler := NewHandler(&stubSettings{err: practice.ErrNotFound}, &stubHeldLister{}, Gates{}, nil)
	rec := httptest.NewRecorder()

	handler.GetAvailability(rec, availabilityRequest(t, "2026-09-07"))

	var resp AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Fallback window is 08:00-17:00 at the default interval.
	if len(resp.Slots) != 18 {
		t.Fatalf("expected 18 fallback slots, got %d", len(resp.Slots))
	}
}
