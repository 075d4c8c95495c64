package appointments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/schedule"
	"github.com/IAmASonOfGod/medcare-booking-platform/internal/tenancy"
)

func newTestHandler(store *stubStore, validator *stubValidator) *Handler {
	svc := NewService(store, validator, nil, nil, nil, nil)
	return NewHandler(svc, nil, nil)
}

func practiceRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(tenancy.WithPracticeID(req.Context(), "prac-1"))
}

func TestCreateAppointmentHandler(t *testing.T) {
	handler := newTestHandler(newStubStore(), &stubValidator{result: schedule.Result{Valid: true}})
	body := `{"patient_name": "Jane Doe", "patient_email": "jane@example.com", "schedule": "2026-09-07T10:00:00Z"}`
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodPost, "/", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if appt.ID == "" || appt.Status != schedule.StatusScheduled {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
}

func TestCreateAppointmentConflict(t *testing.T) {
	validator := &stubValidator{result: schedule.Result{Valid: false, Message: schedule.ConflictMessage}}
	handler := newTestHandler(newStubStore(), validator)
	body := `{"patient_name": "Jane Doe", "patient_email": "jane@example.com", "schedule": "2026-09-07T10:00:00Z"}`
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodPost, "/", body))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var resp rejectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.IsValid {
		t.Error("expected is_valid false")
	}
	if resp.Message != schedule.ConflictMessage {
		t.Errorf("expected the patient-facing conflict message, got %q", resp.Message)
	}
}

func TestCreateAppointmentBadPayload(t *testing.T) {
	handler := newTestHandler(newStubStore(), &stubValidator{result: schedule.Result{Valid: true}})
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodPost, "/", `{"schedule": "2026-09-07T10:00:00Z"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing patient fields, got %d", rec.Code)
	}
}

func TestCreateAppointmentRequiresPractice(t *testing.T) {
	handler := newTestHandler(newStubStore(), &stubValidator{result: schedule.Result{Valid: true}})
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without practice header, got %d", rec.Code)
	}
}

func TestListAppointmentsHandler(t *testing.T) {
	store := newStubStore()
	store.listed = []Appointment{
		{ID: "appt-1", Schedule: time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), Status: schedule.StatusScheduled},
	}
	handler := newTestHandler(store, &stubValidator{})
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodGet, "/?date=2026-09-07", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var appts []Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appts); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(appts) != 1 || appts[0].ID != "appt-1" {
		t.Fatalf("unexpected list: %+v", appts)
	}
}

func TestListAppointmentsEmptyDay(t *testing.T) {
	handler := newTestHandler(newStubStore(), &stubValidator{})
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodGet, "/?date=2026-09-07", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty JSON array, got %s", body)
	}
}

func TestCancelAppointmentHandler(t *testing.T) {
	store := newStubStore()
	store.byID["appt-1"] = &Appointment{ID: "appt-1", Status: schedule.StatusScheduled}
	handler := newTestHandler(store, &stubValidator{})
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodPost, "/appt-1/cancel", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.updated["appt-1"] != schedule.StatusCancelled {
		t.Errorf("expected cancellation, got %q", store.updated["appt-1"])
	}
}

func TestCancelAppointmentNotFound(t *testing.T) {
	handler := newTestHandler(newStubStore(), &stubValidator{})
	rec := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rec, practiceRequest(http.MethodPost, "/appt-404/cancel", ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
