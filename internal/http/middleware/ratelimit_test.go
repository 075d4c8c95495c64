package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRateLimitExhaustsBurst(t *testing.T) {
	mw := RateLimit(0.001, 2)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
		req.Header.Set("X-Practice-Id", "prac-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if i == 2 {
			if rec.Code != http.StatusTooManyRequests {
				t.Fatalf("expected 429 after burst, got %d", rec.Code)
			}
			if rec.Header().Get("Retry-After") == "" {
				t.Error("expected Retry-After header on throttled response")
			}
			if !strings.Contains(rec.Body.String(), "rate limit exceeded") {
				t.Errorf("unexpected throttle body: %s", rec.Body.String())
			}
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected burst of 2 to pass, got %v", codes)
	}
}

func TestRateLimitIsolatesPractices(t *testing.T) {
	mw := RateLimit(0.001, 1)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	first.Header.Set("X-Practice-Id", "prac-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first practice to pass, got %d", rec.Code)
	}

	// prac-1 is now out of tokens, prac-2 has its own bucket.
	second := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	second.Header.Set("X-Practice-Id", "prac-2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected second practice unaffected, got %d", rec.Code)
	}

	again := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	again.Header.Set("X-Practice-Id", "prac-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, again)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected exhausted practice throttled, got %d", rec.Code)
	}
}

func TestThrottleKeyFallsBackToClientAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/practices", nil)
	if key := throttleKey(req); !strings.HasPrefix(key, "ip:") {
		t.Fatalf("expected ip key without tenant header, got %q", key)
	}

	req.Header.Set("X-Real-Ip", "203.0.113.9")
	if key := throttleKey(req); key != "ip:203.0.113.9" {
		t.Fatalf("expected proxy-resolved ip key, got %q", key)
	}

	req.Header.Set("X-Practice-Id", "prac-1")
	if key := throttleKey(req); key != "practice:prac-1" {
		t.Fatalf("expected tenant key to win, got %q", key)
	}
}
