package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IAmASonOfGod/medcare-booking-platform/internal/practice"
)

type stubHeldLister struct {
	starts []time.Time
	err    error

	lastPracticeID string
	lastDayStart   time.Time
	lastDayEnd     time.Time
}

func (s *stubHeldLister) ListHeldStarts(_ context.Context, practiceID string, dayStart, dayEnd time.Time) ([]time.Time, error) {
	s.lastPracticeID = practiceID
	s.lastDayStart = dayStart
	s.lastDayEnd = dayEnd
	return s.starts, s.err
}

type stubSettings struct {
	settings *practice.Settings
	err      error
}

func (s *stubSettings) Get(context.Context, string) (*practice.Settings, error) {
	return s.settings, s.err
}

func testSettings(minutes int) *stubSettings {
	return &stubSettings{settings: &practice.Settings{
		PracticeID:          "prac-1",
		Timezone:            "America/New_York",
		ConsultationMinutes: minutes,
	}}
}

func TestValidateSlotAccepted(t *testing.T) {
	lister := &stubHeldLister{}
	v := NewValidator(lister, testSettings(30), nil, nil)

	result := v.ValidateSlot(context.Background(), "prac-1", monday(t).Add(10*time.Hour))

	if !result.Valid {
		t.Fatalf("expected acceptance, got %+v", result)
	}
	if result.Message != "" {
		t.Errorf("expected no message on acceptance, got %q", result.Message)
	}
	if lister.lastPracticeID != "prac-1" {
		t.Errorf("expected practice-scoped query, got %q", lister.lastPracticeID)
	}
	if got := lister.lastDayEnd.Sub(lister.lastDayStart); got != 24*time.Hour {
		t.Errorf("expected a one-day query window, got %s", got)
	}
}

func TestValidateSlotConflict(t *testing.T) {
	tenAM := monday(t).Add(10 * time.Hour)
	lister := &stubHeldLister{starts: []time.Time{tenAM}}
	v := NewValidator(lister, testSettings(30), nil, nil)

	result := v.ValidateSlot(context.Background(), "prac-1", tenAM)

	if result.Valid {
		t.Fatal("expected rejection for exact-start collision")
	}
	if result.Message != ConflictMessage {
		t.Errorf("expected conflict message, got %q", result.Message)
	}
}

func TestValidateSlotBackToBackAccepted(t *testing.T) {
	tenAM := monday(t).Add(10 * time.Hour)
	lister := &stubHeldLister{starts: []time.Time{tenAM}}
	v := NewValidator(lister, testSettings(30), nil, nil)

	// 10:30 starts exactly at the booked end: no overlap.
	result := v.ValidateSlot(context.Background(), "prac-1", tenAM.Add(30*time.Minute))
	if !result.Valid {
		t.Fatalf("expected back-to-back slot to be accepted, got %+v", result)
	}
}

func TestValidateSlotPartialOverlapRejected(t *testing.T) {
	tenAM := monday(t).Add(10 * time.Hour)
	lister := &stubHeldLister{starts: []time.Time{tenAM}}
	// 60-minute interval: 09:30 proposal runs 09:30-10:30 and overlaps.
	v := NewValidator(lister, testSettings(60), nil, nil)

	result := v.ValidateSlot(context.Background(), "prac-1", tenAM.Add(-30*time.Minute))
	if result.Valid {
		t.Fatal("expected partial overlap to be rejected")
	}
}

func TestValidateSlotFailsClosedOnStoreError(t *testing.T) {
	lister := &stubHeldLister{err: errors.New("store unreachable")}
	v := NewValidator(lister, testSettings(30), nil, nil)

	result := v.ValidateSlot(context.Background(), "prac-1", monday(t).Add(10*time.Hour))

	if result.Valid {
		t.Fatal("expected store failure to reject the booking")
	}
	if result.Message == "" || result.Message == ConflictMessage {
		t.Errorf("expected a generic failure message, got %q", result.Message)
	}
}

func TestValidateSlotDefaultsWithoutSettings(t *testing.T) {
	tenAM := monday(t).Add(10 * time.Hour).UTC()
	lister := &stubHeldLister{starts: []time.Time{tenAM}}
	v := NewValidator(lister, &stubSettings{err: practice.ErrNotFound}, nil, nil)

	// Interval defaults to 30: a proposal 15 minutes in overlaps.
	result := v.ValidateSlot(context.Background(), "prac-1", tenAM.Add(15*time.Minute))
	if result.Valid {
		t.Fatal("expected overlap under the default interval to be rejected")
	}

	// And 30 minutes in does not.
	result = v.ValidateSlot(context.Background(), "prac-1", tenAM.Add(30*time.Minute))
	if !result.Valid {
		t.Fatalf("expected default-interval back-to-back acceptance, got %+v", result)
	}
}

func TestValidateSlotIgnoresZeroInterval(t *testing.T) {
	tenAM := monday(t).Add(10 * time.Hour)
	lister := &stubHeldLister{starts: []time.Time{tenAM}}
	// Interval of 0 in settings must fall back to 30 minutes.
	v := NewValidator(lister, testSettings(0), nil, nil)

	result := v.ValidateSlot(context.Background(), "prac-1", tenAM.Add(15*time.Minute))
	if result.Valid {
		t.Fatal("expected zero-interval settings to fall back to default and reject")
	}
}
