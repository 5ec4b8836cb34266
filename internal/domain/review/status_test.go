package review

import (
	"errors"
	"testing"
)

func TestCanSubmit(t *testing.T) {
	cases := []struct {
		from              Status
		allowResubmission bool
		ok                bool
	}{
		{StatusPending, false, true},
		{StatusPending, true, true},
		{StatusCompleted, false, false},
		{StatusCompleted, true, true},
		{StatusAcknowledged, false, false},
		{StatusAcknowledged, true, false},
	}

	for _, tc := range cases {
		err := canSubmit(tc.from, tc.allowResubmission)
		if tc.ok && err != nil {
			t.Fatalf("submit from %s (resubmission=%v): unexpected error %v", tc.from, tc.allowResubmission, err)
		}
		if !tc.ok {
			var transitionErr *TransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("submit from %s (resubmission=%v): expected transition error, got %v", tc.from, tc.allowResubmission, err)
			}
			if transitionErr.From != tc.from || transitionErr.To != StatusCompleted {
				t.Fatalf("unexpected transition error %v", transitionErr)
			}
		}
	}
}

func TestCanAcknowledge(t *testing.T) {
	if err := canAcknowledge(StatusCompleted); err != nil {
		t.Fatalf("acknowledge from Completed: unexpected error %v", err)
	}

	for _, from := range []Status{StatusPending, StatusAcknowledged} {
		var transitionErr *TransitionError
		if err := canAcknowledge(from); !errors.As(err, &transitionErr) {
			t.Fatalf("acknowledge from %s: expected transition error, got %v", from, err)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusCompleted, StatusAcknowledged} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if Status("Archived").Valid() {
		t.Fatal("unknown status should not be valid")
	}
}
