package occupancy

import (
	"testing"
	"time"
)

var base = time.Date(2024, time.March, 8, 18, 0, 0, 0, time.UTC)

func booking(id string, rooms []string, startOffset, endOffset time.Duration) Booking {
	return Booking{
		ID:    id,
		Rooms: rooms,
		Start: base.Add(startOffset),
		End:   base.Add(endOffset),
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		aStart, aEnd   time.Duration
		bStart, bEnd   time.Duration
		expectsOverlap bool
	}{
		{"identical intervals", 0, time.Hour, 0, time.Hour, true},
		{"partial overlap", 0, time.Hour, 30 * time.Minute, 2 * time.Hour, true},
		{"contained interval", 0, 2 * time.Hour, 30 * time.Minute, time.Hour, true},
		{"adjacent intervals do not overlap", 0, time.Hour, time.Hour, 2 * time.Hour, false},
		{"disjoint intervals", 0, time.Hour, 2 * time.Hour, 3 * time.Hour, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(base.Add(tc.aStart), base.Add(tc.aEnd), base.Add(tc.bStart), base.Add(tc.bEnd))
			if got != tc.expectsOverlap {
				t.Fatalf("Overlaps = %v, want %v", got, tc.expectsOverlap)
			}
			// The overlap relation is symmetric.
			mirrored := Overlaps(base.Add(tc.bStart), base.Add(tc.bEnd), base.Add(tc.aStart), base.Add(tc.aEnd))
			if mirrored != tc.expectsOverlap {
				t.Fatalf("mirrored Overlaps = %v, want %v", mirrored, tc.expectsOverlap)
			}
		})
	}
}

func TestDetectConflicts(t *testing.T) {
	t.Run("room overlap produces conflict", func(t *testing.T) {
		existing := []Booking{booking("kitchen-dinner", []string{"KITCHEN"}, 0, time.Hour)}
		candidate := booking("late-snack", []string{"KITCHEN"}, 30*time.Minute, 45*time.Minute)

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
		if conflicts[0].WithBookingID != "kitchen-dinner" || conflicts[0].Room != "KITCHEN" {
			t.Fatalf("unexpected conflict %+v", conflicts[0])
		}
	})

	t.Run("disjoint rooms never conflict", func(t *testing.T) {
		existing := []Booking{booking("movie", []string{"LIVING_ROOM"}, 0, 2*time.Hour)}
		candidate := booking("cooking", []string{"KITCHEN"}, 0, 2*time.Hour)

		if conflicts := DetectConflicts(existing, candidate); conflicts != nil {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("adjacent intervals on the same room do not conflict", func(t *testing.T) {
		existing := []Booking{booking("early", []string{"KITCHEN"}, 0, time.Hour)}
		candidate := booking("late", []string{"KITCHEN"}, time.Hour, 90*time.Minute)

		if conflicts := DetectConflicts(existing, candidate); conflicts != nil {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("cancelled bookings are ignored", func(t *testing.T) {
		cancelled := booking("cancelled", []string{"KITCHEN"}, 0, time.Hour)
		cancelled.Cancelled = true
		candidate := booking("replacement", []string{"KITCHEN"}, 0, time.Hour)

		if conflicts := DetectConflicts([]Booking{cancelled}, candidate); conflicts != nil {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("candidate is excluded from its own conflicts", func(t *testing.T) {
		existing := []Booking{booking("party-1", []string{"BALCONY"}, 0, time.Hour)}
		candidate := booking("party-1", []string{"BALCONY"}, 15*time.Minute, 45*time.Minute)

		if conflicts := DetectConflicts(existing, candidate); conflicts != nil {
			t.Fatalf("expected reschedule of same booking to be conflict free, got %+v", conflicts)
		}
	})

	t.Run("one conflict per booking even with multiple shared rooms", func(t *testing.T) {
		existing := []Booking{booking("big-party", []string{"KITCHEN", "LIVING_ROOM"}, 0, 3*time.Hour)}
		candidate := booking("other", []string{"LIVING_ROOM", "KITCHEN"}, time.Hour, 2*time.Hour)

		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
	})
}
