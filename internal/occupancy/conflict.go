package occupancy

import "time"

// Booking represents a room-bound occupancy window in the household domain.
type Booking struct {
	ID        string
	Rooms     []string
	Start     time.Time
	End       time.Time
	Cancelled bool
}

// Conflict details an overlapping booking relation that callers can present to users.
type Conflict struct {
	WithBookingID string
	Room          string
}

// Overlaps reports whether the two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts identifies conflicts for the candidate booking against existing ones.
// Two bookings conflict when they claim at least one common room and their intervals
// overlap under the half-open rule. Cancelled bookings and the candidate itself never
// conflict. Each conflicting booking is reported once, for the first shared room found.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	if len(candidate.Rooms) == 0 || !candidate.Start.Before(candidate.End) {
		return nil
	}

	candidateRooms := make(map[string]struct{}, len(candidate.Rooms))
	for _, room := range candidate.Rooms {
		candidateRooms[room] = struct{}{}
	}

	var conflicts []Conflict
	for _, other := range existing {
		if other.Cancelled {
			continue
		}
		if candidate.ID != "" && other.ID == candidate.ID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, other.Start, other.End) {
			continue
		}
		for _, room := range other.Rooms {
			if _, shared := candidateRooms[room]; shared {
				conflicts = append(conflicts, Conflict{WithBookingID: other.ID, Room: room})
				break
			}
		}
	}
	return conflicts
}
