package booking

import (
	"sort"
	"strings"
	"time"
)

// Reservation is an immutable booking of a room by a staff member.
type Reservation struct {
	ID    string    `json:"id"`
	Room  string    `json:"room"`
	Staff string    `json:"staff"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Covers reports whether the reservation is in progress at t.
func (r Reservation) Covers(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Candidate is a reservation attempt that has not been committed yet.
type Candidate struct {
	Room  string
	Staff string
	Start time.Time
	End   time.Time
}

// Normalize returns the candidate with surrounding whitespace removed from
// the room and staff names, so they compare equal to the stored ones.
func (c Candidate) Normalize() Candidate {
	c.Room = strings.TrimSpace(c.Room)
	c.Staff = strings.TrimSpace(c.Staff)
	return c
}

// Snapshot is the set of reservations known at one point in time.
// It is produced once per feed update and must not be mutated by consumers.
type Snapshot struct {
	Reservations []Reservation
	TakenAt      time.Time
}

// NewSnapshot copies the reservations into a snapshot ordered by start time.
func NewSnapshot(reservations []Reservation, takenAt time.Time) Snapshot {
	rs := make([]Reservation, len(reservations))
	copy(rs, reservations)
	SortByStart(rs)
	return Snapshot{Reservations: rs, TakenAt: takenAt}
}

// ForRoom returns the reservations of the given room.
func (s Snapshot) ForRoom(room string) []Reservation {
	var out []Reservation
	for _, r := range s.Reservations {
		if r.Room == room {
			out = append(out, r)
		}
	}
	return out
}

// ForStaff returns the reservations held by the given staff member in any room.
// An empty name never matches.
func (s Snapshot) ForStaff(staff string) []Reservation {
	if staff == "" {
		return nil
	}
	var out []Reservation
	for _, r := range s.Reservations {
		if r.Staff == staff {
			out = append(out, r)
		}
	}
	return out
}

// Equal reports whether both snapshots hold the same reservations, ignoring TakenAt.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.Reservations) != len(other.Reservations) {
		return false
	}
	for i := range s.Reservations {
		a, b := s.Reservations[i], other.Reservations[i]
		if a.ID != b.ID || a.Room != b.Room || a.Staff != b.Staff ||
			!a.Start.Equal(b.Start) || !a.End.Equal(b.End) {
			return false
		}
	}
	return true
}

// SortByStart orders reservations by start time, then by ID for a stable order.
func SortByStart(rs []Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if !rs[i].Start.Equal(rs[j].Start) {
			return rs[i].Start.Before(rs[j].Start)
		}
		return rs[i].ID < rs[j].ID
	})
}
