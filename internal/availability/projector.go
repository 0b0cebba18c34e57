package availability

import (
	"sort"
	"time"

	"room-booking-backend/internal/booking"
)

// RoomView is the derived state of a single room.
type RoomView struct {
	FreeNow      bool                  `json:"isFreeNow"`
	Reservations []booking.Reservation `json:"reservations"`
}

// View maps room labels to their derived state.
type View map[string]RoomView

// Project derives the per-room view from a snapshot at the given instant.
// Reservations whose room is not among labels are ignored.
func Project(snap booking.Snapshot, now time.Time, labels []string) View {
	view := make(View, len(labels))
	for _, label := range labels {
		view[label] = RoomView{FreeNow: true, Reservations: []booking.Reservation{}}
	}

	for _, r := range snap.Reservations {
		rv, ok := view[r.Room]
		if !ok {
			continue
		}
		rv.Reservations = append(rv.Reservations, r)
		if r.Covers(now) {
			rv.FreeNow = false
		}
		view[r.Room] = rv
	}

	for label, rv := range view {
		booking.SortByStart(rv.Reservations)
		view[label] = rv
	}
	return view
}

// FreedRooms returns, in label order, the rooms that were busy in prev and are free in next.
func FreedRooms(prev, next View) []string {
	var freed []string
	for label, now := range next {
		before, ok := prev[label]
		if ok && !before.FreeNow && now.FreeNow {
			freed = append(freed, label)
		}
	}
	sort.Strings(freed)
	return freed
}

// NonEmpty returns a copy of the view without rooms that have no reservations.
func (v View) NonEmpty() View {
	out := make(View, len(v))
	for label, rv := range v {
		if len(rv.Reservations) > 0 {
			out[label] = rv
		}
	}
	return out
}
