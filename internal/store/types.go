package store

import (
	"errors"
	"strings"
	"time"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/model"
)

var (
	// ErrRoomTaken is returned by AppendReservation when the database itself
	// refuses an overlapping reservation for the same room.
	ErrRoomTaken = errors.New("room already reserved for an overlapping interval")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// toReservation converts a stored row into a domain reservation.
// Rows without both time bounds cannot take part in conflict checks and are skipped.
func toReservation(row model.Reservation) (booking.Reservation, bool) {
	if row.StartAt == nil || row.EndAt == nil {
		return booking.Reservation{}, false
	}
	var staff string
	if row.Staff != nil {
		staff = strings.TrimSpace(*row.Staff)
	}
	return booking.Reservation{
		ID:    row.ID,
		Room:  strings.TrimSpace(row.Room),
		Staff: staff,
		Start: *row.StartAt,
		End:   *row.EndAt,
	}, true
}

func toReservations(rows []model.Reservation) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		if r, ok := toReservation(row); ok {
			out = append(out, r)
		}
	}
	return out
}

func fromCandidate(id string, c booking.Candidate, now time.Time) model.Reservation {
	start := c.Start.UTC()
	end := c.End.UTC()
	row := model.Reservation{
		ID:        id,
		Room:      c.Room,
		StartAt:   &start,
		EndAt:     &end,
		CreatedAt: now,
	}
	if c.Staff != "" {
		staff := c.Staff
		row.Staff = &staff
	}
	return row
}
