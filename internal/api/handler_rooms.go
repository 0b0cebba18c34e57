package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/booking"
)

type roomResponse struct {
	Label            string  `json:"label"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	IsFreeNow        bool    `json:"isFreeNow"`
	ReservationCount int     `json:"reservationCount"`
}

type roomsResponse struct {
	Rooms     []roomResponse `json:"rooms"`
	Stale     bool           `json:"stale"`
	UpdatedAt *time.Time     `json:"updatedAt"`
}

type roomReservations struct {
	Label        string                `json:"label"`
	IsFreeNow    bool                  `json:"isFreeNow"`
	Reservations []booking.Reservation `json:"reservations"`
}

type reservationsResponse struct {
	Rooms     []roomReservations `json:"rooms"`
	Stale     bool               `json:"stale"`
	UpdatedAt *time.Time         `json:"updatedAt"`
}

func updatedAt(snap booking.Snapshot) *time.Time {
	if snap.TakenAt.IsZero() {
		return nil
	}
	t := snap.TakenAt
	return &t
}

// GetRooms returns the floor plan with live availability.
func (h *Handler) GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.roomsPayload())
}

func (h *Handler) roomsPayload() roomsResponse {
	snap, stale := h.snapshot()
	view := availability.Project(snap, h.now(), h.labels)

	rooms := make([]roomResponse, 0, len(h.rooms))
	for _, r := range h.rooms {
		rv := view[r.Label]
		rooms = append(rooms, roomResponse{
			Label:            r.Label,
			X:                r.X,
			Y:                r.Y,
			Width:            r.Width,
			Height:           r.Height,
			IsFreeNow:        rv.FreeNow,
			ReservationCount: len(rv.Reservations),
		})
	}
	return roomsResponse{Rooms: rooms, Stale: stale, UpdatedAt: updatedAt(snap)}
}

// GetRoomReservations returns the reservations of one room, ordered by start.
func (h *Handler) GetRoomReservations(c *gin.Context) {
	label := c.Param("label")
	if !h.known[label] {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	snap, stale := h.snapshot()
	view := availability.Project(snap, h.now(), []string{label})
	rv := view[label]
	c.JSON(http.StatusOK, gin.H{
		"label":        label,
		"isFreeNow":    rv.FreeNow,
		"reservations": rv.Reservations,
		"stale":        stale,
	})
}

// GetReservations returns every room's reservations in floor plan order.
// With hide_empty=true rooms without reservations are left out.
func (h *Handler) GetReservations(c *gin.Context) {
	hideEmpty, _ := strconv.ParseBool(c.Query("hide_empty"))

	snap, stale := h.snapshot()
	view := availability.Project(snap, h.now(), h.labels)
	if hideEmpty {
		view = view.NonEmpty()
	}

	rooms := make([]roomReservations, 0, len(view))
	for _, label := range h.labels {
		rv, ok := view[label]
		if !ok {
			continue
		}
		rooms = append(rooms, roomReservations{Label: label, IsFreeNow: rv.FreeNow, Reservations: rv.Reservations})
	}
	c.JSON(http.StatusOK, reservationsResponse{Rooms: rooms, Stale: stale, UpdatedAt: updatedAt(snap)})
}
