package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/parse"
)

// GetSlots returns the bookable hours.
func (h *Handler) GetSlots(c *gin.Context) {
	hours := make([]string, len(h.slots.Hours))
	for i, hour := range h.slots.Hours {
		hours[i] = parse.FormatHour(hour)
	}
	timezone := "Local"
	if h.slots.Location != nil {
		timezone = h.slots.Location.String()
	}
	c.JSON(http.StatusOK, gin.H{
		"hours":       hours,
		"slotMinutes": int(h.slots.Length.Minutes()),
		"timezone":    timezone,
	})
}

// GetStaff returns the staff names a reservation can be made for.
func (h *Handler) GetStaff(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"staff": h.staff.List(c.Request.Context())})
}
