package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/gateway"
)

type postReservationRequest struct {
	Room  string `json:"room"`
	Staff string `json:"staff"`
	Date  string `json:"date"`
	Hour  string `json:"hour"`
}

// PostReservation books a room for one slot.
func (h *Handler) PostReservation(c *gin.Context) {
	var req postReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	start, end, err := h.slots.Slot(req.Date, req.Hour)
	if err != nil {
		h.writeError(c, err)
		return
	}

	outcome, err := h.booker.Append(c.Request.Context(), booking.Candidate{
		Room:  req.Room,
		Staff: req.Staff,
		Start: start,
		End:   end,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	d := outcome.Decision
	if !d.Accepted() {
		body := gin.H{"outcome": d.Outcome, "message": d.Message}
		if d.Conflict != nil {
			body["conflict"] = d.Conflict
		}
		c.JSON(http.StatusConflict, body)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      outcome.ID,
		"outcome": d.Outcome,
		"message": d.Message,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	var serr *gateway.StoreError
	if errors.As(err, &serr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": serr.Error()})
		return
	}
	h.logger.Error("unexpected reservation error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
