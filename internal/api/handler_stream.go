package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"room-booking-backend/internal/booking"
)

// Stream pushes an "availability" event with the rooms payload whenever the
// snapshot changes, and on every tick so rooms free up as time passes.
func (h *Handler) Stream(c *gin.Context) {
	updates := make(chan booking.Snapshot, 1)
	unsubscribe := h.feed.Subscribe(func(s booking.Snapshot) {
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer unsubscribe()

	ticker := time.NewTicker(h.tick)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-updates:
		case <-ticker.C:
		}
		c.SSEvent("availability", h.roomsPayload())
		return true
	})
}
