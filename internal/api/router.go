package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"room-booking-backend/internal/mw"
)

// RouterOptions configures the middleware in front of the handlers.
type RouterOptions struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	Logger          *zap.Logger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(logger))

	rateLimiter := mw.RateLimiter(mw.NewIPRateLimiter(rate.Limit(opts.RateLimitPerSec), opts.RateLimitBurst, 10*time.Minute))

	// Only static resources are cached. Staff names are cached by the directory,
	// which skips caching its fallback list.
	cacheStore := cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	caching := mw.Cache(cacheStore, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", h.GetRooms)
		api.GET("/rooms/:label/reservations", h.GetRoomReservations)
		api.GET("/reservations", h.GetReservations)
		api.POST("/reservations", h.PostReservation)
		api.GET("/slots", caching, h.GetSlots)
		api.GET("/staff", h.GetStaff)
		api.GET("/stream", h.Stream)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
