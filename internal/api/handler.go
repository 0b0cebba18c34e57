package api

import (
	"context"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"room-booking-backend/config"
	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/gateway"
	"room-booking-backend/internal/model"
	"room-booking-backend/internal/parse"
)

// Booker appends reservations after checking them for conflicts.
type Booker interface {
	Append(ctx context.Context, c booking.Candidate) (gateway.CommitOutcome, error)
}

// SnapshotFeed exposes the live reservation snapshot.
type SnapshotFeed interface {
	Latest() (booking.Snapshot, bool)
	Subscribe(onChange func(booking.Snapshot)) (unsubscribe func())
}

// StaffLister lists the names a reservation can be made for.
type StaffLister interface {
	List(ctx context.Context) []string
}

// SubscriptionStore persists web push subscriptions.
type SubscriptionStore interface {
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	ReplaceSubscription(ctx context.Context, sub model.PushSubscription, rooms []string) error
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Deps collects what the handlers need.
type Deps struct {
	Rooms         []config.RoomConfig
	Slots         parse.SlotRules
	Booker        Booker
	Feed          SnapshotFeed
	Staff         StaffLister
	Subscriptions SubscriptionStore
	WebPush       *webpush.Options
	// Tick is how often the stream re-projects availability without new data.
	Tick time.Duration
	// StaleAfter marks the snapshot as stale once it is older than this.
	StaleAfter time.Duration
	Logger     *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	rooms      []config.RoomConfig
	labels     []string
	known      map[string]bool
	slots      parse.SlotRules
	booker     Booker
	feed       SnapshotFeed
	staff      StaffLister
	store      SubscriptionStore
	webpush    *webpush.Options
	tick       time.Duration
	staleAfter time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	labels := make([]string, len(d.Rooms))
	known := make(map[string]bool, len(d.Rooms))
	for i, r := range d.Rooms {
		labels[i] = r.Label
		known[r.Label] = true
	}
	tick := d.Tick
	if tick <= 0 {
		tick = 30 * time.Second
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		rooms:      d.Rooms,
		labels:     labels,
		known:      known,
		slots:      d.Slots,
		booker:     d.Booker,
		feed:       d.Feed,
		staff:      d.Staff,
		store:      d.Subscriptions,
		webpush:    d.WebPush,
		tick:       tick,
		staleAfter: d.StaleAfter,
		now:        time.Now,
		logger:     logger,
	}
}

// snapshot returns the latest snapshot, an empty one before the first
// successful fetch, and whether it should be treated as stale.
func (h *Handler) snapshot() (booking.Snapshot, bool) {
	snap, ok := h.feed.Latest()
	if !ok {
		return booking.Snapshot{}, true
	}
	stale := h.staleAfter > 0 && h.now().Sub(snap.TakenAt) > h.staleAfter
	return snap, stale
}
