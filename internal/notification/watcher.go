package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"room-booking-backend/internal/availability"
	"room-booking-backend/internal/booking"
)

// SnapshotFeed delivers reservation snapshots as they change.
type SnapshotFeed interface {
	Subscribe(onChange func(booking.Snapshot)) (unsubscribe func())
}

// Dispatcher queues notifications for a freed room.
type Dispatcher interface {
	Dispatch(ctx context.Context, room string)
}

// Watcher projects every snapshot, and every tick in between, and dispatches
// the rooms that went from busy to free.
type Watcher struct {
	feed       SnapshotFeed
	labels     []string
	tick       time.Duration
	dispatcher Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

// NewWatcher creates a watcher over the given rooms.
func NewWatcher(feed SnapshotFeed, labels []string, tick time.Duration, dispatcher Dispatcher, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		feed:       feed,
		labels:     labels,
		tick:       tick,
		dispatcher: dispatcher,
		now:        time.Now,
		logger:     logger,
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	updates := make(chan booking.Snapshot, 1)
	unsubscribe := w.feed.Subscribe(func(s booking.Snapshot) {
		// Only the newest snapshot matters.
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer unsubscribe()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	var (
		snap    booking.Snapshot
		hasSnap bool
		prev    availability.View
	)
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-updates:
			snap, hasSnap = s, true
		case <-ticker.C:
			if !hasSnap {
				continue
			}
		}

		view := availability.Project(snap, w.now(), w.labels)
		if prev != nil {
			for _, room := range availability.FreedRooms(prev, view) {
				w.logger.Debug("room became free", zap.String("room", room))
				w.dispatcher.Dispatch(ctx, room)
			}
		}
		prev = view
	}
}
