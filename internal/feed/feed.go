package feed

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"room-booking-backend/internal/booking"
)

// Source lists the full reservation collection.
type Source interface {
	ListReservations(ctx context.Context) ([]booking.Reservation, error)
}

// Broadcaster fans change notifications out to other instances sharing the store.
type Broadcaster interface {
	Publish(ctx context.Context) error
	Listen(ctx context.Context, onMessage func()) error
}

// Feed keeps the last good snapshot of the reservation store and pushes every
// change to its subscribers. Subscribers are called synchronously, one at a
// time, and must not call Subscribe from inside the callback.
type Feed struct {
	source      Source
	interval    time.Duration
	broadcaster Broadcaster
	now         func() time.Time
	logger      *zap.Logger
	kick        chan struct{}

	// Backoff between attempts to (re)attach the change listener.
	listenRetryMin time.Duration
	listenRetryMax time.Duration

	// deliverMu keeps deliveries ordered: nobody sees an older snapshot after a newer one.
	deliverMu sync.Mutex

	mu          sync.Mutex
	latest      booking.Snapshot
	hasLatest   bool
	subscribers map[uint64]func(booking.Snapshot)
	nextID      uint64
}

// New creates a feed polling source every interval. broadcaster may be nil.
func New(source Source, interval time.Duration, broadcaster Broadcaster, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		source:      source,
		interval:    interval,
		broadcaster: broadcaster,
		now:         time.Now,
		logger:      logger,
		kick:        make(chan struct{}, 1),
		subscribers: make(map[uint64]func(booking.Snapshot)),

		listenRetryMin: time.Second,
		listenRetryMax: 30 * time.Second,
	}
}

// Subscribe registers onChange. It is called right away with the current snapshot
// when one is known, then after every change. The returned function cancels the
// subscription and may be called any number of times.
func (f *Feed) Subscribe(onChange func(booking.Snapshot)) (unsubscribe func()) {
	f.deliverMu.Lock()
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subscribers[id] = onChange
	snap, ok := f.latest, f.hasLatest
	f.mu.Unlock()

	if ok {
		onChange(snap)
	}
	f.deliverMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
		})
	}
}

// Latest returns the last good snapshot, if any fetch has succeeded yet.
func (f *Feed) Latest() (booking.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.hasLatest
}

// Refresh fetches the store once and delivers the snapshot if it changed.
// On failure the previous snapshot is kept and nothing is delivered.
func (f *Feed) Refresh(ctx context.Context) error {
	reservations, err := f.source.ListReservations(ctx)
	if err != nil {
		f.logger.Warn("reservation feed refresh failed, keeping last known state", zap.Error(err))
		return err
	}
	snap := booking.NewSnapshot(reservations, f.now())

	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	changed := !f.hasLatest || !f.latest.Equal(snap)
	f.latest, f.hasLatest = snap, true
	var subs []func(booking.Snapshot)
	if changed {
		subs = make([]func(booking.Snapshot), 0, len(f.subscribers))
		for _, fn := range f.subscribers {
			subs = append(subs, fn)
		}
	}
	f.mu.Unlock()

	if !changed {
		return nil
	}
	f.logger.Debug("reservation snapshot changed",
		zap.Int("reservations", len(snap.Reservations)),
		zap.Int("subscribers", len(subs)))
	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

// Signal asks for an early refresh and tells other instances about the change.
func (f *Feed) Signal(ctx context.Context) {
	f.requestRefresh()
	if f.broadcaster == nil {
		return
	}
	if err := f.broadcaster.Publish(ctx); err != nil {
		f.logger.Warn("failed to broadcast reservation change", zap.Error(err))
	}
}

func (f *Feed) requestRefresh() {
	select {
	case f.kick <- struct{}{}:
	default:
	}
}

// Run polls the store until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	f.logger.Info("starting reservation feed", zap.Duration("interval", f.interval))

	if f.broadcaster != nil {
		go f.listen(ctx)
	}

	_ = f.Refresh(ctx)

	timer := time.NewTimer(f.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("reservation feed shutting down")
			return
		case <-timer.C:
			_ = f.Refresh(ctx)
			timer.Reset(f.interval)
		case <-f.kick:
			_ = f.Refresh(ctx)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(f.interval)
		}
	}
}

// listen keeps the change listener attached until ctx is cancelled, retrying
// with exponential backoff whenever it stops.
func (f *Feed) listen(ctx context.Context) {
	backoff := f.listenRetryMin
	for {
		started := time.Now()
		err := f.broadcaster.Listen(ctx, f.requestRefresh)
		if ctx.Err() != nil {
			return
		}
		if time.Since(started) > f.listenRetryMax {
			backoff = f.listenRetryMin
		}
		f.logger.Warn("reservation change listener stopped, retrying",
			zap.Duration("backoff", backoff), zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		// Changes announced while detached were missed.
		f.requestRefresh()

		backoff *= 2
		if backoff > f.listenRetryMax {
			backoff = f.listenRetryMax
		}
	}
}
