package gateway

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/store"
)

// ReservationSource is the part of the store the gateway needs.
type ReservationSource interface {
	ReservationsFor(ctx context.Context, room, staff string) ([]booking.Reservation, error)
	AppendReservation(ctx context.Context, c booking.Candidate) (string, error)
}

// ChangeSignal is told about every committed reservation so live views refresh early.
type ChangeSignal interface {
	Signal(ctx context.Context)
}

// CommitOutcome is the result of an append attempt that reached a decision.
type CommitOutcome struct {
	Decision booking.Decision
	ID       string // set only when the reservation was written
}

// Gateway checks candidates against the freshest store state and writes accepted ones.
//
// The fetch, check and write steps are strictly ordered within one call, but
// nothing prevents another client from writing between our fetch and our write.
// Unless the database enforces room exclusion, two concurrent attempts can both
// pass the check; the extra reservation then shows up through the live feed.
type Gateway struct {
	source ReservationSource
	rooms  map[string]bool
	signal ChangeSignal
	now    func() time.Time
	logger *zap.Logger
}

// New creates a gateway for the given room labels. signal may be nil.
func New(source ReservationSource, rooms []string, signal ChangeSignal, logger *zap.Logger) *Gateway {
	known := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		known[r] = true
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		source: source,
		rooms:  known,
		signal: signal,
		now:    time.Now,
		logger: logger,
	}
}

// Append validates the candidate, checks it against a freshly fetched snapshot and,
// when accepted, writes it. Validation problems are returned as *booking.ValidationError
// and store failures as *StoreError; conflicts are reported in the outcome.
func (g *Gateway) Append(ctx context.Context, c booking.Candidate) (CommitOutcome, error) {
	c = c.Normalize()
	if err := c.Validate(); err != nil {
		return CommitOutcome{}, err
	}
	if !g.rooms[c.Room] {
		return CommitOutcome{}, &booking.ValidationError{Field: "room", Message: booking.MessageUnknownRoom}
	}

	existing, err := g.source.ReservationsFor(ctx, c.Room, c.Staff)
	if err != nil {
		g.logger.Warn("cannot verify reservation, refusing to write",
			zap.String("room", c.Room), zap.String("staff", c.Staff), zap.Error(err))
		return CommitOutcome{}, &StoreError{Op: OpFetch, Err: err}
	}

	snap := booking.NewSnapshot(existing, g.now())
	decision := booking.Check(snap, c)
	if !decision.Accepted() {
		g.logger.Info("reservation rejected",
			zap.String("room", c.Room),
			zap.String("staff", c.Staff),
			zap.Time("start", c.Start),
			zap.String("outcome", string(decision.Outcome)))
		return CommitOutcome{Decision: decision}, nil
	}

	id, err := g.source.AppendReservation(ctx, c)
	if errors.Is(err, store.ErrRoomTaken) {
		g.logger.Info("reservation lost the race for its room", zap.String("room", c.Room), zap.Time("start", c.Start))
		return CommitOutcome{Decision: booking.RejectRoom(nil)}, nil
	}
	if err != nil {
		g.logger.Error("failed to write reservation", zap.String("room", c.Room), zap.Error(err))
		return CommitOutcome{}, &StoreError{Op: OpWrite, Err: err}
	}

	g.logger.Info("reservation created",
		zap.String("id", id),
		zap.String("room", c.Room),
		zap.String("staff", c.Staff),
		zap.Time("start", c.Start),
		zap.Time("end", c.End))

	if g.signal != nil {
		g.signal.Signal(ctx)
	}
	return CommitOutcome{Decision: decision, ID: id}, nil
}
