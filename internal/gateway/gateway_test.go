package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"room-booking-backend/internal/booking"
	"room-booking-backend/internal/store"
)

// fakeSource is an in-memory append-only reservation collection.
type fakeSource struct {
	mu           sync.Mutex
	reservations []booking.Reservation
	fetchErr     error
	writeErr     error
	fetches      int
	writes       int
}

func (f *fakeSource) ReservationsFor(ctx context.Context, room, staff string) ([]booking.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []booking.Reservation
	for _, r := range f.reservations {
		if r.Room == room || (staff != "" && r.Staff == staff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) AppendReservation(ctx context.Context, c booking.Candidate) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return "", f.writeErr
	}
	id := fmt.Sprintf("r%d", len(f.reservations)+1)
	f.reservations = append(f.reservations, booking.Reservation{ID: id, Room: c.Room, Staff: c.Staff, Start: c.Start, End: c.End})
	return id, nil
}

type countingSignal struct{ n int }

func (c *countingSignal) Signal(ctx context.Context) { c.n++ }

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.Local)
}

var rooms = []string{"A", "B"}

func TestGateway_Scenario(t *testing.T) {
	src := &fakeSource{reservations: []booking.Reservation{
		{ID: "r1", Room: "A", Staff: "Ana", Start: at(9, 0), End: at(10, 0)},
	}}
	signal := &countingSignal{}
	g := New(src, rooms, signal, zap.NewNop())
	ctx := context.Background()

	out, err := g.Append(ctx, booking.Candidate{Room: "A", Staff: "Bruno", Start: at(9, 30), End: at(10, 30)})
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeRoomConflict, out.Decision.Outcome)
	assert.Empty(t, out.ID)

	out, err = g.Append(ctx, booking.Candidate{Room: "B", Staff: "Ana", Start: at(9, 30), End: at(10, 30)})
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeStaffConflict, out.Decision.Outcome)

	assert.Equal(t, 0, src.writes, "rejected attempts must not write")
	assert.Equal(t, 0, signal.n)

	out, err = g.Append(ctx, booking.Candidate{Room: "B", Staff: "Bruno", Start: at(9, 30), End: at(10, 30)})
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeAccepted, out.Decision.Outcome)
	assert.Equal(t, booking.MessageAccepted, out.Decision.Message)
	assert.Equal(t, "r2", out.ID)
	assert.Equal(t, 1, src.writes)
	assert.Equal(t, 1, signal.n)
}

func TestGateway_SecondIdenticalAppendIsRoomConflict(t *testing.T) {
	src := &fakeSource{}
	g := New(src, rooms, nil, nil)
	c := booking.Candidate{Room: "A", Staff: "Ana", Start: at(14, 0), End: at(15, 0)}

	first, err := g.Append(context.Background(), c)
	require.NoError(t, err)
	require.True(t, first.Decision.Accepted())

	second, err := g.Append(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeRoomConflict, second.Decision.Outcome)
	require.NotNil(t, second.Decision.Conflict)
	assert.Equal(t, first.ID, second.Decision.Conflict.ID)
	assert.Len(t, src.reservations, 1)
}

func TestGateway_FetchFailureDoesNotWrite(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("unavailable")}
	g := New(src, rooms, nil, nil)

	out, err := g.Append(context.Background(), booking.Candidate{Room: "A", Staff: "Ana", Start: at(9, 0), End: at(10, 0)})
	require.Error(t, err)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, OpFetch, storeErr.Op)
	assert.ErrorIs(t, err, src.fetchErr)
	assert.Equal(t, CommitOutcome{}, out)
	assert.Equal(t, 0, src.writes)
}

func TestGateway_WriteFailure(t *testing.T) {
	src := &fakeSource{writeErr: errors.New("permission denied")}
	signal := &countingSignal{}
	g := New(src, rooms, signal, nil)

	_, err := g.Append(context.Background(), booking.Candidate{Room: "A", Staff: "Ana", Start: at(9, 0), End: at(10, 0)})
	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, OpWrite, storeErr.Op)
	assert.Equal(t, 0, signal.n)
}

func TestGateway_ExclusionViolationIsRoomConflict(t *testing.T) {
	src := &fakeSource{writeErr: store.ErrRoomTaken}
	g := New(src, rooms, nil, nil)

	out, err := g.Append(context.Background(), booking.Candidate{Room: "A", Staff: "Ana", Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeRoomConflict, out.Decision.Outcome)
	assert.Nil(t, out.Decision.Conflict)
}

func TestGateway_StaffNameWhitespaceStillConflicts(t *testing.T) {
	src := &fakeSource{}
	g := New(src, rooms, nil, zap.NewNop())
	ctx := context.Background()

	out, err := g.Append(ctx, booking.Candidate{Room: "A", Staff: "Ana", Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)
	require.True(t, out.Decision.Accepted())

	out, err = g.Append(ctx, booking.Candidate{Room: "B", Staff: "Ana ", Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeStaffConflict, out.Decision.Outcome)
	assert.Equal(t, 1, src.writes)

	out, err = g.Append(ctx, booking.Candidate{Room: " B ", Staff: "  Bruno", Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)
	require.True(t, out.Decision.Accepted())
	assert.Equal(t, "B", src.reservations[1].Room)
	assert.Equal(t, "Bruno", src.reservations[1].Staff, "the stored name is trimmed")
}

func TestGateway_ValidationHappensBeforeStore(t *testing.T) {
	testCases := []struct {
		name      string
		candidate booking.Candidate
		field     string
	}{
		{"missing staff", booking.Candidate{Room: "A", Start: at(9, 0), End: at(10, 0)}, "staff"},
		{"missing slot", booking.Candidate{Room: "A", Staff: "Ana"}, "slot"},
		{"unknown room", booking.Candidate{Room: "Z", Staff: "Ana", Start: at(9, 0), End: at(10, 0)}, "room"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{}
			g := New(src, rooms, nil, nil)

			_, err := g.Append(context.Background(), tc.candidate)
			var verr *booking.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, 0, src.fetches)
			assert.Equal(t, 0, src.writes)
		})
	}
}
