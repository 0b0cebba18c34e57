package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"room-booking-backend/internal/booking"
)

// mockSource returns whatever was configured last.
type mockSource struct {
	mu           sync.Mutex
	reservations []booking.Reservation
	err          error
	calls        int
}

func (m *mockSource) ListReservations(ctx context.Context) ([]booking.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]booking.Reservation(nil), m.reservations...), nil
}

func (m *mockSource) set(rs []booking.Reservation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations, m.err = rs, err
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockBroadcaster records publishes and lets tests trigger incoming messages.
type mockBroadcaster struct {
	published chan struct{}
	incoming  chan struct{}
}

func (m *mockBroadcaster) Publish(ctx context.Context) error {
	m.published <- struct{}{}
	return nil
}

func (m *mockBroadcaster) Listen(ctx context.Context, onMessage func()) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.incoming:
			onMessage()
		}
	}
}

// flakyBroadcaster fails the first few Listen calls, then behaves like mockBroadcaster.
type flakyBroadcaster struct {
	mockBroadcaster
	mu       sync.Mutex
	failures int
	attempts int
}

func (b *flakyBroadcaster) Listen(ctx context.Context, onMessage func()) error {
	b.mu.Lock()
	b.attempts++
	fail := b.attempts <= b.failures
	b.mu.Unlock()
	if fail {
		return errors.New("connection refused")
	}
	return b.mockBroadcaster.Listen(ctx, onMessage)
}

func (b *flakyBroadcaster) attemptCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

func reservation(id, room string) booking.Reservation {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return booking.Reservation{ID: id, Room: room, Staff: "Ana", Start: start, End: start.Add(time.Hour)}
}

func TestFeed_SubscribeReceivesCurrentStateThenChanges(t *testing.T) {
	src := &mockSource{reservations: []booking.Reservation{reservation("1", "A")}}
	f := New(src, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, f.Refresh(ctx))

	var received []booking.Snapshot
	unsubscribe := f.Subscribe(func(s booking.Snapshot) { received = append(received, s) })
	require.Len(t, received, 1, "subscriber gets the current state immediately")
	assert.Len(t, received[0].Reservations, 1)

	// Unchanged data is not redelivered.
	require.NoError(t, f.Refresh(ctx))
	assert.Len(t, received, 1)

	src.set([]booking.Reservation{reservation("1", "A"), reservation("2", "B")}, nil)
	require.NoError(t, f.Refresh(ctx))
	require.Len(t, received, 2)
	assert.Len(t, received[1].Reservations, 2)

	unsubscribe()
	unsubscribe()

	src.set([]booking.Reservation{reservation("3", "C")}, nil)
	require.NoError(t, f.Refresh(ctx))
	assert.Len(t, received, 2, "no deliveries after unsubscribe")
}

func TestFeed_SubscribeBeforeFirstFetch(t *testing.T) {
	src := &mockSource{}
	f := New(src, time.Minute, nil, nil)

	calls := 0
	f.Subscribe(func(s booking.Snapshot) { calls++ })
	assert.Equal(t, 0, calls, "nothing to deliver before the first successful fetch")

	require.NoError(t, f.Refresh(context.Background()))
	assert.Equal(t, 1, calls, "the first successful fetch is always delivered, even when empty")
}

func TestFeed_FailureKeepsLastKnownGood(t *testing.T) {
	src := &mockSource{reservations: []booking.Reservation{reservation("1", "A")}}
	f := New(src, time.Minute, nil, nil)
	ctx := context.Background()
	require.NoError(t, f.Refresh(ctx))

	calls := 0
	f.Subscribe(func(s booking.Snapshot) { calls++ })
	require.Equal(t, 1, calls)

	src.set(nil, errors.New("store unavailable"))
	assert.Error(t, f.Refresh(ctx))
	assert.Equal(t, 1, calls, "a failed refresh must not look like an empty store")

	snap, ok := f.Latest()
	require.True(t, ok)
	require.Len(t, snap.Reservations, 1)
	assert.Equal(t, "1", snap.Reservations[0].ID)

	src.set([]booking.Reservation{reservation("1", "A"), reservation("2", "A")}, nil)
	require.NoError(t, f.Refresh(ctx))
	assert.Equal(t, 2, calls, "delivery resumes once the store recovers")
}

func TestFeed_RunRefreshesOnSignal(t *testing.T) {
	src := &mockSource{}
	b := &mockBroadcaster{published: make(chan struct{}, 1), incoming: make(chan struct{})}
	f := New(src, time.Hour, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan booking.Snapshot, 10)
	f.Subscribe(func(s booking.Snapshot) { updates <- s })

	done := make(chan struct{})
	go func() {
		f.Run(ctx)
		close(done)
	}()

	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the initial refresh")
	}

	src.set([]booking.Reservation{reservation("1", "A")}, nil)
	f.Signal(ctx)

	select {
	case <-b.published:
	case <-time.After(time.Second):
		t.Fatal("signal should be broadcast to other instances")
	}
	select {
	case s := <-updates:
		assert.Len(t, s.Reservations, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the signalled refresh")
	}

	// A change announced by another instance also triggers a refresh.
	src.set([]booking.Reservation{reservation("1", "A"), reservation("2", "B")}, nil)
	b.incoming <- struct{}{}
	select {
	case s := <-updates:
		assert.Len(t, s.Reservations, 2)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the broadcast refresh")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.GreaterOrEqual(t, src.callCount(), 3)
}

func TestFeed_RunRetriesListener(t *testing.T) {
	src := &mockSource{}
	b := &flakyBroadcaster{
		mockBroadcaster: mockBroadcaster{published: make(chan struct{}, 1), incoming: make(chan struct{})},
		failures:        2,
	}
	f := New(src, time.Hour, b, nil)
	f.listenRetryMin = time.Millisecond
	f.listenRetryMax = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	require.Eventually(t, func() bool { return b.attemptCount() == 3 }, time.Second, time.Millisecond)

	src.set([]booking.Reservation{reservation("1", "A")}, nil)
	select {
	case b.incoming <- struct{}{}:
	case <-time.After(time.Second):
		t.Fatal("listener was not re-attached")
	}

	assert.Eventually(t, func() bool {
		snap, ok := f.Latest()
		return ok && len(snap.Reservations) == 1
	}, time.Second, time.Millisecond)
}
