package logging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore is a scriptable InteractionStore for logger tests.
type fakeStore struct {
	mu        sync.Mutex
	pingErr   error
	pingDelay time.Duration
	recordErr error
	events    []Event
}

func (f *fakeStore) Ping(ctx context.Context) error {
	if f.pingDelay > 0 {
		select {
		case <-time.After(f.pingDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.pingErr != nil {
		return f.pingErr
	}
	return ctx.Err()
}

func (f *fakeStore) RecordEvent(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeStore) recorded() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func TestLoggerIsPendingUntilInitResolves(t *testing.T) {
	l := New("sess-1", &fakeStore{})
	assert.Equal(t, StatusPending, l.Status())

	require.NoError(t, l.Init(context.Background()))
	assert.Equal(t, StatusReady, l.Status())
	assert.NoError(t, l.Err())
}

func TestLoggerSurfacesInitFailure(t *testing.T) {
	handshakeErr := errors.New("store unavailable")
	l := New("sess-1", &fakeStore{pingErr: handshakeErr})

	err := l.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusFailed, l.Status())
	assert.ErrorIs(t, l.Err(), handshakeErr)
}

func TestLoggerInitHonorsCancellation(t *testing.T) {
	store := &fakeStore{pingDelay: time.Minute}
	l := New("sess-1", store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Init(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StatusFailed, l.Status())
	case <-time.After(5 * time.Second):
		t.Fatal("Init did not return after cancellation")
	}
}

func TestLogEventIsNoOpBeforeReady(t *testing.T) {
	store := &fakeStore{}
	l := New("sess-1", store)

	l.LogEvent(Event{Kind: EventTurn, Name: "1"})
	assert.Empty(t, store.recorded())

	require.NoError(t, l.Init(context.Background()))
	l.LogEvent(Event{Kind: EventTurn, Name: "2"})

	events := store.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "2", events[0].Name)
}

func TestLogEventTagsSessionAndTimestamp(t *testing.T) {
	store := &fakeStore{}
	l := New("sess-42", store)
	require.NoError(t, l.Init(context.Background()))

	l.Command("/signout", true)

	events := store.recorded()
	require.Len(t, events, 1)
	assert.Equal(t, "sess-42", events[0].SessionID)
	assert.Equal(t, EventCommand, events[0].Kind)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestLogEventDropsStoreFailures(t *testing.T) {
	store := &fakeStore{recordErr: errors.New("disk full")}
	l := New("sess-1", store)
	require.NoError(t, l.Init(context.Background()))

	// Must not panic or block; the failure is mirrored to zap only.
	l.LogEvent(Event{Kind: EventTurn, Name: "1"})
	assert.Empty(t, store.recorded())
}

func TestLoggerFailedInitStaysFailed(t *testing.T) {
	handshakeErr := errors.New("store unavailable")
	store := &fakeStore{pingErr: handshakeErr}
	l := New("sess-1", store)

	require.Error(t, l.Init(context.Background()))

	// A late second Init must not flip a settled logger back to ready.
	store.mu.Lock()
	store.pingErr = nil
	store.mu.Unlock()
	assert.ErrorIs(t, l.Init(context.Background()), handshakeErr)
	assert.Equal(t, StatusFailed, l.Status())
}

func TestLoggerMirrorsInitFailureToZap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	l := New("sess-1", &fakeStore{pingErr: errors.New("disk gone")}, WithZap(zap.New(core)))

	require.Error(t, l.Init(context.Background()))

	entries := logs.FilterMessage("interaction logger initialization failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sess-1", entries[0].ContextMap()["session"])
}

func TestLoggerMirrorsRecordFailureToZap(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &fakeStore{recordErr: errors.New("insert failed")}
	l := New("sess-1", store, WithZap(zap.New(core)))

	require.NoError(t, l.Init(context.Background()))
	l.LogEvent(Event{Kind: EventTurn, Name: "1"})

	entries := logs.FilterMessage("failed to record interaction event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, string(EventTurn), entries[0].ContextMap()["kind"])
}

func TestWithZapNilKeepsDefault(t *testing.T) {
	l := New("sess-1", &fakeStore{}, WithZap(nil))
	require.NoError(t, l.Init(context.Background()))
	assert.Equal(t, StatusReady, l.Status())
}
