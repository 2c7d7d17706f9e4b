// Package logging records interaction events for a console session.
// A SessionLogger is bound to one session ID and one storage handle; it is
// constructed cheaply and finishes its store handshake asynchronously so
// the UI never blocks on it.
package logging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// InteractionStore is the storage capability the logger records into.
type InteractionStore interface {
	Ping(ctx context.Context) error
	RecordEvent(ctx context.Context, ev Event) error
}

// Status describes the logger's initialization state. Initialization
// failure is observable here rather than swallowed; callers that only
// want best-effort logging can ignore it.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionLogger records interaction events for a single session. Events
// logged before initialization completes are dropped, so callers never
// need to gate on readiness.
type SessionLogger struct {
	sessionID string
	store     InteractionStore
	zl        *zap.Logger

	mu      sync.RWMutex
	status  Status
	initErr error
}

// Option configures a SessionLogger.
type Option func(*SessionLogger)

// WithZap attaches a zap logger for debug mirroring of recorded events.
func WithZap(zl *zap.Logger) Option {
	return func(l *SessionLogger) {
		if zl != nil {
			l.zl = zl
		}
	}
}

// New constructs a logger tagged with the process-wide session ID and the
// given storage handle. The logger is not usable until Init succeeds.
func New(sessionID string, store InteractionStore, opts ...Option) *SessionLogger {
	l := &SessionLogger{
		sessionID: sessionID,
		store:     store,
		zl:        zap.NewNop(),
		status:    StatusPending,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init performs the store handshake. It honors ctx cancellation: the
// caller ties ctx to the owning component's lifetime so an abandoned
// initialization cannot outlive it. Init transitions the logger to
// StatusReady or StatusFailed exactly once.
func (l *SessionLogger) Init(ctx context.Context) error {
	err := l.store.Ping(ctx)
	if err == nil {
		err = ctx.Err()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.status != StatusPending {
		return l.initErr
	}
	if err != nil {
		l.status = StatusFailed
		l.initErr = err
		l.zl.Warn("interaction logger initialization failed",
			zap.String("session", l.sessionID), zap.Error(err))
		return err
	}
	l.status = StatusReady
	l.zl.Debug("interaction logger ready", zap.String("session", l.sessionID))
	return nil
}

// Status reports the current initialization state.
func (l *SessionLogger) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Err returns the initialization error, if any.
func (l *SessionLogger) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initErr
}

// LogEvent records an event. It is a no-op unless the logger is ready;
// store write failures are mirrored to zap and otherwise dropped, since
// interaction logging is best effort by contract.
func (l *SessionLogger) LogEvent(ev Event) {
	if l.Status() != StatusReady {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.SessionID == "" {
		ev.SessionID = l.sessionID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.store.RecordEvent(ctx, ev); err != nil {
		l.zl.Warn("failed to record interaction event",
			zap.String("session", ev.SessionID),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
		return
	}
	l.zl.Debug("interaction event recorded",
		zap.String("session", ev.SessionID),
		zap.String("kind", string(ev.Kind)),
		zap.String("name", ev.Name))
}
