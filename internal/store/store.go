// Package store persists interaction events and console history in a
// local SQLite database. It is the storage handle the session logger and
// the chat model record into.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"economist/internal/logging"
)

// Store is the SQLite-backed interaction store.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Turn is one persisted console turn.
type Turn struct {
	SessionID string
	Number    int
	Role      string // "user" or "console"
	Content   string
	CreatedAt time.Time
}

// Open initializes the database at the given path, creating the parent
// directory and running migrations as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

// Ping verifies the store is reachable. The session logger uses this as
// its initialization handshake.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RecordEvent inserts one interaction event.
func (s *Store) RecordEvent(ctx context.Context, ev logging.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interaction_events (ts, session_id, kind, name, detail, success)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.Timestamp.UnixMilli(), ev.SessionID, string(ev.Kind), ev.Name, ev.Detail, ev.Success,
	)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit events for a session, newest first.
func (s *Store) RecentEvents(ctx context.Context, sessionID string, limit int) ([]logging.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, session_id, kind, name, detail, success
		 FROM interaction_events
		 WHERE session_id = ?
		 ORDER BY ts DESC, id DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []logging.Event
	for rows.Next() {
		var (
			ts   int64
			ev   logging.Event
			kind string
		)
		if err := rows.Scan(&ts, &ev.SessionID, &kind, &ev.Name, &ev.Detail, &ev.Success); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts)
		ev.Kind = logging.EventKind(kind)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// StoreTurn records a console turn. Duplicate (session, turn, role) rows
// are silently skipped so replays stay idempotent.
func (s *Store) StoreTurn(ctx context.Context, t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO session_turns (session_id, turn_number, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		t.SessionID, t.Number, t.Role, t.Content, created.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store turn: %w", err)
	}
	return nil
}

// History returns all turns for a session in order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, turn_number, role, content, created_at
		 FROM session_turns
		 WHERE session_id = ?
		 ORDER BY turn_number ASC, created_at ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			t       Turn
			created int64
		)
		if err := rows.Scan(&t.SessionID, &t.Number, &t.Role, &t.Content, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = time.UnixMilli(created)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Sessions lists distinct session IDs with recorded turns, newest first.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id
		 FROM session_turns
		 GROUP BY session_id
		 ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
