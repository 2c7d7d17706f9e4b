package store

import "fmt"

// Schema changes are append-only: each entry runs once, tracked by the
// user_version pragma.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS interaction_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ts         INTEGER NOT NULL,
		session_id TEXT    NOT NULL,
		kind       TEXT    NOT NULL,
		name       TEXT    NOT NULL DEFAULT '',
		detail     TEXT    NOT NULL DEFAULT '',
		success    INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_events_session ON interaction_events(session_id, ts);`,

	`CREATE TABLE IF NOT EXISTS session_turns (
		session_id  TEXT    NOT NULL,
		turn_number INTEGER NOT NULL,
		role        TEXT    NOT NULL,
		content     TEXT    NOT NULL,
		created_at  INTEGER NOT NULL,
		UNIQUE(session_id, turn_number, role)
	);
	CREATE INDEX IF NOT EXISTS idx_turns_session ON session_turns(session_id, turn_number);`,
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("bump schema version: %w", err)
		}
	}
	return nil
}
