package logging

import (
	"strconv"
	"time"
)

// EventKind classifies interaction events.
type EventKind string

const (
	EventSessionStart EventKind = "session_start"
	EventSessionEnd   EventKind = "session_end"
	EventTurn         EventKind = "turn"
	EventCommand      EventKind = "command"
	EventSignOut      EventKind = "sign_out"
)

// Event is one recorded interaction.
type Event struct {
	Timestamp time.Time
	SessionID string
	Kind      EventKind
	Name      string // command name, turn number, sign-out outcome
	Detail    string
	Success   bool
}

// SessionStart records the beginning of a console session.
func (l *SessionLogger) SessionStart() {
	l.LogEvent(Event{Kind: EventSessionStart, Success: true})
}

// SessionEnd records the end of a console session.
func (l *SessionLogger) SessionEnd(turns int) {
	l.LogEvent(Event{Kind: EventSessionEnd, Name: strconv.Itoa(turns), Detail: "turns", Success: true})
}

// Turn records a free-text console turn.
func (l *SessionLogger) Turn(number int, inputLen int) {
	l.LogEvent(Event{Kind: EventTurn, Name: strconv.Itoa(number), Detail: strconv.Itoa(inputLen), Success: true})
}

// Command records a slash-command invocation.
func (l *SessionLogger) Command(name string, success bool) {
	l.LogEvent(Event{Kind: EventCommand, Name: name, Success: success})
}

// SignOut records a sign-out attempt and its outcome.
func (l *SessionLogger) SignOut(outcome string, success bool) {
	l.LogEvent(Event{Kind: EventSignOut, Name: outcome, Success: success})
}
