// Package main provides the econ CLI entry point.
// This file contains session persistence glue for the console.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"economist/internal/store"
)

// persistTurn writes one console turn to the interaction store. Writes are
// best effort; a failed write never disturbs the UI.
func (m chatModel) persistTurn(role, content string) {
	if m.st == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = m.st.StoreTurn(ctx, store.Turn{
		SessionID: m.sessionID,
		Number:    m.turnCount,
		Role:      role,
		Content:   content,
	})
}

// listSessions renders the stored session list for the /sessions command.
func (m chatModel) listSessions() string {
	if m.st == nil {
		return "Session history is unavailable (interaction store disabled)."
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sessions, err := m.st.Sessions(ctx)
	if err != nil {
		return fmt.Sprintf("Could not list sessions: %v", err)
	}
	if len(sessions) == 0 {
		return "No saved sessions found."
	}

	var sb strings.Builder
	sb.WriteString("## Saved Sessions\n\n")
	for _, sess := range sessions {
		current := ""
		if sess == m.sessionID {
			current = " *(current)*"
		}
		sb.WriteString(fmt.Sprintf("- `%s`%s\n", shortID(sess), current))
	}
	sb.WriteString("\nUse `/history <id>` to view a session's turns.\n")
	return sb.String()
}

// sessionHistory renders the stored turns for a session. An empty prefix
// targets the current session; otherwise the prefix is matched against
// saved session IDs, so the short IDs from /sessions work as arguments.
func (m chatModel) sessionHistory(prefix string) string {
	if m.st == nil {
		return "Session history is unavailable (interaction store disabled)."
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	target := m.sessionID
	if prefix != "" {
		sessions, err := m.st.Sessions(ctx)
		if err != nil {
			return fmt.Sprintf("Could not list sessions: %v", err)
		}
		target = ""
		for _, sess := range sessions {
			if !strings.HasPrefix(sess, prefix) {
				continue
			}
			if target != "" {
				return fmt.Sprintf("Session ID `%s` is ambiguous; use more characters.", prefix)
			}
			target = sess
		}
		if target == "" {
			return fmt.Sprintf("No saved session matches `%s`.", prefix)
		}
	}

	turns, err := m.st.History(ctx, target)
	if err != nil {
		return fmt.Sprintf("Could not load history: %v", err)
	}
	if len(turns) == 0 {
		return fmt.Sprintf("No stored turns for session `%s`.", shortID(target))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Session `%s`\n\n", shortID(target)))
	for _, turn := range turns {
		if turn.Role == "user" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", turn.Content))
			continue
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
