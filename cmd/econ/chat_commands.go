// Package main provides the econ CLI entry point.
// This file contains slash-command handling for the interactive console.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"economist/cmd/econ/config"
	"economist/internal/auth"
	"economist/internal/logging"
)

// resultKind discriminates command result payloads.
type resultKind int

const (
	resultMessage resultKind = iota
)

// resultSeverity grades a command result message.
type resultSeverity int

const (
	severityInfo resultSeverity = iota
	severityWarning
	severityError
)

// commandResult is the structured payload a slash command resolves with.
// Commands never propagate errors to the update loop; failures are folded
// into the message content.
type commandResult struct {
	kind     resultKind
	severity resultSeverity
	content  string
}

// handleCommand processes all /command inputs from the user.
func (m chatModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit", "/q":
		return m.quit()

	case "/clear":
		m.history = []chatMessage{}
		m.viewport.SetContent("")
		m.textinput.Reset()
		return m, nil

	case "/help":
		help := `## Available Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /clear | Clear the console history |
| /status | Show session and account status |
| /signout | Remove the saved session and sign out (aliases: /logout, /sign-out) |
| /newsession | Start a fresh console session |
| /sessions | List saved sessions |
| /history [id] | Show stored turns for the current or a saved session |
| /theme <light|dark> | Switch and persist the color theme |
| /quit, /exit, /q | Exit the console |

## Tips
- **Enter** to send
- **Ctrl+C** or **Esc** to exit
- Use **↑/↓** to scroll history
`
		m.pushConsole(help)
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	case "/signout", "/logout", "/sign-out":
		cleared := auth.ClearPath(m.sessionPath)
		if m.logger != nil {
			m.logger.SignOut(cleared.Outcome.String(), cleared.Outcome != auth.OutcomeFailed)
		}
		res := signOutResult(cleared, m.settings)
		m.pushConsole(res.content)
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	case "/status":
		m.pushConsole(m.statusReport())
		if m.logger != nil {
			m.logger.Command("/status", true)
		}
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	case "/newsession":
		return m.startNewSession()

	case "/sessions":
		m.pushConsole(m.listSessions())
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	case "/history":
		var prefix string
		if len(parts) > 1 {
			prefix = parts[1]
		}
		m.pushConsole(m.sessionHistory(prefix))
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	case "/theme":
		if len(parts) < 2 || (parts[1] != "light" && parts[1] != "dark") {
			m.pushConsole("Usage: `/theme <light|dark>`")
			m.textinput.Reset()
			m.refreshViewport()
			return m, nil
		}
		m.cfg.Theme = parts[1]
		if err := config.Save(m.cfg); err != nil {
			m.pushConsole(fmt.Sprintf("Error saving config: %v", err))
		} else {
			m.pushConsole(fmt.Sprintf("Theme set to '%s'. Restart econ to apply.", parts[1]))
		}
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil

	default:
		if m.logger != nil {
			m.logger.Command(cmd, false)
		}
		m.pushConsole(fmt.Sprintf("Unknown command `%s`. Type `/help` for the list.", cmd))
		m.textinput.Reset()
		m.refreshViewport()
		return m, nil
	}
}

// signOutResult folds a sign-out attempt into the single informational
// message the command resolves with. All three outcomes resolve as info;
// failure detail is embedded, not propagated.
func signOutResult(res auth.ClearResult, settings config.Settings) commandResult {
	var sb strings.Builder
	switch res.Outcome {
	case auth.OutcomeRemoved:
		sb.WriteString("Signed out. The saved session was removed; restart econ to link your account again.")
	case auth.OutcomeAlreadySignedOut:
		sb.WriteString("You are already signed out.")
	default:
		sb.WriteString(fmt.Sprintf("Could not remove the saved session: %v.", res.Err))
	}

	if settings.OverrideActive() {
		sb.WriteString("\n\nWarning: the ECONOMIST_API_KEY environment variable is set and bypasses session sign-in. Unset it to finish signing out.")
	}

	return commandResult{kind: resultMessage, severity: severityInfo, content: sb.String()}
}

func (m chatModel) statusReport() string {
	account := "signed out"
	if auth.SignedInAt(m.sessionPath) {
		account = "linked"
	}

	loggerState := "disabled"
	if m.logger != nil {
		loggerState = m.logger.Status().String()
		if err := m.logger.Err(); err != nil {
			loggerState += fmt.Sprintf(" (%v)", err)
		}
	}

	override := "not set"
	if m.settings.OverrideActive() {
		override = "set (bypasses session sign-in)"
	}

	report := fmt.Sprintf(`## Session Status

- **Account**: %s
- **Session**: %s (turn %d)
- **Interaction logging**: %s
- **ECONOMIST_API_KEY**: %s
- **Session file**: %s
- **Time**: %s
`, account, shortID(m.sessionID), m.turnCount, loggerState, override, m.sessionPath,
		time.Now().Format(time.RFC3339))

	return report + m.recentEventLines()
}

// recentEventLines renders the tail of the session's recorded events for
// the status report. Empty when the store is disabled or has nothing yet.
func (m chatModel) recentEventLines() string {
	if m.st == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	events, err := m.st.RecentEvents(ctx, m.sessionID, 5)
	if err != nil || len(events) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n### Recent Events\n\n")
	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("- %s `%s`", ev.Timestamp.Format("15:04:05"), ev.Kind))
		if ev.Name != "" {
			sb.WriteString(" " + ev.Name)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// startNewSession rotates the session ID and rebinds the interaction
// logger to it. The old logger's context is cancelled so an in-flight
// initialization cannot outlive its session; the logger itself is dropped
// by replacement.
func (m chatModel) startNewSession() (tea.Model, tea.Cmd) {
	if m.logger != nil {
		m.logger.SessionEnd(m.turnCount)
	}
	m.loggerCancel()

	m.sessionID = newSessionID()
	m.turnCount = 0
	m.history = []chatMessage{}
	m.statusNote = ""

	m.loggerCtx, m.loggerCancel = context.WithCancel(context.Background())
	if m.st != nil {
		m.logger = logging.New(m.sessionID, m.st, logging.WithZap(m.zl))
	}

	m.pushConsole(fmt.Sprintf("Started new session `%s`.", shortID(m.sessionID)))
	m.textinput.Reset()
	m.refreshViewport()
	return m, m.initLogger()
}
