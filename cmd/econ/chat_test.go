package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"economist/cmd/econ/config"
	"economist/internal/auth"
	"economist/internal/logging"
	"economist/internal/store"
)

func newTestModel(t *testing.T, settings config.Settings) chatModel {
	t.Helper()
	return newTestModelWithStore(t, settings, nil)
}

func newTestModelWithStore(t *testing.T, settings config.Settings, st *store.Store) chatModel {
	t.Helper()
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	m := newChatModel(config.DefaultConfig(), settings, st, sessionPath, nil)
	t.Cleanup(func() {
		if m.watcher != nil {
			m.watcher.Close()
		}
		m.loggerCancel()
	})
	return m
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func lastConsoleMessage(t *testing.T, m chatModel) string {
	t.Helper()
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].role == "console" {
			return m.history[i].content
		}
	}
	t.Fatal("no console message in history")
	return ""
}

func TestSignOutResultRemoved(t *testing.T) {
	res := signOutResult(auth.ClearResult{Outcome: auth.OutcomeRemoved}, config.Settings{})
	if res.kind != resultMessage || res.severity != severityInfo {
		t.Fatalf("expected info message result, got kind=%d severity=%d", res.kind, res.severity)
	}
	if !strings.Contains(res.content, "Signed out") || !strings.Contains(res.content, "restart econ") {
		t.Fatalf("unexpected removed message: %s", res.content)
	}
}

func TestSignOutResultAlreadySignedOut(t *testing.T) {
	res := signOutResult(auth.ClearResult{Outcome: auth.OutcomeAlreadySignedOut}, config.Settings{})
	if !strings.Contains(res.content, "already signed out") {
		t.Fatalf("unexpected message: %s", res.content)
	}
	if res.severity != severityInfo {
		t.Fatalf("absent session must resolve as info, got %d", res.severity)
	}
}

func TestSignOutResultFailureEmbedsError(t *testing.T) {
	res := signOutResult(auth.ClearResult{
		Outcome: auth.OutcomeFailed,
		Err:     errors.New("permission denied"),
	}, config.Settings{})
	if !strings.Contains(res.content, "permission denied") {
		t.Fatalf("expected underlying error in message, got: %s", res.content)
	}
	if res.severity != severityInfo {
		t.Fatalf("failure still resolves as info message, got %d", res.severity)
	}
}

func TestSignOutResultOverrideWarning(t *testing.T) {
	withOverride := config.Settings{APIKeyOverride: "sk-test"}

	for _, outcome := range []auth.ClearOutcome{auth.OutcomeRemoved, auth.OutcomeAlreadySignedOut} {
		res := signOutResult(auth.ClearResult{Outcome: outcome}, withOverride)
		if !strings.Contains(res.content, "ECONOMIST_API_KEY") {
			t.Fatalf("outcome %v: expected override warning, got: %s", outcome, res.content)
		}
	}

	res := signOutResult(auth.ClearResult{Outcome: auth.OutcomeRemoved}, config.Settings{})
	if strings.Contains(res.content, "ECONOMIST_API_KEY") {
		t.Fatalf("override unset: warning must not appear: %s", res.content)
	}
}

func TestHandleCommandSignOutRemovesSession(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	if err := os.WriteFile(m.sessionPath, []byte("{}"), 0600); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	model, _ := m.handleCommand("/signout")
	m = model.(chatModel)

	if auth.SignedInAt(m.sessionPath) {
		t.Fatal("session file should have been removed")
	}
	if got := lastConsoleMessage(t, m); !strings.Contains(got, "Signed out") {
		t.Fatalf("expected removed message, got: %s", got)
	}
}

func TestHandleCommandSignOutIsIdempotent(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	if err := os.WriteFile(m.sessionPath, []byte("{}"), 0600); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	model, _ := m.handleCommand("/logout")
	m = model.(chatModel)
	model, _ = m.handleCommand("/logout")
	m = model.(chatModel)

	if got := lastConsoleMessage(t, m); !strings.Contains(got, "already signed out") {
		t.Fatalf("second sign-out should report already signed out, got: %s", got)
	}
}

func TestHandleCommandSignOutAliases(t *testing.T) {
	for _, alias := range []string{"/signout", "/logout", "/sign-out"} {
		m := newTestModel(t, config.Settings{})
		model, _ := m.handleCommand(alias)
		m = model.(chatModel)
		if got := lastConsoleMessage(t, m); !strings.Contains(got, "already signed out") {
			t.Fatalf("%s: expected sign-out handling, got: %s", alias, got)
		}
	}
}

func TestHandleCommandUnknown(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	model, _ := m.handleCommand("/bogus")
	m = model.(chatModel)
	if got := lastConsoleMessage(t, m); !strings.Contains(got, "Unknown command") {
		t.Fatalf("expected unknown-command message, got: %s", got)
	}
}

func TestHandleCommandHelpListsSignOut(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	model, _ := m.handleCommand("/help")
	m = model.(chatModel)
	got := lastConsoleMessage(t, m)
	if !strings.Contains(got, "/signout") || !strings.Contains(got, "/logout") {
		t.Fatalf("help should list sign-out and aliases, got: %s", got)
	}
}

func TestStartNewSessionRotatesID(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	oldID := m.sessionID

	model, _ := m.handleCommand("/newsession")
	m = model.(chatModel)

	if m.sessionID == oldID {
		t.Fatal("expected a fresh session ID")
	}
	if m.turnCount != 0 {
		t.Fatalf("expected turn count reset, got %d", m.turnCount)
	}
}

func TestStatusReportShowsOverride(t *testing.T) {
	m := newTestModel(t, config.Settings{APIKeyOverride: "sk-test"})
	got := m.statusReport()
	if !strings.Contains(got, "bypasses session sign-in") {
		t.Fatalf("expected override notice in status, got: %s", got)
	}
}

func TestStatusReportListsRecentEvents(t *testing.T) {
	st := openTestStore(t)
	m := newTestModelWithStore(t, config.Settings{}, st)

	err := st.RecordEvent(context.Background(), logging.Event{
		Timestamp: time.Now(),
		SessionID: m.sessionID,
		Kind:      logging.EventCommand,
		Name:      "/help",
		Success:   true,
	})
	if err != nil {
		t.Fatalf("record event: %v", err)
	}

	got := m.statusReport()
	if !strings.Contains(got, "Recent Events") || !strings.Contains(got, "/help") {
		t.Fatalf("expected recorded events in status, got: %s", got)
	}
}

func TestStatusReportWithoutStoreOmitsEvents(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	if got := m.statusReport(); strings.Contains(got, "Recent Events") {
		t.Fatalf("no store: events section must be absent, got: %s", got)
	}
}

func TestSessionHistoryShowsStoredTurns(t *testing.T) {
	st := openTestStore(t)
	m := newTestModelWithStore(t, config.Settings{}, st)

	mustStoreTurn(t, st, m.sessionID, 1, "user", "what moved the markets today")
	mustStoreTurn(t, st, m.sessionID, 1, "console", "Noted. Type `/help` to see what the console can do.")

	got := m.sessionHistory("")
	if !strings.Contains(got, "what moved the markets today") || !strings.Contains(got, "Noted.") {
		t.Fatalf("expected both turns in history, got: %s", got)
	}
}

func TestSessionHistoryMatchesSavedSessionPrefix(t *testing.T) {
	st := openTestStore(t)
	m := newTestModelWithStore(t, config.Settings{}, st)

	const saved = "fedcba98-0000-4000-8000-000000000000"
	mustStoreTurn(t, st, saved, 1, "user", "an earlier question")

	if got := m.sessionHistory("fedcba98"); !strings.Contains(got, "an earlier question") {
		t.Fatalf("prefix should resolve the saved session, got: %s", got)
	}
	if got := m.sessionHistory("zzz"); !strings.Contains(got, "No saved session matches") {
		t.Fatalf("unmatched prefix should report no match, got: %s", got)
	}
}

func TestHandleCommandHistoryWithoutStore(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	model, _ := m.handleCommand("/history")
	m = model.(chatModel)
	if got := lastConsoleMessage(t, m); !strings.Contains(got, "unavailable") {
		t.Fatalf("expected disabled-store message, got: %s", got)
	}
}

func TestHandleCommandHelpListsHistory(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	model, _ := m.handleCommand("/help")
	m = model.(chatModel)
	if got := lastConsoleMessage(t, m); !strings.Contains(got, "/history") {
		t.Fatalf("help should list /history, got: %s", got)
	}
}

func TestHandleSubmitRecordsTurn(t *testing.T) {
	m := newTestModel(t, config.Settings{})
	m.textinput.SetValue("what is the policy rate")

	model, _ := m.handleSubmit()
	m = model.(chatModel)

	if m.turnCount != 1 {
		t.Fatalf("expected one turn, got %d", m.turnCount)
	}
	if got := lastConsoleMessage(t, m); !strings.Contains(got, "/help") {
		t.Fatalf("expected hint reply, got: %s", got)
	}
}

func mustStoreTurn(t *testing.T, st *store.Store, sessionID string, number int, role, content string) {
	t.Helper()
	err := st.StoreTurn(context.Background(), store.Turn{
		SessionID: sessionID,
		Number:    number,
		Role:      role,
		Content:   content,
	})
	if err != nil {
		t.Fatalf("store turn: %v", err)
	}
}

func TestNewMarkdownRendererBothThemes(t *testing.T) {
	for _, dark := range []bool{true, false} {
		if r := newMarkdownRenderer(dark, 80); r == nil {
			t.Fatalf("dark=%v: expected a renderer", dark)
		}
	}
}

func TestResizeKeepsLightRenderer(t *testing.T) {
	t.Setenv("COLORFGBG", "0;15")
	m := newTestModel(t, config.Settings{})

	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = model.(chatModel)

	want, err := newMarkdownRenderer(false, 92).Render("# Title")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := m.renderer.Render("# Title")
	if err != nil {
		t.Fatalf("render after resize: %v", err)
	}
	if got != want {
		t.Fatal("resize must keep the light-theme renderer")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdefghijkl"); got != "abcdefgh" {
		t.Fatalf("unexpected short ID: %s", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("short IDs pass through, got: %s", got)
	}
}
