// Package main provides the econ CLI entry point.
// This file implements the interactive console using bubbletea.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"economist/cmd/econ/config"
	"economist/cmd/econ/ui"
	"economist/internal/auth"
	"economist/internal/logging"
	"economist/internal/store"
)

// chatModel is the main model for the interactive console.
type chatModel struct {
	// UI components
	textinput textinput.Model
	viewport  viewport.Model
	styles    ui.Styles
	renderer  *glamour.TermRenderer
	banner    string

	// State
	history    []chatMessage
	width      int
	height     int
	ready      bool
	statusNote string

	cfg      config.Config
	settings config.Settings

	// Session state
	sessionID   string
	turnCount   int
	signedIn    bool
	sessionPath string

	// Backend
	st           *store.Store
	zl           *zap.Logger
	logger       *logging.SessionLogger
	loggerCtx    context.Context
	loggerCancel context.CancelFunc
	watcher      *auth.Watcher
}

type chatMessage struct {
	role    string // "user" or "console"
	content string
	time    time.Time
}

// Messages for tea updates
type (
	loggerReadyMsg    struct{}
	loggerFailedMsg   struct{ err error }
	sessionChangedMsg struct{ signedIn bool }
)

// newChatModel wires a console model from its dependencies. The store may
// be nil in degraded mode; the logger then stays pending forever and the
// console still works.
func newChatModel(cfg config.Config, settings config.Settings, st *store.Store, sessionPath string, zl *zap.Logger) chatModel {
	theme := ui.DetectTheme()
	if cfg.Theme == "dark" || settings.DarkMode {
		theme = ui.DarkTheme()
	}
	styles := ui.NewStyles(theme)

	ti := textinput.New()
	ti.Placeholder = "Type a command... (/help for commands, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2048
	ti.Width = 80
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput

	vp := viewport.New(80, 20)
	vp.SetContent("")

	renderer := newMarkdownRenderer(theme.IsDark, 80)

	banner, err := ui.ShadowText("econ", ui.WithFaceStyle(styles.Title))
	if err != nil {
		banner = "econ"
	}

	sessionID := newSessionID()

	ctx, cancel := context.WithCancel(context.Background())
	var logger *logging.SessionLogger
	if st != nil {
		logger = logging.New(sessionID, st, logging.WithZap(zl))
	}

	// The watcher keeps the linked-account indicator live; when it cannot
	// be created the indicator is simply static.
	watcher, _ := auth.WatchSession(sessionPath)

	return chatModel{
		textinput:    ti,
		viewport:     vp,
		styles:       styles,
		renderer:     renderer,
		banner:       banner,
		history:      []chatMessage{},
		cfg:          cfg,
		settings:     settings,
		sessionID:    sessionID,
		signedIn:     auth.SignedInAt(sessionPath),
		sessionPath:  sessionPath,
		st:           st,
		zl:           zl,
		logger:       logger,
		loggerCtx:    ctx,
		loggerCancel: cancel,
		watcher:      watcher,
	}
}

// newMarkdownRenderer builds the glamour renderer for the active theme.
// Light terminals pin the light style; auto style misreads them when
// COLORFGBG is absent.
func newMarkdownRenderer(dark bool, wrap int) *glamour.TermRenderer {
	if dark {
		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		return r
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("light"),
		glamour.WithWordWrap(wrap),
	)
	return r
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.initLogger(),
		m.waitForSessionChange(),
	)
}

// initLogger starts the session logger handshake without blocking the UI.
// The context is tied to the model's lifetime, so an abandoned
// initialization is cancelled rather than leaked.
func (m chatModel) initLogger() tea.Cmd {
	if m.logger == nil {
		return nil
	}
	logger := m.logger
	ctx := m.loggerCtx
	return func() tea.Msg {
		if err := logger.Init(ctx); err != nil {
			return loggerFailedMsg{err: err}
		}
		return loggerReadyMsg{}
	}
}

// waitForSessionChange blocks on the next session-file change. It re-arms
// itself after every delivery.
func (m chatModel) waitForSessionChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		signedIn, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg{signedIn: signedIn}
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m.quit()

		case tea.KeyEnter:
			return m.handleSubmit()
		}

		m.textinput, tiCmd = m.textinput.Update(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 5
		footerHeight := 2
		inputHeight := 3

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-headerHeight-footerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - headerHeight - footerHeight - inputHeight
		}

		m.textinput.Width = msg.Width - 4

		m.renderer = newMarkdownRenderer(m.styles.Theme.IsDark, msg.Width-8)

	case loggerReadyMsg:
		m.logger.SessionStart()

	case loggerFailedMsg:
		// Initialization failure is surfaced in the footer rather than
		// swallowed; the console keeps working without logging. The
		// underlying error stays readable via /status.
		m.statusNote = "interaction logging unavailable"

	case sessionChangedMsg:
		m.signedIn = msg.signedIn
		return m, m.waitForSessionChange()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// quit records session end and stops the program. The store and watcher
// are closed by the runner after the program exits.
func (m chatModel) quit() (tea.Model, tea.Cmd) {
	if m.logger != nil {
		m.logger.SessionEnd(m.turnCount)
	}
	m.loggerCancel()
	return m, tea.Quit
}

func (m chatModel) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	// Free-text turn: record it and answer with a hint. There is no
	// assistant backend behind the console.
	m.turnCount++
	m.pushUser(input)
	if m.logger != nil {
		m.logger.Turn(m.turnCount, len(input))
	}
	m.persistTurn("user", input)

	reply := "Noted. Type `/help` to see what the console can do."
	m.pushConsole(reply)
	m.persistTurn("console", reply)

	m.textinput.Reset()
	m.refreshViewport()
	return m, nil
}

func (m *chatModel) pushUser(content string) {
	m.history = append(m.history, chatMessage{role: "user", content: content, time: time.Now()})
}

func (m *chatModel) pushConsole(content string) {
	m.history = append(m.history, chatMessage{role: "console", content: content, time: time.Now()})
}

func (m *chatModel) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m chatModel) renderHistory() string {
	var sb strings.Builder
	for _, msg := range m.history {
		switch msg.role {
		case "user":
			sb.WriteString(m.styles.Prompt.Render("> "))
			sb.WriteString(m.styles.UserInput.Render(msg.content))
			sb.WriteString("\n")
		default:
			content := msg.content
			if m.renderer != nil {
				if rendered, err := m.renderer.Render(content); err == nil {
					content = strings.TrimRight(rendered, "\n")
				}
			}
			sb.WriteString(m.styles.ConsoleResponse.Render(content))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	chatView := m.styles.Content.Render(m.viewport.View())

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textinput.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		m.renderFooter(),
	)
}

func (m chatModel) renderHeader() string {
	version := m.styles.Badge.Render("v" + appVersion)

	var account string
	if m.signedIn {
		account = m.styles.Success.Render("● account linked")
	} else {
		account = m.styles.Muted.Render("○ signed out")
	}
	if m.settings.OverrideActive() {
		account += "  " + m.styles.Warning.Render("⚠ API key override")
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.banner,
		"  ",
		version,
		"  ",
		account,
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		m.styles.RenderDivider(m.width),
	)
}

func (m chatModel) renderFooter() string {
	parts := []string{
		fmt.Sprintf("session %s", shortID(m.sessionID)),
		"Enter to send · Ctrl+C to exit",
	}
	if m.statusNote != "" {
		parts = append(parts, m.statusNote)
	}
	return m.styles.Footer.Render(strings.Join(parts, "  ·  "))
}

func newSessionID() string {
	return uuid.NewString()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
