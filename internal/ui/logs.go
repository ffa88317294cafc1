package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fars/internal/logtail"
)

const (
	logRefreshInterval = 2 * time.Second
	logTailLimit       = 1000
)

// logState holds the log view state.
type logState struct {
	entries     []logtail.Entry
	err         error
	follow      bool
	lastRefresh time.Time
}

type logTailMsg struct {
	entries []logtail.Entry
	err     error
}

func (m *Model) initLogViewport() {
	m.logViewport = viewport.New(max(m.width-4, 1), max(m.bodyHeight()-3, 1))
}

func (m *Model) updateLogViewport() {
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.bodyHeight()-3, 1)
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// refreshLogs reads the log tail unless it was read very recently.
func (m *Model) refreshLogs() tea.Cmd {
	if m.config == nil {
		return nil
	}
	if time.Since(m.logState.lastRefresh) < logRefreshInterval {
		return nil
	}
	m.logState.lastRefresh = time.Now()
	return readLogCmd(m.config.LogPath())
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLimit)
		if err != nil {
			return logTailMsg{err: err}
		}
		return logTailMsg{entries: logtail.ParseAll(lines)}
	}
}

func (m *Model) handleLogTail(msg logTailMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.updateLogViewport()
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
		m.logState.follow = false
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.logState.follow = false
	}
	return m, nil
}

func (m Model) renderLogs() string {
	title := "Log"
	if m.config != nil {
		title += " · " + truncateMiddle(m.config.LogPath(), max(m.width-12, 10))
	}
	if !m.logState.follow {
		title += " (paused)"
	}
	return m.renderBox(title, m.logViewport.View(), m.width, m.bodyHeight(), true)
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	if m.logState.err != nil {
		return styles.DangerText.Render(m.logState.err.Error())
	}
	if len(m.logState.entries) == 0 {
		return styles.MutedText.Render("No log entries yet.")
	}
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, m.formatLogEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

func (m Model) formatLogEntry(e logtail.Entry, styles Styles) string {
	if e.Level == "" && e.Time == "" {
		return styles.Text.Render(e.Message)
	}
	var parts []string
	if ts := shortLogTime(e.Time); ts != "" {
		parts = append(parts, styles.FaintText.Render(ts))
	}
	parts = append(parts, m.levelStyle(e.Level, styles).Render(padRight(e.Level, 5)))
	if c := e.Value("component"); c != "" {
		parts = append(parts, styles.InfoText.Render("["+c+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		if a.Key == "component" {
			continue
		}
		parts = append(parts, styles.MutedText.Render(a.Key+"=")+styles.Text.Render(a.Value))
	}
	return strings.Join(parts, " ")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "ERROR":
		return styles.DangerText
	case "WARN":
		return styles.WarningText.Bold(true)
	case "DEBUG":
		return styles.FaintText
	default:
		return styles.SuccessText
	}
}

// shortLogTime reduces an RFC 3339 slog timestamp to HH:MM:SS.
func shortLogTime(v string) string {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.Local().Format("15:04:05")
	}
	return v
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
