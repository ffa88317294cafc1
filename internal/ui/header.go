package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fars/internal/fars"
)

// renderHeader renders the status line.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("fars", styles.Logo)}
	if m.config != nil && m.config.BaseURL != "" {
		parts = append(parts, bg.Render(truncateMiddle(hostOf(m.config.BaseURL), 32), styles.MutedText))
	}

	snap := m.snapshot
	switch {
	case !snap.HasData && snap.LastError != nil:
		parts = append(parts,
			bg.Render(classifyError(snap.LastError), styles.DangerText),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		)
	case !snap.HasData:
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		if snap.IsOffline() {
			parts = append(parts, bg.Render("● "+classifyError(snap.LastError), styles.DangerText))
		} else if snap.LastError != nil {
			parts = append(parts, bg.Render("● STALE", styles.WarningText))
		} else {
			parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
		}
		parts = append(parts,
			bg.Render("Bookings:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", len(snap.Bookings)), styles.Text),
			bg.Render("Window:", styles.MutedText)+bg.Space()+
				bg.Render(formatWindow(snap.Window.After, snap.Window.Before, snap.Window.Days), styles.Text),
		)
		if snap.Window.Days != m.days {
			parts = append(parts, bg.Render(fmt.Sprintf("→ %+dd", m.days), styles.WarningText))
		}
	}

	if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render(humanizeDuration(m.now().Sub(snap.LastUpdated))+" ago", styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// classifyError turns a poll error into a short header label.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	switch fars.ErrorKind(err) {
	case "config":
		return "NOT CONFIGURED"
	case "auth":
		return "LOGIN FAILED"
	case "authorization":
		return "ACCESS DENIED"
	case "response_shape":
		return "BAD RESPONSE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		followLabel := "Pause"
		if !m.logState.follow {
			followLabel = "Follow"
		}
		commands = []cmd{
			{"Space", followLabel},
			{"j/k", "Scroll"},
			{"b", "Bookings"},
			{"?", "More"},
		}
	case ViewBookables, ViewAccess:
		commands = []cmd{
			{"j/k", "Resource"},
			{"b", "Bookings"},
			{"r", "Slots"},
			{"a", "Access"},
			{"R", "Refresh"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"+/-", fmt.Sprintf("Days %+d", m.days)},
			{"r", "Resources"},
			{"a", "Access"},
			{"l", "Log"},
			{"R", "Refresh"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderBox draws a bordered pane with a title line. Content is clipped to
// the pane height.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	innerW := max(width-2, 0)
	innerH := max(height-2, 0)

	head := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true).
		Render(truncate(title, innerW))
	body := clipLines(content, max(innerH-1, 0))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(innerW).
		Height(innerH).
		Render(head + "\n" + body)
}

// bodyHeight is the space below the header and command bar.
func (m Model) bodyHeight() int {
	return max(m.height-2, 3)
}

// splitWidths returns the list and detail pane widths.
func (m Model) splitWidths() (int, int) {
	if m.width < 80 {
		return m.width, 0
	}
	left := m.width * 3 / 5
	return left, m.width - left
}
