package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fars/internal/fars"
)

const bookableFetchTimeout = 10 * time.Second

type timeslotsMsg struct {
	bookable string
	slots    []fars.Timeslot
	err      error
}

type gkeysMsg struct {
	bookable string
	keys     []fars.GKey
	err      error
}

func (m Model) selectedBookableKey() string {
	if m.selectedBookable < 0 || m.selectedBookable >= len(m.snapshot.Bookables) {
		return ""
	}
	return bookableKey(m.snapshot.Bookables[m.selectedBookable])
}

// ensureBookableData starts a fetch for the selected bookable when the
// current view shows per-bookable data that is not loaded yet.
func (m *Model) ensureBookableData() tea.Cmd {
	if m.client == nil {
		return nil
	}
	id := m.selectedBookableKey()
	if id == "" {
		return nil
	}
	switch m.currentView {
	case ViewBookables:
		if m.slots.bookable == id && (m.slots.loading || m.slots.items != nil || m.slots.err != nil) {
			return nil
		}
		m.slots = remoteList[fars.Timeslot]{bookable: id, loading: true}
		return fetchTimeslotsCmd(m.ctx, m.client, id)
	case ViewAccess:
		if m.access.bookable == id && (m.access.loading || m.access.items != nil || m.access.err != nil) {
			return nil
		}
		m.access = remoteList[fars.GKey]{bookable: id, loading: true}
		return fetchGKeysCmd(m.ctx, m.client, id)
	}
	return nil
}

func fetchTimeslotsCmd(parent context.Context, client fars.BookingFetcher, bookable string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, bookableFetchTimeout)
		defer cancel()
		res, err := client.Timeslots(ctx, bookable)
		if err != nil {
			return timeslotsMsg{bookable: bookable, err: err}
		}
		slots := res.Result
		if slots == nil {
			slots = []fars.Timeslot{}
		}
		return timeslotsMsg{bookable: bookable, slots: slots}
	}
}

func fetchGKeysCmd(parent context.Context, client fars.BookingFetcher, bookable string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, bookableFetchTimeout)
		defer cancel()
		keys, err := client.GKeys(ctx, bookable)
		if err != nil {
			return gkeysMsg{bookable: bookable, err: err}
		}
		if keys == nil {
			keys = []fars.GKey{}
		}
		return gkeysMsg{bookable: bookable, keys: keys}
	}
}

func (m Model) handleBookableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Bookables)
	if count == 0 {
		return m, nil
	}
	prev := m.selectedBookable
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedBookable = min(m.selectedBookable+1, count-1)
	case key.Matches(msg, m.keys.Up):
		m.selectedBookable = max(m.selectedBookable-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.selectedBookable = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedBookable = count - 1
	}
	if m.selectedBookable == prev {
		return m, nil
	}
	cmd := m.ensureBookableData()
	return m, cmd
}

func (m Model) renderBookables() string {
	return m.renderBookablePanes("Time slots", m.renderTimeslots)
}

func (m Model) renderAccess() string {
	return m.renderBookablePanes("Key access", m.renderGKeys)
}

func (m Model) renderBookablePanes(detailTitle string, detail func(width int) string) string {
	height := m.bodyHeight()
	listW, detailW := m.splitWidths()
	if detailW == 0 {
		return m.renderBox(detailTitle, detail(listW-4), listW, height, true)
	}
	// The resource list is the narrow side here.
	listW, detailW = detailW, listW

	title := fmt.Sprintf("Resources (%d)", len(m.snapshot.Bookables))
	list := m.renderBox(title, m.renderBookableList(listW-2, height-3), listW, height, false)
	if id := m.selectedBookableKey(); id != "" {
		detailTitle += " · " + id
	}
	pane := m.renderBox(detailTitle, detail(detailW-4), detailW, height, true)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

func (m Model) renderBookableList(width, height int) string {
	styles := m.theme.Styles()
	items := m.snapshot.Bookables
	if len(items) == 0 {
		return styles.MutedText.Render("No resources.")
	}
	start, end := scrollWindow(len(items), m.selectedBookable, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		id := bookableKey(items[i])
		name := truncate(" "+items[i].Name, max(width-len(id)-2, 1))
		if i == m.selectedBookable {
			lines = append(lines, styles.Selected.Width(width).Render(name+"  "+id))
			continue
		}
		lines = append(lines, styles.Text.Render(name)+"  "+styles.FaintText.Render(id))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTimeslots(width int) string {
	styles := m.theme.Styles()
	if len(m.snapshot.Bookables) == 0 {
		return styles.MutedText.Render("No resources.")
	}
	b := m.snapshot.Bookables[m.selectedBookable]

	var out strings.Builder
	if d := strings.TrimSpace(b.Description); d != "" {
		out.WriteString(styles.Text.Width(max(width, 1)).Render(d))
		out.WriteString("\n\n")
	}
	out.WriteString(styles.MutedText.Render(fmt.Sprintf("Book ahead %d days · max %d hours", b.ForwardLimitDays, b.LengthLimitHours)))
	out.WriteString("\n\n")

	switch {
	case m.slots.loading:
		out.WriteString(styles.WarningText.Render("Loading time slots..."))
	case m.slots.err != nil:
		out.WriteString(styles.DangerText.Render(classifyError(m.slots.err) + ": " + truncate(m.slots.err.Error(), width)))
	case len(m.slots.items) == 0:
		out.WriteString(styles.FaintText.Render("No time slots."))
	default:
		for _, s := range m.slots.items {
			out.WriteString(styles.Text.Render(fmt.Sprintf("%-9s %s  →  %-9s %s",
				s.StartWeekday, shortClock(s.StartTime), s.EndWeekday, shortClock(s.EndTime))))
			out.WriteString("\n")
		}
	}
	return out.String()
}

func (m Model) renderGKeys(width int) string {
	styles := m.theme.Styles()
	if len(m.snapshot.Bookables) == 0 {
		return styles.MutedText.Render("No resources.")
	}
	switch {
	case m.access.loading:
		return styles.WarningText.Render("Loading key access...")
	case m.access.err != nil:
		return styles.DangerText.Render(classifyError(m.access.err) + ": " + truncate(m.access.err.Error(), width))
	case len(m.access.items) == 0:
		return styles.FaintText.Render("No key access records.")
	}

	now := m.now()
	var out strings.Builder
	for _, k := range m.access.items {
		phase := PhaseUpcoming
		switch {
		case !k.EndDate.After(now):
			phase = PhasePast
		case !k.StartDate.After(now):
			phase = PhaseActive
		}
		who := k.Username
		if k.GroupName != "" {
			who += " / " + k.GroupName
		}
		out.WriteString(styles.PhaseStyle(phase).Render(truncate(fmt.Sprintf("%-24s %s", who, formatSpan(k.StartDate, k.EndDate)), width)))
		out.WriteString("\n")
		detail := "  flags " + gkeyFlags(k)
		if k.Code != "" {
			detail += "  code " + k.Code
		}
		out.WriteString(styles.FaintText.Render(detail))
		out.WriteString("\n")
	}
	return out.String()
}

// shortClock trims HH:MM:SS to HH:MM.
func shortClock(v string) string {
	if len(v) == 8 && strings.HasSuffix(v, ":00") {
		return v[:5]
	}
	return v
}
