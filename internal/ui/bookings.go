package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fars/internal/fars"
)

// bookingRow is one rendered line of the bookings list. Date headings carry
// index -1.
type bookingRow struct {
	heading string
	index   int
}

// bookingRows lays out bookings grouped by local date in start order.
func bookingRows(sorted []fars.Booking) []bookingRow {
	groups := fars.GroupByDate(sorted)
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	pos := make(map[int]int, len(sorted))
	for i, b := range sorted {
		pos[b.ID] = i
	}

	rows := make([]bookingRow, 0, len(sorted)+len(dates))
	for _, d := range dates {
		rows = append(rows, bookingRow{heading: formatDateHeading(d), index: -1})
		for _, b := range groups[d] {
			rows = append(rows, bookingRow{index: pos[b.ID]})
		}
	}
	return rows
}

func (m Model) sortedBookings() []fars.Booking {
	return sortBookings(m.snapshot.Bookings)
}

// selectedBooking returns the highlighted booking or nil.
func (m Model) selectedBooking() *fars.Booking {
	items := m.sortedBookings()
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return nil
	}
	return &items[m.selectedRow]
}

func (m *Model) clampSelection() {
	m.selectedRow = clamp(m.selectedRow, 0, len(m.snapshot.Bookings)-1)
	m.selectedBookable = clamp(m.selectedBookable, 0, len(m.snapshot.Bookables)-1)
}

func (m Model) handleBookingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Bookings)
	if count == 0 {
		return m, nil
	}
	page := max(m.bodyHeight()/2, 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow = min(m.selectedRow+1, count-1)
	case key.Matches(msg, m.keys.Up):
		m.selectedRow = max(m.selectedRow-1, 0)
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.HalfPageDown):
		m.selectedRow = min(m.selectedRow+page, count-1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.selectedRow = max(m.selectedRow-page, 0)
	}
	return m, nil
}

func (m Model) renderBookings() string {
	height := m.bodyHeight()
	listW, detailW := m.splitWidths()

	title := fmt.Sprintf("Bookings (%d)", len(m.snapshot.Bookings))
	list := m.renderBox(title, m.renderBookingList(listW-2, height-3), listW, height, true)
	if detailW == 0 {
		return list
	}
	detail := m.renderBox("Detail", m.renderBookingDetail(detailW-4), detailW, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m Model) renderBookingList(width, height int) string {
	styles := m.theme.Styles()
	sorted := m.sortedBookings()
	if len(sorted) == 0 {
		if !m.snapshot.HasData {
			return styles.MutedText.Render("Waiting for the first poll...")
		}
		return styles.MutedText.Render("No bookings in this window.")
	}

	rows := bookingRows(sorted)
	cursor := 0
	for i, r := range rows {
		if r.index == m.selectedRow {
			cursor = i
			break
		}
	}
	start, end := scrollWindow(len(rows), cursor, height)

	now := m.now()
	lines := make([]string, 0, end-start)
	for _, r := range rows[start:end] {
		if r.index < 0 {
			lines = append(lines, styles.AccentText.Bold(true).Render(r.heading))
			continue
		}
		b := sorted[r.index]
		phase := bookingPhase(b, now)
		line := fmt.Sprintf(" %-13s %-18s %s",
			formatSpan(b.ParsedStart(), b.ParsedEnd()),
			truncate(bookableName(m.snapshot.Bookables, b.Bookable), 18),
			fars.UserString(b.User),
		)
		line = truncate(line, width)
		if r.index == m.selectedRow {
			lines = append(lines, styles.Selected.Width(width).Render(line))
			continue
		}
		lines = append(lines, styles.PhaseStyle(phase).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBookingDetail(width int) string {
	styles := m.theme.Styles()
	b := m.selectedBooking()
	if b == nil {
		return styles.MutedText.Render("Nothing selected.")
	}
	label := styles.MutedText.Width(10)
	value := func(s string) string {
		if s == "" {
			return styles.FaintText.Render("-")
		}
		return styles.Text.Render(truncate(s, max(width-10, 1)))
	}

	phase := bookingPhase(*b, m.now())
	repeat := ""
	if b.RepeatGroup != nil {
		repeat = fmt.Sprintf("#%d", *b.RepeatGroup)
	}
	rows := []struct{ k, v string }{
		{"Booking", fmt.Sprintf("#%d", b.ID)},
		{"Resource", bookableName(m.snapshot.Bookables, b.Bookable)},
		{"User", fars.UserString(b.User)},
		{"Group", b.GroupName()},
		{"When", formatSpan(b.ParsedStart(), b.ParsedEnd())},
		{"Start", b.Start},
		{"End", b.End},
		{"Repeats", repeat},
	}

	var out strings.Builder
	out.WriteString(styles.PhaseStyle(phase).Bold(true).Render(strings.ToUpper(phase)))
	out.WriteString("\n\n")
	for _, r := range rows {
		out.WriteString(label.Render(r.k))
		out.WriteString(value(r.v))
		out.WriteString("\n")
	}
	if c := strings.TrimSpace(b.Comment); c != "" {
		out.WriteString("\n")
		out.WriteString(styles.Text.Width(max(width, 1)).Render(c))
	}
	return out.String()
}
