package ui

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/five82/fars/internal/fars"
)

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if minutes := int(d.Minutes()) % 60; minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

// truncate cuts s to limit runes, ending with an ellipsis when shortened.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

// truncateMiddle keeps the start and end of s, favoring the end.
func truncateMiddle(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	keep := limit - 1
	head := keep / 3
	tail := keep - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}

// bookingPhase places a booking relative to now.
func bookingPhase(b fars.Booking, now time.Time) string {
	start, end := b.ParsedStart(), b.ParsedEnd()
	switch {
	case start.IsZero() || end.IsZero():
		return PhaseUnknown
	case !end.After(now):
		return PhasePast
	case !start.After(now):
		return PhaseActive
	default:
		return PhaseUpcoming
	}
}

// sortBookings orders bookings by start time, then id. Unparseable starts
// sort first.
func sortBookings(bookings []fars.Booking) []fars.Booking {
	out := make([]fars.Booking, len(bookings))
	copy(out, bookings)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ParsedStart(), out[j].ParsedStart()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// bookableKey is the identifier sent to the timeslot and gkey endpoints.
func bookableKey(b fars.Bookable) string {
	if b.IDStr != "" {
		return b.IDStr
	}
	return strconv.Itoa(b.ID)
}

func bookableName(bookables []fars.Bookable, id int) string {
	for _, b := range bookables {
		if b.ID == id {
			if b.Name != "" {
				return b.Name
			}
			return bookableKey(b)
		}
	}
	return "#" + strconv.Itoa(id)
}

func formatSpan(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "?"
	}
	start, end = start.Local(), end.Local()
	if sameDay(start, end) {
		return start.Format("15:04") + "–" + end.Format("15:04")
	}
	return start.Format("Jan 2 15:04") + " – " + end.Format("Jan 2 15:04")
}

func formatWindow(after, before time.Time, days int) string {
	if after.IsZero() || before.IsZero() {
		return "--"
	}
	return fmt.Sprintf("%s → %s (%+dd)", after.Local().Format("Jan 2"), before.Local().Format("Jan 2"), days)
}

func formatDateHeading(key string) string {
	if key == "" {
		return "Unknown date"
	}
	t, err := time.ParseInLocation("2006-01-02", key, time.Local)
	if err != nil {
		return key
	}
	return t.Format("Mon Jan 2")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

func gkeyFlags(k fars.GKey) string {
	var flags []string
	if k.UnlockDoor {
		flags = append(flags, "door")
	}
	if k.RestrictKeys {
		flags = append(flags, "restrict")
	}
	if k.DisableSaunaHeating {
		flags = append(flags, "no-sauna")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

// clipLines keeps at most n lines of s.
func clipLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

// scrollWindow returns the [start, end) slice of total lines to show so that
// cursor stays visible in height lines.
func scrollWindow(total, cursor, height int) (int, int) {
	if height <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
