package fars

import (
	"strings"
	"time"

	"github.com/five82/fars/internal/query"
)

// User is the booking owner as embedded in booking records.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BookingGroup names the group a booking was made for.
type BookingGroup struct {
	Name string `json:"name"`
}

// Booking mirrors one entry of /api/bookings. Start and End are kept in the
// server's format.
type Booking struct {
	ID           int           `json:"id"`
	User         User          `json:"user"`
	BookingGroup *BookingGroup `json:"booking_group"`
	Start        string        `json:"start"`
	End          string        `json:"end"`
	Comment      string        `json:"comment"`
	Bookable     int           `json:"bookable"`
	RepeatGroup  *int          `json:"repeatgroup"`
}

// ParsedStart returns Start as time.Time, or the zero time.
func (b Booking) ParsedStart() time.Time {
	return parseTime(b.Start)
}

// ParsedEnd returns End as time.Time, or the zero time.
func (b Booking) ParsedEnd() time.Time {
	return parseTime(b.End)
}

// GroupName returns the booking group name or "".
func (b Booking) GroupName() string {
	if b.BookingGroup == nil {
		return ""
	}
	return b.BookingGroup.Name
}

// Bookable mirrors one entry of /api/bookables.
type Bookable struct {
	ID               int    `json:"id"`
	IDStr            string `json:"id_str"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ForwardLimitDays int    `json:"forward_limit_days"`
	LengthLimitHours int    `json:"length_limit_hours"`
}

// Timeslot mirrors one entry of /api/timeslots. Times are HH:MM:SS.
type Timeslot struct {
	Bookable     int    `json:"bookable"`
	StartTime    string `json:"start_time"`
	StartWeekday string `json:"start_weekday"`
	EndTime      string `json:"end_time"`
	EndWeekday   string `json:"end_weekday"`
}

// Result is the normalized list response. Count equals len(Result) for bare
// array payloads.
type Result[T any] struct {
	Result    []T          `json:"result"`
	Count     int          `json:"count"`
	Next      string       `json:"next,omitempty"`
	Previous  string       `json:"previous,omitempty"`
	Paginated bool         `json:"paginated"`
	Query     query.Filter `json:"-"`
	URL       string       `json:"url"`
}

// UserString formats a user as "First Last (username)", dropping the parts
// that are empty.
func UserString(u User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" && u.Username != "" {
		return name + " (" + u.Username + ")"
	}
	return strings.TrimSpace(name + " " + u.Username)
}

// GroupByBookable buckets bookings by bookable id, keeping input order.
func GroupByBookable(bookings []Booking) map[int][]Booking {
	out := make(map[int][]Booking)
	for _, b := range bookings {
		out[b.Bookable] = append(out[b.Bookable], b)
	}
	return out
}

// GroupByDate buckets bookings by the local start date (YYYY-MM-DD).
// Bookings whose start cannot be parsed are grouped under "".
func GroupByDate(bookings []Booking) map[string][]Booking {
	out := make(map[string][]Booking)
	for _, b := range bookings {
		key := ""
		if start := b.ParsedStart(); !start.IsZero() {
			key = start.Local().Format("2006-01-02")
		}
		out[key] = append(out[key], b)
	}
	return out
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(query.DateLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
