package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the local-time layout the booking API expects for date filters.
const DateLayout = "2006-01-02T15:04:05"

// Ordering names a sort key. A leading "-" means descending.
type Ordering string

const (
	OrderID    Ordering = "id"
	OrderStart Ordering = "start"
	OrderEnd   Ordering = "end"
)

// Desc returns the descending form of the ordering.
func (o Ordering) Desc() Ordering {
	if strings.HasPrefix(string(o), "-") {
		return o
	}
	return "-" + o
}

// Filter holds the recognized list filters. Zero values are treated as absent.
type Filter struct {
	Bookable     string
	After        time.Time
	Before       time.Time
	Search       string
	Ordering     []Ordering
	Limit        int
	Offset       int
	Username     string
	BookingGroup string
}

// FormatDate renders t in local time using DateLayout.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// ParseDate parses a DateLayout value in local time.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.Local)
}

// Values returns the canonical query parameters for f. Absent fields produce
// no key; format=json is always present.
func Values(f Filter) url.Values {
	values := url.Values{}
	if f.Bookable != "" {
		values.Set("bookable", f.Bookable)
	}
	if !f.After.IsZero() {
		values.Set("after", FormatDate(f.After))
	}
	if !f.Before.IsZero() {
		values.Set("before", FormatDate(f.Before))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if len(f.Ordering) > 0 {
		keys := make([]string, 0, len(f.Ordering))
		for _, o := range f.Ordering {
			keys = append(keys, string(o))
		}
		values.Set("ordering", strings.Join(keys, ","))
	}
	if f.Limit > 0 {
		values.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		values.Set("offset", strconv.Itoa(f.Offset))
	}
	if f.Username != "" {
		values.Set("username", f.Username)
	}
	if f.BookingGroup != "" {
		values.Set("booking_group", f.BookingGroup)
	}
	values.Set("format", "json")
	return values
}

// Encode returns the canonical query string for f.
func (f Filter) Encode() string {
	return Values(f).Encode()
}

// LegacyFields returns the part of f that EncodeLegacy sends.
func LegacyFields(f Filter) Filter {
	return Filter{Bookable: f.Bookable, After: f.After, Before: f.Before}
}

// EncodeLegacy returns the historical bookings query string. Keys appear in
// the fixed order bookable, after, before, format and absent values are sent
// as empty strings. Only the fields kept by LegacyFields are carried.
func EncodeLegacy(f Filter) string {
	var after, before string
	if !f.After.IsZero() {
		after = FormatDate(f.After)
	}
	if !f.Before.IsZero() {
		before = FormatDate(f.Before)
	}
	return "bookable=" + url.QueryEscape(f.Bookable) +
		"&after=" + after +
		"&before=" + before +
		"&format=json"
}

// Decode rebuilds a Filter from query parameters produced by Values or
// EncodeLegacy. The format flag is ignored.
func Decode(values url.Values) (Filter, error) {
	var f Filter
	f.Bookable = values.Get("bookable")
	f.Search = values.Get("search")
	f.Username = values.Get("username")
	f.BookingGroup = values.Get("booking_group")

	if raw := values.Get("after"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("parse after: %w", err)
		}
		f.After = t
	}
	if raw := values.Get("before"); raw != "" {
		t, err := ParseDate(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("parse before: %w", err)
		}
		f.Before = t
	}
	if raw := values.Get("ordering"); raw != "" {
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				f.Ordering = append(f.Ordering, Ordering(key))
			}
		}
	}
	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("parse limit: %w", err)
		}
		f.Limit = n
	}
	if raw := values.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("parse offset: %w", err)
		}
		f.Offset = n
	}
	return f, nil
}
