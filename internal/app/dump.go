package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/five82/fars/internal/fars"
	"github.com/five82/fars/internal/query"
)

// dumpDoc is the JSON printed by -dump.
type dumpDoc struct {
	After     time.Time       `json:"after"`
	Before    time.Time       `json:"before"`
	Days      int             `json:"days"`
	URL       string          `json:"url"`
	Count     int             `json:"count"`
	Next      string          `json:"next,omitempty"`
	Bookables []fars.Bookable `json:"bookables"`
	Bookings  []fars.Booking  `json:"bookings"`
}

// Dump fetches bookables and the booking window once and writes them to w as
// indented JSON.
func Dump(ctx context.Context, w io.Writer, client fars.BookingFetcher, bookable string, days int) error {
	bookables, err := client.Bookables(ctx)
	if err != nil {
		return fmt.Errorf("fetch bookables: %w", err)
	}
	filter := query.Filter{
		Bookable: bookable,
		Ordering: []query.Ordering{query.OrderStart},
	}
	bookings, err := client.BookingsFromToday(ctx, days, filter)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}

	doc := dumpDoc{
		After:     bookings.Query.After,
		Before:    bookings.Query.Before,
		Days:      days,
		URL:       bookings.URL,
		Count:     bookings.Count,
		Next:      bookings.Next,
		Bookables: nonNil(bookables.Result),
		Bookings:  nonNil(bookings.Result),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
