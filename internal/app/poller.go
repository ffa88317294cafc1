package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/fars/internal/fars"
	"github.com/five82/fars/internal/query"
	"github.com/five82/fars/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Poller refreshes the store from the booking API on a fixed cadence, backing
// off while the API keeps failing.
type Poller struct {
	client   fars.BookingFetcher
	store    *state.Store
	interval time.Duration
	days     int    // window used until the UI sets one
	bookable string // optional bookings filter
	logger   *slog.Logger
	trigger  chan struct{}
}

// NewPoller builds a poller. A non-positive interval uses the default.
func NewPoller(client fars.BookingFetcher, store *state.Store, interval time.Duration, days int, bookable string, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:   client,
		store:    store,
		interval: interval,
		days:     days,
		bookable: bookable,
		logger:   logger.With("component", "poller"),
		trigger:  make(chan struct{}, 1),
	}
}

// Start launches the polling goroutine. It returns immediately; the first
// refresh runs right away.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Trigger asks for a refresh without waiting for the next tick. Calls made
// while one is already pending are coalesced.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	for {
		_ = p.Refresh(ctx)

		wait := calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.trigger:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Refresh fetches bookables and the current booking window once and records
// the outcome in the store.
func (p *Poller) Refresh(ctx context.Context) error {
	days := p.store.Days(p.days)

	bookables, err := p.client.Bookables(ctx)
	if err != nil {
		return p.fail(ctx, "bookables", err)
	}

	filter := query.Filter{
		Bookable: p.bookable,
		Ordering: []query.Ordering{query.OrderStart},
	}
	bookings, err := p.client.BookingsFromToday(ctx, days, filter)
	if err != nil {
		return p.fail(ctx, "bookings", err)
	}

	p.store.Update(&state.Fetch{
		Bookings:  bookings.Result,
		Bookables: bookables.Result,
		Window: state.Window{
			After:  bookings.Query.After,
			Before: bookings.Query.Before,
			Days:   days,
		},
		URL: bookings.URL,
	}, nil)
	p.logger.Info("poll complete",
		"bookings", len(bookings.Result),
		"bookables", len(bookables.Result),
		"days", days,
	)
	return nil
}

func (p *Poller) fail(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	p.store.Update(nil, err)
	p.logger.Warn(what+" poll failed", "kind", fars.ErrorKind(err), "error", err)
	return err
}

// calculateBackoff doubles the interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
