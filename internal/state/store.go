package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/fars/internal/fars"
)

// Window is the booking date range a fetch covered.
type Window struct {
	After  time.Time
	Before time.Time
	Days   int
}

// Fetch is the result of one successful poll.
type Fetch struct {
	Bookings  []fars.Booking
	Bookables []fars.Bookable
	Window    Window
	URL       string // request URL of the bookings page
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Bookings            []fars.Booking
	Bookables           []fars.Bookable
	Window              Window
	URL                 string
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot and holds the window
// size the UI asks the poller to fetch.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	days     int
	daysSet  bool
}

// Update replaces the stored snapshot. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(fetch *Fetch, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if fetch != nil {
		s.snapshot.Bookings = cloneSlice(fetch.Bookings)
		s.snapshot.Bookables = cloneSlice(fetch.Bookables)
		s.snapshot.Window = fetch.Window
		s.snapshot.URL = fetch.URL
		s.snapshot.HasData = true
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Bookings = cloneSlice(s.snapshot.Bookings)
	snap.Bookables = cloneSlice(s.snapshot.Bookables)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Days returns the requested window size, or fallback when none was set.
func (s *Store) Days(fallback int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.daysSet {
		return fallback
	}
	return s.days
}

// SetDays records the window size for the next poll.
func (s *Store) SetDays(days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = days
	s.daysSet = true
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
