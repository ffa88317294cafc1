package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/fars/internal/fars"
)

func sampleFetch() *Fetch {
	after := time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local)
	return &Fetch{
		Bookings:  []fars.Booking{{ID: 1, Bookable: 3}, {ID: 2, Bookable: 3}},
		Bookables: []fars.Bookable{{ID: 3, IDStr: "sauna", Name: "Sauna"}},
		Window:    Window{After: after, Before: after.AddDate(0, 0, 7), Days: 7},
		URL:       "https://fars.example.org/api/bookings/?format=json",
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(sampleFetch(), nil)

	snap := s.Snapshot()
	if !snap.HasData || snap.Window.Days != 7 {
		t.Fatalf("snapshot = %#v, want HasData and 7 days", snap)
	}
	if len(snap.Bookings) != 2 || snap.Bookings[0].ID != 1 {
		t.Fatalf("snapshot bookings = %#v, want 2 items", snap.Bookings)
	}
	if len(snap.Bookables) != 1 || snap.Bookables[0].Name != "Sauna" {
		t.Fatalf("snapshot bookables = %#v", snap.Bookables)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Bookings[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Bookings[0].ID != 1 {
		t.Fatalf("Snapshot should clone bookings; got id %d want 1", snap2.Bookings[0].ID)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(sampleFetch(), nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := &fars.AuthorizationError{URL: "https://fars.example.org/api/bookings/", StatusCode: 403}
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.HasData != prev.HasData || snap.URL != prev.URL {
		t.Fatalf("data changed on error: got %#v want %#v", snap, prev)
	}
	if len(snap.Bookings) != 2 || snap.Bookings[1].ID != 2 {
		t.Fatalf("bookings changed on error: got %#v want %#v", snap.Bookings, prev.Bookings)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	var authz *fars.AuthorizationError
	if !errors.As(snap.LastError, &authz) || authz.StatusCode != 403 {
		t.Fatalf("LastError = %v, want wrapped AuthorizationError", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("zero store = %d failures offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 {
		t.Fatalf("ConsecutiveFailures = %d, want 1", snap.ConsecutiveFailures)
	}
	if snap.IsOffline() {
		t.Fatal("IsOffline() = true, want false with 1 failure")
	}

	s.Update(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if !snap.IsOffline() {
		t.Fatal("IsOffline() = false, want true with 2 failures")
	}

	s.Update(nil, errors.New("fail 3"))
	if got := s.Snapshot().ConsecutiveFailures; got != 3 {
		t.Fatalf("ConsecutiveFailures = %d, want 3", got)
	}

	// Success resets counter
	s.Update(sampleFetch(), nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_UpdateNilFetchKeepsData(t *testing.T) {
	var s Store
	s.Update(sampleFetch(), nil)
	s.Update(nil, nil)

	snap := s.Snapshot()
	if !snap.HasData || len(snap.Bookings) != 2 {
		t.Fatalf("snapshot = %#v, want previous data", snap)
	}
}

func TestStore_Days(t *testing.T) {
	var s Store
	if got := s.Days(7); got != 7 {
		t.Fatalf("Days(7) = %d before set, want fallback", got)
	}
	s.SetDays(0)
	if got := s.Days(7); got != 0 {
		t.Fatalf("Days(7) = %d after SetDays(0), want 0", got)
	}
	s.SetDays(-3)
	if got := s.Days(7); got != -3 {
		t.Fatalf("Days(7) = %d, want -3", got)
	}
}
