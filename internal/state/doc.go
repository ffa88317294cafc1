// Package state provides thread-safe state management for fars.
//
// # Overview
//
// The Store shares the latest booking data between the background poller
// and the UI. The poller writes one Fetch per successful poll; the UI reads
// Snapshots on its own tick.
//
//	Producer (Poller):               Consumer (UI):
//	┌──────────────────────┐        ┌──────────────────┐
//	│ Bookables()          │        │                  │
//	│ BookingsFromToday()  │        │                  │
//	│        ↓             │        │                  │
//	│ store.Update()       │──────→ │ store.Snapshot() │
//	│        ↓             │ (mutex)│        ↓         │
//	│ wait / Trigger       │        │ render           │
//	└──────────────────────┘        └──────────────────┘
//
// # Update Semantics
//
//	// Success: replace bookings, bookables, window and URL
//	store.Update(&state.Fetch{...}, nil)
//
//	// Failure: keep the previous data, record the error
//	store.Update(nil, err)
//
// Failures increment ConsecutiveFailures; IsOffline reports true from the
// second failure on. A success resets the counter.
//
// # Window Size
//
// The UI changes the booking window with SetDays and the poller reads it with
// Days(fallback) before each fetch. Until SetDays is called the poller uses
// its configured default.
//
// # Copies
//
// Slices are cloned on Update and on Snapshot, and LastError is wrapped in a
// fresh error, so the UI can never observe a half-written poll result.
//
// The zero Store is ready to use.
package state
