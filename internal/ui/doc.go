// Package ui provides the terminal viewer for fars.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program (Model/Update/View). It is read-only: the
// background poller in package app writes booking data into a state.Store
// and the UI reads Snapshots from it on every tick. Per-resource data (time
// slots, key access) is fetched on demand through fars.BookingFetcher as a
// tea.Cmd, so slow requests never block rendering.
//
// # Package Structure
//
//   - app.go: Model, Update loop, view switching, prefs persistence, Run
//   - header.go: status line, command bar, bordered panes
//   - bookings.go: booking list grouped by date with a detail pane
//   - bookables.go: resource list with time slots and key access panes
//   - logs.go: tail of the fars log file in a viewport
//   - help.go: help overlay built from the key map
//   - keys.go: key bindings (bubbles/key)
//   - theme.go, style_helpers.go: palettes and lipgloss helpers
//
// # Views
//
//   - Bookings (b): bookings of the current window, colored past, active or
//     upcoming relative to now
//   - Resources (r): bookables with the weekly time slots of the selection
//   - Access (a): key-access grants of the selected bookable
//   - Log (l): the application's own slog output
//
// tab and shift+tab cycle through the views; esc returns to Bookings.
//
// # Booking Window
//
// + and - widen or narrow the window by a day. The new size is written to the
// store for the poller, saved to prefs.toml together with the theme, and an
// immediate refresh is requested. Zero and negative values look backwards
// from today, as BookingsFromToday does.
//
// # Error Display
//
// Poll errors are classified with fars.ErrorKind for the header, e.g. an
// AuthorizationError shows as ACCESS DENIED. Previously fetched data stays
// visible while the poller retries.
package ui
