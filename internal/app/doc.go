// Package app is the composition root for fars.
//
// # Overview
//
// Run loads the configuration and preferences, opens the log file, builds the
// booking client and then either prints one JSON dump (Options.Dump) or
// starts the poller and the TUI.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()      ~/.config/fars/config.toml
//	       ├─────> prefs.Load()       theme and window days
//	       ├─────> logging.Open()     <log_dir>/fars.log, slog default
//	       ├─────> fars.NewClient()   session, login, fetch
//	       ├─────> Dump()             -dump: print and return
//	       ├─────> Poller.Start()     background refresh
//	       └─────> ui.Run()           TUI (blocks)
//
// # Polling
//
// Each refresh fetches the bookables and the bookings of the current window
// (BookingsFromToday with the window size from the store, falling back to
// the configured days). Results replace the store snapshot; errors are
// recorded there and the previous data is kept.
//
// After a failure the wait before the next refresh doubles per consecutive
// failure, up to five minutes. The UI can request an immediate refresh with
// Trigger, e.g. after the window size changed.
//
// # Window Size
//
// The -days flag wins over the saved preference, which wins over the config
// file's days setting.
//
// # Error Handling
//
// Fatal (returned from Run): invalid config, unreadable log directory, and in
// dump mode any client error. Everything the poller sees is recoverable and
// only shown in the header and the log.
package app
