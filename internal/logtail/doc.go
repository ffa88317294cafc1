// Package logtail reads the tail of the fars log file and parses its lines
// for the log view.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries, so the file is scanned once
// and memory stays proportional to maxLines rather than file size:
//
//	lines, err := logtail.Read(cfg.LogPath(), 400)
//
// A missing file yields nil, nil; the log view shows an empty state until
// the first entry is written. Other errors are returned wrapped.
//
// # Parsing
//
// fars logs through the slog text handler, so every line looks like
//
//	time=2026-10-18T09:12:44.120+02:00 level=INFO msg="fetched page" component=fars request_id=6f0c... url=https://fars.example.org/api/bookings/
//
// Parse splits such a line into time, level, message and the remaining
// attributes. Quoted values are unquoted. Anything that is not key=value
// formatted is kept as a bare message so it is still displayed.
package logtail
