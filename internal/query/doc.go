// Package query turns booking list filters into the query strings the FARS
// API expects.
//
// Two encodings exist. Values/Encode produce the canonical form: only the
// filters that are set appear, plus the mandatory format=json flag. The
// historical bookings form produced by EncodeLegacy always carries bookable,
// after and before in that order and sends missing values as empty strings.
//
// Dates are rendered in local time as 2006-01-02T15:04:05 with no zone
// suffix. The encoder never validates that After precedes Before; the server
// reports inverted ranges.
package query
