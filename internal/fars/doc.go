// Package fars provides an HTTP client for the FARS booking API.
//
// # Overview
//
// The API lives behind a Django style login: a session cookie identifies the
// account and the login form is protected by an anti-forgery token. Client
// hides that handshake. Callers ask for bookings, bookables, time slots or
// key-access records and the client logs in when it has to.
//
// # Architecture
//
//   - cookies.go: Jar, the in-memory cookie store with expiry pruning
//   - session.go: HTTPSession, one request with cookies attached and
//     Set-Cookie headers absorbed, redirects not followed
//   - login.go: FormAuthenticator, the GET-then-POST login handshake
//   - client.go: Client, endpoint methods, retry-after-login, envelope decoding
//   - gkey.go: decoder for the colon-delimited key-access format
//   - types.go: API records and grouping helpers
//   - errors.go: error taxonomy
//
// # Authentication
//
// Before a request the client logs in if credentials are configured and the
// session cookie is missing. A 401, a 403 or a redirect to the login page
// triggers exactly one more login followed by exactly one resend. A second
// refusal is returned as *AuthorizationError. The login post itself is never
// checked; a wrong password shows up as that second refusal.
//
// # Responses
//
// List endpoints answer either with a bare JSON array or with a page object
// {count, next, previous, results}. Both are normalized into Result. Anything
// else is a *ResponseShapeError naming the URL.
//
// # Errors
//
//   - *ConfigError: no base URL, reported before any network activity
//   - *AuthError: missing credentials or no token on the login page
//   - *AuthorizationError: still refused after the single re-login
//   - *ResponseShapeError: payload is neither array nor page
//   - *TransportError: network failures and other HTTP error statuses
//
// # Thread Safety
//
// Jar guards its map, but a Client does not serialize whole request
// sequences. Two overlapping calls on one Client may both decide to log in and
// interleave their cookie updates. Give each concurrent caller its own Client
// if that matters.
package fars
