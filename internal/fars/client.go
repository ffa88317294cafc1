package fars

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/fars/internal/query"
)

const (
	defaultLoginPath     = "/login/"
	defaultAPIPath       = "/api/"
	defaultSessionCookie = "sessionid"
	defaultCSRFCookie    = "csrftoken"
	defaultCSRFField     = "csrfmiddlewaretoken"
)

// Session sends requests with the current cookies and records the cookies
// the server sets. HTTPSession is the production implementation.
type Session interface {
	Send(ctx context.Context, method, rawURL string, form url.Values, header http.Header) (*Response, error)
	HasCookie(name string) bool
	Cookie(name string) string
}

// Authenticator establishes a server session.
type Authenticator interface {
	Login(ctx context.Context, next string) error
}

// BookingFetcher is the read API used by the poller and UI.
// This interface is implemented by *Client and can be used for testing.
type BookingFetcher interface {
	Bookings(ctx context.Context, filter query.Filter) (Result[Booking], error)
	BookingsFromToday(ctx context.Context, days int, filter query.Filter) (Result[Booking], error)
	Bookables(ctx context.Context) (Result[Bookable], error)
	Timeslots(ctx context.Context, bookable string) (Result[Timeslot], error)
	GKeys(ctx context.Context, bookable string) ([]GKey, error)
}

// Ensure Client implements BookingFetcher at compile time.
var _ BookingFetcher = (*Client)(nil)

// Options configure a Client. Only BaseURL and, for protected endpoints,
// Username and Password are required.
type Options struct {
	BaseURL       string // no trailing slash
	Username      string
	Password      string
	LoginPath     string // default /login/
	APIPath       string // default /api/
	SessionCookie string // default sessionid
	CSRFCookie    string // default csrftoken
	CSRFField     string // default csrfmiddlewaretoken

	// LegacyQuery selects the historical bookings encoding where missing
	// filters are sent as empty values.
	LegacyQuery bool

	HTTPClient Doer
	Logger     *slog.Logger
	Now        func() time.Time

	// Session and Authenticator replace the HTTP implementations.
	Session       Session
	Authenticator Authenticator
}

// Client talks to the FARS booking API on behalf of one account.
type Client struct {
	baseURL       string
	loginPath     string
	loginURLPath  string // path of baseURL+loginPath
	apiPath       string
	sessionCookie string
	hasCreds      bool
	legacy        bool

	session Session
	auth    Authenticator
	logger  *slog.Logger
	now     func() time.Time
}

// NewClient builds a Client. It never fails; a missing base URL is reported
// by every request instead.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "fars")

	session := opts.Session
	if session == nil {
		session = NewHTTPSession(opts.HTTPClient, NewJar(now))
	}
	loginPath := withDefault(opts.LoginPath, defaultLoginPath)
	auth := opts.Authenticator
	if auth == nil {
		creds := Credentials{Username: opts.Username, Password: opts.Password}
		form := NewFormAuthenticator(session, creds, baseURL+loginPath, opts.CSRFField, logger)
		form.csrfCookie = withDefault(opts.CSRFCookie, defaultCSRFCookie)
		auth = form
	}

	return &Client{
		baseURL:       baseURL,
		loginPath:     loginPath,
		loginURLPath:  urlPath(baseURL + loginPath),
		apiPath:       withDefault(opts.APIPath, defaultAPIPath),
		sessionCookie: withDefault(opts.SessionCookie, defaultSessionCookie),
		hasCreds:      opts.Username != "" || opts.Password != "",
		legacy:        opts.LegacyQuery,
		session:       session,
		auth:          auth,
		logger:        logger,
		now:           now,
	}
}

// Bookings lists bookings matching filter.
func (c *Client) Bookings(ctx context.Context, filter query.Filter) (Result[Booking], error) {
	if c == nil {
		return Result[Booking]{}, fmt.Errorf("client is nil")
	}
	rawQuery := query.Values(filter).Encode()
	if c.legacy {
		filter = query.LegacyFields(filter)
		rawQuery = query.EncodeLegacy(filter)
	}
	return list[Booking](ctx, c, c.apiPath+"bookings?"+rawQuery, filter)
}

// Bookables lists every bookable resource.
func (c *Client) Bookables(ctx context.Context) (Result[Bookable], error) {
	if c == nil {
		return Result[Bookable]{}, fmt.Errorf("client is nil")
	}
	return list[Bookable](ctx, c, c.apiPath+"bookables?"+query.Filter{}.Encode(), query.Filter{})
}

// Timeslots lists the bookable time slots, optionally for one bookable.
func (c *Client) Timeslots(ctx context.Context, bookable string) (Result[Timeslot], error) {
	if c == nil {
		return Result[Timeslot]{}, fmt.Errorf("client is nil")
	}
	filter := query.Filter{Bookable: bookable}
	return list[Timeslot](ctx, c, c.apiPath+"timeslots?"+filter.Encode(), filter)
}

// GKeys lists key-access records, optionally for one bookable.
func (c *Client) GKeys(ctx context.Context, bookable string) ([]GKey, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	filter := query.Filter{Bookable: bookable}
	resp, err := c.fetch(ctx, c.apiPath+"gkey?"+filter.Encode())
	if err != nil {
		return nil, err
	}
	keys, err := ParseGKeys(string(resp.Body))
	if err != nil {
		return nil, &ResponseShapeError{URL: resp.URL, Detail: err.Error()}
	}
	return keys, nil
}

// BookingsFromNow lists bookings between now and now+days. Negative days look
// backwards.
func (c *Client) BookingsFromNow(ctx context.Context, days int, filter query.Filter) (Result[Booking], error) {
	filter.After, filter.Before = WindowFromNow(c.now(), days)
	return c.Bookings(ctx, filter)
}

// BookingsFromToday lists bookings on whole local days starting today (days
// > 0) or ending today (days <= 0).
func (c *Client) BookingsFromToday(ctx context.Context, days int, filter query.Filter) (Result[Booking], error) {
	filter.After, filter.Before = WindowFromToday(c.now(), days)
	return c.Bookings(ctx, filter)
}

// WindowFromNow returns [now, now+days] ordered so that after <= before.
func WindowFromNow(now time.Time, days int) (after, before time.Time) {
	other := now.AddDate(0, 0, days)
	if other.Before(now) {
		return other, now
	}
	return now, other
}

// WindowFromToday returns whole local days around today. The end is one
// millisecond before midnight so the last day is included.
func WindowFromToday(now time.Time, days int) (after, before time.Time) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := midnight.AddDate(0, 0, 1)
	if days > 0 {
		return midnight, tomorrow.AddDate(0, 0, days).Add(-time.Millisecond)
	}
	return midnight.AddDate(0, 0, days), tomorrow.Add(-time.Millisecond)
}

func list[T any](ctx context.Context, c *Client, path string, filter query.Filter) (Result[T], error) {
	resp, err := c.fetch(ctx, path)
	if err != nil {
		return Result[T]{}, err
	}
	res, err := decodeList[T](resp.Body, resp.URL)
	if err != nil {
		return Result[T]{}, err
	}
	res.Query = filter
	return res, nil
}

// fetch sends a GET to path, logging in first when no session exists and
// once more when the server refuses the request.
func (c *Client) fetch(ctx context.Context, path string) (*Response, error) {
	if c.baseURL == "" {
		return nil, &ConfigError{Field: "base URL"}
	}
	target := c.baseURL + path
	logger := c.logger.With("request_id", uuid.NewString(), "url", target)

	if c.hasCreds && !c.session.HasCookie(c.sessionCookie) {
		logger.Debug("no session cookie, logging in")
		if err := c.auth.Login(ctx, path); err != nil {
			logger.Warn("login failed", "error", err, "kind", ErrorKind(err))
			return nil, err
		}
	}

	resp, err := c.send(ctx, target)
	if err != nil {
		return nil, err
	}
	if c.refused(resp) {
		logger.Info("request refused, logging in", "status", resp.StatusCode)
		if err := c.auth.Login(ctx, path); err != nil {
			logger.Warn("login failed", "error", err, "kind", ErrorKind(err))
			return nil, err
		}
		resp, err = c.send(ctx, target)
		if err != nil {
			return nil, err
		}
		if c.refused(resp) {
			logger.Warn("request refused after login", "status", resp.StatusCode)
			return nil, &AuthorizationError{URL: target, StatusCode: resp.StatusCode}
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &TransportError{Method: http.MethodGet, URL: target, StatusCode: resp.StatusCode}
	}
	logger.Debug("request complete", "status", resp.StatusCode, "bytes", len(resp.Body))
	return resp, nil
}

func (c *Client) send(ctx context.Context, target string) (*Response, error) {
	return c.session.Send(ctx, http.MethodGet, target, nil, http.Header{"Accept": {"application/json"}})
}

// refused reports an authorization failure: 401/403, or a redirect to the
// login page.
func (c *Client) refused(resp *Response) bool {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return false
	}
	loc, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return false
	}
	if base, err := url.Parse(resp.URL); err == nil {
		loc = base.ResolveReference(loc)
	}
	return loc.Path == c.loginURLPath || loc.Path == c.loginPath
}

func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}

type page struct {
	Count    *int            `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  json.RawMessage `json:"results"`
}

// decodeList accepts a {count, next, previous, results} page first and a
// bare JSON array second.
func decodeList[T any](body []byte, rawURL string) (Result[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p page
		if err := json.Unmarshal(trimmed, &p); err == nil && isJSONArray(p.Results) {
			var items []T
			if err := json.Unmarshal(p.Results, &items); err != nil {
				return Result[T]{}, &ResponseShapeError{URL: rawURL, Detail: err.Error()}
			}
			res := Result[T]{Result: items, Count: len(items), Paginated: true, URL: rawURL}
			if p.Count != nil {
				res.Count = *p.Count
			}
			if p.Next != nil {
				res.Next = *p.Next
			}
			if p.Previous != nil {
				res.Previous = *p.Previous
			}
			return res, nil
		}
	}
	if !isJSONArray(trimmed) {
		return Result[T]{}, &ResponseShapeError{URL: rawURL}
	}
	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return Result[T]{}, &ResponseShapeError{URL: rawURL, Detail: err.Error()}
	}
	return Result[T]{Result: items, Count: len(items), URL: rawURL}, nil
}

func isJSONArray(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func withDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
