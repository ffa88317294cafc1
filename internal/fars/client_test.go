package fars

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/five82/fars/internal/query"
)

type fakeSession struct {
	responses []*Response
	sent      []string
	cookies   map[string]string
	err       error
}

func (f *fakeSession) Send(_ context.Context, method, rawURL string, _ url.Values, _ http.Header) (*Response, error) {
	f.sent = append(f.sent, method+" "+rawURL)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &Response{StatusCode: http.StatusOK, Body: []byte("[]"), URL: rawURL}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	resp.URL = rawURL
	return resp, nil
}

func (f *fakeSession) HasCookie(name string) bool {
	_, ok := f.cookies[name]
	return ok
}

func (f *fakeSession) Cookie(name string) string {
	return f.cookies[name]
}

type fakeAuth struct {
	calls int
	nexts []string
	err   error
}

func (f *fakeAuth) Login(_ context.Context, next string) error {
	f.calls++
	f.nexts = append(f.nexts, next)
	return f.err
}

func status(code int) *Response {
	return &Response{StatusCode: code, Header: http.Header{}}
}

func jsonResponse(body string) *Response {
	return &Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(body)}
}

func newFakeClient(session *fakeSession, auth *fakeAuth, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://fars.example.org"
	}
	opts.Session = session
	opts.Authenticator = auth
	return NewClient(opts)
}

func loggedIn() *fakeSession {
	return &fakeSession{cookies: map[string]string{"sessionid": "s"}}
}

func TestClient_EmptyBaseURLIsConfigError(t *testing.T) {
	session := &fakeSession{}
	auth := &fakeAuth{}
	c := NewClient(Options{Session: session, Authenticator: auth, Username: "a", Password: "b"})

	_, err := c.Bookings(context.Background(), query.Filter{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Bookings error = %v, want ConfigError", err)
	}
	if len(session.sent) != 0 || auth.calls != 0 {
		t.Fatalf("sent=%d logins=%d, want no network activity", len(session.sent), auth.calls)
	}
	if ErrorKind(err) != "config" {
		t.Fatalf("ErrorKind = %q, want config", ErrorKind(err))
	}
}

func TestClient_ForbiddenTriggersOneLoginAndOneResend(t *testing.T) {
	session := loggedIn()
	session.responses = []*Response{status(http.StatusForbidden), jsonResponse(`[]`)}
	auth := &fakeAuth{}
	c := newFakeClient(session, auth, Options{})

	if _, err := c.Bookings(context.Background(), query.Filter{Bookable: "sauna"}); err != nil {
		t.Fatalf("Bookings returned error: %v", err)
	}
	if auth.calls != 1 {
		t.Fatalf("logins = %d, want 1", auth.calls)
	}
	if len(session.sent) != 2 {
		t.Fatalf("requests = %d, want 2", len(session.sent))
	}
	if !strings.HasPrefix(auth.nexts[0], "/api/bookings?") {
		t.Fatalf("login next = %q, want request path", auth.nexts[0])
	}
}

func TestClient_RepeatedForbiddenIsAuthorizationError(t *testing.T) {
	session := loggedIn()
	session.responses = []*Response{status(http.StatusForbidden), status(http.StatusForbidden), jsonResponse(`[]`)}
	auth := &fakeAuth{}
	c := newFakeClient(session, auth, Options{})

	_, err := c.Bookings(context.Background(), query.Filter{})
	var denied *AuthorizationError
	if !errors.As(err, &denied) {
		t.Fatalf("Bookings error = %v, want AuthorizationError", err)
	}
	if denied.StatusCode != http.StatusForbidden {
		t.Fatalf("StatusCode = %d, want 403", denied.StatusCode)
	}
	if auth.calls != 1 || len(session.sent) != 2 {
		t.Fatalf("logins=%d requests=%d, want 1 and 2", auth.calls, len(session.sent))
	}
}

func TestClient_UnauthorizedAndLoginRedirectCountAsRefusal(t *testing.T) {
	redirect := status(http.StatusFound)
	redirect.Header.Set("Location", "/login/?next=/api/bookings")

	prefixed := status(http.StatusFound)
	prefixed.Header.Set("Location", "/fars/login/?next=/fars/api/bookables")
	relative := status(http.StatusFound)
	relative.Header.Set("Location", "../login/?next=bookables")

	cases := []struct {
		name    string
		baseURL string
		first   *Response
	}{
		{"401", "", status(http.StatusUnauthorized)},
		{"redirect", "", redirect},
		{"redirect under path prefix", "https://host.example/fars", prefixed},
		{"relative redirect under path prefix", "https://host.example/fars/", relative},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := loggedIn()
			session.responses = []*Response{tc.first, jsonResponse(`[]`)}
			auth := &fakeAuth{}
			c := newFakeClient(session, auth, Options{BaseURL: tc.baseURL})
			if _, err := c.Bookables(context.Background()); err != nil {
				t.Fatalf("Bookables returned error: %v", err)
			}
			if auth.calls != 1 {
				t.Fatalf("logins = %d, want 1", auth.calls)
			}
		})
	}
}

func TestClient_RedirectElsewhereIsNotRefusal(t *testing.T) {
	moved := status(http.StatusFound)
	moved.Header.Set("Location", "/fars/api/bookables/")
	session := loggedIn()
	session.responses = []*Response{moved}
	auth := &fakeAuth{}
	c := newFakeClient(session, auth, Options{BaseURL: "https://host.example/fars"})

	_, err := c.Bookables(context.Background())
	var shapeErr *ResponseShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("Bookables error = %v, want ResponseShapeError", err)
	}
	if auth.calls != 0 {
		t.Fatalf("logins = %d, want 0", auth.calls)
	}
}

func TestClient_LogsInFirstWhenSessionCookieMissing(t *testing.T) {
	session := &fakeSession{}
	auth := &fakeAuth{}
	c := newFakeClient(session, auth, Options{Username: "alice", Password: "pw"})

	if _, err := c.Bookables(context.Background()); err != nil {
		t.Fatalf("Bookables returned error: %v", err)
	}
	if auth.calls != 1 || len(session.sent) != 1 {
		t.Fatalf("logins=%d requests=%d, want 1 and 1", auth.calls, len(session.sent))
	}
}

func TestClient_AnonymousWithoutCredentials(t *testing.T) {
	session := &fakeSession{}
	auth := &fakeAuth{}
	c := newFakeClient(session, auth, Options{})

	if _, err := c.Bookables(context.Background()); err != nil {
		t.Fatalf("Bookables returned error: %v", err)
	}
	if auth.calls != 0 {
		t.Fatalf("logins = %d, want 0", auth.calls)
	}
}

func TestClient_LoginErrorIsSurfaced(t *testing.T) {
	session := loggedIn()
	session.responses = []*Response{status(http.StatusForbidden)}
	auth := &fakeAuth{err: &AuthError{Reason: "no username set"}}
	c := newFakeClient(session, auth, Options{})

	_, err := c.Bookings(context.Background(), query.Filter{})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Bookings error = %v, want AuthError", err)
	}
	if len(session.sent) != 1 {
		t.Fatalf("requests = %d, want 1", len(session.sent))
	}
}

func TestClient_TransportErrorsPassThrough(t *testing.T) {
	boom := &TransportError{Method: http.MethodGet, URL: "x", Err: errors.New("dial tcp: refused")}
	session := loggedIn()
	session.err = boom
	c := newFakeClient(session, &fakeAuth{}, Options{})

	_, err := c.Bookings(context.Background(), query.Filter{})
	if !errors.Is(err, boom) {
		t.Fatalf("Bookings error = %v, want %v", err, boom)
	}

	session = loggedIn()
	session.responses = []*Response{status(http.StatusInternalServerError)}
	c = newFakeClient(session, &fakeAuth{}, Options{})
	_, err = c.Bookings(context.Background(), query.Filter{})
	var tErr *TransportError
	if !errors.As(err, &tErr) || tErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Bookings error = %v, want TransportError with status 500", err)
	}
}

func TestClient_NormalizesBothEnvelopes(t *testing.T) {
	bare := `[{"id":1,"user":{"username":"a","first_name":"","last_name":""},"booking_group":{"name":"g"},"start":"s","end":"e","comment":"c","bookable":2,"repeatgroup":9}]`
	paged := `{"count":42,"next":"https://fars.example.org/api/bookings?offset=1","previous":null,"results":` + bare + `}`

	session := loggedIn()
	session.responses = []*Response{jsonResponse(bare), jsonResponse(paged)}
	c := newFakeClient(session, &fakeAuth{}, Options{})

	res, err := c.Bookings(context.Background(), query.Filter{Bookable: "sauna"})
	if err != nil {
		t.Fatalf("Bookings(bare) returned error: %v", err)
	}
	if res.Paginated || res.Count != 1 || len(res.Result) != 1 {
		t.Fatalf("bare result = %+v, want 1 unpaginated booking", res)
	}
	if res.Result[0].GroupName() != "g" || res.Result[0].RepeatGroup == nil || *res.Result[0].RepeatGroup != 9 {
		t.Fatalf("booking = %+v, want group g and repeat group 9", res.Result[0])
	}
	if res.Query.Bookable != "sauna" || !strings.Contains(res.URL, "bookable=sauna") {
		t.Fatalf("query/url = %+v %q, want bookable echoed", res.Query, res.URL)
	}

	res, err = c.Bookings(context.Background(), query.Filter{})
	if err != nil {
		t.Fatalf("Bookings(page) returned error: %v", err)
	}
	if !res.Paginated || res.Count != 42 || len(res.Result) != 1 || res.Next == "" || res.Previous != "" {
		t.Fatalf("page result = %+v, want count=42 with next cursor", res)
	}
}

func TestClient_ResponseShapeError(t *testing.T) {
	for _, body := range []string{`{"detail":"nope"}`, `"text"`, `null`, `{"results":{"a":1}}`, `[{"id":"x"}]`, ``} {
		session := loggedIn()
		session.responses = []*Response{jsonResponse(body)}
		c := newFakeClient(session, &fakeAuth{}, Options{})

		_, err := c.Bookings(context.Background(), query.Filter{})
		var shapeErr *ResponseShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("Bookings(%q) error = %v, want ResponseShapeError", body, err)
		}
		if !strings.HasPrefix(shapeErr.URL, "https://fars.example.org/api/bookings?") {
			t.Fatalf("ResponseShapeError.URL = %q, want request url", shapeErr.URL)
		}
	}
}

func TestClient_LegacyQueryEncoding(t *testing.T) {
	session := loggedIn()
	c := newFakeClient(session, &fakeAuth{}, Options{LegacyQuery: true, APIPath: "/v1/"})

	if _, err := c.Bookings(context.Background(), query.Filter{Bookable: "sauna"}); err != nil {
		t.Fatalf("Bookings returned error: %v", err)
	}
	want := "GET https://fars.example.org/v1/bookings?bookable=sauna&after=&before=&format=json"
	if session.sent[0] != want {
		t.Fatalf("request = %q, want %q", session.sent[0], want)
	}

	filter := query.Filter{Bookable: "sauna", Ordering: []query.Ordering{query.OrderStart}, Limit: 5, Search: "alice"}
	res, err := c.Bookings(context.Background(), filter)
	if err != nil {
		t.Fatalf("Bookings returned error: %v", err)
	}
	if session.sent[1] != want {
		t.Fatalf("request = %q, want %q", session.sent[1], want)
	}
	if res.Query.Ordering != nil || res.Query.Limit != 0 || res.Query.Search != "" {
		t.Fatalf("Query = %+v, want only the filters that were sent", res.Query)
	}
	if res.Query.Bookable != "sauna" {
		t.Fatalf("Query.Bookable = %q, want sauna", res.Query.Bookable)
	}
}

func sentQuery(t *testing.T, sent string) url.Values {
	t.Helper()
	u, err := url.Parse(strings.TrimPrefix(sent, "GET "))
	if err != nil {
		t.Fatalf("parse sent url: %v", err)
	}
	return u.Query()
}

func TestClient_BookingsFromNow(t *testing.T) {
	now := time.Date(2024, time.February, 20, 14, 35, 12, 0, time.Local)
	cases := []struct {
		days          int
		after, before time.Time
	}{
		{10, now, now.AddDate(0, 0, 10)},
		{-10, now.AddDate(0, 0, -10), now},
		{0, now, now},
	}
	for _, tc := range cases {
		session := loggedIn()
		c := newFakeClient(session, &fakeAuth{}, Options{Now: func() time.Time { return now }})
		res, err := c.BookingsFromNow(context.Background(), tc.days, query.Filter{Bookable: "sauna"})
		if err != nil {
			t.Fatalf("BookingsFromNow(%d) returned error: %v", tc.days, err)
		}
		if !res.Query.After.Equal(tc.after) || !res.Query.Before.Equal(tc.before) {
			t.Fatalf("BookingsFromNow(%d) window = %v..%v, want %v..%v", tc.days, res.Query.After, res.Query.Before, tc.after, tc.before)
		}
		q := sentQuery(t, session.sent[0])
		if q.Get("after") != query.FormatDate(tc.after) || q.Get("before") != query.FormatDate(tc.before) {
			t.Fatalf("BookingsFromNow(%d) query = %v", tc.days, q)
		}
		if q.Get("bookable") != "sauna" {
			t.Fatalf("bookable = %q, want sauna", q.Get("bookable"))
		}
	}
}

func TestWindowFromToday(t *testing.T) {
	now := time.Date(2024, time.February, 20, 14, 35, 12, 0, time.Local)
	midnight := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.Local)

	after, before := WindowFromToday(now, 10)
	if !after.Equal(midnight) {
		t.Fatalf("after(10) = %v, want %v", after, midnight)
	}
	wantBefore := time.Date(2024, time.March, 1, 23, 59, 59, 999e6, time.Local)
	if !before.Equal(wantBefore) {
		t.Fatalf("before(10) = %v, want %v", before, wantBefore)
	}

	after, before = WindowFromToday(now, -10)
	if want := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.Local); !after.Equal(want) {
		t.Fatalf("after(-10) = %v, want %v", after, want)
	}
	if want := time.Date(2024, time.February, 20, 23, 59, 59, 999e6, time.Local); !before.Equal(want) {
		t.Fatalf("before(-10) = %v, want %v", before, want)
	}

	after, before = WindowFromToday(now, 0)
	if !after.Equal(midnight) || before.Sub(after) != 24*time.Hour-time.Millisecond {
		t.Fatalf("window(0) = %v..%v, want today only", after, before)
	}
}

func TestClient_BookingsFromTodaySendsWholeDays(t *testing.T) {
	now := time.Date(2024, time.February, 20, 14, 35, 12, 0, time.Local)
	session := loggedIn()
	c := newFakeClient(session, &fakeAuth{}, Options{Now: func() time.Time { return now }})

	if _, err := c.BookingsFromToday(context.Background(), 1, query.Filter{}); err != nil {
		t.Fatalf("BookingsFromToday returned error: %v", err)
	}
	q := sentQuery(t, session.sent[0])
	if q.Get("after") != "2024-02-20T00:00:00" || q.Get("before") != "2024-02-21T23:59:59" {
		t.Fatalf("query = %v, want 2024-02-20T00:00:00..2024-02-21T23:59:59", q)
	}
}

func TestClient_AgainstLoginServer(t *testing.T) {
	srv := newBookingServer(t)
	c := NewClient(Options{BaseURL: srv.URL + "/", Username: "alice", Password: "pw"})
	ctx := context.Background()

	res, err := c.Bookings(ctx, query.Filter{Bookable: "sauna"})
	if err != nil {
		t.Fatalf("Bookings returned error: %v", err)
	}
	if res.Count != 1 || res.Result[0].User.Username != "alice" {
		t.Fatalf("Bookings = %+v, want alice's booking", res)
	}
	if logins, hits := srv.counts(); logins != 1 || hits != 1 {
		t.Fatalf("logins=%d hits=%d after first call, want 1 and 1", logins, hits)
	}

	if _, err := c.Bookables(ctx); err != nil {
		t.Fatalf("Bookables returned error: %v", err)
	}
	if logins, _ := srv.counts(); logins != 1 {
		t.Fatalf("logins = %d after reuse, want 1", logins)
	}

	srv.revoke()
	slots, err := c.Timeslots(ctx, "sauna")
	if err != nil {
		t.Fatalf("Timeslots returned error: %v", err)
	}
	if len(slots.Result) != 1 || slots.Result[0].StartTime != "06:00:00" {
		t.Fatalf("Timeslots = %+v", slots)
	}
	if logins, hits := srv.counts(); logins != 2 || hits != 4 {
		t.Fatalf("logins=%d hits=%d after revoke, want 2 and 4", logins, hits)
	}

	keys, err := c.GKeys(ctx, "sauna")
	if err != nil {
		t.Fatalf("GKeys returned error: %v", err)
	}
	if len(keys) != 2 || keys[1].GroupName != "board" || keys[1].Code != "1234" {
		t.Fatalf("GKeys = %+v", keys)
	}
}

func TestClient_WrongPasswordIsAuthorizationError(t *testing.T) {
	srv := newBookingServer(t)
	c := NewClient(Options{BaseURL: srv.URL, Username: "alice", Password: "wrong"})

	_, err := c.Bookings(context.Background(), query.Filter{})
	var denied *AuthorizationError
	if !errors.As(err, &denied) {
		t.Fatalf("Bookings error = %v, want AuthorizationError", err)
	}
	if ErrorKind(err) != "authorization" {
		t.Fatalf("ErrorKind = %q, want authorization", ErrorKind(err))
	}
}
