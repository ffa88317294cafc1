package fars

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultUserAgent = "fars/0.1"
	requestTimeout   = 15 * time.Second
)

// Response is the uniform result of one HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// Doer performs HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSession sends requests carrying the jar's cookies and feeds every
// Set-Cookie header back into the jar.
type HTTPSession struct {
	http      Doer
	jar       *Jar
	userAgent string
}

// Ensure HTTPSession implements Session at compile time.
var _ Session = (*HTTPSession)(nil)

// NewHTTPSession builds a session around doer. A nil doer gets an http.Client
// that does not follow redirects, so cookies set on redirect responses are
// observed.
func NewHTTPSession(doer Doer, jar *Jar) *HTTPSession {
	if doer == nil {
		doer = newHTTPClient()
	}
	if jar == nil {
		jar = NewJar(nil)
	}
	return &HTTPSession{http: doer, jar: jar, userAgent: defaultUserAgent}
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: requestTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Jar returns the cookie store backing the session.
func (s *HTTPSession) Jar() *Jar {
	return s.jar
}

// HasCookie reports whether the named cookie is live.
func (s *HTTPSession) HasCookie(name string) bool {
	return s.jar.Has(name)
}

// Cookie returns the live value of the named cookie.
func (s *HTTPSession) Cookie(name string) string {
	return s.jar.Value(name)
}

// Send performs one request. A non-nil form is sent url-encoded as the body.
// The status code is not interpreted.
func (s *HTTPSession) Send(ctx context.Context, method, rawURL string, form url.Values, header http.Header) (*Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if cookies := s.jar.Header(); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}
	if method == http.MethodPost && form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: rawURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	s.jar.Absorb(resp.Header)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: rawURL, Err: fmt.Errorf("read response: %w", err)}
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		URL:        rawURL,
	}, nil
}
