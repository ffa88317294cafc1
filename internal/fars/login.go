package fars

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Credentials identify the account used for the login form.
type Credentials struct {
	Username string
	Password string
}

// FormAuthenticator performs the two-step login: fetch the login page for
// its anti-forgery token, then post the credentials. Cookies are collected by
// the session; the outcome of the post is not checked.
type FormAuthenticator struct {
	session    Session
	creds      Credentials
	loginURL   string
	csrfField  string
	csrfCookie string
	logger     *slog.Logger
}

// Ensure FormAuthenticator implements Authenticator at compile time.
var _ Authenticator = (*FormAuthenticator)(nil)

// NewFormAuthenticator builds an authenticator posting to loginURL.
func NewFormAuthenticator(session Session, creds Credentials, loginURL, csrfField string, logger *slog.Logger) *FormAuthenticator {
	if csrfField == "" {
		csrfField = defaultCSRFField
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormAuthenticator{
		session:   session,
		creds:     creds,
		loginURL:  loginURL,
		csrfField: csrfField,
		logger:    logger,
	}
}

// Login authenticates the session. next is sent as the post-login redirect
// target when non-empty.
func (a *FormAuthenticator) Login(ctx context.Context, next string) error {
	if a.creds.Username == "" {
		return &AuthError{Reason: "no username set"}
	}
	if a.creds.Password == "" {
		return &AuthError{Reason: "no password set"}
	}

	page, err := a.session.Send(ctx, http.MethodGet, a.loginURL, nil, http.Header{"Accept": {"text/html"}})
	if err != nil {
		return err
	}
	token, err := extractToken(page.Body, a.csrfField)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set(a.csrfField, token)
	form.Set("username", a.creds.Username)
	form.Set("password", a.creds.Password)
	if next != "" {
		form.Set("next", next)
	}
	header := http.Header{"Referer": {a.loginURL}}
	if a.csrfCookie != "" {
		if secret := a.session.Cookie(a.csrfCookie); secret != "" {
			header.Set("X-CSRFToken", secret)
		}
	}
	resp, err := a.session.Send(ctx, http.MethodPost, a.loginURL, form, header)
	if err != nil {
		return err
	}
	a.logger.Debug("login submitted", "url", a.loginURL, "status", resp.StatusCode)
	return nil
}

func extractToken(body []byte, field string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Reason: fmt.Sprintf("parse login page: %v", err)}
	}
	sel := doc.Find(fmt.Sprintf("input[name=%q]", field)).First()
	token, ok := sel.Attr("value")
	if !ok || strings.TrimSpace(token) == "" {
		return "", &AuthError{Reason: fmt.Sprintf("%s not found in login page", field)}
	}
	return token, nil
}
