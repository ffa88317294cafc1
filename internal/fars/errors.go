package fars

import (
	"errors"
	"fmt"
)

// ConfigError reports client configuration that prevents any request.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("fars: %s not set", e.Field)
}

// AuthError reports a login that could not be attempted or completed.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "fars: login: " + e.Reason
}

// AuthorizationError reports a request that was still refused after the
// single re-login.
type AuthorizationError struct {
	URL        string
	StatusCode int
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("fars: %s refused with status %d after login", e.URL, e.StatusCode)
}

// ResponseShapeError reports a payload matching none of the accepted shapes.
type ResponseShapeError struct {
	URL    string
	Detail string
}

func (e *ResponseShapeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("fars: unexpected response shape from %s", e.URL)
	}
	return fmt.Sprintf("fars: unexpected response shape from %s: %s", e.URL, e.Detail)
}

// TransportError wraps network failures and non-auth HTTP error statuses.
// StatusCode is zero when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fars: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fars: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ErrorKind maps client errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		cfgErr   *ConfigError
		authErr  *AuthError
		denied   *AuthorizationError
		shapeErr *ResponseShapeError
		tErr     *TransportError
	)
	switch {
	case errors.As(err, &cfgErr):
		return "config"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &denied):
		return "authorization"
	case errors.As(err, &shapeErr):
		return "response_shape"
	case errors.As(err, &tErr):
		return "transport"
	}
	return "unknown"
}
