package fars

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

type cookie struct {
	value     string
	expiresAt time.Time // zero: lives as long as the jar
}

// Jar keeps the cookies of one authenticated identity in memory.
//
// The mutex only protects the map. Two overlapping request sequences on the
// same jar can still interleave their logins.
type Jar struct {
	mu      sync.Mutex
	now     func() time.Time
	cookies map[string]*cookie
}

// NewJar returns an empty jar. A nil now uses time.Now.
func NewJar(now func() time.Time) *Jar {
	if now == nil {
		now = time.Now
	}
	return &Jar{now: now, cookies: make(map[string]*cookie)}
}

// Set inserts or replaces a cookie.
func (j *Jar) Set(name, value string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies[name] = &cookie{value: value, expiresAt: expiresAt}
}

// Absorb merges every Set-Cookie header into the jar.
func (j *Jar) Absorb(header http.Header) {
	if len(header.Values("Set-Cookie")) == 0 {
		return
	}
	parsed := (&http.Response{Header: header}).Cookies()

	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for _, c := range parsed {
		var expires time.Time
		switch {
		case c.MaxAge < 0:
			expires = now
		case c.MaxAge > 0:
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		case !c.Expires.IsZero():
			expires = c.Expires
		}
		j.cookies[c.Name] = &cookie{value: c.Value, expiresAt: expires}
	}
}

// Header returns the Cookie header value for all live cookies.
func (j *Jar) Header() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune()

	names := make([]string, 0, len(j.cookies))
	for name := range j.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+j.cookies[name].value)
	}
	return strings.Join(parts, "; ")
}

// Has reports whether a live cookie with the given name exists.
func (j *Jar) Has(name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune()
	_, ok := j.cookies[name]
	return ok
}

// Value returns the live value of the named cookie, or "".
func (j *Jar) Value(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune()
	if c, ok := j.cookies[name]; ok {
		return c.value
	}
	return ""
}

// Len returns the number of live cookies.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.prune()
	return len(j.cookies)
}

// prune clears and drops dead cookies. Callers hold j.mu.
func (j *Jar) prune() {
	now := j.now()
	for name, c := range j.cookies {
		if !c.expiresAt.IsZero() && !now.Before(c.expiresAt) {
			c.value = ""
		}
		if c.value == "" {
			delete(j.cookies, name)
		}
	}
}
