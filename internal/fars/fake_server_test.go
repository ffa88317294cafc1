package fars

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const loginPage = `<!DOCTYPE html>
<html><body>
<form method="post" action="/login/">
  <input type="hidden" name="csrfmiddlewaretoken" value="%s">
  <input type="text" name="username">
  <input type="password" name="password">
</form>
</body></html>`

// bookingServer imitates the FARS login flow and API. Sessions are keyed by
// the sessionid cookie; revoke() invalidates all of them.
type bookingServer struct {
	*httptest.Server

	mu         sync.Mutex
	token      string
	sessions   map[string]bool
	logins     int
	loginPosts []map[string]string
	apiHits    int
	lastQuery  string
	bookings   string
	gkeys      string
}

func newBookingServer(t *testing.T) *bookingServer {
	t.Helper()
	s := &bookingServer{
		token:    "tok123",
		sessions: make(map[string]bool),
		bookings: `{"count":1,"next":null,"previous":null,"results":[{"id":7,"user":{"username":"alice","first_name":"Alice","last_name":"A"},"booking_group":null,"start":"2024-05-01T10:00:00+02:00","end":"2024-05-01T11:00:00+02:00","comment":"","bookable":3,"repeatgroup":null}]}`,
		gkeys:    "alice:0:1000:2000:5:0\nbob:board:1000:2000:2:1234\n",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login/", s.handleLogin)
	mux.HandleFunc("/api/bookings", s.api(func() string { return s.bookings }, "application/json"))
	mux.HandleFunc("/api/bookables", s.api(func() string {
		return `[{"id":3,"id_str":"sauna","name":"Sauna","description":"","forward_limit_days":14,"length_limit_hours":3}]`
	}, "application/json"))
	mux.HandleFunc("/api/timeslots", s.api(func() string {
		return `[{"bookable":3,"start_time":"06:00:00","start_weekday":"1","end_time":"22:00:00","end_weekday":"1"}]`
	}, "application/json"))
	mux.HandleFunc("/api/gkey", s.api(func() string { return s.gkeys }, "text/plain"))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *bookingServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "secret", Path: "/", MaxAge: 3600})
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprintf(w, loginPage, s.token)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		form := map[string]string{
			"csrfmiddlewaretoken": r.PostForm.Get("csrfmiddlewaretoken"),
			"username":            r.PostForm.Get("username"),
			"password":            r.PostForm.Get("password"),
			"next":                r.PostForm.Get("next"),
			"content_type":        r.Header.Get("Content-Type"),
			"x_csrftoken":         r.Header.Get("X-CSRFToken"),
		}
		s.loginPosts = append(s.loginPosts, form)
		csrf, err := r.Cookie("csrftoken")
		if err != nil || csrf.Value != "secret" || form["csrfmiddlewaretoken"] != s.token {
			http.Error(w, "csrf failure", http.StatusForbidden)
			return
		}
		if form["username"] != "alice" || form["password"] != "pw" {
			w.WriteHeader(http.StatusOK)
			_, _ = fmt.Fprintf(w, loginPage, s.token)
			return
		}
		s.logins++
		id := fmt.Sprintf("session-%d", s.logins)
		s.sessions[id] = true
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: id, Path: "/", MaxAge: 3600})
		next := form["next"]
		if next == "" {
			next = "/"
		}
		http.Redirect(w, r, next, http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *bookingServer) api(body func() string, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.apiHits++
		s.lastQuery = r.URL.RawQuery
		c, err := r.Cookie("sessionid")
		if err != nil || !s.sessions[c.Value] {
			http.Error(w, `{"detail":"Authentication credentials were not provided."}`, http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body()))
	}
}

func (s *bookingServer) revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]bool)
}

func (s *bookingServer) counts() (logins, apiHits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins, s.apiHits
}
