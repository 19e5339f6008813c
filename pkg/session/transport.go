package session

import (
	"net/http"
	"strings"
)

// HeaderTransport reads the session credential from a request header.
type HeaderTransport struct {
	header string
	prefix string
}

// HeaderOption configures a HeaderTransport.
type HeaderOption func(*HeaderTransport)

// WithHeaderPrefix sets the scheme stripped from the header value. Defaults to "Bearer ".
func WithHeaderPrefix(prefix string) HeaderOption {
	return func(t *HeaderTransport) {
		t.prefix = prefix
	}
}

// NewHeaderTransport reads credentials from header, "Authorization" when empty.
func NewHeaderTransport(header string, opts ...HeaderOption) HeaderTransport {
	if header == "" {
		header = "Authorization"
	}
	t := HeaderTransport{header: header, prefix: "Bearer "}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Token returns the credential of r, or "" when the header is missing.
func (t HeaderTransport) Token(r *http.Request) string {
	value := strings.TrimSpace(r.Header.Get(t.header))
	if t.prefix != "" && len(value) >= len(t.prefix) && strings.EqualFold(value[:len(t.prefix)], t.prefix) {
		value = strings.TrimSpace(value[len(t.prefix):])
	}
	return value
}

// Middleware resolves the session of each request, opening one on the first
// request of a credential, and stores it with WithSession. Requests without a
// credential, or whose session cannot be opened, pass through without one.
func (r *Registry) Middleware(t HeaderTransport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := t.Token(req)
			if token == "" {
				next.ServeHTTP(w, req)
				return
			}
			s, err := r.Login(req.Context(), token)
			if err != nil {
				next.ServeHTTP(w, req)
				return
			}
			next.ServeHTTP(w, req.WithContext(WithSession(req.Context(), s)))
		})
	}
}

// LogoutHandler closes the session of the request credential and answers 204.
// It is idempotent.
func (r *Registry) LogoutHandler(t HeaderTransport) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Logout(t.Token(req))
		w.WriteHeader(http.StatusNoContent)
	})
}
