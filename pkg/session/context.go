package session

import "context"

type sessionCtxKey struct{}

// IDKey is the context key under which WithSession stores the session ID.
// Pass it to logger.WithContextValue to tag log records.
type IDKey struct{}

// WithSession returns a copy of ctx carrying s and its ID.
func WithSession(ctx context.Context, s *Session) context.Context {
	ctx = context.WithValue(ctx, sessionCtxKey{}, s)
	return context.WithValue(ctx, IDKey{}, s.ID)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	return s, ok && s != nil
}
