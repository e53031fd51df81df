package session

import "context"

type key struct{}

var sessionKey = key{}

// WithSession returns a new context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// Lookup returns the session carried by ctx.
func Lookup(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}

// FromContext returns the session carried by ctx. Entry points and callables
// are always invoked with one, so a missing session is a programming error.
func FromContext(ctx context.Context) *Session {
	if s, ok := Lookup(ctx); ok {
		return s
	}
	panic("session: session missing from context")
}
