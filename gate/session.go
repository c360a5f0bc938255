package gate

import (
	"context"
	"time"
)

// SessionUser is the user part of the session introspection payload.
type SessionUser struct {
	ID             string `json:"id"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	Image          string `json:"image,omitempty"`
	HasSetPassword bool   `json:"hasSetPassword"`
}

// Session is the payload of GET /api/auth/session for a signed-in user.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// ValidationResult is what a SessionValidator reports. Err is informational only:
// any failure is simply an invalid session.
type ValidationResult struct {
	Valid   bool
	Session *Session
	Err     error
}

// Context is the per-request input of Decide.
type Context struct {
	Pathname     string
	SessionToken string
	Session      *Session
	UserAgent    string
}

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession stores a validated session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session the gate validated for this request, if any.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok && s != nil
}
