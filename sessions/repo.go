package sessions

import (
	"context"
	"time"
)

// Repo defines the storage operations for sign-in sessions.
type Repo interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// GetByToken returns the session for a cookie token, ErrSessionNotFound when absent
	GetByToken(ctx context.Context, token string) (*Session, error)

	// Delete removes the session for a token; deleting an unknown token is not an error
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before the given time
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
