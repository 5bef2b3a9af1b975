package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTokenNotFound is returned when a session has no stored bearer token
var ErrTokenNotFound = errors.New("token not found")

// TokenStore persists the bearer token of each dashboard session
type TokenStore interface {
	// Save stores the token for a session until expiresAt
	Save(ctx context.Context, session *Session) error

	// Get retrieves the session's token, ErrTokenNotFound if absent or expired
	Get(ctx context.Context, sessionID uuid.UUID) (*Session, error)

	// Delete removes the session's token; deleting an absent token is not an error
	Delete(ctx context.Context, sessionID uuid.UUID) error

	// DeleteExpired removes every token that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// QueryCache holds recent API responses keyed by resource and view state
type QueryCache interface {
	// Get returns the cached bytes and whether they were present and fresh
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// InvalidatePrefix removes every entry whose key starts with prefix
	InvalidatePrefix(ctx context.Context, prefix string) error
}
