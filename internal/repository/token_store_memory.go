package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// MemoryTokenStore keeps session tokens in process memory. Each entry expires
// with its session. It is only used when no shared store is configured, so a
// logout on one instance can never be shadowed by a stale local copy.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[uuid.UUID, domain.Session]
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		cache: ttlcache.New[uuid.UUID, domain.Session](
			ttlcache.WithDisableTouchOnHit[uuid.UUID, domain.Session](),
		),
	}
}

// NewSessionStore picks the token store for the process. Shared stores
// (Redis, Postgres) replace the in-memory one entirely.
func NewSessionStore(logger logrus.FieldLogger, shared ...domain.TokenStore) domain.TokenStore {
	if len(shared) == 0 {
		return NewMemoryTokenStore()
	}
	return NewMultiTokenStore(logger, shared...)
}

// Save stores or replaces the session's token. A session that has already
// expired is dropped.
func (s *MemoryTokenStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		s.cache.Delete(session.ID)
		return nil
	}

	s.cache.Set(session.ID, *session, ttl)
	return nil
}

// Get retrieves a session that has not expired
func (s *MemoryTokenStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	item := s.cache.Get(sessionID)
	if item == nil {
		return nil, domain.ErrTokenNotFound
	}

	session := item.Value()
	return &session, nil
}

// Delete removes a session
func (s *MemoryTokenStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	s.cache.Delete(sessionID)
	return nil
}

// DeleteExpired evicts expired sessions and reports how many were removed.
// Entries expire on their own clock, so now is not consulted.
func (s *MemoryTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return sweep(s.cache), nil
}

// Len returns the number of live sessions
func (s *MemoryTokenStore) Len() int {
	return s.cache.Len()
}

// sweep drops expired items and returns the eviction delta
func sweep[K comparable, V any](cache *ttlcache.Cache[K, V]) int {
	before := cache.Metrics().Evictions
	cache.DeleteExpired()
	return int(cache.Metrics().Evictions - before)
}
