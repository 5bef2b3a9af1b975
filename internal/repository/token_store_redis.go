package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"wbtxdash/internal/domain"
)

const sessionKeyPrefix = "wbtxdash:session:"

type redisSession struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisTokenStore keeps session tokens in Redis with a key TTL matching the
// session expiry, so sessions survive restarts and are shared across replicas
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// Save stores the session until it expires
func (s *RedisTokenStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}

	data, err := json.Marshal(redisSession{
		Username:  session.Username,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in redis: %w", err)
	}
	return nil
}

// Get retrieves a live session
func (s *RedisTokenStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var stored redisSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if !stored.ExpiresAt.After(time.Now()) {
		return nil, domain.ErrTokenNotFound
	}

	return &domain.Session{
		ID:        sessionID,
		Username:  stored.Username,
		Token:     stored.Token,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Delete removes a session
func (s *RedisTokenStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis expires keys on its own
func (s *RedisTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// Ping checks the Redis connection
func (s *RedisTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
