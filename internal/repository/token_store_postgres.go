package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wbtxdash/internal/domain"
)

// PostgresTokenStore persists session tokens in the dashboard_sessions table
type PostgresTokenStore struct {
	db *pgxpool.Pool
}

// NewPostgresTokenStore creates a new repository instance
func NewPostgresTokenStore(db *pgxpool.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{db: db}
}

// Save updates or creates the session row
func (s *PostgresTokenStore) Save(ctx context.Context, session *domain.Session) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO dashboard_sessions (id, username, token, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, session.ID, session.Username, session.Token, session.ExpiresAt)

	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}

	return nil
}

// Get retrieves a session that has not expired
func (s *PostgresTokenStore) Get(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session := domain.Session{ID: sessionID}
	err := s.db.QueryRow(ctx, `
		SELECT username, token, expires_at
		FROM dashboard_sessions
		WHERE id = $1 AND expires_at > NOW()
	`, sessionID).Scan(&session.Username, &session.Token, &session.ExpiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	return &session, nil
}

// Delete removes the session row
func (s *PostgresTokenStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM dashboard_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// DeleteExpired removes every session that expired before now
func (s *PostgresTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM dashboard_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Ping checks the database connection
func (s *PostgresTokenStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
