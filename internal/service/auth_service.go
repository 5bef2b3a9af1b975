package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// ErrSessionExpired is returned when the bot API hands out a bearer token
// that has already expired
var ErrSessionExpired = errors.New("bearer token already expired")

// AuthService turns bot API logins into dashboard sessions
type AuthService struct {
	api    domain.AuthAPI
	tokens domain.TokenStore
	cache  domain.QueryCache
	fence  *RequestFence
	ttl    time.Duration
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewAuthService creates a new AuthService. ttl caps the session lifetime.
func NewAuthService(api domain.AuthAPI, tokens domain.TokenStore, cache domain.QueryCache, fence *RequestFence, ttl time.Duration, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		api:    api,
		tokens: tokens,
		cache:  cache,
		fence:  fence,
		ttl:    ttl,
		now:    time.Now,
		log:    logger.WithField("component", "auth"),
	}
}

// TTL returns the configured session lifetime
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login exchanges credentials for a bearer token and stores it under a new
// session. Concurrent logins are not coordinated; each gets its own session.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	token, err := s.api.Login(ctx, creds)
	if err != nil {
		s.log.WithError(err).WithField("username", creds.Username).Warn("Login failed")
		return nil, err
	}

	session := &domain.Session{
		ID:        uuid.New(),
		Username:  creds.Username,
		Token:     token,
		ExpiresAt: s.expiry(token),
	}
	if !session.ExpiresAt.After(s.now()) {
		s.log.WithFields(logrus.Fields{
			"username":   creds.Username,
			"expires_at": session.ExpiresAt,
		}).Warn("Login returned an expired token")
		return nil, ErrSessionExpired
	}

	if err := s.tokens.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"username":   creds.Username,
		"expires_at": session.ExpiresAt,
	}).Info("User logged in")
	return session, nil
}

// expiry is now+ttl, shortened to the bearer token's own exp claim when the
// token is a JWT that carries one
func (s *AuthService) expiry(token string) time.Time {
	expiresAt := s.now().Add(s.ttl)

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return expiresAt
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		return claims.ExpiresAt.Time
	}
	return expiresAt
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) error {
	if err := s.api.Register(ctx, creds); err != nil {
		s.log.WithError(err).WithField("username", creds.Username).Warn("Registration failed")
		return err
	}

	s.log.WithField("username", creds.Username).Info("User registered")
	return nil
}

// Logout forgets the session's token, cached queries and request generations
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}

	var errs []error
	if err := s.tokens.Delete(ctx, sessionID); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete token: %w", err))
	}
	if err := s.cache.InvalidatePrefix(ctx, SessionQueryPrefix(sessionID)); err != nil {
		errs = append(errs, fmt.Errorf("failed to clear cached queries: %w", err))
	}
	s.fence.ForgetSession(sessionID)

	s.log.WithField("session_id", sessionID).Info("User logged out")
	return errors.Join(errs...)
}

// Resolve builds the request's auth context from the session. A missing or
// expired session yields an anonymous context.
func (s *AuthService) Resolve(ctx context.Context, sessionID uuid.UUID) domain.AuthContext {
	if sessionID == uuid.Nil {
		return domain.AuthContext{}
	}

	session, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenNotFound) {
			s.log.WithError(err).Warn("Session lookup failed")
		}
		return domain.AuthContext{}
	}

	return domain.AuthContext{Token: session.Token}
}
