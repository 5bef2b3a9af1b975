package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"wbtxdash/internal/domain"
)

// SessionCookie is the name of the dashboard session cookie
const SessionCookie = "token"

const (
	sessionIDKey = "session_id"
	usernameKey  = "username"
	authKey      = "auth"
)

// SessionClaims represents the session cookie claims
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	Username  string    `json:"username"`
	jwt.RegisteredClaims
}

// SessionSigner signs and verifies session cookies
type SessionSigner struct {
	secret []byte
	secure bool
}

// NewSessionSigner creates a signer. secure controls the cookie's Secure flag.
func NewSessionSigner(secret string, secure bool) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), secure: secure}
}

// Sign generates the cookie value for a session
func (s *SessionSigner) Sign(session *domain.Session) (string, error) {
	claims := &SessionClaims{
		SessionID: session.ID,
		Username:  session.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a cookie value and returns its claims
func (s *SessionSigner) Parse(value string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// SetSessionCookie writes the signed session cookie
func (s *SessionSigner) SetSessionCookie(c echo.Context, session *domain.Session) error {
	value, err := s.Sign(session)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// ClearSessionCookie deletes the session cookie
func (s *SessionSigner) ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// SessionResolver looks up the bearer token behind a session
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID uuid.UUID) domain.AuthContext
}

// LoadSession builds the request's auth context from the session cookie. It
// never rejects a request: a missing, invalid or expired cookie leaves the
// request anonymous and API calls go out without a bearer token.
func LoadSession(signer *SessionSigner, resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(authKey, domain.AuthContext{})

			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := signer.Parse(cookie.Value)
			if err != nil {
				c.Logger().Debugf("ignoring invalid session cookie: %v", err)
				return next(c)
			}

			c.Set(sessionIDKey, claims.SessionID)
			c.Set(usernameKey, claims.Username)
			c.Set(authKey, resolver.Resolve(c.Request().Context(), claims.SessionID))

			return next(c)
		}
	}
}

// GetAuth extracts the auth context set by LoadSession
func GetAuth(c echo.Context) domain.AuthContext {
	auth, _ := c.Get(authKey).(domain.AuthContext)
	return auth
}

// GetSessionID extracts the session ID, uuid.Nil when there is no session
func GetSessionID(c echo.Context) uuid.UUID {
	id, _ := c.Get(sessionIDKey).(uuid.UUID)
	return id
}

// GetUsername extracts the username stored in the session cookie
func GetUsername(c echo.Context) string {
	name, _ := c.Get(usernameKey).(string)
	return name
}
