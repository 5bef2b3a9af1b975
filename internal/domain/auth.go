package domain

import (
	"time"

	"github.com/google/uuid"
)

// Credentials are what the login and register forms submit
type Credentials struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// AuthContext is the per-request authentication state. It is built from the
// session cookie at the start of each request and never shared globally.
type AuthContext struct {
	Token string
}

// IsAuthenticated is derived from the presence of a bearer token
func (a AuthContext) IsAuthenticated() bool {
	return a.Token != ""
}

// Session ties a browser cookie to a stored bearer token
type Session struct {
	ID        uuid.UUID
	Username  string
	Token     string
	ExpiresAt time.Time
}
