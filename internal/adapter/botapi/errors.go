package botapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// ErrUnexpectedShape is returned when a response body does not match any
// shape the dashboard understands
var ErrUnexpectedShape = errors.New("unexpected response shape")

// APIError is a non-2xx answer from the bot API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bot API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("bot API returned status %d: %s", e.StatusCode, e.Message)
}

// Unauthorized reports whether the backend rejected the bearer token
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ErrorMessage extracts the user-facing message of an APIError, or "" when
// err carries none
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// payloadMessage pulls a message out of common error bodies:
// {"detail": "..."}, {"detail": [{"msg": "..."}]}, {"message": "..."}, {"error": "..."}
func payloadMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "message", "error"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}

		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 && items[0].Msg != "" {
			return items[0].Msg
		}
	}

	return ""
}
