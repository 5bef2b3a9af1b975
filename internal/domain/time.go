package domain

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleTime handles the several timestamp layouts the bot API emits
type FlexibleTime struct {
	time.Time
}

var flexibleTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999", // naive ISO timestamps, no zone
	"2006-01-02T15:04:05",
	time.DateTime,
}

// UnmarshalJSON implements custom JSON unmarshalling for flexible timestamp parsing
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "" || s == "null" {
		ft.Time = time.Time{}
		return nil
	}

	for _, layout := range flexibleTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp: %s", s)
}

// MarshalJSON writes the timestamp back as RFC3339
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	if ft.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + ft.UTC().Format(time.RFC3339Nano) + `"`), nil
}
