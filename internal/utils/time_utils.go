package utils

import (
	"fmt"
	"sync/atomic"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

// DisplayLayout is how timestamps appear in tables
const DisplayLayout = "Jan 2, 2006, 15:04:05"

var displayLoc atomic.Pointer[time.Location]

func init() {
	displayLoc.Store(time.UTC)
}

// SetLocation sets the timezone used to render timestamps
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	displayLoc.Store(loc)
	return nil
}

// GetLocation returns the display *time.Location
func GetLocation() *time.Location {
	return displayLoc.Load()
}

// FormatDisplay renders t in the display timezone; the zero time renders as "-"
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(GetLocation()).Format(DisplayLayout)
}
