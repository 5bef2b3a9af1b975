package domain

import (
	"encoding/json"
	"strings"
)

// BotStatus is the dashboard's view of the bot. It mirrors the last message
// received on the live status channel, or Pending while a start/stop request
// has been sent but not yet confirmed.
type BotStatus string

// BotStatus values
const (
	BotRunning BotStatus = "running"
	BotStopped BotStatus = "stopped"
	BotPending BotStatus = "pending"
	BotUnknown BotStatus = "unknown"
)

// Label returns the capitalised status shown on the dashboard card.
func (s BotStatus) Label() string {
	switch s {
	case BotRunning:
		return "Running"
	case BotStopped:
		return "Stopped"
	case BotPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// CanStart reports whether the Start button is enabled.
func (s BotStatus) CanStart() bool {
	return s != BotRunning && s != BotPending
}

// CanStop reports whether the Stop button is enabled.
func (s BotStatus) CanStop() bool {
	return s != BotStopped && s != BotPending
}

// ParseBotStatus converts a raw status-channel message into a BotStatus.
// It accepts arbitrary input: anything other than an object carrying a
// "running" or "stopped" status string yields BotUnknown.
func ParseBotStatus(payload []byte) BotStatus {
	var msg struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || len(msg.Status) == 0 {
		return BotUnknown
	}

	var status string
	if err := json.Unmarshal(msg.Status, &status); err != nil {
		return BotUnknown
	}

	switch BotStatus(strings.ToLower(strings.TrimSpace(status))) {
	case BotRunning:
		return BotRunning
	case BotStopped:
		return BotStopped
	default:
		return BotUnknown
	}
}

// BotAction is a control request sent from the dashboard
type BotAction string

// BotAction values
const (
	ActionStart BotAction = "start"
	ActionStop  BotAction = "stop"
)

// Allowed reports whether the action's button is enabled in status s
func (a BotAction) Allowed(s BotStatus) bool {
	switch a {
	case ActionStart:
		return s.CanStart()
	case ActionStop:
		return s.CanStop()
	default:
		return false
	}
}
