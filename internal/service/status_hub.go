package service

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// ErrActionNotAllowed is returned when a start/stop request arrives while its
// button is disabled
var ErrActionNotAllowed = errors.New("action not allowed in current bot status")

// defaultPendingTimeout bounds how long Pending is held without confirmation
// from the status feed
const defaultPendingTimeout = 30 * time.Second

// StatusHub holds the last known bot status and fans changes out to
// subscribers. Each subscriber channel buffers one value; a slow reader only
// ever sees the latest status.
type StatusHub struct {
	mu             sync.Mutex
	status         domain.BotStatus
	pendingTimeout time.Duration
	pendingTimer   *time.Timer
	pendingGen     uint64

	subscribers map[int]chan domain.BotStatus
	nextID      int

	log logrus.FieldLogger
}

// NewStatusHub creates a hub in the Unknown state
func NewStatusHub(logger logrus.FieldLogger) *StatusHub {
	return &StatusHub{
		status:         domain.BotUnknown,
		pendingTimeout: defaultPendingTimeout,
		subscribers:    make(map[int]chan domain.BotStatus),
		log:            logger.WithField("component", "statushub"),
	}
}

// Current returns the held status
func (h *StatusHub) Current() domain.BotStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// HandleMessage replaces the status with whatever a raw feed message says.
// It accepts any payload.
func (h *StatusHub) HandleMessage(payload []byte) {
	status := domain.ParseBotStatus(payload)
	if status == domain.BotUnknown {
		h.log.WithField("payload", truncate(payload, 128)).Debug("Unrecognized status message")
	}
	h.Set(status)
}

// Set replaces the held status
func (h *StatusHub) Set(status domain.BotStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.setLocked(status)
}

// Begin moves to Pending if action is allowed and returns the status to
// restore should the request fail
func (h *StatusHub) Begin(action domain.BotAction) (domain.BotStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.status
	if !action.Allowed(prev) {
		return prev, ErrActionNotAllowed
	}

	h.setLocked(domain.BotPending)

	h.pendingGen++
	gen := h.pendingGen
	h.pendingTimer = time.AfterFunc(h.pendingTimeout, func() { h.expirePending(gen) })
	return prev, nil
}

// expirePending decays an unconfirmed Pending to Unknown and pushes it to
// subscribers. gen ties the timer to the Begin that armed it.
func (h *StatusHub) expirePending(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gen != h.pendingGen || h.status != domain.BotPending {
		return
	}
	h.log.Warn("No status confirmation received, status is unknown")
	h.setLocked(domain.BotUnknown)
}

// Restore puts prev back unless a feed message already replaced Pending
func (h *StatusHub) Restore(prev domain.BotStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status == domain.BotPending {
		h.setLocked(prev)
	}
}

// Subscribe returns a channel that receives the current status immediately
// and every change after it, plus a function that ends the subscription
func (h *StatusHub) Subscribe() (<-chan domain.BotStatus, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	ch := make(chan domain.BotStatus, 1)
	ch <- h.status
	h.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}
}

// Subscribers returns the number of open subscriptions
func (h *StatusHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

func (h *StatusHub) setLocked(status domain.BotStatus) {
	if h.status == status {
		return
	}

	h.log.WithFields(logrus.Fields{"from": h.status, "to": status}).Info("Bot status changed")
	if h.status == domain.BotPending && h.pendingTimer != nil {
		h.pendingTimer.Stop()
		h.pendingTimer = nil
	}
	h.status = status

	for _, ch := range h.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- status
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
