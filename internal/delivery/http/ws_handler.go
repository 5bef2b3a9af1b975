package http

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/delivery/http/dto"
	"wbtxdash/internal/service"
)

const statusWriteTimeout = 10 * time.Second

// StatusHandler relays bot status changes to browsers over a websocket
type StatusHandler struct {
	hub      *service.StatusHub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewStatusHandler creates a new StatusHandler. The default upgrader only
// accepts same-origin connections.
func NewStatusHandler(hub *service.StatusHub, logger logrus.FieldLogger) *StatusHandler {
	return &StatusHandler{
		hub: hub,
		log: logger.WithField("handler", "status"),
	}
}

// Stream pushes the current status on connect and every change after it
// GET /ws/status
func (h *StatusHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.WithError(err).Warn("Failed to upgrade status connection")
		return nil
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// The browser never sends anything; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case status := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(statusWriteTimeout))
			if err := conn.WriteJSON(dto.NewStatusView(status)); err != nil {
				h.log.WithError(err).Debug("Status client went away")
				return nil
			}
		}
	}
}
