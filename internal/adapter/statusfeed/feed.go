package statusfeed

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	minBackoff = time.Second
	maxBackoff = 16 * time.Second
)

// Handler receives every raw message read from the upstream socket
type Handler func(payload []byte)

// Feed keeps one connection open to the bot's live status socket and hands
// each message to a Handler. It reconnects with capped exponential backoff
// until its context is cancelled.
type Feed struct {
	url     string
	dialer  *websocket.Dialer
	handler Handler
	log     logrus.FieldLogger

	connected  atomic.Bool
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewFeed creates a feed for the given ws:// or wss:// address
func NewFeed(url string, handler Handler, logger logrus.FieldLogger) *Feed {
	return &Feed{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		handler:    handler,
		log:        logger.WithField("component", "statusfeed"),
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// Connected reports whether the upstream socket is currently open
func (f *Feed) Connected() bool {
	return f.connected.Load()
}

// Run blocks until ctx is cancelled
func (f *Feed) Run(ctx context.Context) {
	backoff := f.minBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		f.log.WithFields(logrus.Fields{"url": f.url, "backoff": backoff}).Info("Connecting to status feed")
		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			f.log.WithError(err).Warn("Status feed connection failed")
			if !f.wait(ctx, backoff) {
				return
			}
			backoff *= 2
			if backoff > f.maxBackoff {
				backoff = f.maxBackoff
			}
			continue
		}

		backoff = f.minBackoff
		f.connected.Store(true)
		f.log.Info("Status feed connected")

		err = f.readLoop(ctx, conn)
		f.connected.Store(false)
		if ctx.Err() != nil {
			f.log.Info("Status feed closed")
			return
		}

		f.log.WithError(err).Warn("Status feed disconnected")
		if !f.wait(ctx, backoff) {
			return
		}
	}
}

func (f *Feed) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// readLoop delivers messages until the connection fails or ctx ends.
// Cancellation closes the connection to unblock ReadMessage.
func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.handler(payload)
	}
}
