package service

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wbtxdash/internal/domain"
)

func newTestHub() *StatusHub {
	logger, _ := test.NewNullLogger()
	return NewStatusHub(logger)
}

func TestStatusHub_HandleMessage(t *testing.T) {
	hub := newTestHub()
	assert.Equal(t, domain.BotUnknown, hub.Current())

	tests := []struct {
		payload string
		want    domain.BotStatus
	}{
		{`{"status":"running"}`, domain.BotRunning},
		{`{"status":"stopped"}`, domain.BotStopped},
		{`{"status":"RUNNING"}`, domain.BotRunning},
		{`{"status":"paused"}`, domain.BotUnknown},
		{`{"status":"stopped","extra":true}`, domain.BotStopped},
		{`{"status":42}`, domain.BotUnknown},
		{`{}`, domain.BotUnknown},
		{`[1,2,3]`, domain.BotUnknown},
		{`null`, domain.BotUnknown},
		{`not json at all`, domain.BotUnknown},
		{``, domain.BotUnknown},
	}

	for _, tt := range tests {
		hub.HandleMessage([]byte(tt.payload))
		assert.Equal(t, tt.want, hub.Current(), "payload %q", tt.payload)
	}
}

func TestStatusHub_BeginGatesActions(t *testing.T) {
	hub := newTestHub()

	hub.Set(domain.BotRunning)
	_, err := hub.Begin(domain.ActionStart)
	assert.ErrorIs(t, err, ErrActionNotAllowed)

	prev, err := hub.Begin(domain.ActionStop)
	require.NoError(t, err)
	assert.Equal(t, domain.BotRunning, prev)
	assert.Equal(t, domain.BotPending, hub.Current())

	_, err = hub.Begin(domain.ActionStop)
	assert.ErrorIs(t, err, ErrActionNotAllowed)
	_, err = hub.Begin(domain.ActionStart)
	assert.ErrorIs(t, err, ErrActionNotAllowed)

	hub.Set(domain.BotUnknown)
	_, err = hub.Begin(domain.ActionStart)
	assert.NoError(t, err)
}

func TestStatusHub_Restore(t *testing.T) {
	hub := newTestHub()
	hub.Set(domain.BotStopped)

	prev, err := hub.Begin(domain.ActionStart)
	require.NoError(t, err)
	hub.Restore(prev)
	assert.Equal(t, domain.BotStopped, hub.Current())

	prev, err = hub.Begin(domain.ActionStart)
	require.NoError(t, err)
	hub.HandleMessage([]byte(`{"status":"running"}`))
	hub.Restore(prev)
	assert.Equal(t, domain.BotRunning, hub.Current())
}

func TestStatusHub_PendingDecaysToSubscribers(t *testing.T) {
	hub := newTestHub()
	hub.pendingTimeout = 30 * time.Millisecond
	hub.Set(domain.BotStopped)

	updates, cancel := hub.Subscribe()
	defer cancel()
	assert.Equal(t, domain.BotStopped, <-updates)

	_, err := hub.Begin(domain.ActionStart)
	require.NoError(t, err)
	assert.Equal(t, domain.BotPending, <-updates)

	// Nobody polls Current; the decay must still reach the subscriber.
	select {
	case status := <-updates:
		assert.Equal(t, domain.BotUnknown, status)
	case <-time.After(time.Second):
		t.Fatal("pending status never decayed")
	}
	assert.Equal(t, domain.BotUnknown, hub.Current())
}

func TestStatusHub_ConfirmationCancelsDecay(t *testing.T) {
	hub := newTestHub()
	hub.pendingTimeout = 30 * time.Millisecond
	hub.Set(domain.BotStopped)

	_, err := hub.Begin(domain.ActionStart)
	require.NoError(t, err)
	hub.HandleMessage([]byte(`{"status":"running"}`))

	updates, cancel := hub.Subscribe()
	defer cancel()
	assert.Equal(t, domain.BotRunning, <-updates)

	select {
	case status := <-updates:
		t.Fatalf("unexpected update %s after confirmation", status)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, domain.BotRunning, hub.Current())
}

func TestStatusHub_StaleTimerIgnored(t *testing.T) {
	hub := newTestHub()
	hub.pendingTimeout = time.Hour
	hub.Set(domain.BotStopped)

	_, err := hub.Begin(domain.ActionStart)
	require.NoError(t, err)
	hub.Set(domain.BotStopped)
	_, err = hub.Begin(domain.ActionStart)
	require.NoError(t, err)

	// A timer armed by the first Begin must not clear the second one.
	hub.expirePending(hub.pendingGen - 1)
	assert.Equal(t, domain.BotPending, hub.Current())

	hub.expirePending(hub.pendingGen)
	assert.Equal(t, domain.BotUnknown, hub.Current())
}

func TestStatusHub_Subscribe(t *testing.T) {
	hub := newTestHub()
	hub.Set(domain.BotStopped)

	updates, cancel := hub.Subscribe()
	assert.Equal(t, domain.BotStopped, <-updates)
	assert.Equal(t, 1, hub.Subscribers())

	// A slow reader only sees the latest value.
	hub.Set(domain.BotPending)
	hub.Set(domain.BotRunning)
	assert.Equal(t, domain.BotRunning, <-updates)

	hub.Set(domain.BotRunning)
	select {
	case s := <-updates:
		t.Fatalf("unexpected update %s for unchanged status", s)
	default:
	}

	cancel()
	cancel()
	assert.Zero(t, hub.Subscribers())
	_, open := <-updates
	assert.False(t, open)
}
