package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// BotControl is the part of the bot API that starts and stops the bot
type BotControl interface {
	StartBot(ctx context.Context, token string) error
	StopBot(ctx context.Context, token string) error
}

// BotService sends start/stop requests and keeps the status hub in step.
// The status stays Pending after a successful request until the live feed
// reports the new state.
type BotService struct {
	api BotControl
	hub *StatusHub
	log logrus.FieldLogger
}

// NewBotService creates a new BotService
func NewBotService(api BotControl, hub *StatusHub, logger logrus.FieldLogger) *BotService {
	return &BotService{
		api: api,
		hub: hub,
		log: logger.WithField("component", "bot"),
	}
}

// Start asks the backend to start the bot
func (s *BotService) Start(ctx context.Context, token string) error {
	return s.run(ctx, domain.ActionStart, token, s.api.StartBot)
}

// Stop asks the backend to stop the bot
func (s *BotService) Stop(ctx context.Context, token string) error {
	return s.run(ctx, domain.ActionStop, token, s.api.StopBot)
}

func (s *BotService) run(ctx context.Context, action domain.BotAction, token string, call func(context.Context, string) error) error {
	prev, err := s.hub.Begin(action)
	if err != nil {
		return fmt.Errorf("%s bot while %s: %w", action, prev, err)
	}

	if err := call(ctx, token); err != nil {
		s.hub.Restore(prev)
		s.log.WithError(err).WithField("action", action).Error("Bot control request failed")
		return fmt.Errorf("failed to %s bot: %w", action, err)
	}

	s.log.WithField("action", action).Info("Bot control request accepted")
	return nil
}
