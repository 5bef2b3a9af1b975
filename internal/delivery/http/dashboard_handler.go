package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/delivery/http/dto"
	"wbtxdash/internal/middleware"
	"wbtxdash/internal/service"
)

// DashboardHandler serves the dashboard page, its fragments and the bot controls
type DashboardHandler struct {
	queries *service.QueryService
	bot     *service.BotService
	hub     *service.StatusHub
	log     logrus.FieldLogger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(queries *service.QueryService, bot *service.BotService, hub *service.StatusHub, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{
		queries: queries,
		bot:     bot,
		hub:     hub,
		log:     logger.WithField("handler", "dashboard"),
	}
}

// requester identifies the caller for the query service
func requester(c echo.Context) service.Requester {
	return service.Requester{
		SessionID: middleware.GetSessionID(c),
		Token:     middleware.GetAuth(c).Token,
	}
}

// Dashboard renders the dashboard page. Stats, daily series and wallet are
// fetched by the page itself as fragments.
// GET /dashboard
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	return c.Render(http.StatusOK, "dashboard", newPage(c, "Dashboard", "dashboard", dto.NewStatusView(h.hub.Current())))
}

// Stats renders the stat cards, zeroed when the request fails
// GET /dashboard/stats
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.queries.Stats(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch stats")
		notify(c, LevelError, MsgStatsFailed)
		stats = nil
	}
	return c.Render(http.StatusOK, "stats", dto.NewStatsCards(stats))
}

// Daily renders the daily profit chart, empty when the request fails
// GET /dashboard/daily
func (h *DashboardHandler) Daily(c echo.Context) error {
	days, err := h.queries.DailyStats(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch daily stats")
		notify(c, LevelError, MsgDailyFailed)
		days = nil
	}
	return c.Render(http.StatusOK, "daily", dto.NewDailyChart(days))
}

// Wallet renders the balances card, zeroed when the request fails
// GET /dashboard/wallet
func (h *DashboardHandler) Wallet(c echo.Context) error {
	wallet, err := h.queries.Wallet(c.Request().Context(), requester(c))
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch wallet balances")
		notify(c, LevelError, MsgWalletFailed)
		wallet = nil
	}
	return c.Render(http.StatusOK, "wallet", dto.NewWalletView(wallet))
}

// StartBot requests a bot start and re-renders the controls
// POST /bot/start
func (h *DashboardHandler) StartBot(c echo.Context) error {
	err := h.bot.Start(c.Request().Context(), middleware.GetAuth(c).Token)
	return h.controls(c, err, MsgBotStarted, MsgBotStartFailed)
}

// StopBot requests a bot stop and re-renders the controls
// POST /bot/stop
func (h *DashboardHandler) StopBot(c echo.Context) error {
	err := h.bot.Stop(c.Request().Context(), middleware.GetAuth(c).Token)
	return h.controls(c, err, MsgBotStopped, MsgBotStopFailed)
}

// controls renders the bot controls for the hub's current status. A request
// made while the button is disabled changes nothing and shows no notice.
func (h *DashboardHandler) controls(c echo.Context, err error, success, failure string) error {
	switch {
	case err == nil:
		notify(c, LevelSuccess, success)
	case errors.Is(err, service.ErrActionNotAllowed):
	default:
		notify(c, LevelError, failure)
	}
	return c.Render(http.StatusOK, "bot_controls", dto.NewStatusView(h.hub.Current()))
}
