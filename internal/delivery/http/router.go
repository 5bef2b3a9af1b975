package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "wbtxdash/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler      *AuthHandler
	DashboardHandler *DashboardHandler
	ListHandler      *ListHandler
	StatusHandler    *StatusHandler
	Signer           *custommiddleware.SessionSigner
	Sessions         custommiddleware.SessionResolver
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Long-lived status sockets would log once per disconnect
			return c.Request().URL.Path == "/ws/status"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.LoadSession(config.Signer, config.Sessions))

	// Auth pages
	e.GET("/", config.AuthHandler.Index)
	e.GET("/login", config.AuthHandler.LoginPage)
	e.POST("/login", config.AuthHandler.Login)
	e.GET("/register", config.AuthHandler.RegisterPage)
	e.POST("/register", config.AuthHandler.Register)
	e.POST("/logout", config.AuthHandler.Logout)

	// Dashboard and its fragments
	dashboard := e.Group("/dashboard")
	{
		dashboard.GET("", config.DashboardHandler.Dashboard)
		dashboard.GET("/stats", config.DashboardHandler.Stats)
		dashboard.GET("/daily", config.DashboardHandler.Daily)
		dashboard.GET("/wallet", config.DashboardHandler.Wallet)
	}

	bot := e.Group("/bot")
	{
		bot.POST("/start", config.DashboardHandler.StartBot)
		bot.POST("/stop", config.DashboardHandler.StopBot)
	}

	// List pages
	signals := e.Group("/signals")
	{
		signals.GET("", config.ListHandler.Signals)
		signals.GET("/table", config.ListHandler.SignalsTable)
		signals.GET("/export", config.ListHandler.ExportSignals)
	}

	trades := e.Group("/trades")
	{
		trades.GET("", config.ListHandler.Trades)
		trades.GET("/table", config.ListHandler.TradesTable)
		trades.GET("/stats", config.ListHandler.TradeStats)
		trades.GET("/export", config.ListHandler.ExportTrades)
	}

	// Live bot status
	e.GET("/ws/status", config.StatusHandler.Stream)
}
