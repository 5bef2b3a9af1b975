package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"wbtxdash/configs"
	"wbtxdash/internal/adapter/botapi"
	"wbtxdash/internal/adapter/statusfeed"
	"wbtxdash/internal/database"
	httpdelivery "wbtxdash/internal/delivery/http"
	"wbtxdash/internal/delivery/ops"
	"wbtxdash/internal/domain"
	"wbtxdash/internal/infra"
	"wbtxdash/internal/middleware"
	"wbtxdash/internal/repository"
	"wbtxdash/internal/service"
	"wbtxdash/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, using environment variables")
	}

	// Load configuration
	cfg, err := configs.Load(".")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := infra.NewLogger(cfg.Log.Level, cfg.IsProduction())

	if cfg.UsesDefaultSecret() {
		if cfg.IsProduction() {
			logger.Fatal("session.secret must be set in production")
		}
		logger.Warn("Using the default session secret; set SESSION_SECRET")
	}

	if err := utils.SetLocation(cfg.Display.Timezone); err != nil {
		logger.WithError(err).Warn("Unknown display timezone, using UTC")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Token stores: Redis and Postgres when configured, memory otherwise
	var stores []domain.TokenStore
	checks := map[string]ops.Pinger{}

	var (
		cache   domain.QueryCache
		sweeper infra.CacheSweeper
	)

	if cfg.Redis.URL != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.URL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer client.Close()

		redisStore := repository.NewRedisTokenStore(client)
		stores = append(stores, redisStore)
		checks["redis"] = redisStore
		cache = repository.NewRedisQueryCache(client, logger)
	} else {
		memoryCache := repository.NewMemoryQueryCache()
		cache = memoryCache
		sweeper = memoryCache
	}

	if cfg.Database.URL != "" {
		db, err := infra.NewDatabase(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}

		pgStore := repository.NewPostgresTokenStore(db)
		stores = append(stores, pgStore)
		checks["postgres"] = pgStore
	}

	tokens := repository.NewSessionStore(logger, stores...)

	// Bot API client and live status feed
	endpoints := botapi.NewEndpoints(cfg.API.BaseURL, cfg.API.WSURL)
	client := botapi.NewClient(endpoints, cfg.API.Timeout, cfg.API.LoginEncoding, logger)

	shape, err := domain.ParseSignalShape(cfg.API.SignalShape)
	if err != nil {
		logger.WithError(err).Fatal("Invalid signal shape")
	}

	hub := service.NewStatusHub(logger)
	feed := statusfeed.NewFeed(endpoints.WebSocket, hub.HandleMessage, logger)
	go feed.Run(ctx)

	// Initialize services
	fence := service.NewRequestFence()
	authService := service.NewAuthService(client, tokens, cache, fence, cfg.Session.TTL, logger)
	queryService := service.NewQueryService(client, cache, cfg.Cache.TTL, logger)
	botService := service.NewBotService(client, hub, logger)

	// Janitor for expired sessions, cached queries and idle fence counters
	scheduler := infra.NewScheduler(tokens, sweeper, fence, cfg.Session.TTL, logger)
	if err := scheduler.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// Dashboard server
	renderer, err := httpdelivery.NewRenderer()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load templates")
	}

	signer := middleware.NewSessionSigner(cfg.Session.Secret, cfg.Session.Secure)

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		AuthHandler:      httpdelivery.NewAuthHandler(authService, signer, logger),
		DashboardHandler: httpdelivery.NewDashboardHandler(queryService, botService, hub, logger),
		ListHandler:      httpdelivery.NewListHandler(queryService, fence, shape, logger),
		StatusHandler:    httpdelivery.NewStatusHandler(hub, logger),
		Signer:           signer,
		Sessions:         authService,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Ops server
	opsSrv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Server.OpsPort),
		Handler: ops.NewRouter(ops.Config{
			Service: "wbtxdash",
			Checks:  checks,
			Status:  hub,
			Feed:    feed,
			Janitor: scheduler,
			Logger:  logger,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.WithFields(logrus.Fields{
		"addr":         srv.Addr,
		"ops_addr":     opsSrv.Addr,
		"env":          cfg.Server.Env,
		"api":          cfg.API.BaseURL,
		"signal_shape": shape,
		"token_stores": len(stores),
	}).Info("wbtxdash starting")

	serve := func(name string, s *http.Server) {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).WithField("server", name).Error("Server failed")
			stop()
		}
	}
	go serve("dashboard", srv)
	go serve("ops", opsSrv)

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Dashboard server forced to shutdown")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Ops server forced to shutdown")
	}

	logger.Info("Servers exited gracefully")
}
