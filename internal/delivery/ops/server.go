package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// Pinger is a backing store that can report its health
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusSource exposes the dashboard's view of the bot
type StatusSource interface {
	Current() domain.BotStatus
	Subscribers() int
}

// FeedState reports whether the upstream status channel is connected
type FeedState interface {
	Connected() bool
}

// Janitor runs one housekeeping pass
type Janitor interface {
	RunNow()
}

// Config holds the dependencies of the ops listener
type Config struct {
	Service string
	Checks  map[string]Pinger
	Status  StatusSource
	Feed    FeedState
	Janitor Janitor
	Logger  logrus.FieldLogger
}

type healthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies"`
	StatusFeed   string            `json:"status_feed"`
	Timestamp    string            `json:"timestamp"`
}

type statusResponse struct {
	Bot         domain.BotStatus `json:"bot"`
	Label       string           `json:"label"`
	Subscribers int              `json:"subscribers"`
	FeedOnline  bool             `json:"feed_online"`
}

// NewRouter builds the ops handler: health, bot status and a manual janitor
// trigger. It is served on its own port, away from the dashboard.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", handleHealth(cfg))
	r.Get("/status", handleStatus(cfg))
	r.Post("/janitor/trigger", handleTriggerJanitor(cfg))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func handleHealth(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:       "healthy",
			Service:      cfg.Service,
			Dependencies: make(map[string]string, len(cfg.Checks)),
			StatusFeed:   "disconnected",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}

		names := make([]string, 0, len(cfg.Checks))
		for name := range cfg.Checks {
			names = append(names, name)
		}
		sort.Strings(names)

		code := http.StatusOK
		for _, name := range names {
			if err := cfg.Checks[name].Ping(ctx); err != nil {
				cfg.Logger.WithError(err).WithField("dependency", name).Warn("Health check failed")
				resp.Dependencies[name] = "unhealthy"
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "healthy"
		}

		// The upstream feed reconnects on its own; it never fails the check.
		if cfg.Feed != nil && cfg.Feed.Connected() {
			resp.StatusFeed = "connected"
		}

		writeJSON(w, code, resp)
	}
}

func handleStatus(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := cfg.Status.Current()
		writeJSON(w, http.StatusOK, statusResponse{
			Bot:         status,
			Label:       status.Label(),
			Subscribers: cfg.Status.Subscribers(),
			FeedOnline:  cfg.Feed != nil && cfg.Feed.Connected(),
		})
	}
}

func handleTriggerJanitor(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg.Logger.Info("Janitor pass triggered via ops API")
		go cfg.Janitor.RunNow()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"message": "Janitor pass triggered",
			"status":  "processing",
		})
	}
}
