package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/codeclip/internal/app"
	"github.com/felixgeelhaar/codeclip/internal/config"
	"github.com/felixgeelhaar/codeclip/internal/metrics"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/storage"
	"github.com/felixgeelhaar/codeclip/internal/validation"
)

// Server represents the codeclip daemon HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	app     *app.App
	hub     *Hub
	limiter ratelimit.RateLimiter
	version string
	started time.Time
}

// ServerConfig holds configuration for creating a new server
type ServerConfig struct {
	Config  *config.LocalConfig
	Dir     string // codeclip home; defaults to ~/.codeclip
	Version string
}

// NewServer opens storage and notifiers and wires the HTTP routes
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	s := &Server{
		cfg:     cfg.Config,
		router:  http.NewServeMux(),
		hub:     NewHub(),
		version: cfg.Version,
		started: time.Now(),
	}
	if s.version == "" {
		s.version = "dev"
	}

	a, err := app.New(ctx, cfg.Config, app.Options{
		Dir:       cfg.Dir,
		Notify:    true,
		Notifiers: []progress.Notifier{s.hub},
	})
	if err != nil {
		return nil, fmt.Errorf("open app: %w", err)
	}
	s.app = a

	if w, ok := a.Slots.(storage.Watcher); ok {
		if err := s.hub.forwardChanges(ctx, w); err != nil {
			slog.Warn("slot watching unavailable", "error", err)
		}
	}

	if rate := cfg.Config.Daemon.RateLimit; rate > 0 {
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     rate,
			Burst:    rate * 2,
			Interval: time.Second,
		})
	}

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Config.Daemon.Bind, cfg.Config.Daemon.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(
		correlationIDMiddleware(
			loggingMiddleware(
				rateLimitMiddleware(s.limiter,
					metricsMiddleware(s.router)))))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	// Progress
	s.router.HandleFunc("GET /v1/progress", s.handleGetProgress)
	s.router.HandleFunc("POST /v1/progress/completions", s.handleRecordCompletion)
	s.router.HandleFunc("GET /v1/progress/overview", s.handleOverview)
	s.router.HandleFunc("GET /v1/progress/achievements", s.handleAchievements)
	s.router.HandleFunc("GET /v1/progress/skills", s.handleSkills)
	s.router.HandleFunc("GET /v1/progress/weekly", s.handleWeekly)
	s.router.HandleFunc("GET /v1/progress/events", s.handleEvents)

	// Calendar
	s.router.HandleFunc("GET /v1/calendar", s.handleCalendar)

	// Goals
	s.router.HandleFunc("GET /v1/goals", s.handleListGoals)
	s.router.HandleFunc("POST /v1/goals", s.handleCreateGoal)
	s.router.HandleFunc("GET /v1/goals/{id}", s.handleGetGoal)
	s.router.HandleFunc("DELETE /v1/goals/{id}", s.handleDeleteGoal)
	s.router.HandleFunc("POST /v1/goals/{id}/progress", s.handleGoalProgress)

	s.router.Handle("GET /metrics", metrics.Handler())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	slog.Info("starting codeclip daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.Storage.Backend,
		"version", s.version,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes storage
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	err := s.server.Shutdown(ctx)

	if s.limiter != nil {
		if cerr := s.limiter.Close(); cerr != nil {
			slog.Warn("failed to close rate limiter", "error", cerr)
		}
	}
	if cerr := s.app.Close(); cerr != nil {
		slog.Warn("failed to close storage", "error", cerr)
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":         "running",
		"version":        s.version,
		"storage":        s.cfg.Storage.Backend,
		"timezone":       s.app.Progress.Location().String(),
		"today":          s.app.Progress.Today(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
		"subscribers":    s.hub.Subscribers(),
		"notifications": map[string]bool{
			"log":   s.cfg.Notifications.Log,
			"queue": s.cfg.Notifications.Queue,
		},
	})
}

// Helper methods

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	writeJSONError(w, status, message, err)
}

// validationError writes a 400 with one message per invalid field
func (s *Server) validationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"status": http.StatusBadRequest,
		"fields": validation.Errors(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	writeJSON(w, status, response)
}
