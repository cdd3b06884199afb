// Package server provides the HTTP server and routing for rzqr.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/okushigue/rzqr/internal/database"
	"github.com/okushigue/rzqr/internal/events"
	"github.com/okushigue/rzqr/internal/metrics"
	"github.com/okushigue/rzqr/internal/modules/jobs"
	jobshandlers "github.com/okushigue/rzqr/internal/modules/jobs/handlers"
	"github.com/okushigue/rzqr/internal/modules/pipeline"
	pipelinehandlers "github.com/okushigue/rzqr/internal/modules/pipeline/handlers"
	"github.com/okushigue/rzqr/internal/modules/runs"
	runshandlers "github.com/okushigue/rzqr/internal/modules/runs/handlers"
)

// Config holds server dependencies
type Config struct {
	Log      zerolog.Logger
	Port     int
	DevMode  bool
	DataDir  string
	LedgerDB *database.DB
	EventBus *events.Bus
	Pipeline *pipeline.Service
	Defaults pipeline.Request
	Runs     *runs.Repository
	Jobs     *jobs.Service
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DataDir, cfg.LedgerDB, cfg.Pipeline),
	}

	metrics.Register()
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// pipeline runs and the event stream outlive any fixed write deadline
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the handler tree for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware shared by every route
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.Middleware())

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// WebSocket upgrade needs the raw connection, so no compression or timeout
		if s.cfg.EventBus != nil {
			r.Get("/events/ws", NewEventsStreamHandler(s.cfg.EventBus, s.log).ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			if !s.cfg.DevMode {
				r.Use(middleware.Compress(5))
			}

			// Runs are bounded by the execution timeout inside the pipeline
			if s.cfg.Pipeline != nil {
				pipelinehandlers.NewHandler(s.cfg.Pipeline, s.cfg.Defaults, s.log).RegisterRoutes(r)
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(60 * time.Second))

				if s.cfg.Runs != nil {
					runshandlers.NewHandler(s.cfg.Runs, s.log).RegisterRoutes(r)
				}
				if s.cfg.Jobs != nil {
					jobshandlers.NewHandler(s.cfg.Jobs, s.log).RegisterRoutes(r)
				}

				r.Route("/system", func(r chi.Router) {
					r.Get("/health", s.systemHandlers.HandleHealth)
				})
			})
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
