package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SaadGoaya/Farmer-aid/internal/agro"
	"github.com/SaadGoaya/Farmer-aid/internal/domain"
	"github.com/SaadGoaya/Farmer-aid/internal/geo"
	"github.com/SaadGoaya/Farmer-aid/internal/pipeline"
	"github.com/SaadGoaya/Farmer-aid/internal/rules"
	"github.com/SaadGoaya/Farmer-aid/internal/upstream"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, client *upstream.Client, p *pipeline.Pipeline, store *agro.ThresholdStore, resolver *geo.Resolver, engine *rules.Engine, repo domain.Repository, cache domain.Cache, bus domain.EventBus, version string) *Server {
	handler := NewHandler(client, p, store, resolver, engine, repo, cache, bus, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// Upstream proxies
	router.Get("/geocode", handler.Geocode)
	router.Get("/weather", handler.Weather)
	router.Post("/gemini", handler.Gemini)

	// Zone/district resolution
	router.Get("/resolve", handler.Resolve)

	// Crop evaluation
	router.Post("/evaluate", handler.Evaluate)
	router.Get("/evaluations", handler.ListEvaluations)
	router.Get("/evaluations/{id}", handler.GetEvaluation)

	// Custom threshold management
	router.Get("/thresholds", handler.ListThresholds)
	router.Post("/thresholds/undo", handler.UndoThreshold)
	router.Get("/thresholds/{zone}/{crop}", handler.GetThreshold)
	router.Put("/thresholds/{zone}/{crop}", handler.PutThreshold)
	router.Delete("/thresholds/{zone}/{crop}", handler.DeleteThreshold)

	// Alert rule management
	router.Get("/rules", handler.ListRules)
	router.Get("/rules/{id}", handler.GetRule)
	router.Post("/rules", handler.CreateRule)
	router.Delete("/rules/{id}", handler.DeleteRule)
	router.Post("/rules/reload", handler.ReloadRules)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
