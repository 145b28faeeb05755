// Package server exposes the EV parlay engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/Randysweatpants/GambleBotAPI/internal/config"
)

// Server wraps the chi router and http.Server lifecycle.
type Server struct {
	cfg     config.ServerConfig
	router  chi.Router
	server  *http.Server
	logger  *logrus.Logger
	handler *Handler
	hub     *Hub
}

// New builds the router with middleware and routes.
func New(cfg config.ServerConfig, handler *Handler, hub *Hub, logger *logrus.Logger) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	// Public routes
	r.Get("/", handler.handleRoot)
	r.Get("/healthz", handler.handleHealthz)

	// Websocket subscriptions skip the request timeout since connections
	// are long-lived.
	r.Get("/ws", hub.HandleWS)

	// Authenticated API
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Use(APIKeyAuth(cfg.APIKey))

		r.Get("/odds", handler.handleOdds)
		r.Post("/ev_parlays", handler.handleEVParlays)
		r.Post("/log_result", handler.handleLogResult)
		r.Get("/results", handler.handleResults)
		r.Post("/results/{id}/settle", handler.handleSettleResult)
	})

	return &Server{
		cfg:     cfg,
		router:  r,
		logger:  logger,
		handler: handler,
		hub:     hub,
	}
}

// Router exposes the router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Start runs the HTTP server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("port", s.cfg.Port).Info("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains outstanding requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
