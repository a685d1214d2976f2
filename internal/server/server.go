// Package server exposes the pricing, strategy and analysis services over
// HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/options-trader/internal/config"
	"github.com/aristath/options-trader/internal/database"
	"github.com/aristath/options-trader/internal/marketdata"
	"github.com/aristath/options-trader/internal/modules/payoff"
	"github.com/aristath/options-trader/internal/modules/pricing"
	"github.com/aristath/options-trader/internal/modules/strategy"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Cfg      *config.Config
	CacheDB  *database.DB
	Pricing  *pricing.Service
	Pool     *pricing.WorkerPool
	Strategy *strategy.Service
	Payoff   *payoff.Engine
	Market   *marketdata.Service
	Port     int
	DevMode  bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	pricing        *pricing.Service
	pool           *pricing.WorkerPool
	strategy       *strategy.Service
	payoff         *payoff.Engine
	market         *marketdata.Service
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Cfg,
		pricing:        cfg.Pricing,
		pool:           cfg.Pool,
		strategy:       cfg.Strategy,
		payoff:         cfg.Payoff,
		market:         cfg.Market,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.CacheDB),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/pricing", func(r chi.Router) {
			r.Post("/price", s.handlePrice)
			r.Post("/batch", s.handlePriceBatch)
			r.Post("/greeks", s.handleGreeks)
			r.Post("/implied-volatility", s.handleImpliedVolatility)
		})

		r.Route("/strategies", func(r chi.Router) {
			r.Post("/", s.handleCreateStrategy)
			r.Post("/validate", s.handleValidateLegs)
			r.Post("/analyze", s.handleAnalyzeStrategy)
			r.Post("/payoff", s.handlePayoffCurve)
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/{symbol}/spot", s.handleSpot)
			r.Get("/{symbol}/expiries", s.handleExpiries)
			r.Get("/{symbol}/chain", s.handleChain)
		})

		r.Get("/system/status", s.systemHandlers.HandleStatus)
	})
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, used by tests to drive handlers directly.
func (s *Server) Router() http.Handler {
	return s.router
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
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}
