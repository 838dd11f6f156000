// Package api provides the HTTP REST API server for wheelcommittee.
//
// It exposes batch quote, IV rank and market data endpoints, the rendered
// strategy views, and (when an LLM key is configured) the full analysis.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seenimoa/wheelcommittee/internal/advisor"
	"github.com/seenimoa/wheelcommittee/internal/config"
	"github.com/seenimoa/wheelcommittee/internal/marketdata"
	"github.com/seenimoa/wheelcommittee/internal/metrics"
)

// Version is reported by /health. It is set at build time.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	market  *marketdata.Client
	advisor *advisor.Advisor // nil when no LLM is configured
	metrics *metrics.Recorder
	log     zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAdvisor mounts the analysis endpoints.
func WithAdvisor(a *advisor.Advisor) Option {
	return func(s *Server) { s.advisor = a }
}

// WithMetrics records request metrics and serves /metrics from r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = r }
}

// WithLogger sets the access and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, market *marketdata.Client, opts ...Option) *Server {
	srv := &Server{
		cfg:    cfg,
		market: market,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.API.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.requestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", httpSrv.Addr).Bool("analysis", s.advisor != nil).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.RequestTimeout > 0 {
		return s.cfg.API.RequestTimeout
	}
	return 300 * time.Second
}

func (s *Server) maxTickers() int {
	if s.cfg.MarketData.MaxTickers > 0 {
		return s.cfg.MarketData.MaxTickers
	}
	return 20
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	// API v1 routes; the wall-clock budget of a request lives here.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout()))

		r.Get("/health", s.handleHealth)

		r.Post("/quotes", s.handleQuotes)
		r.Post("/iv-rank", s.handleIVRank)
		r.Post("/market-data", s.handleMarketData)
		r.Post("/market-data/{mode}", s.handleMarketView)

		if s.advisor != nil {
			r.Post("/analyze/{mode}", s.handleAnalyze)
			r.Post("/manage", s.handleManage)
		}

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
