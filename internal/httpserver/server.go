package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Orac-G/agent-trust/internal/config"
	"github.com/Orac-G/agent-trust/internal/graph"
	"github.com/Orac-G/agent-trust/internal/kv"
	"github.com/Orac-G/agent-trust/internal/logger"
	"github.com/Orac-G/agent-trust/internal/metrics"
	"github.com/Orac-G/agent-trust/internal/payment"
	"github.com/Orac-G/agent-trust/internal/ratelimit"
	"github.com/Orac-G/agent-trust/internal/reputation"
)

// Server wires handlers, middleware, and dependencies.
type Server struct {
	handlers
	httpServer *http.Server
}

type handlers struct {
	cfg        *config.Config
	loader     *graph.Loader
	reputation *reputation.CachedEngine
	gate       *payment.Gate
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// New builds the HTTP server with the configured router.
func New(cfg *config.Config, store kv.Store, gate *payment.Gate, collector *metrics.Metrics, appLogger zerolog.Logger) *Server {
	router := chi.NewRouter()

	h := handlers{
		cfg:        cfg,
		loader:     graph.NewLoader(store, cfg.Graph.SnapshotKey),
		reputation: reputation.NewCachedEngine(store, appLogger, collector),
		gate:       gate,
		metrics:    collector,
		logger:     appLogger,
	}

	s := &Server{
		handlers: h,
		httpServer: &http.Server{
			Addr:         cfg.Server.Address,
			ReadTimeout:  cfg.Server.ReadTimeout.Duration,
			WriteTimeout: cfg.Server.WriteTimeout.Duration,
			IdleTimeout:  cfg.Server.IdleTimeout.Duration,
			Handler:      router,
		},
	}

	s.configureRouter(router, store)
	return s
}

func (s *Server) configureRouter(router chi.Router, store kv.Store) {
	// Preflight is answered before anything else so OPTIONS on any path
	// gets a bare 204 with the allow headers.
	router.Use(preflightMiddleware)

	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Payment-Signature", "X-Payment"},
		MaxAge:         300,
	}).Handler)

	router.Use(securityHeadersMiddleware)
	router.Use(logger.Middleware(s.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	rateCfg := ratelimit.Config{
		HourlyLimit: s.cfg.RateLimit.HourlyLimit,
		Bypass:      s.cfg.RateLimit.Bypass,
		BurstLimit:  s.cfg.RateLimit.BurstLimit,
		BurstWindow: s.cfg.RateLimit.BurstWindow.Duration,
		Metrics:     s.metrics,
	}
	router.Use(ratelimit.Burst(rateCfg))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Get("/", s.handlers.root)
		r.Get("/health", s.handlers.health)
		r.With(adminMetricsAuth(s.cfg.Server.AdminMetricsAPIKey)).Handle("/metrics", promhttp.Handler())
	})

	// The scoring endpoint gets a longer timeout: it may wait on the
	// facilitator twice. The hourly permit is consumed before the
	// payment gate runs, so exhausted clients never reach the
	// facilitator.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(90 * time.Second))
		r.Use(ratelimit.Hourly(store, rateCfg))
		r.Post("/v1/score", s.handlers.score)
	})
}

// preflightMiddleware answers CORS preflight for every path.
func preflightMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Payment-Signature, X-Payment")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminMetricsAuth protects /metrics with an optional API key.
func adminMetricsAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey != "" && r.Header.Get("X-API-Key") != apiKey {
				writeError(w, http.StatusNotFound, "Not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Handler exposes the configured router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
