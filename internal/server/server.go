// Package server provides the HTTP API for the keyword ranker.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/keyword-ranker/internal/analysis"
	"github.com/jonathan/keyword-ranker/internal/llm"
	"github.com/jonathan/keyword-ranker/internal/server/middleware"
	"github.com/jonathan/keyword-ranker/internal/server/ratelimit"
)

// DefaultShutdownTimeout bounds how long in-flight requests may drain on shutdown
const DefaultShutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	logger      *slog.Logger
	metrics     *Metrics
	registry    *prometheus.Registry
	rateLimiter *ratelimit.Limiter
	analyzer    *analysis.Analyzer
	defaultTopK int
}

// Config holds server configuration
type Config struct {
	Port        int
	DefaultTopK int

	// Ranker serves the optional ranking step of /analyze. Nil ranks in-process.
	Ranker llm.Ranker

	// RateLimit configures per-client limiting. Nil uses ratelimit defaults.
	RateLimit *ratelimit.Config

	Logger *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.DefaultTopK < 0 {
		return nil, fmt.Errorf("default topK must be non-negative, got %d", cfg.DefaultTopK)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := NewMetrics()
	registry, err := newRegistry(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s := &Server{
		logger:      logger,
		metrics:     metrics,
		registry:    registry,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		analyzer:    analysis.NewAnalyzer(cfg.Ranker, logger),
		defaultTopK: cfg.DefaultTopK,
	}

	routes := []struct {
		method  string
		path    string
		handler http.Handler
	}{
		{http.MethodPost, llm.RankPath, http.HandlerFunc(s.handleRank)},
		{http.MethodPost, "/analyze", http.HandlerFunc(s.handleAnalyze)},
		{http.MethodGet, "/health", http.HandlerFunc(s.handleHealth)},
		{http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})},
	}

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.Handle(rt.method+" "+rt.path, rt.handler)
		mux.Handle(rt.path, s.methodNotAllowed(rt.method))
	}
	mux.HandleFunc("/", s.handleNotFound)

	var handler http.Handler = s.withCORS(mux)
	handler = s.withRateLimit(handler)
	handler = s.withMetrics(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           otelhttp.NewHandler(handler, "keyword-ranker"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured port and serves until SIGINT or SIGTERM
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.rateLimiter.Stop()
	if err == nil {
		s.logger.Info("server stopped")
	}
	return err
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// writeError maps err to a status code and error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	s.jsonResponse(w, status, errorBody(err))
}
