// Package server implements the HTTP service: health checks, metrics and
// on-demand log conversion.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jittakal/xesgen/internal/pipeline"
	"github.com/jittakal/xesgen/pkg/event"
)

// Converter builds a log from a request body.
type Converter interface {
	Convert(ctx context.Context, in io.Reader, format pipeline.InputFormat) (*event.Log, error)
}

// Publisher forwards converted logs, e.g. to Kafka.
type Publisher interface {
	Publish(ctx context.Context, log *event.Log) (int, error)
}

// MetricsCollector defines the interface for HTTP metrics.
type MetricsCollector interface {
	IncHTTPRequests(route string, status int)
}

// Config contains HTTP server settings.
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBodyBytes int64
	MetricsPath  string
	LogName      string
	// Format and Compression apply when a request does not choose its own.
	Format      event.FileFormat
	Compression string
}

// Dependencies are the collaborators of the server. Publisher, Registry and
// Metrics are optional.
type Dependencies struct {
	Converter Converter
	Health    HealthChecker
	Publisher Publisher
	Registry  *prometheus.Registry
	Metrics   MetricsCollector
	Logger    *slog.Logger
}

// Server represents the HTTP server.
type Server struct {
	cfg     Config
	deps    Dependencies
	router  *chi.Mux
	server  *http.Server
	logger  *slog.Logger
	metrics MetricsCollector
}

// NewServer creates a new HTTP server.
func NewServer(cfg Config, deps Dependencies) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.LogName == "" {
		cfg.LogName = "eventlog"
	}
	if cfg.Format == "" {
		cfg.Format = event.FormatXES
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Health == nil {
		h := NewHealth()
		h.SetReady(true)
		deps.Health = h
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		router:  chi.NewRouter(),
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.countRequests)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health/live", LivenessHandler(s.deps.Health, s.logger))
	s.router.Get("/health/ready", ReadinessHandler(s.deps.Health, s.logger))

	if s.deps.Registry != nil {
		s.router.Handle(s.cfg.MetricsPath, promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))
	}

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/logs", s.handleConvert)
	})
}

// countRequests records every response by route pattern and status code.
func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.metrics == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.IncHTTPRequests(route, status)
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves in the background. Serve failures are sent on the returned
// channel, which is closed when the server stops.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("starting http server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server failed", "error", err)
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("error shutting down server", "error", err)
		return err
	}
	return nil
}
