package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/runnerr0/recall/internal/cache"
	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/logger"
	"github.com/runnerr0/recall/internal/storage"
)

// RecordSource supplies stored history for GET /v1/recall.
type RecordSource interface {
	Records(ctx context.Context, q storage.ListQuery) ([]history.Record, error)
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// RedisURL for rate limiting (optional, uses in-memory if empty)
	RedisURL string
	// RateLimitRequests is the number of requests allowed per window.
	// Zero or less disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// MaxRequestSize caps request bodies in bytes (default: 10 MiB)
	MaxRequestSize int64

	// Defaults for GET /v1/recall.
	DefaultMaxResults int
	MaxContextChars   int
	LoadLimit         int

	// Now is the clock used when a request omits current_time.
	Now func() time.Time
}

func (c *ServerConfig) applyDefaults() {
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = time.Minute
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = 10 << 20
	}
	if c.DefaultMaxResults <= 0 {
		c.DefaultMaxResults = 20
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = 8000
	}
	if c.LoadLimit <= 0 {
		c.LoadLimit = 50000
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Server is the HTTP server for the API.
type Server struct {
	source      RecordSource
	cache       cache.Cache
	logger      logger.Logger
	config      ServerConfig
	router      *chi.Mux
	rateLimiter *RateLimiter
}

// NewServer creates a new API server with chi router and middleware stack.
// source and c may be nil: without a source GET /v1/recall answers 503,
// without a cache every request is computed.
func NewServer(source RecordSource, c cache.Cache, log logger.Logger, cfg *ServerConfig) (*Server, error) {
	if log == nil {
		log = logger.Noop()
	}
	if cfg == nil {
		cfg = &ServerConfig{}
	}
	config := *cfg
	config.applyDefaults()

	rateLimiter, err := RateLimit(RateLimitConfig{
		RequestLimit:   config.RateLimitRequests,
		WindowDuration: config.RateLimitWindow,
		RedisURL:       config.RedisURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	s := &Server{
		source:      source,
		cache:       c,
		logger:      log,
		config:      config,
		rateLimiter: rateLimiter,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(rateLimiter.Handler)
	r.Use(chimiddleware.RequestSize(config.MaxRequestSize))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/history/search", s.handlePost(s.search))
		r.Post("/history/filter", s.handlePost(s.filter))
		r.Post("/history/sort", s.handlePost(s.sort))
		r.Post("/history/domains", s.handlePost(s.domains))
		r.Post("/history/format", s.handlePost(s.format))
		r.Post("/keywords", s.handlePost(s.keywords))
		r.Get("/recall", s.handleRecall)
	})
	r.Get("/health", s.handleHealth)

	s.router = r
	return s, nil
}

// StartWithShutdown starts the HTTP server and shuts it down gracefully
// when ctx is cancelled.
func (s *Server) StartWithShutdown(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases resources held by the server (e.g., Redis connections).
// The cache and record source belong to the caller.
func (s *Server) Close() error {
	if s.rateLimiter != nil {
		return s.rateLimiter.Close()
	}
	return nil
}
