package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	httprateredis "github.com/go-chi/httprate-redis"
	"github.com/redis/go-redis/v9"

	"github.com/runnerr0/recall/internal/logger"
)

// Logger returns a middleware that writes one line per request with its
// request ID, method, path, status, size and duration.
func Logger(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request completed",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// RateLimitConfig holds configuration for the rate limiter.
type RateLimitConfig struct {
	RequestLimit   int
	WindowDuration time.Duration
	// RedisURL moves the counters to Redis so several instances share
	// one limit. Empty keeps them in memory.
	RedisURL  string
	PrefixKey string
}

// RateLimiter wraps the rate limiting middleware with a cleanup function.
type RateLimiter struct {
	Handler     func(next http.Handler) http.Handler
	redisClient *redis.Client
}

// RateLimit returns a per-IP rate limiter. A non-positive RequestLimit
// disables limiting.
func RateLimit(config RateLimitConfig) (*RateLimiter, error) {
	if config.RequestLimit <= 0 {
		return &RateLimiter{Handler: passthrough}, nil
	}
	if config.WindowDuration <= 0 {
		config.WindowDuration = time.Minute
	}
	if config.PrefixKey == "" {
		config.PrefixKey = "recall:ratelimit"
	}

	options := []httprate.Option{
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","status_code":429}`))
		}),
		httprate.WithKeyByRealIP(),
	}

	var redisClient *redis.Client
	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, err
		}
		redisClient = redis.NewClient(opts)

		options = append(options, httprateredis.WithRedisLimitCounter(&httprateredis.Config{
			Client:    redisClient,
			PrefixKey: config.PrefixKey,
		}))
	}

	limiter := httprate.NewRateLimiter(config.RequestLimit, config.WindowDuration, options...)

	return &RateLimiter{
		Handler:     limiter.Handler,
		redisClient: redisClient,
	}, nil
}

// Close releases resources held by the rate limiter (e.g., Redis connection).
func (rl *RateLimiter) Close() error {
	if rl.redisClient != nil {
		return rl.redisClient.Close()
	}
	return nil
}

func passthrough(next http.Handler) http.Handler {
	return next
}
