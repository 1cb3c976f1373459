package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/runnerr0/recall/internal/cache"
	"github.com/runnerr0/recall/internal/config"
	"github.com/runnerr0/recall/internal/logger"
	"github.com/runnerr0/recall/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return c.run(ctx, sess)
}

// run serves until ctx is cancelled.
func (c *ServeCommand) run(ctx context.Context, sess *session) error {
	log, closeLog, err := newServiceLogger(sess.cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	if cutoff := sess.cfg.RetentionCutoff(sess.now()); !cutoff.IsZero() {
		n, err := sess.store.PruneExpired(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("startup prune: %w", err)
		}
		log.Info("retention applied", "pruned", n, "cutoff", cutoff)
	}

	respCache, err := newResponseCache(sess.cfg)
	if err != nil {
		return err
	}
	if respCache != nil {
		defer respCache.Close()
	}

	srv, err := server.NewServer(sess.store, respCache, log, &server.ServerConfig{
		RedisURL:          sess.cfg.Server.RedisURL,
		RateLimitRequests: sess.cfg.Server.RateLimitRequests,
		RateLimitWindow:   sess.cfg.RateLimitWindow(),
		MaxRequestSize:    sess.cfg.Server.MaxRequestSize,
		DefaultMaxResults: sess.cfg.Search.DefaultMaxResults,
		MaxContextChars:   sess.cfg.Search.MaxContextChars,
		LoadLimit:         sess.cfg.Search.LoadLimit,
		Now:               sess.now,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	return srv.StartWithShutdown(ctx, c.listenAddr(sess.cfg))
}

// listenAddr applies --host and --port over the config.
func (c *ServeCommand) listenAddr(cfg *config.Config) string {
	host, port := cfg.Server.Host, cfg.Server.Port
	if c.Host != "" {
		host = c.Host
	}
	if c.Port != 0 {
		port = c.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// newServiceLogger builds the server's logger from the logging section.
// Logs go to logging.file when set, otherwise to stderr.
func newServiceLogger(cfg config.LoggingConfig) (logger.Logger, func(), error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.File != "" {
		path, err := config.ExpandPath(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	log, err := logger.New(w, level, cfg.Format)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return log, closeFn, nil
}

// newResponseCache returns nil when caching is disabled, a Redis cache
// when server.redis_url is set and an in-memory cache otherwise.
func newResponseCache(cfg *config.Config) (cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}

	cc := cache.DefaultConfig()
	cc.Prefix = cfg.Cache.Prefix
	if ttl := cfg.CacheTTL(); ttl > 0 {
		cc.TTL = ttl
	}

	if cfg.Server.RedisURL != "" {
		rc, err := cache.NewRedisCacheFromURL(cfg.Server.RedisURL, cc)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return rc, nil
	}
	return cache.NewMemoryCache(cc), nil
}
