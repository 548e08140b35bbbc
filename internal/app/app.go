// Package app wires configuration into a cache store and a weather client.
// Both binaries build their dependencies through it.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/weather-cli/pkg/cache"
	"github.com/Sternrassler/weather-cli/pkg/client"
	"github.com/Sternrassler/weather-cli/pkg/config"
	"github.com/Sternrassler/weather-cli/pkg/logging"
)

// redisPingTimeout bounds the startup connectivity check.
const redisPingTimeout = 2 * time.Second

// App holds the shared dependencies.
type App struct {
	Config *config.Config
	Store  cache.Store
	Client *client.Client

	redis *redis.Client
}

// OpenStore builds the configured cache backend. An unreachable redis falls
// back to the file backend with a warning. The redis client is nil unless the
// redis backend is in use.
func OpenStore(ctx context.Context, cfg *config.Config) (cache.Store, *redis.Client) {
	logger := logging.NewLogger("app")

	if cfg.CacheBackend == config.BackendRedis {
		rc, err := newRedisClient(cfg.RedisAddr)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
			err = rc.Ping(pingCtx).Err()
			cancel()
			if err == nil {
				logger.Debug().Str("addr", cfg.RedisAddr).Msg("Using redis cache backend")
				return cache.NewRedisStore(rc, cfg.CacheTTL), rc
			}
			rc.Close()
		}
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, falling back to file cache")
	}

	return cache.NewFileStore(cfg.CacheDir, cfg.CacheTTL), nil
}

func newRedisClient(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// New validates cfg and builds the store and client.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, rc := OpenStore(ctx, cfg)

	c, err := client.New(client.Config{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
		Store:     store,
	})
	if err != nil {
		if rc != nil {
			rc.Close()
		}
		return nil, fmt.Errorf("create weather client: %w", err)
	}

	return &App{Config: cfg, Store: store, Client: c, redis: rc}, nil
}

// RedisClient returns the redis connection, or nil for the file backend.
func (a *App) RedisClient() *redis.Client {
	return a.redis
}

// Close releases the redis connection, if any.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
