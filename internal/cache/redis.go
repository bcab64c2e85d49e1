// Package cache owns the Redis client and the cache-aside helpers used for
// profiles and friend counts.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fbclone/internal/middleware"
	"fbclone/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// errorHook counts failed commands per command name. redis.Nil is a miss,
// not a failure.
type errorHook struct{}

func (errorHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrorRate.WithLabelValues(name).Inc()
	}
}

// Options parses REDIS_URL, which may be a bare host:port or a redis:// URL.
func Options(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
	}
	return opts, nil
}

// NewClient connects to addr and pings it within five seconds.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := Options(addr)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	rdb.AddHook(errorHook{})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	middleware.Logger.Info("redis connected", "addr", opts.Addr)
	return rdb, nil
}

// SetClient installs the client used by the cache helpers. Nil disables caching.
func SetClient(rdb *redis.Client) {
	client = rdb
}

// GetClient returns the installed client, if any.
func GetClient() *redis.Client {
	return client
}
