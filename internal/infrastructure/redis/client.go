// Package redis opens the connection used by the shared session storage
// driver.
package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/ecowork/internal/config"
)

const (
	connectTimeout = 3 * time.Second
	// One CLI invocation or gateway instance touches a single session.
	poolSize = 4
)

// NewClient connects to cfg.URL. Password and DB set explicitly take
// precedence over the URL. The connection is verified before returning.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	opts.PoolSize = poolSize
	opts.DialTimeout = connectTimeout

	client := goRedis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
