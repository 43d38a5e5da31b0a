// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"

	"bluemedix-workflow/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Redis holds the list the Redis report sink pushes runs onto.
type Redis struct {
	Client *redis.Client
	addr   string
}

// NewRedis never dials; the first Ping does.
func NewRedis(cfg config.RedisConfig) *Redis {
	return &Redis{
		Client: redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
			PoolSize:     2,
		}),
		addr: cfg.Address,
	}
}

func (r *Redis) Kind() string { return "redis" }

func (r *Redis) Ping(ctx context.Context) error {
	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis at %s unreachable: %w", r.addr, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
