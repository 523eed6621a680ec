package cache

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/rechargedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "rechargedesk:"

var Module = fx.Module("cache",
	fx.Provide(NewStore),
)

// NewStore returns a Redis-backed store when REDIS_ADDR is set and a no-op store otherwise.
func NewStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Store {
	if cfg.RedisAddr == "" {
		log.Info("report cache disabled, no redis address configured")
		return NopStore{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed, cache reads will miss", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return NewRedisStore(client, keyPrefix)
}
