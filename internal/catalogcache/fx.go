package catalogcache

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/priceguard/internal/clock"
	"github.com/smallbiznis/priceguard/internal/config"
	"github.com/smallbiznis/priceguard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideStore(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *zap.Logger) (Store, error) {
	switch cfg.CatalogCacheStore {
	case "", "memory":
		return NewMemoryStore(clk), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				log.Info("closing redis client")
				return client.Close()
			},
		})
		return NewRedisStore(client)
	default:
		return nil, fmt.Errorf("unsupported catalog cache store %q", cfg.CatalogCacheStore)
	}
}

func provideCache(store Store, cfg config.Config, clk clock.Clock, log *zap.Logger, m *metrics.Metrics) *Cache {
	return New(store, cfg.CatalogCacheTTL, clk, log, m)
}

var Module = fx.Module("catalogcache",
	fx.Provide(provideStore),
	fx.Provide(provideCache),
)
