package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
	"notedesk/pkg/resilience"
)

const (
	LogConnecting = "connecting to Redis"
	LogConnected  = "successfully connected to Redis"
	ErrConnect    = "failed to connect to Redis"
)

// NewClient создает клиент и проверяет соединение ping-ом с повторами.
func NewClient(ctx context.Context, cfg *Config, retry resilience.RetryConfig) (*redis.Client, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogConnecting, zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	err := resilience.NewRetry("redis.ping", retry).Execute(ctx, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		log.Error(ctx, ErrConnect, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrConnect, err)
	}

	log.Info(ctx, LogConnected)
	return rdb, nil
}
