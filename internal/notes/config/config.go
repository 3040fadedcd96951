// Package config содержит конфигурацию клиента заметок.
package config

import (
	"context"

	"go.uber.org/zap"

	pkgconfig "notedesk/pkg/config"
	"notedesk/pkg/logger"
)

const serviceName = "notes"

// Config представляет полную конфигурацию приложения.
type Config struct {
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Startup  StartupConfig  `yaml:"startup"`
}

// Load загружает конфигурацию из переменных окружения.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, "")
}

// LoadFrom загружает конфигурацию из envPath, если файл есть, и переменных окружения.
func LoadFrom(ctx context.Context, envPath string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, envPath)
	if err != nil {
		return nil, err
	}

	logger.Log(ctx).Debug(ctx, "notes configuration",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout),
		zap.Bool("viewer_token_set", cfg.Viewer.Token != ""),
		zap.Int("startup_attempts", cfg.Startup.Attempts))

	return cfg, nil
}
