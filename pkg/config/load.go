// Package config загружает конфигурацию из переменных окружения и необязательного .env файла.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

const (
	LogLoadingConfiguration = "loading configuration"
	LogConfigurationLoaded  = "configuration loaded successfully"
	ErrLoadConfiguration    = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load заполняет T из envPath (если файл существует) и переменных окружения.
// Переменные окружения имеют приоритет над файлом.
func Load[T any](ctx context.Context, serviceName, envPath string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	var cfg T
	var err error
	if envPath != "" && fileExists(envPath) {
		log.Info(ctx, LogLoadingConfiguration, zap.String(attrPath, envPath))
		err = cleanenv.ReadConfig(envPath, &cfg)
	} else {
		log.Info(ctx, LogLoadingConfiguration)
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, ErrLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrLoadConfiguration, err)
	}

	log.Info(ctx, LogConfigurationLoaded)
	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
