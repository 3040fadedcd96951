package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

const (
	ErrResolveMigrations       = "failed to resolve migrations path"
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
)

const filePrefix = "file://"

// MigrationsSource превращает каталог с миграциями в URL источника golang-migrate.
func MigrationsSource(dir string) (string, error) {
	if strings.HasPrefix(dir, filePrefix) {
		return dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrResolveMigrations, err)
	}
	return filePrefix + filepath.ToSlash(abs), nil
}

// MigrateDSN применяет все миграции из migrationsDir к базе databaseURL.
func MigrateDSN(ctx context.Context, databaseURL, migrationsDir string) error {
	log := logger.Log(ctx)

	source, err := MigrationsSource(migrationsDir)
	if err != nil {
		log.Error(ctx, ErrResolveMigrations, zap.Error(err))
		return err
	}

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err), zap.String("path", source))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error(ctx, ErrApplyMigrations, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrApplyMigrations, err)
	}

	log.Info(ctx, LogMigrationsApplied, zap.String("path", source))
	return nil
}
