// Package db открывает базу данных заметок: применяет миграции и создает пул.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notedesk/internal/notes/config"
	"notedesk/pkg/db/postgres"
	"notedesk/pkg/logger"
	"notedesk/pkg/resilience"
)

// Константы для сообщений logger.
const (
	LogDBInitializing    = "initializing notes database"
	LogDBInitialized     = "notes database initialized successfully"
	LogMigrationStarting = "starting database migrations for notes"
)

// Константы для сообщений об ошибках.
const (
	ErrDBMigrations      = "failed to apply notes database migrations"
	ErrDBConnection      = "failed to connect to notes database"
	ErrDBCheckConnection = "error checking the database connection"
)

// DB представляет соединение с базой данных заметок.
type DB struct {
	database *postgres.Database
}

// Migrate применяет миграции из migrationsDir.
func Migrate(ctx context.Context, cfg *config.PostgresConfig, migrationsDir string) error {
	logger.Log(ctx).Info(ctx, LogMigrationStarting, zap.String("migrations_dir", migrationsDir))
	if err := postgres.MigrateDSN(ctx, cfg.GetConnectionURL(), migrationsDir); err != nil {
		return fmt.Errorf("%s: %w", ErrDBMigrations, err)
	}
	return nil
}

// New инициализирует соединение с базой данных. Если migrationsDir не пуст,
// миграции применяются до открытия пула.
func New(ctx context.Context, cfg *config.PostgresConfig, retry resilience.RetryConfig, migrationsDir string) (*DB, error) {
	log := logger.Log(ctx)

	log.Info(ctx, LogDBInitializing,
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Int("min_conn", cfg.MinConn),
		zap.Int("max_conn", cfg.MaxConn))

	database, err := postgres.New(ctx, cfg.Options(retry))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrDBConnection, err)
	}

	if migrationsDir != "" {
		if err := Migrate(ctx, cfg, migrationsDir); err != nil {
			database.Close(ctx)
			return nil, err
		}
	}

	log.Info(ctx, LogDBInitialized)

	return &DB{
		database: database,
	}, nil
}

// Close закрывает соединение с базой данных.
func (db *DB) Close(ctx context.Context) {
	db.database.Close(ctx)
}

// Pool возвращает пул соединений с базой данных.
func (db *DB) Pool() *pgxpool.Pool {
	return db.database.Pool()
}

// Ping проверяет соединение с базой данных.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.database.Ping(ctx); err != nil {
		return fmt.Errorf("%s: %w", ErrDBCheckConnection, err)
	}
	return nil
}
