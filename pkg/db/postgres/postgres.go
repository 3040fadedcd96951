// Package postgres открывает пул соединений pgx и применяет миграции.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
	"notedesk/pkg/resilience"
)

const (
	LogConnecting        = "connecting to Postgres database"
	LogConnected         = "successfully connected to Postgres"
	LogClosing           = "closing Postgres connection pool"
	LogMigrationsApplied = "database migrations successfully applied"
)

const (
	ErrParseConfig  = "failed to parse connection config"
	ErrCreatePool   = "failed to create connection pool"
	ErrPingDatabase = "failed to ping database"
)

// Options параметры пула.
type Options struct {
	DSN     string
	MinConn int
	MaxConn int
	Retry   resilience.RetryConfig
}

// Database владеет пулом соединений Postgres.
type Database struct {
	pool *pgxpool.Pool
}

// New создает пул и дожидается доступности базы, повторяя ping согласно opts.Retry.
func New(ctx context.Context, opts Options) (*Database, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogConnecting, zap.Int("min_conn", opts.MinConn), zap.Int("max_conn", opts.MaxConn))

	poolCfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		log.Error(ctx, ErrParseConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrParseConfig, err)
	}
	poolCfg.MinConns = int32(opts.MinConn)
	poolCfg.MaxConns = int32(opts.MaxConn)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error(ctx, ErrCreatePool, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrCreatePool, err)
	}

	err = resilience.NewRetry("postgres.ping", opts.Retry).Execute(ctx, pool.Ping)
	if err != nil {
		pool.Close()
		log.Error(ctx, ErrPingDatabase, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrPingDatabase, err)
	}

	log.Info(ctx, LogConnected)
	return &Database{pool: pool}, nil
}

// Pool возвращает пул соединений.
func (db *Database) Pool() *pgxpool.Pool {
	return db.pool
}

// Close закрывает пул.
func (db *Database) Close(ctx context.Context) {
	logger.Log(ctx).Info(ctx, LogClosing)
	db.pool.Close()
}

// Ping проверяет доступность базы данных.
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}
