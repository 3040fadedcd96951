// Package logger оборачивает zap и переносит логгер и request id через context.
package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment задает профиль конфигурации zap.
type Environment string

// Поддерживаемые окружения.
const (
	Development Environment = "development"
	Production  Environment = "production"
)

// OperationField имя поля с идентификатором операции.
const OperationField = "operation_id"

// Logger обертка над zap.Logger с методами, принимающими context.
type Logger struct {
	l *zap.Logger
}

// NewLogger создает логгер для окружения env с уровнем level.
// Пустой или неизвестный уровень трактуется как info.
func NewLogger(env Environment, level string) (*Logger, error) {
	return NewLoggerWithOutput(env, level)
}

// NewLoggerWithOutput как NewLogger, но пишет в paths вместо стандартных потоков.
// Без paths используются потоки профиля env.
func NewLoggerWithOutput(env Environment, level string, paths ...string) (*Logger, error) {
	var cfg zap.Config
	if env == Production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	if len(paths) > 0 {
		cfg.OutputPaths = paths
		cfg.ErrorOutputPaths = paths
	}

	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{l: zl}, nil
}

// NewNop возвращает логгер, отбрасывающий все записи.
func NewNop() *Logger {
	return &Logger{l: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With возвращает новый логгер с дополнительными полями.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{l: l.l.With(fields...)}
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Info(msg, withOperation(ctx, fields)...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Warn(msg, withOperation(ctx, fields)...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Error(msg, withOperation(ctx, fields)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Debug(msg, withOperation(ctx, fields)...)
}

func (l *Logger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	l.l.Fatal(msg, withOperation(ctx, fields)...)
}

// Sync сбрасывает буферы zap.
func (l *Logger) Sync() error {
	return l.l.Sync()
}

func withOperation(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	if id, ok := OperationID(ctx); ok {
		return append(fields, zap.String(OperationField, id))
	}
	return fields
}
