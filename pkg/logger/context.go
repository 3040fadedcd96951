package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Ошибки пакета logger.
var (
	ErrLoggerNotFound   = errors.New("logger not found in context")
	ErrInitGlobalLogger = errors.New("failed to initialize global logger")
)

var (
	globalMu       sync.RWMutex
	globalLogger   *Logger
	fallbackLogger *Logger
)

type loggerKeyType struct{}

var loggerKey = loggerKeyType{}

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	fallbackLogger = &Logger{l: zl.With(zap.String("logger", "fallback"))}
}

// NewContext кладет logger в контекст.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext достает logger из контекста.
func FromContext(ctx context.Context) (*Logger, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context validation: %w", ErrLoggerNotFound)
	}
	l, ok := ctx.Value(loggerKey).(*Logger)
	if !ok {
		return nil, fmt.Errorf("logger lookup: %w", ErrLoggerNotFound)
	}
	return l, nil
}

// InitGlobalLogger инициализирует глобальный logger уровнем info.
// Повторный вызов ничего не меняет.
func InitGlobalLogger(env Environment) error {
	return InitGlobalLoggerWithLevel(env, "")
}

// InitGlobalLoggerWithLevel инициализирует глобальный logger с заданным уровнем.
func InitGlobalLoggerWithLevel(env Environment, level string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger != nil {
		return nil
	}

	l, err := NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitGlobalLogger, err)
	}
	globalLogger = l
	return nil
}

// SetGlobalLogger заменяет глобальный logger.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Log возвращает logger из контекста, глобальный или резервный.
func Log(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok {
			return l
		}
	}

	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return fallbackLogger
}
