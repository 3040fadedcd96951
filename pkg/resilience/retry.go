// Package resilience содержит повтор с экспоненциальной задержкой для
// подключения к инфраструктуре при старте и размыкатель (Breaker) для
// вызовов, которые не должны ждать недоступную зависимость.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

// RetryConfig настройки повтора.
type RetryConfig struct {
	// MaxAttempts количество попыток, включая первую.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// ShouldRetry решает, стоит ли повторять после ошибки. nil означает defaultShouldRetry.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     3 * time.Second,
		BackoffFactor:  2.0,
		ShouldRetry:    defaultShouldRetry,
	}
}

// ErrContextCanceled возвращается, если контекст отменен во время ожидания.
var ErrContextCanceled = errors.New("context was canceled during retry")

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

const (
	LogRetryAttempt     = "retry attempt"
	LogRetrySuccess     = "retry succeeded"
	LogRetryMaxAttempts = "retry max attempts reached"
)

// Retry выполняет операцию с повторами.
type Retry struct {
	name   string
	config RetryConfig
}

// NewRetry создает Retry с именем name для логов.
func NewRetry(name string, config RetryConfig) *Retry {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = defaultShouldRetry
	}
	return &Retry{name: name, config: config}
}

// Execute вызывает operation, пока она не завершится успешно,
// не исчерпаются попытки или не будет отменен ctx.
func (r *Retry) Execute(ctx context.Context, operation func(context.Context) error) error {
	log := logger.Log(ctx).With(zap.String("retry", r.name))

	backoff := r.config.InitialBackoff
	var err error
	for attempt := 1; ; attempt++ {
		err = operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info(ctx, LogRetrySuccess, zap.Int("attempts", attempt))
			}
			return nil
		}
		if !r.config.ShouldRetry(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			log.Warn(ctx, LogRetryMaxAttempts, zap.Int("attempts", attempt), zap.Error(err))
			return err
		}

		log.Info(ctx, LogRetryAttempt,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		}

		backoff = time.Duration(float64(backoff) * r.config.BackoffFactor)
		if r.config.MaxBackoff > 0 && backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}
}
