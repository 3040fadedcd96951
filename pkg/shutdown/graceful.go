// Package shutdown выполняет хуки остановки после сигнала SIGINT/SIGTERM
// или отмены контекста.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

// Hook освобождает ресурс при остановке.
type Hook func(context.Context) error

const (
	LogSignalReceived = "shutdown signal received"
	LogContextDone    = "shutdown requested by context"
	LogHookFailed     = "shutdown hook failed"
	LogHooksTimedOut  = "shutdown hooks did not finish in time"
)

// Wait блокируется до сигнала SIGINT/SIGTERM или отмены ctx,
// затем выполняет хуки в пределах timeout.
func Wait(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Log(ctx).Info(ctx, LogSignalReceived, zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Log(ctx).Info(ctx, LogContextDone)
	}

	Run(context.WithoutCancel(ctx), timeout, hooks...)
}

// Run параллельно выполняет хуки и ждет их завершения не дольше timeout.
// Ошибки хуков логируются и не прерывают остальные хуки.
func Run(ctx context.Context, timeout time.Duration, hooks ...Hook) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(fn Hook) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				logger.Log(ctx).Warn(ctx, LogHookFailed, zap.Error(err))
			}
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Log(ctx).Warn(ctx, LogHooksTimedOut, zap.Duration("timeout", timeout))
	}
}
