// Package main реализует точку входа клиента заметок.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTES_LOGGER_MODE"
	EnvLoggerLevel = "NOTES_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger = "failed to initialize logger"
	ErrSyncLogger = "failed to sync logger"
	ErrCommand    = "command failed"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := context.Background()

	var exitCode int

	func() {
		defer syncLogger()

		if err := newRootCommand().ExecuteContext(ctx); err != nil {
			logger.Log(ctx).Error(ctx, ErrCommand, zap.Error(err))
			exitCode = 1
		}
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func syncLogger() {
	if err := logger.Log(context.Background()).Sync(); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
			return
		}
		if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
			panic(writeErr)
		}
	}
}
