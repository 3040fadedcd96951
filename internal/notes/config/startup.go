package config

import (
	"time"

	"notedesk/pkg/resilience"
)

// StartupConfig повтор подключения к инфраструктуре при старте.
type StartupConfig struct {
	Attempts       int           `yaml:"attempts" env:"NOTES_STARTUP_ATTEMPTS" env-default:"5"`
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"NOTES_STARTUP_INITIAL_BACKOFF" env-default:"200ms"`
	MaxBackoff     time.Duration `yaml:"max_backoff" env:"NOTES_STARTUP_MAX_BACKOFF" env-default:"3s"`
}

// RetryConfig настройки повтора.
func (s *StartupConfig) RetryConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = s.Attempts
	cfg.InitialBackoff = s.InitialBackoff
	cfg.MaxBackoff = s.MaxBackoff
	return cfg
}
