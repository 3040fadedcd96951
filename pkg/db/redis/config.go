// Package redis создает клиент go-redis для публикации уведомлений об изменениях.
package redis

import (
	"net"
	"strconv"
	"time"
)

// Значения по умолчанию.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 6379
	DefaultPoolSize = 10
	DefaultTimeout  = 3 * time.Second
)

// Config настройки подключения к Redis.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
	Timeout  time.Duration
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		PoolSize: DefaultPoolSize,
		Timeout:  DefaultTimeout,
	}
}

// Addr возвращает адрес host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
