package config

import (
	"net"
	"strconv"
	"time"

	dbredis "notedesk/pkg/db/redis"
	"notedesk/pkg/resilience"
)

// RedisConfig представляет конфигурацию для Redis.
type RedisConfig struct {
	Host          string        `yaml:"host" env:"NOTES_REDIS_HOST" env-default:"localhost"`
	Port          int           `yaml:"port" env:"NOTES_REDIS_PORT" env-default:"6379"`
	Password      string        `yaml:"password" env:"NOTES_REDIS_PASSWORD" env-default:""`
	DB            int           `yaml:"db" env:"NOTES_REDIS_DB" env-default:"0"`
	Timeout       time.Duration `yaml:"timeout" env:"NOTES_REDIS_TIMEOUT" env-default:"3s"`
	PoolSize      int           `yaml:"pool_size" env:"NOTES_REDIS_POOL_SIZE" env-default:"10"`
	ChannelPrefix string        `yaml:"channel_prefix" env:"NOTES_REDIS_CHANNEL_PREFIX" env-default:"notedesk:changes:"`

	PublishFailureThreshold int           `yaml:"publish_failure_threshold" env:"NOTES_REDIS_PUBLISH_FAILURE_THRESHOLD" env-default:"5"`
	PublishCooldown         time.Duration `yaml:"publish_cooldown" env:"NOTES_REDIS_PUBLISH_COOLDOWN" env-default:"10s"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ClientConfig настройки клиента go-redis.
func (c *RedisConfig) ClientConfig() *dbredis.Config {
	return &dbredis.Config{
		Host:     c.Host,
		Port:     c.Port,
		Password: c.Password,
		DB:       c.DB,
		PoolSize: c.PoolSize,
		Timeout:  c.Timeout,
	}
}

// PublishBreaker настройки размыкателя публикации уведомлений.
func (c *RedisConfig) PublishBreaker() resilience.BreakerConfig {
	cfg := resilience.DefaultBreakerConfig()
	if c.PublishFailureThreshold > 0 {
		cfg.FailureThreshold = c.PublishFailureThreshold
	}
	if c.PublishCooldown > 0 {
		cfg.Cooldown = c.PublishCooldown
	}
	return cfg
}
