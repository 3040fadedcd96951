package config

import "time"

// ViewerConfig определяет текущего пользователя клиента.
// Если задан Token, личность и роль берутся из него, иначе роль Email ищется
// в списке допущенных пользователей.
type ViewerConfig struct {
	Email     string `yaml:"email" env:"NOTES_VIEWER_EMAIL" env-default:""`
	Token     string `yaml:"token" env:"NOTES_VIEWER_TOKEN" env-default:""`
	SecretKey string `yaml:"secret_key" env:"NOTES_JWT_SECRET_KEY" env-default:"2hlsdwbzmv7yGxbQ4sIah/MuvvNoe889pbEzZql0SU8n3U1gYi29gZnFQKxiUdGH"`
	TokenTTL  string `yaml:"token_ttl" env:"NOTES_JWT_TOKEN_TTL" env-default:"720h"`
}

// GetTokenTTL возвращает срок действия выпускаемых токенов.
func (c *ViewerConfig) GetTokenTTL() time.Duration {
	duration, err := time.ParseDuration(c.TokenTTL)
	if err != nil {
		return 720 * time.Hour
	}
	return duration
}
