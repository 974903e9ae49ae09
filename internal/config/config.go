package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the portal
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:5174"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"production"`

	// APIBaseURL points at the election backend, including its /api prefix.
	APIBaseURL string `env:"API_BASE_URL,notEmpty"`

	RedisURL string `env:"REDIS_URL,notEmpty"`

	SessionCookie string `env:"SESSION_COOKIE" envDefault:"portal_session"`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"true"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// MediaBaseURL returns the origin serving uploaded media: the API base with
// its /api path segment stripped.
func (c *Config) MediaBaseURL() string {
	return strings.TrimSuffix(c.APIBaseURL, "/api")
}
