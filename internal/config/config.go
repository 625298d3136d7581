// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Logging   LoggingConfig
	Notify    NotifyConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that sets those headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"virtual-events"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// NotifyConfig sizes the background welcome-notification queue.
type NotifyConfig struct {
	Workers   int           `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`
	Timeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	From      string        `env:"NOTIFY_FROM" envDefault:"no-reply@virtual-events.local"`
}

type RateLimitConfig struct {
	// LoginPerMinute caps login attempts per client IP. Zero disables the limit.
	LoginPerMinute int `env:"LOGIN_RATE_PER_MINUTE" envDefault:"10"`
}

type CORSConfig struct {
	// AllowedOrigins of "*" allows any origin.
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads a .env file when one exists and then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the service cannot start without.
func (c Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Server.Port)
	}
	if c.Notify.Workers <= 0 {
		return errors.New("NOTIFY_WORKERS must be positive")
	}
	if c.Notify.QueueSize <= 0 {
		return errors.New("NOTIFY_QUEUE_SIZE must be positive")
	}
	return nil
}
