// Package config provides application configuration management.
// Configuration is loaded from environment variables following
// 12-factor principles; a .env file is honored when present.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the insecure fallback used when JWT_SECRET is
// unset. Fine for the demo, never for a real deployment; startup logs
// a warning when it is in effect.
const DefaultJWTSecret = "default-insecure-secret-key"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"4000"`

	// Token signing secret; falls back to DefaultJWTSecret.
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// Generative model access
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL" envDefault:""`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`

	// Origin the browser client is served from.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5174"`

	// Optional persistent store; empty keeps everything in memory.
	DatabaseURL string `env:"DATABASE_URL" envDefault:""`

	// Optional Redis; empty disables the generation rate limit.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Generation rate limit (per user, token bucket)
	GenerateRatePerMinute int `env:"GENERATE_RATE_PER_MINUTE" envDefault:"10"`
	GenerateBurst         int `env:"GENERATE_BURST" envDefault:"3"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// UsingDefaultSecret reports whether the insecure fallback secret is
// in effect.
func (c *Config) UsingDefaultSecret() bool {
	return c.JWTSecret == ""
}

// SigningSecret returns the effective token signing secret.
func (c *Config) SigningSecret() []byte {
	if c.JWTSecret == "" {
		return []byte(DefaultJWTSecret)
	}
	return []byte(c.JWTSecret)
}

// Load reads an optional .env file, parses environment variables and
// returns a Config. GEMINI_API_KEY is required: without it the only
// feature of the product cannot work.
func Load() (*Config, error) {
	// Missing .env is fine; system environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	return cfg, nil
}
