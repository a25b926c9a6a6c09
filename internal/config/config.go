package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all server settings, loaded from the environment.
type Config struct {
	Addr    string `env:"COMPREG_ADDR"     envDefault:":8080"`
	BaseURL string `env:"COMPREG_BASE_URL" envDefault:"http://localhost:8080"`
	DBPath  string `env:"COMPREG_DB_PATH"  envDefault:"compreg.db"`
	Env     string `env:"COMPREG_ENV"      envDefault:"development"`

	// Secrets. CSRFKey must be 32 bytes, hex or raw.
	CSRFKey       string `env:"COMPREG_CSRF_KEY"`
	JWTSecret     string `env:"COMPREG_JWT_SECRET"`
	WebhookSecret string `env:"COMPREG_WEBHOOK_SECRET" envDefault:"stub-webhook-secret"`

	// Email delivery. With no API key the server logs emails instead.
	ResendAPIKey string `env:"COMPREG_RESEND_API_KEY"`
	EmailFrom    string `env:"COMPREG_EMAIL_FROM"     envDefault:"Compreg <noreply@compreg.local>"`
	EmailReplyTo string `env:"COMPREG_EMAIL_REPLY_TO"`

	// Initial admin account, created on first boot if no accounts exist.
	AdminEmail    string `env:"COMPREG_ADMIN_EMAIL"    envDefault:"admin@compreg.local"`
	AdminPassword string `env:"COMPREG_ADMIN_PASSWORD"`

	// SlowQueryMs is the threshold for slow query logging.
	SlowQueryMs int `env:"COMPREG_SLOW_QUERY_MS" envDefault:"100"`
}

// Load parses configuration from environment variables.
// POST: Returns a config with defaults applied, or an error on malformed values
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
