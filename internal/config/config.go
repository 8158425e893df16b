package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to boot the service. Values come from
// the environment, with an optional .env file for local development.
type Config struct {
	Env          string // "development" or "production"
	Addr         string
	DBPath       string
	StaticDir    string
	CSRFKeyHex   string
	ResendAPIKey string
	EmailFrom    string
	EmailReplyTo string
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI).
	_ = godotenv.Load()

	cfg := &Config{
		Env:          envOrDefault("PARTYMAP_ENV", "development"),
		Addr:         envOrDefault("PARTYMAP_ADDR", ":8080"),
		DBPath:       envOrDefault("PARTYMAP_DB_PATH", "partymap.db"),
		StaticDir:    envOrDefault("PARTYMAP_STATIC_DIR", "static"),
		CSRFKeyHex:   os.Getenv("PARTYMAP_CSRF_KEY"),
		ResendAPIKey: os.Getenv("PARTYMAP_RESEND_KEY"),
		EmailFrom:    envOrDefault("PARTYMAP_EMAIL_FROM", "Partymap <noreply@partymap.app>"),
		EmailReplyTo: envOrDefault("PARTYMAP_REPLY_TO", "hello@partymap.app"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("config: PARTYMAP_ENV must be development or production, got %q", c.Env)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: PARTYMAP_ADDR cannot be blank")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: PARTYMAP_DB_PATH cannot be blank")
	}
	if c.IsProduction() && c.CSRFKeyHex == "" {
		return fmt.Errorf("config: PARTYMAP_CSRF_KEY is required in production")
	}
	if c.IsProduction() && c.ResendAPIKey == "" {
		return fmt.Errorf("config: PARTYMAP_RESEND_KEY is required in production")
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
