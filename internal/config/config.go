package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	DatabaseURL string `env:"DATABASE_URL,required"`
	SessionDSN  string `env:"WA_SESSION_DSN"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Payment gateway
	GatewayURL           string `env:"GATEWAY_API_URL" envDefault:"https://api.xendit.co"`
	GatewayAPIKey        string `env:"GATEWAY_API_KEY"`
	GatewayWebhookSecret string `env:"GATEWAY_WEBHOOK_SECRET"`

	// Owner / admin
	OwnerJID  string `env:"OWNER_JID,required"`
	OwnerName string `env:"OWNER_NAME" envDefault:"Admin"`

	// Hell event ingest
	HellIngestToken string `env:"HELL_INGEST_TOKEN"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`

	// Scheduling
	OperatingTZ string        `env:"OPERATING_TZ" envDefault:"Asia/Jakarta"`
	SendDelay   time.Duration `env:"SEND_DELAY" envDefault:"2s"`
	TrialDays   int           `env:"TRIAL_DAYS" envDefault:"3"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// The WhatsApp session store shares the main database unless pointed
	// elsewhere.
	if cfg.SessionDSN == "" {
		cfg.SessionDSN = cfg.DatabaseURL
	}
	return cfg, nil
}

// Location resolves the configured operating timezone. Every calendar-day
// decision (end-of-day expiry, notify-once-per-day) is evaluated in this
// zone, never in host local time.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.OperatingTZ)
	if err != nil {
		return nil, fmt.Errorf("load operating timezone %q: %w", c.OperatingTZ, err)
	}
	return loc, nil
}

func (c *Config) IsOwner(jid string) bool {
	return c.OwnerJID != "" && jid == c.OwnerJID
}
