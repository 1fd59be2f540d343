// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for the API server.
type Config struct {
	Addr        string `env:"TIJARA_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"TIJARA_PG_DSN"`

	// AuthSecret signs session tokens. It is not required at startup; token
	// issuance fails with a configuration error when it is missing.
	AuthSecret string `env:"TIJARA_AUTH_SECRET"`

	SessionTTL time.Duration `env:"TIJARA_SESSION_TTL" envDefault:"168h"`
	BcryptCost int           `env:"TIJARA_BCRYPT_COST" envDefault:"12"`

	// InviteLinkBase is prepended to invite redemption links handed to the
	// notifier.
	InviteLinkBase string `env:"TIJARA_INVITE_LINK_BASE" envDefault:"http://localhost:8080"`

	SecureCookies bool `env:"TIJARA_SECURE_COOKIES" envDefault:"false"`

	RateBurst  int `env:"TIJARA_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"TIJARA_RATE_PER_SEC" envDefault:"10"`

	MigrationsDir string `env:"TIJARA_MIGRATIONS_DIR" envDefault:"migrations"`

	ReapInterval time.Duration `env:"TIJARA_REAP_INTERVAL" envDefault:"10m"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
