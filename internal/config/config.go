// Package config loads application configuration from the environment.
//
// Configuration is a plain struct parsed once in main and passed down
// explicitly — never a process-wide singleton. The `env` struct tags drive
// github.com/caarlos0/env; a .env file in the working directory is loaded
// first (and silently skipped if absent), which keeps local development
// setup to a single file.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup. Defaults are
// production-leaning: CookieSecure in particular defaults to true and must
// be switched off explicitly for plain-HTTP local development.
type Config struct {
	Port int `env:"PORT" envDefault:"4000"`

	// DBDriver selects the storage backend: "sqlite" (default, embedded)
	// or "mysql". DBDSN is driver-specific: a file path (or ":memory:")
	// for sqlite, a go-sql-driver DSN for mysql.
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBDSN    string `env:"DB_DSN" envDefault:"data/snippetbox.db"`

	// SessionLifetime is the inactivity window: every committed request
	// pushes a session's expiry this far into the future.
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"12h"`

	// SweepInterval is how often the background task deletes expired
	// session rows.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`

	// RequestTimeout bounds each request's context deadline.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// CookieSecure controls the Secure attribute on the session cookie.
	CookieSecure bool `env:"COOKIE_SECURE" envDefault:"true"`

	// BcryptCost is the password hashing work factor. Zero means the
	// package default (12); tests use the bcrypt minimum.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"12"`
}

// Load parses the environment (after merging an optional .env file) into a
// Config. A missing .env file is not an error; a malformed variable is.
func Load() (Config, error) {
	// Ignore the error — the .env file might not exist and that's fine.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	return cfg, nil
}
