// Package config reads the shop's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendCookie = "cookie"
	BackendRedis  = "redis"

	HasherBcrypt = "bcrypt"
	HasherPBKDF2 = "pbkdf2"
)

const minSecretLength = 32

// Config holds the application settings.
type Config struct {
	Port string

	SecretKey string

	DatabaseDriver string // sqlite or postgres
	DatabaseDSN    string // file path for sqlite, connection URL for postgres

	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration
	CookieSecure   bool

	PasswordHasher string
	BcryptCost     int

	LogLevel slog.Level
}

// Load reads settings from the environment, after loading a .env file from
// the working directory if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:           get("PORT", "8080"),
		SecretKey:      getenv("SECRET_KEY"),
		SessionBackend: strings.ToLower(get("SESSION_BACKEND", BackendCookie)),
		RedisURL:       get("REDIS_URL", "redis://localhost:6379/0"),
		CookieSecure:   getenv("COOKIE_SECURE") != "false",
		PasswordHasher: strings.ToLower(get("PASSWORD_HASHER", HasherBcrypt)),
	}

	var errs []error

	driver, dsn, err := ParseDatabaseURL(get("DATABASE_URL", "sqlite:///shop.db"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.DatabaseDriver, cfg.DatabaseDSN = driver, dsn

	ttl, err := time.ParseDuration(get("SESSION_TTL", "24h"))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL: %w", err))
	case ttl <= 0:
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl))
	}
	cfg.SessionTTL = ttl

	cost, err := strconv.Atoi(get("BCRYPT_COST", "12"))
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST: %w", err))
	case cost < 4 || cost > 14:
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cost))
	}
	cfg.BcryptCost = cost

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	switch {
	case c.SecretKey == "":
		errs = append(errs, errors.New("SECRET_KEY is required"))
	case len(c.SecretKey) < minSecretLength:
		errs = append(errs, fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretLength))
	}
	switch c.SessionBackend {
	case BackendCookie, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be %q or %q, got %q", BackendCookie, BackendRedis, c.SessionBackend))
	}
	switch c.PasswordHasher {
	case HasherBcrypt, HasherPBKDF2:
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER must be %q or %q, got %q", HasherBcrypt, HasherPBKDF2, c.PasswordHasher))
	}
	return errors.Join(errs...)
}

// ParseDatabaseURL splits a DATABASE_URL into a driver name and the DSN that
// driver expects. sqlite:///shop.db names a relative file, sqlite:////var/shop.db
// an absolute one, and sqlite:// or sqlite://:memory: an in-memory database.
func ParseDatabaseURL(raw string) (driver, dsn string, err error) {
	switch {
	case strings.HasPrefix(raw, "sqlite://"):
		rest := strings.TrimPrefix(raw, "sqlite://")
		switch {
		case rest == "" || rest == ":memory:" || rest == "/:memory:":
			return DriverSQLite, ":memory:", nil
		case strings.HasPrefix(rest, "/") && len(rest) > 1:
			return DriverSQLite, rest[1:], nil
		}
		return "", "", fmt.Errorf("invalid sqlite DATABASE_URL %q: expected sqlite:///path", raw)
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, raw, nil
	}
	return "", "", fmt.Errorf("unsupported DATABASE_URL %q", raw)
}
