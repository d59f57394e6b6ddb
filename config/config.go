// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. Fine for local
// development only.
const DefaultSessionSecret = "db-auth-dev-secret"

type Config struct {
	Port string `validate:"required,numeric"`

	DBHost         string `validate:"required"`
	DBPort         string `validate:"required,numeric"`
	DBUser         string `validate:"required"`
	DBPassword     string
	DBName         string        `validate:"required"`
	DBSSLMode      string        `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	DBMaxOpenConns int           `validate:"gte=1"`
	ConnectRetries uint64        `validate:"lte=1000"`
	ConnectDelay   time.Duration `validate:"gt=0"`

	SessionSecret     string        `validate:"required"`
	SessionCookieName string        `validate:"required"`
	SessionTTL        time.Duration `validate:"gt=0"`

	PublicDir      string `validate:"required"`
	UploadDir      string `validate:"required"`
	UploadMaxBytes int64  `validate:"gt=0"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`
	GinMode   string
}

// Load reads a .env file when present, then the process environment.
// A missing .env is not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:              getenv("PORT", "5000"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            getenv("DB_NAME", "db_auth"),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		SessionSecret:     getenv("SESSION_SECRET", DefaultSessionSecret),
		SessionCookieName: getenv("SESSION_COOKIE_NAME", "db_auth_session"),
		PublicDir:         getenv("PUBLIC_DIR", "public"),
		UploadDir:         getenv("UPLOAD_DIR", "uploads"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogFormat:         getenv("LOG_FORMAT", "text"),
		GinMode:           os.Getenv("GIN_MODE"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getenvInt("DB_MAX_OPEN_CONNS", 1); err != nil {
		return nil, err
	}
	retries, err := getenvInt("DB_CONNECT_RETRIES", 10)
	if err != nil {
		return nil, err
	}
	if retries < 0 {
		return nil, fmt.Errorf("DB_CONNECT_RETRIES: must not be negative, got %d", retries)
	}
	cfg.ConnectRetries = uint64(retries)
	if cfg.ConnectDelay, err = getenvDuration("DB_CONNECT_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getenvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	maxBytes, err := getenvInt("UPLOAD_MAX_BYTES", 5*1024*1024)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxBytes = int64(maxBytes)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DSN is the PostgreSQL connection string for gorm's postgres driver.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
