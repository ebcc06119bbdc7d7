// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// defaultDBPassword is the docker-compose password, rejected in production.
const defaultDBPassword = "changeme"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"WECAMP_LOG_LEVEL" envDefault:"info"`

	// Category store: "postgres" or "memory". The memory store is mirrored
	// to MemoryFile when set.
	Store      string `env:"WECAMP_STORE" envDefault:"postgres"`
	MemoryFile string `env:"WECAMP_MEMORY_FILE"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"wecamp"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"wecamp"`

	// Valkey (Redis-compatible) tree cache and event mirror. Disabled when
	// ValkeyHost is empty.
	ValkeyHost     string        `env:"VALKEY_HOST"`
	ValkeyPort     string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	ValkeyDB       int           `env:"VALKEY_DB" envDefault:"0"`
	EventsChannel  string        `env:"WECAMP_EVENTS_CHANNEL" envDefault:"wecamp:categories"`
	TreeCacheTTL   time.Duration `env:"WECAMP_TREE_CACHE_TTL" envDefault:"10m"`

	// S3-compatible snapshot storage. Disabled when S3Endpoint is empty.
	S3Endpoint       string        `env:"S3_ENDPOINT"`
	S3Region         string        `env:"S3_REGION" envDefault:"fsn1"`
	S3AccessKey      string        `env:"S3_ACCESS_KEY"`
	S3SecretKey      string        `env:"S3_SECRET_KEY"`
	S3BucketPublic   string        `env:"S3_BUCKET_PUBLIC" envDefault:"wecamp-public"`
	S3SnapshotPrefix string        `env:"S3_SNAPSHOT_PREFIX" envDefault:"snapshots"`
	S3PublicURL      string        `env:"S3_PUBLIC_URL"`
	SnapshotQuiet    time.Duration `env:"WECAMP_SNAPSHOT_QUIET" envDefault:"2s"`
	SnapshotMaxWait  time.Duration `env:"WECAMP_SNAPSHOT_MAX_WAIT" envDefault:"30s"`

	// Admin API: bcrypt hash of the bearer token.
	AdminTokenHash string `env:"WECAMP_ADMIN_TOKEN_HASH"`

	// Per-client request rate limit (requests per second and burst).
	RateLimit float64 `env:"WECAMP_RATE_LIMIT" envDefault:"20"`
	RateBurst int     `env:"WECAMP_RATE_BURST" envDefault:"40"`

	// SSE keep-alive comment interval.
	SSEHeartbeat time.Duration `env:"WECAMP_SSE_HEARTBEAT" envDefault:"25s"`
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding the real environment. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Store {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("WECAMP_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	if cfg.AdminTokenHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.AdminTokenHash)); err != nil {
			return nil, fmt.Errorf("WECAMP_ADMIN_TOKEN_HASH is not a bcrypt hash: %w", err)
		}
	}

	if cfg.Env == "production" {
		if cfg.Store == StorePostgres && (cfg.DBPassword == "" || cfg.DBPassword == defaultDBPassword) {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminTokenHash == "" {
			return nil, fmt.Errorf("WECAMP_ADMIN_TOKEN_HASH must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UseRedis reports whether Valkey is configured.
func (c *Config) UseRedis() bool {
	return c.ValkeyHost != ""
}

// UseS3 reports whether snapshot storage is configured.
func (c *Config) UseS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// SlogLevel parses LogLevel, falling back to info for unknown values.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
