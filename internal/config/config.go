// Package config loads assetdesk settings from the environment. Optional
// .env files are read first; variables already set in the process win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "ASSETDESK_"

// DefaultEnvFiles are read by Load when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

// CollectionOptions tunes every collection controller.
type CollectionOptions struct {
	PageSize        int           `env:"PAGE_SIZE" envDefault:"5"`
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL" envDefault:"4s"`
	DeleteDelay     time.Duration `env:"DELETE_DELAY" envDefault:"800ms"`
	FuzzySearch     bool          `env:"FUZZY_SEARCH" envDefault:"false"`
	EnforceRefs     bool          `env:"ENFORCE_REFERENCES" envDefault:"false"`
}

// S3Options configures the S3 export backend.
type S3Options struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	PathStyle       bool   `env:"PATH_STYLE" envDefault:"false"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	SessionToken    string `env:"SESSION_TOKEN"`
}

// BlobOptions selects where exports are delivered.
type BlobOptions struct {
	Driver string    `env:"DRIVER" envDefault:"fs"`
	FSRoot string    `env:"FS_ROOT" envDefault:"./exports"`
	Prefix string    `env:"PREFIX" envDefault:""`
	S3     S3Options `envPrefix:"S3_"`
}

// SeedOptions selects where initial records come from.
type SeedOptions struct {
	Driver      string `env:"DRIVER" envDefault:"embedded"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./assetdesk.db"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

// Configuration is the full set of settings.
type Configuration struct {
	Collection     CollectionOptions `envPrefix:"COLLECTION_"`
	Blob           BlobOptions       `envPrefix:"BLOB_"`
	Seed           SeedOptions       `envPrefix:"SEED_"`
	LogLevel       string            `env:"LOG_LEVEL" envDefault:"info"`
	MetricsBackend string            `env:"METRICS" envDefault:"none"`
}

// LoadEnv reads the env files that exist and returns how many were loaded.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads DefaultEnvFiles, then parses and validates the process
// environment.
func Load() (Configuration, error) {
	if _, err := LoadEnv(DefaultEnvFiles); err != nil {
		return Configuration{}, fmt.Errorf("load env files: %w", err)
	}
	return parse(env.Options{Prefix: Prefix})
}

// FromMap parses settings from vars instead of the process environment.
// Keys carry the ASSETDESK_ prefix.
func FromMap(vars map[string]string) (Configuration, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Configuration, error) {
	var c Configuration
	if err := env.ParseWithOptions(&c, opts); err != nil {
		return Configuration{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Validate rejects settings no component can honor.
func (c Configuration) Validate() error {
	var errs []error
	if c.Collection.PageSize < 1 || c.Collection.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size must be within 1..100, got %d", c.Collection.PageSize))
	}
	if c.Collection.NotificationTTL <= 0 {
		errs = append(errs, fmt.Errorf("notification ttl must be positive, got %s", c.Collection.NotificationTTL))
	}
	if c.Collection.DeleteDelay < 0 {
		errs = append(errs, fmt.Errorf("delete delay must not be negative, got %s", c.Collection.DeleteDelay))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.MetricsBackend {
	case "none", "expvar", "prometheus":
	default:
		errs = append(errs, fmt.Errorf("metrics backend must be none, expvar or prometheus, got %q", c.MetricsBackend))
	}
	switch c.Blob.Driver {
	case "fs", "memory":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob s3 bucket is required when the blob driver is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob driver must be fs, s3 or memory, got %q", c.Blob.Driver))
	}
	switch c.Seed.Driver {
	case "none", "embedded":
	case "sqlite":
		if c.Seed.SQLitePath == "" {
			errs = append(errs, errors.New("seed sqlite path is required when the seed driver is sqlite"))
		}
	case "postgres":
		if c.Seed.PostgresDSN == "" {
			errs = append(errs, errors.New("seed postgres dsn is required when the seed driver is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("seed driver must be none, embedded, sqlite or postgres, got %q", c.Seed.Driver))
	}
	return errors.Join(errs...)
}
