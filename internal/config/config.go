// Package config resolves bookdash settings from defaults, config.yaml, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the resolved settings of one run.
type Config struct {
	Data      DataConfig
	Ratings   RatingsConfig
	Stats     StatsConfig
	Lookup    LookupConfig
	Cache     CacheConfig
	Datastore DatastoreConfig
}

// DataConfig locates the input datasets.
type DataConfig struct {
	CatalogFile string
	RatingsFile string
	SkipInvalid bool
}

// RatingsConfig selects the ratings backend and the identity ratings are
// recorded under. UserID 0 draws a random id per submission.
type RatingsConfig struct {
	Backend string
	DBFile  string
	UserID  int
}

// StatsConfig controls the statistics views.
type StatsConfig struct {
	Top int
}

// LookupConfig configures the book metadata providers.
type LookupConfig struct {
	Enabled           bool
	Providers         []string
	Timeout           time.Duration
	RatePerSecond     float64
	GoogleBooksAPIKey string
	GoogleBooksURL    string
	OpenLibraryURL    string
}

// CacheConfig configures the lookup cache database.
type CacheConfig struct {
	Enabled     bool
	DBFile      string
	TTL         time.Duration
	NegativeTTL time.Duration
}

// DatastoreConfig configures the export targets.
type DatastoreConfig struct {
	DBFile         string
	DatasetteURL   string
	DatasetteToken string
	Database       string
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.catalog", "books_of_the_decade.csv")
	v.SetDefault("data.ratings", "user_reviews_dataset.csv")
	v.SetDefault("data.skip_invalid", true)

	v.SetDefault("ratings.backend", "csv")
	v.SetDefault("ratings.dbfile", "./ratings.db")
	v.SetDefault("ratings.userid", 0)

	v.SetDefault("stats.top", 10)

	v.SetDefault("lookup.enabled", true)
	v.SetDefault("lookup.providers", []string{"googlebooks", "openlibrary"})
	v.SetDefault("lookup.timeout", "10s")
	v.SetDefault("lookup.rate_per_second", 2.0)
	v.SetDefault("lookup.googlebooks_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("lookup.openlibrary_url", "https://openlibrary.org")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dbfile", "./cache.db")
	v.SetDefault("cache.ttl", "720h")
	v.SetDefault("cache.negative_ttl", "168h")

	v.SetDefault("datastore.dbfile", "./bookdash.db")
	v.SetDefault("datastore.datasette_url", "")
	v.SetDefault("datastore.database", "bookdash")
}

// Init prepares v for Load: defaults, environment variables, the .env file
// and config.yaml from dir. Missing .env and config.yaml files are not errors.
func Init(v *viper.Viper, dir string) error {
	SetDefaults(v)

	envFile := filepath.Join(dir, ".env")
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		slog.Debug("Loaded environment file", "path", envFile)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("BOOKDASH")
	v.AutomaticEnv()
	if err := v.BindEnv("lookup.googlebooks_api_key", "GOOGLE_BOOKS_API_KEY"); err != nil {
		return fmt.Errorf("failed to bind environment variable: %w", err)
	}
	if err := v.BindEnv("datastore.datasette_token", "DATASETTE_TOKEN"); err != nil {
		return fmt.Errorf("failed to bind environment variable: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("Config file not found, using defaults", "dir", dir)
	}

	return nil
}

// Load resolves the typed configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	lookupTimeout, err := duration(v, "lookup.timeout")
	if err != nil {
		return nil, err
	}
	ttl, err := duration(v, "cache.ttl")
	if err != nil {
		return nil, err
	}
	negativeTTL, err := duration(v, "cache.negative_ttl")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Data: DataConfig{
			CatalogFile: v.GetString("data.catalog"),
			RatingsFile: v.GetString("data.ratings"),
			SkipInvalid: v.GetBool("data.skip_invalid"),
		},
		Ratings: RatingsConfig{
			Backend: v.GetString("ratings.backend"),
			DBFile:  v.GetString("ratings.dbfile"),
			UserID:  v.GetInt("ratings.userid"),
		},
		Stats: StatsConfig{
			Top: v.GetInt("stats.top"),
		},
		Lookup: LookupConfig{
			Enabled:           v.GetBool("lookup.enabled"),
			Providers:         v.GetStringSlice("lookup.providers"),
			Timeout:           lookupTimeout,
			RatePerSecond:     v.GetFloat64("lookup.rate_per_second"),
			GoogleBooksAPIKey: v.GetString("lookup.googlebooks_api_key"),
			GoogleBooksURL:    v.GetString("lookup.googlebooks_url"),
			OpenLibraryURL:    v.GetString("lookup.openlibrary_url"),
		},
		Cache: CacheConfig{
			Enabled:     v.GetBool("cache.enabled"),
			DBFile:      v.GetString("cache.dbfile"),
			TTL:         ttl,
			NegativeTTL: negativeTTL,
		},
		Datastore: DatastoreConfig{
			DBFile:         v.GetString("datastore.dbfile"),
			DatasetteURL:   v.GetString("datastore.datasette_url"),
			DatasetteToken: v.GetString("datastore.datasette_token"),
			Database:       v.GetString("datastore.database"),
		},
	}

	if cfg.Stats.Top <= 0 {
		return nil, fmt.Errorf("stats.top must be positive, got %d", cfg.Stats.Top)
	}
	if cfg.Lookup.Timeout <= 0 {
		return nil, fmt.Errorf("lookup.timeout must be positive, got %s", cfg.Lookup.Timeout)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s %q: %w", key, raw, err)
	}
	return d, nil
}
