// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	Addr string `env:"FLIXOR_ADDR" envDefault:":8080"`

	Cache  CacheConfig
	TMDB   TMDBConfig
	Trakt  TraktConfig
	PlexTV PlexTVConfig
}

// CacheConfig holds the cache tuning knobs
type CacheConfig struct {
	Dir           string        `env:"FLIXOR_CACHE_DIR"`
	MaxEntries    int           `env:"FLIXOR_CACHE_MAX_ENTRIES" envDefault:"500"`
	SweepInterval time.Duration `env:"FLIXOR_CACHE_SWEEP_INTERVAL" envDefault:"5m"`
}

// TMDBConfig holds TMDB-specific configuration
type TMDBConfig struct {
	APIKey string `env:"TMDB_API_KEY"`
}

// TraktConfig holds Trakt-specific configuration
type TraktConfig struct {
	ClientID    string `env:"TRAKT_CLIENT_ID"`
	AccessToken string `env:"TRAKT_ACCESS_TOKEN"`
}

// PlexTVConfig holds plex.tv-specific configuration
type PlexTVConfig struct {
	Token            string `env:"PLEX_TOKEN"`
	ClientIdentifier string `env:"PLEX_CLIENT_IDENTIFIER"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Cache.Dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		cfg.Cache.Dir = filepath.Join(base, "flixor")
	}

	return cfg, nil
}

// HasTMDB returns true if TMDB configuration is complete
func (c *Config) HasTMDB() bool {
	return c.TMDB.APIKey != ""
}

// HasTrakt returns true if Trakt configuration is complete
func (c *Config) HasTrakt() bool {
	return c.Trakt.ClientID != ""
}

// HasPlexTV returns true if plex.tv configuration is complete
func (c *Config) HasPlexTV() bool {
	return c.PlexTV.Token != ""
}

// Validate ensures the configuration has at least one provider configured
func (c *Config) Validate() error {
	if !c.HasTMDB() && !c.HasTrakt() && !c.HasPlexTV() {
		return fmt.Errorf("no providers configured - please set environment variables for at least one provider")
	}
	if c.Cache.SweepInterval < 0 {
		return fmt.Errorf("FLIXOR_CACHE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}
