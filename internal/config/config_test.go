package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "tmdb-key")
	t.Setenv("TRAKT_CLIENT_ID", "trakt-id")
	t.Setenv("TRAKT_ACCESS_TOKEN", "trakt-token")
	t.Setenv("PLEX_TOKEN", "plex-token")
	t.Setenv("FLIXOR_CACHE_DIR", "/tmp/flixor-test-cache")
	t.Setenv("FLIXOR_CACHE_MAX_ENTRIES", "100")
	t.Setenv("FLIXOR_CACHE_SWEEP_INTERVAL", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TMDB.APIKey != "tmdb-key" {
		t.Errorf("expected APIKey 'tmdb-key', got '%s'", cfg.TMDB.APIKey)
	}
	if cfg.Trakt.ClientID != "trakt-id" {
		t.Errorf("expected ClientID 'trakt-id', got '%s'", cfg.Trakt.ClientID)
	}
	if cfg.PlexTV.Token != "plex-token" {
		t.Errorf("expected Token 'plex-token', got '%s'", cfg.PlexTV.Token)
	}
	if cfg.Cache.Dir != "/tmp/flixor-test-cache" {
		t.Errorf("expected cache dir '/tmp/flixor-test-cache', got '%s'", cfg.Cache.Dir)
	}
	if cfg.Cache.MaxEntries != 100 {
		t.Errorf("expected MaxEntries 100, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.SweepInterval != time.Minute {
		t.Errorf("expected SweepInterval 1m, got %v", cfg.Cache.SweepInterval)
	}

	if !cfg.HasTMDB() || !cfg.HasTrakt() || !cfg.HasPlexTV() {
		t.Error("all providers should be configured")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLIXOR_CACHE_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr ':8080', got '%s'", cfg.Addr)
	}
	if cfg.Cache.MaxEntries != 500 {
		t.Errorf("expected default MaxEntries 500, got %d", cfg.Cache.MaxEntries)
	}
	if cfg.Cache.SweepInterval != 5*time.Minute {
		t.Errorf("expected default SweepInterval 5m, got %v", cfg.Cache.SweepInterval)
	}
}

func TestLoadInvalidMaxEntries(t *testing.T) {
	t.Setenv("FLIXOR_CACHE_MAX_ENTRIES", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for invalid FLIXOR_CACHE_MAX_ENTRIES")
	}
}

func TestValidate(t *testing.T) {
	// Test with no providers
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when no providers configured")
	}

	// Test with TMDB only
	cfg = &Config{}
	cfg.TMDB.APIKey = "test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Should not error with TMDB configured: %v", err)
	}

	// Test with plex.tv only
	cfg = &Config{}
	cfg.PlexTV.Token = "test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Should not error with plex.tv configured: %v", err)
	}

	// Negative sweep interval is rejected
	cfg.Cache.SweepInterval = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative sweep interval")
	}
}
