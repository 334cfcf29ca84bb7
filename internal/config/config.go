// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package config provides centralized configuration for all Cineaste
// components: dataset fetching and caching, aggregation defaults, the
// HTTP server, snapshot persistence, security, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: CINEASTE_* overrides any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and CINEASTE_* environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Aggregate AggregateConfig `koanf:"aggregate"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - CINEASTE_SERVER_HOST: bind address (default: 0.0.0.0)
//   - CINEASTE_SERVER_PORT: port (default: 1895)
//   - CINEASTE_SERVER_TIMEOUT: read/write timeout (default: 5m, first
//     request may block on a ~1GB download)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// DatasetConfig holds dataset download and cache settings.
//
// Environment Variables:
//   - CINEASTE_DATASET_CACHE_DIR: local cache directory (default: /data/imdb)
//   - CINEASTE_DATASET_BASE_URL: remote base URL (default: IMDb's host)
//   - CINEASTE_DATASET_MAX_AGE: re-download files older than this (default: 168h)
//   - CINEASTE_DATASET_DOWNLOAD_TIMEOUT: per-file timeout (default: 15m)
//   - CINEASTE_DATASET_REFRESH_ENABLED: background staleness checks (default: true)
//   - CINEASTE_DATASET_REFRESH_INTERVAL: check interval (default: 6h)
//   - CINEASTE_DATASET_REQUESTS_PER_MINUTE: outbound pacing (default: 6)
type DatasetConfig struct {
	CacheDir          string        `koanf:"cache_dir"`
	BaseURL           string        `koanf:"base_url"`
	MaxAge            time.Duration `koanf:"max_age"`
	DownloadTimeout   time.Duration `koanf:"download_timeout"`
	RefreshEnabled    bool          `koanf:"refresh_enabled"`
	RefreshInterval   time.Duration `koanf:"refresh_interval"`
	RequestsPerMinute int           `koanf:"requests_per_minute"`
}

// AggregateConfig holds aggregation defaults.
//
// Environment Variables:
//   - CINEASTE_AGGREGATE_DEFAULT_COUNT: default exact-N filter (default: 12)
type AggregateConfig struct {
	DefaultCount int `koanf:"default_count"`
}

// SnapshotConfig holds the BadgerDB index snapshot settings. The snapshot
// persists the aggregated director index keyed by a fingerprint of the
// source files, so a restart skips the multi-minute re-parse.
//
// Environment Variables:
//   - CINEASTE_SNAPSHOT_ENABLED: persist the index (default: true)
//   - CINEASTE_SNAPSHOT_PATH: BadgerDB directory (default: /data/snapshot)
type SnapshotConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// SecurityConfig holds HTTP hardening settings.
//
// Environment Variables:
//   - CINEASTE_SECURITY_RATE_LIMIT_REQS: requests per window (default: 100)
//   - CINEASTE_SECURITY_RATE_LIMIT_WINDOW: window size (default: 1m)
//   - CINEASTE_SECURITY_RATE_LIMIT_DISABLED: disable limiting (default: false)
//   - CINEASTE_SECURITY_CORS_ORIGINS: comma-separated origins (default: *)
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - CINEASTE_LOGGING_LEVEL: debug, info, warn, error (default: info)
//   - CINEASTE_LOGGING_FORMAT: json or console (default: json)
//   - CINEASTE_LOGGING_CALLER: include caller info (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateAggregate(); err != nil {
		return err
	}
	if err := c.validateSnapshot(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("CINEASTE_SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("CINEASTE_SERVER_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("CINEASTE_SERVER_ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.CacheDir == "" {
		return fmt.Errorf("CINEASTE_DATASET_CACHE_DIR must not be empty")
	}
	u, err := url.Parse(c.Dataset.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CINEASTE_DATASET_BASE_URL is not a valid http(s) URL: %q", c.Dataset.BaseURL)
	}
	if c.Dataset.MaxAge <= 0 {
		return fmt.Errorf("CINEASTE_DATASET_MAX_AGE must be positive, got %s", c.Dataset.MaxAge)
	}
	if c.Dataset.DownloadTimeout <= 0 {
		return fmt.Errorf("CINEASTE_DATASET_DOWNLOAD_TIMEOUT must be positive, got %s", c.Dataset.DownloadTimeout)
	}
	if c.Dataset.RefreshEnabled && c.Dataset.RefreshInterval <= 0 {
		return fmt.Errorf("CINEASTE_DATASET_REFRESH_INTERVAL must be positive when refresh is enabled, got %s", c.Dataset.RefreshInterval)
	}
	if c.Dataset.RequestsPerMinute < 1 {
		return fmt.Errorf("CINEASTE_DATASET_REQUESTS_PER_MINUTE must be at least 1, got %d", c.Dataset.RequestsPerMinute)
	}
	return nil
}

func (c *Config) validateAggregate() error {
	if c.Aggregate.DefaultCount < 1 || c.Aggregate.DefaultCount > 50 {
		return fmt.Errorf("CINEASTE_AGGREGATE_DEFAULT_COUNT must be between 1 and 50, got %d", c.Aggregate.DefaultCount)
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if c.Snapshot.Enabled && c.Snapshot.Path == "" {
		return fmt.Errorf("CINEASTE_SNAPSHOT_PATH must not be empty when snapshots are enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("CINEASTE_LOGGING_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("CINEASTE_LOGGING_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
