// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 1895 {
		t.Errorf("default port = %d, want 1895", cfg.Server.Port)
	}
	if cfg.Dataset.CacheDir != "/data/imdb" {
		t.Errorf("default cache dir = %q", cfg.Dataset.CacheDir)
	}
	if cfg.Dataset.BaseURL != "https://datasets.imdbws.com" {
		t.Errorf("default base URL = %q", cfg.Dataset.BaseURL)
	}
	if cfg.Dataset.MaxAge != 7*24*time.Hour {
		t.Errorf("default max age = %s, want 168h", cfg.Dataset.MaxAge)
	}
	if cfg.Aggregate.DefaultCount != 12 {
		t.Errorf("default count = %d, want 12", cfg.Aggregate.DefaultCount)
	}
	if !cfg.Snapshot.Enabled || cfg.Snapshot.Path != "/data/snapshot" {
		t.Errorf("snapshot defaults = %+v", cfg.Snapshot)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CINEASTE_SERVER_PORT", "8080")
	t.Setenv("CINEASTE_DATASET_CACHE_DIR", "/tmp/imdb-cache")
	t.Setenv("CINEASTE_AGGREGATE_DEFAULT_COUNT", "5")
	t.Setenv("CINEASTE_LOGGING_LEVEL", "debug")
	t.Setenv("CINEASTE_SECURITY_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Dataset.CacheDir != "/tmp/imdb-cache" {
		t.Errorf("cache dir = %q", cfg.Dataset.CacheDir)
	}
	if cfg.Aggregate.DefaultCount != 5 {
		t.Errorf("default count = %d, want 5", cfg.Aggregate.DefaultCount)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != 2 ||
		cfg.Security.CORSOrigins[0] != want[0] ||
		cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("cors origins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"port out of range", "CINEASTE_SERVER_PORT", "70000", "CINEASTE_SERVER_PORT"},
		{"bad base url", "CINEASTE_DATASET_BASE_URL", "not-a-url", "CINEASTE_DATASET_BASE_URL"},
		{"count too high", "CINEASTE_AGGREGATE_DEFAULT_COUNT", "51", "CINEASTE_AGGREGATE_DEFAULT_COUNT"},
		{"count too low", "CINEASTE_AGGREGATE_DEFAULT_COUNT", "0", "CINEASTE_AGGREGATE_DEFAULT_COUNT"},
		{"bad log level", "CINEASTE_LOGGING_LEVEL", "verbose", "CINEASTE_LOGGING_LEVEL"},
		{"bad environment", "CINEASTE_SERVER_ENVIRONMENT", "staging", "CINEASTE_SERVER_ENVIRONMENT"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not name %s", err, tc.want)
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	cases := map[string]string{
		"CINEASTE_SERVER_PORT":           "server.port",
		"CINEASTE_DATASET_CACHE_DIR":     "dataset.cache_dir",
		"CINEASTE_SECURITY_CORS_ORIGINS": "security.cors_origins",
		"CINEASTE_LOGGING_LEVEL":         "logging.level",
	}
	for in, want := range cases {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateSnapshot(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Snapshot.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("enabled snapshot with empty path must fail validation")
	}
	cfg.Snapshot.Enabled = false
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled snapshot should not require a path: %v", err)
	}
}
