// Cineaste - IMDb Director Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cineaste

// Package main is the entry point for the Cineaste server.
//
// Cineaste answers one question about the public IMDb datasets: which
// directors have directed exactly N movies? It downloads the datasets,
// aggregates movie counts per director, and serves the results through
// a JSON API and an embedded web UI.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, CINEASTE_* env vars (Koanf v2)
//  2. Fetcher: rate-limited, circuit-broken downloads into the local cache
//  3. Dataset store: memoized gzip TSV parsing of the three IMDb files
//  4. Snapshot store: BadgerDB persistence of the aggregated index
//  5. Director service: the fetch, parse, aggregate pipeline
//  6. Supervisor tree: the dataset refresher and the HTTP server
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (CINEASTE_*)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes the snapshot store
//
// # Example Usage
//
// Defaults only:
//
//	./cineaste
//
// Custom cache directory and port:
//
//	export CINEASTE_DATASET_CACHE_DIR=/var/cache/imdb
//	export CINEASTE_SERVER_PORT=8080
//	./cineaste
//
// Docker:
//
//	docker run -d \
//	  -v cineaste-data:/data \
//	  -p 1895:1895 \
//	  ghcr.io/tomtom215/cineaste
//
// # Port 1895
//
// The default port 1895 references the year of the Lumière brothers'
// first public film screening.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cineaste/internal/api"
	"github.com/tomtom215/cineaste/internal/config"
	"github.com/tomtom215/cineaste/internal/dataset"
	"github.com/tomtom215/cineaste/internal/director"
	"github.com/tomtom215/cineaste/internal/fetch"
	"github.com/tomtom215/cineaste/internal/logging"
	"github.com/tomtom215/cineaste/internal/snapshot"
	"github.com/tomtom215/cineaste/internal/supervisor"
	"github.com/tomtom215/cineaste/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger for config errors (config not yet available).
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Cineaste with supervisor tree")
	logging.Info().
		Str("cache_dir", cfg.Dataset.CacheDir).
		Str("base_url", cfg.Dataset.BaseURL).
		Dur("max_age", cfg.Dataset.MaxAge).
		Int("default_count", cfg.Aggregate.DefaultCount).
		Msg("Configuration loaded")

	fetcher, err := fetch.New(&cfg.Dataset)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize dataset fetcher")
	}

	tables := dataset.NewStore()

	// Snapshot store is optional: without it every restart pays a full
	// re-parse of ~1GB of TSV, but nothing else changes.
	var snaps director.Snapshots
	if cfg.Snapshot.Enabled {
		store, err := snapshot.Open(cfg.Snapshot.Path)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.Snapshot.Path).
				Msg("Failed to open snapshot store, continuing without snapshots")
		} else {
			defer func() {
				if err := store.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing snapshot store")
				}
			}()
			snaps = store
			logging.Info().Str("path", cfg.Snapshot.Path).Msg("Snapshot store opened")
		}
	} else {
		logging.Info().Msg("Snapshot store disabled (CINEASTE_SNAPSHOT_ENABLED=false)")
	}

	svc := director.NewService(fetcher, tables, snaps)

	handler := api.NewHandler(svc, cfg)
	chimw := api.NewChiMiddleware(&cfg.Security)
	router := api.NewRouter(handler, chimw)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (CINEASTE_SECURITY_RATE_LIMIT_DISABLED=true)")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Context for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Dataset.RefreshEnabled {
		tree.AddDataService(services.NewRefresherService(svc, cfg.Dataset.RefreshInterval))
		logging.Info().Dur("interval", cfg.Dataset.RefreshInterval).
			Msg("Dataset refresher added to supervisor tree")
	} else {
		logging.Info().Msg("Background refresh disabled (CINEASTE_DATASET_REFRESH_ENABLED=false)")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Signal handling.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished).
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
