// MGNREGA Pulse - District Employment Statistics API
// Copyright 2026 Amrita Malviya
// SPDX-License-Identifier: MIT
// https://github.com/AmritaMalviya12/mgnrega-pulse

// Package main is the entry point for the MGNREGA Pulse server.
//
// MGNREGA Pulse serves district-level employment statistics for the Mahatma
// Gandhi National Rural Employment Guarantee Act program. It syncs records
// from the data.gov.in open data API into an embedded DuckDB store and
// exposes a read-optimized REST API over the synced data.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over config file over defaults (Koanf v2)
//  2. Database: embedded DuckDB with the districts, performance, and cache tables
//  3. Data source: data.gov.in client behind a circuit breaker, with a
//     deterministic fallback dataset when the live API is unreachable
//  4. Startup sync: optional blocking sync before the server accepts traffic
//  5. Supervisor tree: sync scheduler, cache sweeper, and HTTP server under suture
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (MGNREGA_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Without DATA_GOV_API_KEY the live source fails fast and every sync serves
// the built-in fallback dataset, so the API works out of the box.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (configurable timeout)
//   - Stops the sync scheduler and cache sweeper
//   - Closes the database connection
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/AmritaMalviya12/mgnrega-pulse/internal/api"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/cache"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/config"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/database"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/logging"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/query"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/source"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/supervisor"
	"github.com/AmritaMalviya12/mgnrega-pulse/internal/sync"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("daily_at", cfg.Sync.DailyAt).
		Bool("api_key_set", cfg.DataGov.APIKey != "").
		Msg("Starting MGNREGA Pulse")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	// Live source behind a circuit breaker so a flapping upstream cannot
	// stall every scheduled sync; fallback covers outages and missing keys.
	live := source.NewBreakerSource(source.NewDataGovClient(&cfg.DataGov))
	fallback := source.NewFallbackSource()

	queryCache := cache.New(db, cfg.Cache.DefaultTTL, cfg.Cache.SweepInterval)
	queries := query.New(db, queryCache, &cfg.Cache, &cfg.API)

	syncManager := sync.NewManager(db, live, fallback, queryCache, &cfg.Sync)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Sync.RunOnStartup {
		if result, err := syncManager.SyncOnStartup(ctx); err != nil {
			// Serve whatever the database already holds rather than crash.
			logging.Error().Err(err).Msg("Startup sync failed, serving existing data")
		} else {
			logging.Info().
				Int("records", result.RecordsWritten).
				Int("districts", result.DistrictsWritten).
				Str("source", result.Source).
				Msg("Startup sync complete")
		}
	}

	handler := api.NewHandler(queries, syncManager, db, queryCache)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler, &cfg.Server),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Bridge zerolog to slog for the suture event hook.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(supervisor.NewSyncService(syncManager))
	tree.AddDataService(supervisor.NewSweeperService(queryCache))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Supervisor tree started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree exited with error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree failed")
		}
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
