// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package main is the entry point for the Affinity server.
//
// Affinity maintains precomputed match scores between users based on
// shared interest tags, and serves cursor-paginated match and
// relationship listings over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load via Koanf v2 (defaults, config file, env)
//  2. Store: BadgerDB with score/relationship indexes ordered for keyset paging
//  3. Events: in-process Watermill pub/sub carrying tag-change events
//  4. Engine: incremental recompute driven by the event worker
//  5. HTTP Server: chi router under a suture supervision tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (AFFINITY_ prefix)
//   - Config file (config.yaml, or AFFINITY_CONFIG)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the supervision
// tree stops the HTTP server and the recompute worker, then the store is
// closed so badger can flush its value log.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/affinity/internal/api"
	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/scoring"
	"github.com/tomtom215/affinity/internal/store"
	"github.com/tomtom215/affinity/internal/supervisor"
	"github.com/tomtom215/affinity/internal/supervisor/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger := logging.Logger()

	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("data_path", cfg.Database.Path).
		Bool("in_memory", cfg.Database.InMemory).
		Msg("Starting affinity server")

	st, err := store.Open(store.Options{
		Path:     cfg.Database.Path,
		InMemory: cfg.Database.InMemory,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open store")
		return 1
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close store")
		}
	}()

	// In-process pub/sub. The publisher side sits behind a circuit
	// breaker; the worker side recomputes scores per event.
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		events.NewLoggerAdapter(logging.With().Str("component", "pubsub").Logger()),
	)
	defer func() {
		if cerr := pubsub.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close pub/sub")
		}
	}()

	publisher := events.NewPublisher(pubsub)
	engine := scoring.NewEngine(st, st, logger)
	worker := events.NewWorker(pubsub, engine, logger)

	handler := api.NewHandler(st, publisher, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddWorkerService(worker)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Supervision tree exited with error")
		return 1
	}

	logger.Info().Msg("Shutdown complete")
	return 0
}
