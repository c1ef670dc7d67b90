// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package main is the offline full-rebuild tool.
//
// It opens the same data directory the server uses, recomputes every
// match score from the tag documents, and deletes orphaned rows. Run it
// while the server is stopped, or against a restored backup, to repair
// drift caused by missed events.
//
// Exit codes: 0 on success, 1 on any failure (including partial rebuilds
// where one or more owners could not be processed).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/scoring"
	"github.com/tomtom215/affinity/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath      = flag.String("config", "", "config file path (default: search standard locations)")
		batchSize       = flag.Int("batch-size", 0, "owners per progress batch (default: from config)")
		ownersPerSecond = flag.Float64("rate", 0, "max owners processed per second, 0 for unpaced (default: from config)")
	)
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
	})
	logger := logging.Logger()

	if *batchSize > 0 {
		cfg.Recompute.RebuildBatchSize = *batchSize
	}
	if *ownersPerSecond > 0 {
		cfg.Recompute.RebuildOwnersPerSecond = *ownersPerSecond
	}

	st, err := store.Open(store.Options{
		Path:     cfg.Database.Path,
		InMemory: cfg.Database.InMemory,
	})
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open store")
		return 1
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error().Err(cerr).Msg("Failed to close store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := scoring.NewEngine(st, st, logger)
	logger.Info().
		Int("batch_size", cfg.Recompute.RebuildBatchSize).
		Float64("owners_per_second", cfg.Recompute.RebuildOwnersPerSecond).
		Msg("Starting full rebuild")

	stats, err := engine.FullRebuild(ctx, scoring.RebuildOptions{
		BatchSize:       cfg.Recompute.RebuildBatchSize,
		OwnersPerSecond: cfg.Recompute.RebuildOwnersPerSecond,
		OnProgress: func(p models.RebuildProgress) {
			logger.Info().
				Int("processed", p.Processed).
				Int("total", p.Total).
				Msg("Rebuild progress")
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Rebuild failed")
		return 1
	}

	logger.Info().
		Int("total", stats.Total).
		Int("processed", stats.Processed).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("deleted", stats.Deleted).
		Int("failed", stats.Failed).
		Msg("Rebuild complete")

	if stats.Failed > 0 {
		return 1
	}
	return 0
}
