// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package config loads service configuration through koanf: struct
// defaults first, then an optional YAML file, then environment variables
// with the AFFINITY_ prefix (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service and its tooling.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Recompute RecomputeConfig `koanf:"recompute"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig configures the embedded badger store.
type DatabaseConfig struct {
	// Path is the badger data directory.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence. For tests and
	// ephemeral tooling only.
	InMemory bool `koanf:"in_memory"`
}

// RecomputeConfig configures the score maintenance engine.
type RecomputeConfig struct {
	// RebuildBatchSize is the number of owners processed per rebuild
	// batch (and between progress reports).
	RebuildBatchSize int `koanf:"rebuild_batch_size"`

	// RebuildOwnersPerSecond paces the full rebuild. Zero disables
	// pacing.
	RebuildOwnersPerSecond float64 `koanf:"rebuild_owners_per_second"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8460,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path: "/data/affinity",
		},
		Recompute: RecomputeConfig{
			RebuildBatchSize:       100,
			RebuildOwnersPerSecond: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks cross-field constraints after loading.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("database.path is required unless database.in_memory is set")
	}
	if c.Recompute.RebuildBatchSize <= 0 {
		return fmt.Errorf("recompute.rebuild_batch_size must be positive, got %d", c.Recompute.RebuildBatchSize)
	}
	if c.Recompute.RebuildOwnersPerSecond < 0 {
		return fmt.Errorf("recompute.rebuild_owners_per_second must not be negative")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
