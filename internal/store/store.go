// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Options configures the embedded store.
type Options struct {
	// Path is the badger data directory. Ignored when InMemory is set.
	Path string

	// InMemory runs badger without disk persistence. Used by tests and by
	// ephemeral tooling; production always sets Path.
	InMemory bool
}

// Store is the embedded document store shared by the score engine, the
// relationship CRUD, and the listing endpoints. All methods are safe for
// concurrent use; per-pair consistency relies on badger's transactional
// single-key upserts, not on in-process locks.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) the badger keyspace.
func Open(opts Options) (*Store, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		badgerOpts = badger.DefaultOptions(opts.Path)
	}
	// Badger's default logger writes unstructured lines to stderr; the
	// service logs through zerolog instead.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying badger instance.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying badger handle for health checks.
func (s *Store) DB() *badger.DB {
	return s.db
}
