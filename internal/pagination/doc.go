// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package pagination implements the keyset (cursor) pagination protocol used
// by every listing in the service: matches, bookmarks, friends, blocked and
// hidden entries.
//
// Keyset pagination encodes the sort-field values of the last item on the
// previous page into an opaque cursor and builds the next page as a range
// scan starting strictly after that position. Unlike offset pagination it is
// immune to skips and duplicates when rows are inserted or deleted between
// page fetches: items already returned are never re-returned, and items
// inserted ahead of the cursor are seen on a later page exactly when they
// sort after the cursor position.
//
// The store realizes the range predicate in key space: each sort mode writes
// index rows whose key embeds the sort fields in order-preserving byte form
// (descending fields as fixed-width complements), so the textbook predicate
//
//	a < a0 OR (a = a0 AND b > b0)
//
// degenerates to a single seek past the cursor's encoded key. This package
// owns the parts common to all callers: the cursor codec, the sort-mode
// descriptions, and the limit+1 page assembly.
package pagination
