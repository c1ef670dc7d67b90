// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package models defines the persisted document types (users, match scores,
// relationship records) and the API response envelopes shared between the
// store, the recompute engine, and the HTTP layer.
package models
