// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import "errors"

// Sentinel errors surfaced to callers. Anything else coming out of this
// package is an infrastructure failure wrapped with context; callers decide
// their own retry policy.
var (
	// ErrUserNotFound is returned when a user document does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrScoreNotFound is returned when no match score exists for a pair.
	ErrScoreNotFound = errors.New("match score not found")

	// ErrRelationshipNotFound is returned when deleting or fetching a
	// relationship record that does not exist. Deletion of an absent record
	// is reported, never treated as a silent success, so callers can tell
	// "already gone" from "nothing ever existed".
	ErrRelationshipNotFound = errors.New("relationship not found")

	// ErrSelfReference is returned when owner and target are the same user.
	ErrSelfReference = errors.New("owner and target must be different users")

	// ErrTargetNotFound is returned when the target side of a relationship
	// does not identify an existing user.
	ErrTargetNotFound = errors.New("target user not found")
)
