// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package events decouples tag edits from score recomputation. A profile
// mutation publishes TagsChanged and returns; a worker consumes the event
// and runs the incremental recompute in its own failure domain. A recompute
// failure is therefore never the triggering request's failure.
package events

import (
	"time"

	"github.com/google/uuid"
)

// TagsChangedTopic is the Watermill topic carrying tag-edit notifications.
const TagsChangedTopic = "user.tags.changed"

// SchemaVersion is the current TagsChanged schema version.
const SchemaVersion = 1

// TagsChanged signals that a user's interest tag set was replaced and the
// user's directed match scores need an incremental recompute.
type TagsChanged struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	OwnerID       string    `json:"owner_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewTagsChanged builds a TagsChanged event for the given owner.
func NewTagsChanged(ownerID string) TagsChanged {
	return TagsChanged{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		OwnerID:       ownerID,
		OccurredAt:    time.Now().UTC(),
	}
}
