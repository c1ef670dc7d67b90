// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package models

import (
	"time"
)

// MaxScore is the cap applied to match scores.
const MaxScore = 100

// PointsPerSharedTag is the score contribution of each shared tag.
// The 10-points-per-tag / 100-cap rule is load-bearing: stored scores from
// earlier deployments were computed with it, so it must not change without
// a full rebuild.
const PointsPerSharedTag = 10

// User is a user profile as seen by this service: an identity plus the set
// of interest tags attached to it. Profile editing lives elsewhere; this
// service only reads tag sets and reacts to changes.
type User struct {
	ID     string   `json:"id"`
	TagIDs []string `json:"tag_ids"`
}

// HasTags reports whether the user carries at least one interest tag.
// Users without tags never participate in match scoring.
func (u *User) HasTags() bool {
	return len(u.TagIDs) > 0
}

// MatchScore is the derived affinity between an ordered pair of users.
//
// Exactly one document exists per (OwnerID, TargetID) pair with OwnerID !=
// TargetID, and only while the pair shares at least one tag. The (A,B) and
// (B,A) documents are written independently by each owner's recompute pass
// and may transiently disagree until both sides have recomputed.
type MatchScore struct {
	OwnerID        string    `json:"owner_id"`
	TargetID       string    `json:"target_id"`
	Score          int       `json:"score"`
	SharedTagCount int       `json:"shared_tag_count"`
	ComputedAt     time.Time `json:"computed_at"`
}

// RelationKind identifies one of the user-relationship collections.
type RelationKind string

// Relationship collections. Structurally identical records, stored and
// paginated the same way; only the kind differs.
const (
	RelationBookmark RelationKind = "bookmark"
	RelationFriend   RelationKind = "friend"
	RelationBlocked  RelationKind = "blocked"
	RelationHidden   RelationKind = "hidden"
)

// Valid reports whether k names a known relationship collection.
func (k RelationKind) Valid() bool {
	switch k {
	case RelationBookmark, RelationFriend, RelationBlocked, RelationHidden:
		return true
	}
	return false
}

// Relationship is a user-initiated edge: a bookmark, friend entry, block, or
// hidden entry. Unique per (Kind, OwnerID, TargetID). Never touched by the
// recompute engine; only tag changes drive scoring.
type Relationship struct {
	Kind      RelationKind `json:"kind"`
	OwnerID   string       `json:"owner_id"`
	TargetID  string       `json:"target_id"`
	Remark    string       `json:"remark,omitempty"`
	Notify    bool         `json:"notify,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
