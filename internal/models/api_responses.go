// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package models

import (
	"time"
)

// ListResponse is the envelope every paginated listing endpoint returns:
// matches, bookmarks, friends, blocked, hidden. The three-field shape is the
// contract with the routing layer and must not grow endpoint-specific fields.
//
// Example:
//
//	{
//	  "items": [ ... ],
//	  "next_cursor": "eyJzY29yZSI6NzAsInRhcmdldF9pZCI6ImFiYyJ9",
//	  "has_more": true
//	}
//
// NextCursor is an opaque base64url token; clients pass it back verbatim.
// It is omitted on the final page together with has_more=false.
type ListResponse struct {
	Items      interface{} `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// MatchCursor is the decoded cursor for match listings. It carries the
// values of every sort field of the last item on the previous page, not just
// the tie-breaker, so the next-page range predicate can mirror the full
// lexicographic comparison.
//
// Encoded as base64url JSON for opaque client usage (prevents manipulation).
type MatchCursor struct {
	Score          int    `json:"score"`
	SharedTagCount int    `json:"shared_tag_count,omitempty"`
	TargetID       string `json:"target_id"`
}

// RelationshipCursor is the decoded cursor for relationship listings,
// ordered by (created_at desc, target_id asc).
type RelationshipCursor struct {
	CreatedAt time.Time `json:"created_at"`
	TargetID  string    `json:"target_id"`
}

// APIError represents an error response body.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// Error codes for API responses. VALIDATION_FAILED covers malformed cursors
// and bad pairs (self-reference); NOT_FOUND covers absent targets and
// deletion of records that do not exist.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// RecomputeStats summarizes one incremental recompute pass for an owner.
// Examined counts candidates visited; Created+Updated+Failed <= Examined
// (zero-overlap candidates are skipped), and Pruned counts previously
// stored rows deleted because the pair dropped to zero overlap.
type RecomputeStats struct {
	Examined int `json:"examined"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Pruned   int `json:"pruned"`
	Failed   int `json:"failed"`
}

// RebuildStats summarizes a full rebuild run.
type RebuildStats struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
	Failed    int `json:"failed"`
}

// RebuildProgress is passed to the progress callback after each batch of a
// full rebuild so operators can monitor multi-hour runs.
type RebuildProgress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}
