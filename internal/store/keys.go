// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/affinity/internal/models"
)

// Key prefixes for the badger keyspace.
const (
	userKeyPrefix     = "user:"
	tagIndexKeyPrefix = "tagidx:"
	scoreKeyPrefix    = "score:"
	scoreIndexPrefix  = "scoreidx:"
	relKeyPrefix      = "rel:"
	relIndexPrefix    = "relidx:"
)

// Index sort mode segments under scoreidx:{owner}:.
const (
	scoreIdxModeScore  = "score"
	scoreIdxModeShared = "shared"
)

// sharedCountCeiling bounds the fixed-width encoding of shared tag counts.
// Counts above it sort equal, which is harmless: the score is capped at 100
// long before a pair shares ten tags, let alone this many.
const sharedCountCeiling = 99999

func userKey(id string) []byte {
	return []byte(userKeyPrefix + id)
}

func tagIndexKey(tagID, userID string) []byte {
	return []byte(tagIndexKeyPrefix + tagID + ":" + userID)
}

func tagIndexPrefix(tagID string) []byte {
	return []byte(tagIndexKeyPrefix + tagID + ":")
}

func scoreKey(ownerID, targetID string) []byte {
	return []byte(scoreKeyPrefix + ownerID + ":" + targetID)
}

func scoreOwnerPrefix(ownerID string) []byte {
	return []byte(scoreKeyPrefix + ownerID + ":")
}

// encodeScoreDesc maps a score to a fixed-width segment that sorts
// descending under byte order.
func encodeScoreDesc(score int) string {
	if score < 0 {
		score = 0
	}
	if score > models.MaxScore {
		score = models.MaxScore
	}
	return fmt.Sprintf("%03d", models.MaxScore-score)
}

// encodeSharedDesc maps a shared-tag count to a fixed-width segment that
// sorts descending under byte order.
func encodeSharedDesc(count int) string {
	if count < 0 {
		count = 0
	}
	if count > sharedCountCeiling {
		count = sharedCountCeiling
	}
	return fmt.Sprintf("%05d", sharedCountCeiling-count)
}

// encodeTimeDesc maps a timestamp to a fixed-width segment that sorts
// newest-first under byte order.
func encodeTimeDesc(t time.Time) string {
	return fmt.Sprintf("%020d", uint64(math.MaxInt64-t.UnixNano()))
}

// decodeTimeDesc reverses encodeTimeDesc.
func decodeTimeDesc(seg string) (time.Time, error) {
	var v uint64
	if _, err := fmt.Sscanf(seg, "%020d", &v); err != nil {
		return time.Time{}, fmt.Errorf("decode time segment %q: %w", seg, err)
	}
	return time.Unix(0, math.MaxInt64-int64(v)), nil
}

// scoreIndexKeyScore builds the (score desc, target asc) index key.
func scoreIndexKeyScore(ownerID string, score int, targetID string) []byte {
	return []byte(scoreIndexPrefix + ownerID + ":" + scoreIdxModeScore + ":" +
		encodeScoreDesc(score) + ":" + targetID)
}

// scoreIndexKeyShared builds the (shared desc, score desc, target asc)
// index key.
func scoreIndexKeyShared(ownerID string, sharedCount, score int, targetID string) []byte {
	return []byte(scoreIndexPrefix + ownerID + ":" + scoreIdxModeShared + ":" +
		encodeSharedDesc(sharedCount) + ":" + encodeScoreDesc(score) + ":" + targetID)
}

func scoreIndexModePrefix(ownerID, mode string) []byte {
	return []byte(scoreIndexPrefix + ownerID + ":" + mode + ":")
}

func relKey(kind models.RelationKind, ownerID, targetID string) []byte {
	return []byte(relKeyPrefix + string(kind) + ":" + ownerID + ":" + targetID)
}

func relOwnerPrefix(kind models.RelationKind, ownerID string) []byte {
	return []byte(relKeyPrefix + string(kind) + ":" + ownerID + ":")
}

func relIndexKey(kind models.RelationKind, ownerID string, createdAt time.Time, targetID string) []byte {
	return []byte(relIndexPrefix + string(kind) + ":" + ownerID + ":" +
		encodeTimeDesc(createdAt) + ":" + targetID)
}

func relIndexOwnerPrefix(kind models.RelationKind, ownerID string) []byte {
	return []byte(relIndexPrefix + string(kind) + ":" + ownerID + ":")
}

// seekAfter returns the smallest key strictly greater than k, used to start
// a range scan just past a cursor position.
func seekAfter(k []byte) []byte {
	after := make([]byte, len(k)+1)
	copy(after, k)
	return after
}
