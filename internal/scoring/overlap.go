// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package scoring computes tag-overlap affinity scores and keeps the stored
// MatchScore collection consistent with the tag sets that produced it.
package scoring

import (
	"github.com/tomtom215/affinity/internal/models"
)

// Overlap returns the affinity score and shared-tag count for two tag sets:
// 10 points per shared tag, capped at 100. Deterministic and total; an
// empty intersection yields (0, 0). Duplicate ids within one set count
// once.
func Overlap(ownerTags, targetTags []string) (score, sharedCount int) {
	if len(ownerTags) == 0 || len(targetTags) == 0 {
		return 0, 0
	}

	owner := make(map[string]bool, len(ownerTags))
	for _, tag := range ownerTags {
		owner[tag] = true
	}

	seen := make(map[string]bool, len(targetTags))
	for _, tag := range targetTags {
		if owner[tag] && !seen[tag] {
			seen[tag] = true
			sharedCount++
		}
	}

	score = sharedCount * models.PointsPerSharedTag
	if score > models.MaxScore {
		score = models.MaxScore
	}
	return score, sharedCount
}
