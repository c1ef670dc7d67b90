// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pagination

import (
	"fmt"
)

// Direction of a single sort field.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Field is one component of a compound sort order.
type Field struct {
	Name      string
	Direction Direction
}

// SortSpec describes one supported sort mode as an ordered field list. The
// last field is always a globally unique id acting as tie-breaker, which
// makes the compound order total and page boundaries stable even when every
// leading field ties.
//
// InMemory marks degraded modes: the store has no index rows for the leading
// field, so pages are fetched in the fallback (indexed) order and re-sorted
// in memory after the fetch. Cursors still work for such modes but are only
// approximately keyset-exact; see the mode's own documentation.
type SortSpec struct {
	Mode     string
	Fields   []Field
	InMemory bool
}

// Supported match sort modes.
const (
	// SortModeScore orders by (score desc, target_id asc).
	SortModeScore = "score"

	// SortModeShared orders by (shared_tag_count desc, score desc, target_id asc).
	SortModeShared = "shared"

	// SortModeRecent orders by computed_at desc. No index rows exist for
	// computed_at, so this is an in-memory mode: each page is fetched in
	// score order and re-sorted after the fetch. Page boundaries are not
	// keyset-exact under concurrent recomputes.
	SortModeRecent = "recent"
)

// SortModeCreated orders relationship listings by (created_at desc, target_id asc).
const SortModeCreated = "created"

var matchSortSpecs = map[string]SortSpec{
	SortModeScore: {
		Mode: SortModeScore,
		Fields: []Field{
			{Name: "score", Direction: Desc},
			{Name: "target_id", Direction: Asc},
		},
	},
	SortModeShared: {
		Mode: SortModeShared,
		Fields: []Field{
			{Name: "shared_tag_count", Direction: Desc},
			{Name: "score", Direction: Desc},
			{Name: "target_id", Direction: Asc},
		},
	},
	SortModeRecent: {
		Mode: SortModeRecent,
		Fields: []Field{
			{Name: "computed_at", Direction: Desc},
			{Name: "target_id", Direction: Asc},
		},
		InMemory: true,
	},
}

// MatchSortSpec resolves a match listing sort mode. Unknown modes are a
// caller error, reported rather than defaulted.
func MatchSortSpec(mode string) (SortSpec, error) {
	if mode == "" {
		mode = SortModeScore
	}
	spec, ok := matchSortSpecs[mode]
	if !ok {
		return SortSpec{}, fmt.Errorf("unsupported sort mode %q", mode)
	}
	return spec, nil
}

// RelationshipSortSpec returns the single sort order used by all four
// relationship listings.
func RelationshipSortSpec() SortSpec {
	return SortSpec{
		Mode: SortModeCreated,
		Fields: []Field{
			{Name: "created_at", Direction: Desc},
			{Name: "target_id", Direction: Asc},
		},
	}
}
