// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pagination

// Limit bounds for listing endpoints.
const (
	DefaultLimit = 25
	MaxLimit     = 200
)

// ClampLimit normalizes a requested page size. Zero or negative requests
// get the default; oversized requests are capped rather than rejected.
func ClampLimit(requested int) int {
	if requested <= 0 {
		return DefaultLimit
	}
	if requested > MaxLimit {
		return MaxLimit
	}
	return requested
}

// FetchLimit is the number of rows to fetch for a page of the given size.
// One extra row decides has_more without a second query.
func FetchLimit(limit int) int {
	return limit + 1
}

// Trim applies the limit+1 protocol to a fetched slice: if more than limit
// rows came back, has_more is true and the extra row is dropped before the
// next cursor is built from the last returned row.
func Trim[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit:limit], true
	}
	return items, false
}
