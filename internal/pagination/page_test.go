// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pagination

import "testing"

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		want      int
	}{
		{name: "zero uses default", requested: 0, want: DefaultLimit},
		{name: "negative uses default", requested: -5, want: DefaultLimit},
		{name: "within range", requested: 50, want: 50},
		{name: "at max", requested: MaxLimit, want: MaxLimit},
		{name: "above max clamps", requested: MaxLimit + 1, want: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampLimit(tt.requested); got != tt.want {
				t.Errorf("ClampLimit(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name        string
		items       []int
		limit       int
		wantLen     int
		wantHasMore bool
	}{
		{name: "under limit", items: []int{1, 2}, limit: 3, wantLen: 2, wantHasMore: false},
		{name: "exactly limit", items: []int{1, 2, 3}, limit: 3, wantLen: 3, wantHasMore: false},
		{name: "overfetched by one", items: []int{1, 2, 3, 4}, limit: 3, wantLen: 3, wantHasMore: true},
		{name: "empty", items: nil, limit: 3, wantLen: 0, wantHasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hasMore := Trim(tt.items, tt.limit)
			if len(got) != tt.wantLen {
				t.Errorf("Trim() len = %d, want %d", len(got), tt.wantLen)
			}
			if hasMore != tt.wantHasMore {
				t.Errorf("Trim() hasMore = %v, want %v", hasMore, tt.wantHasMore)
			}
		})
	}
}

func TestFetchLimit(t *testing.T) {
	if got := FetchLimit(25); got != 26 {
		t.Errorf("FetchLimit(25) = %d, want 26", got)
	}
}

func TestMatchSortSpec(t *testing.T) {
	tests := []struct {
		name         string
		mode         string
		wantMode     string
		wantInMemory bool
		wantErr      bool
	}{
		{name: "default is score", mode: "", wantMode: SortModeScore},
		{name: "score", mode: "score", wantMode: SortModeScore},
		{name: "shared", mode: "shared", wantMode: SortModeShared},
		{name: "recent is in-memory", mode: "recent", wantMode: SortModeRecent, wantInMemory: true},
		{name: "unknown", mode: "alphabetical", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := MatchSortSpec(tt.mode)
			if tt.wantErr {
				if err == nil {
					t.Fatal("MatchSortSpec() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("MatchSortSpec() error = %v", err)
			}
			if spec.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", spec.Mode, tt.wantMode)
			}
			if spec.InMemory != tt.wantInMemory {
				t.Errorf("InMemory = %v, want %v", spec.InMemory, tt.wantInMemory)
			}
		})
	}
}
