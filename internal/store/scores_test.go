// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
)

func putTestScore(t *testing.T, st *Store, owner, target string, score, shared int) {
	t.Helper()
	_, err := st.UpsertScore(context.Background(), models.MatchScore{
		OwnerID:        owner,
		TargetID:       target,
		Score:          score,
		SharedTagCount: shared,
		ComputedAt:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertScore(%s->%s) error = %v", owner, target, err)
	}
}

func TestUpsertScoreCreateThenUpdate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.UpsertScore(ctx, models.MatchScore{
		OwnerID: "alice", TargetID: "bob", Score: 30, SharedTagCount: 3,
		ComputedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertScore() error = %v", err)
	}
	if !created {
		t.Error("first UpsertScore() created = false, want true")
	}

	created, err = st.UpsertScore(ctx, models.MatchScore{
		OwnerID: "alice", TargetID: "bob", Score: 50, SharedTagCount: 5,
		ComputedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertScore() error = %v", err)
	}
	if created {
		t.Error("second UpsertScore() created = true, want false")
	}

	got, err := st.GetScore(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetScore() error = %v", err)
	}
	if got.Score != 50 || got.SharedTagCount != 5 {
		t.Errorf("GetScore() = score %d shared %d, want 50/5", got.Score, got.SharedTagCount)
	}

	// The pair key is unique: updating never adds a second row.
	all, err := st.FindScoresForOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("FindScoresForOwner() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("FindScoresForOwner() len = %d, want 1", len(all))
	}
}

func TestScoresAreDirected(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	putTestScore(t, st, "alice", "bob", 30, 3)

	if _, err := st.GetScore(ctx, "bob", "alice"); !errors.Is(err, ErrScoreNotFound) {
		t.Errorf("GetScore(reverse pair) error = %v, want ErrScoreNotFound", err)
	}
}

func TestDeleteScoreIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	putTestScore(t, st, "alice", "bob", 30, 3)

	if err := st.DeleteScore(ctx, "alice", "bob"); err != nil {
		t.Fatalf("DeleteScore() error = %v", err)
	}
	// Deleting an absent score is a no-op, not an error.
	if err := st.DeleteScore(ctx, "alice", "bob"); err != nil {
		t.Fatalf("DeleteScore() on absent row error = %v", err)
	}

	if _, err := st.GetScore(ctx, "alice", "bob"); !errors.Is(err, ErrScoreNotFound) {
		t.Errorf("GetScore() after delete error = %v, want ErrScoreNotFound", err)
	}
}

func TestDeleteAllScoresForOwner(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	putTestScore(t, st, "alice", "bob", 30, 3)
	putTestScore(t, st, "alice", "carol", 20, 2)
	putTestScore(t, st, "bob", "alice", 30, 3)

	n, err := st.DeleteAllScoresForOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("DeleteAllScoresForOwner() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteAllScoresForOwner() = %d, want 2", n)
	}

	// Bob's directed row toward alice is untouched.
	if _, err := st.GetScore(ctx, "bob", "alice"); err != nil {
		t.Errorf("GetScore(bob->alice) error = %v, want row preserved", err)
	}
}

func TestPageMatchesScoreOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	putTestScore(t, st, "alice", "bob", 30, 3)
	putTestScore(t, st, "alice", "carol", 70, 7)
	putTestScore(t, st, "alice", "dave", 70, 7)
	putTestScore(t, st, "alice", "erin", 10, 1)

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	items, next, hasMore, err := st.PageMatches(ctx, "alice", spec, "", 10)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}
	if hasMore || next != nil {
		t.Errorf("PageMatches() hasMore = %v next = %v, want final page", hasMore, next)
	}

	// Score desc, then target id asc as tie-breaker.
	want := []string{"carol", "dave", "bob", "erin"}
	if len(items) != len(want) {
		t.Fatalf("PageMatches() len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].TargetID != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].TargetID, w)
		}
	}
}

func TestPageMatchesSharedOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Same score, different shared counts (possible after the cap).
	putTestScore(t, st, "alice", "bob", 100, 12)
	putTestScore(t, st, "alice", "carol", 100, 10)
	putTestScore(t, st, "alice", "dave", 40, 4)

	spec, err := pagination.MatchSortSpec(pagination.SortModeShared)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	items, _, _, err := st.PageMatches(ctx, "alice", spec, "", 10)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}

	want := []string{"bob", "carol", "dave"}
	if len(items) != len(want) {
		t.Fatalf("PageMatches() len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].TargetID != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].TargetID, w)
		}
	}
}

func TestPageMatchesCursorWalksAllWithoutSkipsOrDuplicates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Many targets sharing the same score force the tie-breaker to do
	// the work at page boundaries.
	for i := 0; i < 23; i++ {
		putTestScore(t, st, "alice", fmt.Sprintf("target-%02d", i), 50, 5)
	}

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		items, next, hasMore, err := st.PageMatches(ctx, "alice", spec, cursor, 5)
		if err != nil {
			t.Fatalf("PageMatches() page %d error = %v", pages, err)
		}
		for _, item := range items {
			if seen[item.TargetID] {
				t.Errorf("target %q returned twice", item.TargetID)
			}
			seen[item.TargetID] = true
		}
		pages++
		if !hasMore {
			if next != nil {
				t.Error("final page returned a next cursor")
			}
			break
		}
		if next == nil {
			t.Fatal("hasMore without next cursor")
		}
		cursor = *next
	}

	if len(seen) != 23 {
		t.Errorf("walked %d targets, want 23", len(seen))
	}
	if pages != 5 {
		t.Errorf("walked %d pages, want 5", pages)
	}
}

func TestPageMatchesCursorStableUnderDeletes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		putTestScore(t, st, "alice", fmt.Sprintf("target-%d", i), 90-i*10, 5)
	}

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	first, next, hasMore, err := st.PageMatches(ctx, "alice", spec, "", 3)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}
	if !hasMore || len(first) != 3 {
		t.Fatalf("first page len = %d hasMore = %v, want 3/true", len(first), hasMore)
	}

	// Delete a row already served and a row not yet served.
	if err := st.DeleteScore(ctx, "alice", first[0].TargetID); err != nil {
		t.Fatalf("DeleteScore() error = %v", err)
	}
	if err := st.DeleteScore(ctx, "alice", "target-4"); err != nil {
		t.Fatalf("DeleteScore() error = %v", err)
	}

	second, _, _, err := st.PageMatches(ctx, "alice", spec, *next, 3)
	if err != nil {
		t.Fatalf("PageMatches() after deletes error = %v", err)
	}

	// No duplicates from the first page, and the deleted unseen row is gone.
	for _, item := range second {
		for _, prev := range first {
			if item.TargetID == prev.TargetID {
				t.Errorf("target %q served twice across pages", item.TargetID)
			}
		}
		if item.TargetID == "target-4" {
			t.Error("deleted target served")
		}
	}
	if len(second) != 2 {
		t.Errorf("second page len = %d, want 2 (target-3, target-5)", len(second))
	}
}

func TestPageMatchesRejectsMalformedCursor(t *testing.T) {
	st := newTestStore(t)

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	_, _, _, err = st.PageMatches(context.Background(), "alice", spec, "%%%garbage%%%", 5)
	if !errors.Is(err, pagination.ErrInvalidCursor) {
		t.Errorf("PageMatches() error = %v, want ErrInvalidCursor", err)
	}
}

func TestPageMatchesRecentModeSortsPageByComputedAt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	rows := []models.MatchScore{
		{OwnerID: "alice", TargetID: "old", Score: 90, SharedTagCount: 9, ComputedAt: base},
		{OwnerID: "alice", TargetID: "mid", Score: 50, SharedTagCount: 5, ComputedAt: base.Add(10 * time.Minute)},
		{OwnerID: "alice", TargetID: "new", Score: 10, SharedTagCount: 1, ComputedAt: base.Add(20 * time.Minute)},
	}
	for _, row := range rows {
		if _, err := st.UpsertScore(ctx, row); err != nil {
			t.Fatalf("UpsertScore() error = %v", err)
		}
	}

	spec, err := pagination.MatchSortSpec(pagination.SortModeRecent)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}

	items, _, _, err := st.PageMatches(ctx, "alice", spec, "", 10)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}

	want := []string{"new", "mid", "old"}
	if len(items) != len(want) {
		t.Fatalf("PageMatches() len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].TargetID != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].TargetID, w)
		}
	}
}

func TestUpsertScoreMovesIndexRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	putTestScore(t, st, "alice", "bob", 30, 3)
	putTestScore(t, st, "alice", "carol", 50, 5)

	// Bob overtakes carol; the old index position must not linger.
	putTestScore(t, st, "alice", "bob", 80, 8)

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}
	items, _, _, err := st.PageMatches(ctx, "alice", spec, "", 10)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}

	want := []string{"bob", "carol"}
	if len(items) != len(want) {
		t.Fatalf("PageMatches() len = %d, want %d (stale index row?)", len(items), len(want))
	}
	for i, w := range want {
		if items[i].TargetID != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].TargetID, w)
		}
	}
}
