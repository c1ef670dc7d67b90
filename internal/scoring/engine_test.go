// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
	"github.com/tomtom215/affinity/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()

	st, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("store.Close() error = %v", err)
		}
	})
	return NewEngine(st, st, logging.NewTestLogger(io.Discard)), st
}

func putUser(t *testing.T, st *store.Store, id string, tags ...string) {
	t.Helper()
	if _, err := st.PutUser(context.Background(), models.User{ID: id, TagIDs: tags}); err != nil {
		t.Fatalf("PutUser(%s) error = %v", id, err)
	}
}

func getScore(t *testing.T, st *store.Store, owner, target string) *models.MatchScore {
	t.Helper()
	score, err := st.GetScore(context.Background(), owner, target)
	if err != nil {
		t.Fatalf("GetScore(%s->%s) error = %v", owner, target, err)
	}
	return score
}

func wantNoScore(t *testing.T, st *store.Store, owner, target string) {
	t.Helper()
	_, err := st.GetScore(context.Background(), owner, target)
	if !errors.Is(err, store.ErrScoreNotFound) {
		t.Errorf("GetScore(%s->%s) error = %v, want ErrScoreNotFound", owner, target, err)
	}
}

func TestIncrementalUpdateCreatesScores(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz", "go", "coffee")
	putUser(t, st, "bob", "jazz", "go")
	putUser(t, st, "carol", "coffee")
	putUser(t, st, "dave", "chess")

	stats, err := engine.IncrementalUpdate(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementalUpdate() error = %v", err)
	}
	if stats.Examined != 2 || stats.Created != 2 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want examined 2 created 2", stats)
	}

	if got := getScore(t, st, "alice", "bob"); got.Score != 20 || got.SharedTagCount != 2 {
		t.Errorf("alice->bob = %d/%d, want 20/2", got.Score, got.SharedTagCount)
	}
	if got := getScore(t, st, "alice", "carol"); got.Score != 10 || got.SharedTagCount != 1 {
		t.Errorf("alice->carol = %d/%d, want 10/1", got.Score, got.SharedTagCount)
	}

	// Zero-overlap users are never visited, let alone stored.
	wantNoScore(t, st, "alice", "dave")

	// Directed: no mirrored rows until the targets' own passes run.
	wantNoScore(t, st, "bob", "alice")
}

func TestIncrementalUpdateIsIdempotent(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz", "go")
	putUser(t, st, "bob", "jazz")

	if _, err := engine.IncrementalUpdate(ctx, "alice"); err != nil {
		t.Fatalf("first IncrementalUpdate() error = %v", err)
	}
	stats, err := engine.IncrementalUpdate(ctx, "alice")
	if err != nil {
		t.Fatalf("second IncrementalUpdate() error = %v", err)
	}
	if stats.Created != 0 || stats.Updated != 1 || stats.Pruned != 0 {
		t.Errorf("second pass stats = %+v, want pure update", stats)
	}

	rows, err := st.FindScoresForOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("FindScoresForOwner() error = %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("row count after repeat pass = %d, want 1", len(rows))
	}
}

func TestIncrementalUpdatePrunesDroppedOverlap(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz", "go")
	putUser(t, st, "bob", "jazz")

	if _, err := engine.IncrementalUpdate(ctx, "alice"); err != nil {
		t.Fatalf("IncrementalUpdate() error = %v", err)
	}
	getScore(t, st, "alice", "bob")

	// Alice drops jazz; bob falls out of her candidate set entirely.
	putUser(t, st, "alice", "go")
	stats, err := engine.IncrementalUpdate(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementalUpdate() after tag change error = %v", err)
	}
	if stats.Pruned != 1 {
		t.Errorf("stats.Pruned = %d, want 1", stats.Pruned)
	}
	wantNoScore(t, st, "alice", "bob")
}

func TestIncrementalUpdateClearsTaglessOwner(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz")
	putUser(t, st, "bob", "jazz")
	if _, err := engine.IncrementalUpdate(ctx, "alice"); err != nil {
		t.Fatalf("IncrementalUpdate() error = %v", err)
	}

	putUser(t, st, "alice") // all tags removed
	stats, err := engine.IncrementalUpdate(ctx, "alice")
	if err != nil {
		t.Fatalf("IncrementalUpdate() error = %v", err)
	}
	if stats.Pruned != 1 || stats.Examined != 0 {
		t.Errorf("stats = %+v, want pruned 1 examined 0", stats)
	}
	wantNoScore(t, st, "alice", "bob")
}

func TestIncrementalUpdateUnknownOwnerIsNoop(t *testing.T) {
	engine, _ := newTestEngine(t)

	// A deleted owner behaves like a tag-less one: no error, no rows.
	stats, err := engine.IncrementalUpdate(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("IncrementalUpdate(unknown) error = %v", err)
	}
	if stats.Examined != 0 || stats.Created != 0 {
		t.Errorf("stats = %+v, want all zero", stats)
	}
}

func TestFullRebuildFromScratch(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz", "go")
	putUser(t, st, "bob", "jazz")
	putUser(t, st, "carol", "go", "jazz")
	putUser(t, st, "dave", "chess")

	stats, err := engine.FullRebuild(ctx, RebuildOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("FullRebuild() error = %v", err)
	}
	if stats.Total != 4 || stats.Processed != 4 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want total 4 processed 4", stats)
	}
	// alice<->bob, alice<->carol, bob<->carol: six directed rows.
	if stats.Created != 6 {
		t.Errorf("stats.Created = %d, want 6", stats.Created)
	}

	if got := getScore(t, st, "carol", "alice"); got.Score != 20 {
		t.Errorf("carol->alice score = %d, want 20", got.Score)
	}
	if got := getScore(t, st, "bob", "carol"); got.Score != 10 {
		t.Errorf("bob->carol score = %d, want 10", got.Score)
	}
	wantNoScore(t, st, "dave", "alice")
}

func TestFullRebuildHealsDrift(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz")
	putUser(t, st, "bob", "jazz")

	// Simulate drift: a stale row for a pair with zero overlap, and a
	// missing row for a pair that should exist.
	if _, err := st.UpsertScore(ctx, models.MatchScore{
		OwnerID: "alice", TargetID: "ghost", Score: 40, SharedTagCount: 4,
	}); err != nil {
		t.Fatalf("UpsertScore() error = %v", err)
	}

	stats, err := engine.FullRebuild(ctx, RebuildOptions{})
	if err != nil {
		t.Fatalf("FullRebuild() error = %v", err)
	}
	if stats.Deleted != 1 {
		t.Errorf("stats.Deleted = %d, want 1 (orphan row)", stats.Deleted)
	}

	wantNoScore(t, st, "alice", "ghost")
	getScore(t, st, "alice", "bob")
	getScore(t, st, "bob", "alice")
}

func TestFullRebuildIsIdempotent(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz")
	putUser(t, st, "bob", "jazz")

	if _, err := engine.FullRebuild(ctx, RebuildOptions{}); err != nil {
		t.Fatalf("first FullRebuild() error = %v", err)
	}
	stats, err := engine.FullRebuild(ctx, RebuildOptions{})
	if err != nil {
		t.Fatalf("second FullRebuild() error = %v", err)
	}
	if stats.Created != 0 || stats.Updated != 2 || stats.Deleted != 0 {
		t.Errorf("second rebuild stats = %+v, want pure updates", stats)
	}
}

func TestFullRebuildReportsProgress(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		putUser(t, st, fmt.Sprintf("user-%d", i), "jazz")
	}

	var calls []models.RebuildProgress
	_, err := engine.FullRebuild(ctx, RebuildOptions{
		BatchSize: 2,
		OnProgress: func(p models.RebuildProgress) {
			calls = append(calls, p)
		},
	})
	if err != nil {
		t.Fatalf("FullRebuild() error = %v", err)
	}

	if len(calls) < 3 {
		t.Fatalf("progress calls = %d, want at least 3 for 5 users in batches of 2", len(calls))
	}
	last := calls[len(calls)-1]
	if last.Processed != 5 || last.Total != 5 {
		t.Errorf("final progress = %+v, want 5/5", last)
	}
	for i := 1; i < len(calls); i++ {
		if calls[i].Processed < calls[i-1].Processed {
			t.Errorf("progress went backwards: %+v", calls)
		}
	}
}

func TestFullRebuildHonorsContextCancellation(t *testing.T) {
	engine, st := newTestEngine(t)

	for i := 0; i < 10; i++ {
		putUser(t, st, fmt.Sprintf("user-%d", i), "jazz")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A paced rebuild must observe cancellation at the limiter.
	_, err := engine.FullRebuild(ctx, RebuildOptions{OwnersPerSecond: 1})
	if err == nil {
		t.Fatal("FullRebuild() with cancelled context expected error")
	}
}

func TestIncrementalThenPageEndToEnd(t *testing.T) {
	engine, st := newTestEngine(t)
	ctx := context.Background()

	putUser(t, st, "alice", "jazz", "go", "coffee")
	putUser(t, st, "bob", "jazz", "go", "coffee")
	putUser(t, st, "carol", "jazz")

	if _, err := engine.IncrementalUpdate(ctx, "alice"); err != nil {
		t.Fatalf("IncrementalUpdate() error = %v", err)
	}

	spec, err := pagination.MatchSortSpec(pagination.SortModeScore)
	if err != nil {
		t.Fatalf("MatchSortSpec() error = %v", err)
	}
	items, _, _, err := st.PageMatches(ctx, "alice", spec, "", 10)
	if err != nil {
		t.Fatalf("PageMatches() error = %v", err)
	}

	if len(items) != 2 || items[0].TargetID != "bob" || items[1].TargetID != "carol" {
		t.Errorf("page = %+v, want bob then carol", items)
	}
}
