// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/store"
)

// TagIndex is the read side of the user/tag collection the engine depends
// on. Satisfied by *store.Store.
type TagIndex interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	CandidatesSharingAnyTag(ctx context.Context, ownerID string, tagIDs []string) ([]models.User, error)
	UsersWithTags(ctx context.Context, afterID string, batchSize int) ([]models.User, bool, error)
	CountUsersWithTags(ctx context.Context) (int, error)
}

// ScoreStore is the persistence surface the engine writes through.
// Satisfied by *store.Store.
type ScoreStore interface {
	UpsertScore(ctx context.Context, score models.MatchScore) (bool, error)
	DeleteScore(ctx context.Context, ownerID, targetID string) error
	DeleteAllScoresForOwner(ctx context.Context, ownerID string) (int, error)
	FindScoresForOwner(ctx context.Context, ownerID string) ([]models.MatchScore, error)
}

// Engine maintains the MatchScore collection. It holds no state between
// calls: every pass is a complete, idempotent function of the tag sets at
// call time, so two concurrent passes for the same owner converge to the
// same end state (last upsert wins — at worst redundant work, never a
// partial result).
type Engine struct {
	users  TagIndex
	scores ScoreStore
	logger zerolog.Logger
}

// NewEngine creates a recompute engine over the given collections.
func NewEngine(users TagIndex, scores ScoreStore, logger zerolog.Logger) *Engine {
	return &Engine{
		users:  users,
		scores: scores,
		logger: logger.With().Str("component", "scoring").Logger(),
	}
}

// IncrementalUpdate recomputes the owner's directed match scores after a
// tag change. Work is bounded by the candidate filter: only users sharing
// at least one tag with the owner are visited. After the upsert loop it
// prunes the owner's stored rows whose target dropped out of the candidate
// set, so tag removals converge without waiting for a full rebuild.
//
// A deleted or tag-less owner keeps no rows at all. Per-candidate failures
// are logged and counted, never abort the pass; the stats let callers see
// examined vs. succeeded so silent data loss stays observable.
//
// Only the owner's own (owner, target) rows are written. The mirrored
// (target, owner) rows converge when the target's own tags change or when
// the next full rebuild runs.
func (e *Engine) IncrementalUpdate(ctx context.Context, ownerID string) (models.RecomputeStats, error) {
	start := time.Now()
	defer func() {
		metrics.RecomputeDuration.WithLabelValues("incremental").Observe(time.Since(start).Seconds())
	}()

	var stats models.RecomputeStats

	owner, err := e.users.GetUser(ctx, ownerID)
	if errors.Is(err, store.ErrUserNotFound) {
		owner = &models.User{ID: ownerID}
	} else if err != nil {
		return stats, fmt.Errorf("load owner %s: %w", ownerID, err)
	}

	if !owner.HasTags() {
		deleted, err := e.scores.DeleteAllScoresForOwner(ctx, ownerID)
		if err != nil {
			return stats, fmt.Errorf("clear scores for tag-less owner %s: %w", ownerID, err)
		}
		stats.Pruned = deleted
		return stats, nil
	}

	candidates, err := e.users.CandidatesSharingAnyTag(ctx, ownerID, owner.TagIDs)
	if err != nil {
		return stats, fmt.Errorf("query candidates for %s: %w", ownerID, err)
	}

	candidateIDs := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		candidateIDs[candidate.ID] = true
		stats.Examined++

		score, shared := Overlap(owner.TagIDs, candidate.TagIDs)
		if shared == 0 {
			continue
		}

		created, err := e.scores.UpsertScore(ctx, models.MatchScore{
			OwnerID:        ownerID,
			TargetID:       candidate.ID,
			Score:          score,
			SharedTagCount: shared,
			ComputedAt:     time.Now().UTC(),
		})
		if err != nil {
			stats.Failed++
			metrics.RecomputeFailures.WithLabelValues("incremental").Inc()
			e.logger.Error().Err(err).
				Str("owner_id", ownerID).
				Str("target_id", candidate.ID).
				Msg("Upsert failed, continuing pass")
			continue
		}
		if created {
			stats.Created++
		} else {
			stats.Updated++
		}
	}

	// Prune rows that fell to zero overlap: anything stored for a target
	// outside the candidate set cannot share a tag with the owner anymore.
	existing, err := e.scores.FindScoresForOwner(ctx, ownerID)
	if err != nil {
		return stats, fmt.Errorf("list scores for pruning %s: %w", ownerID, err)
	}
	for _, row := range existing {
		if candidateIDs[row.TargetID] {
			continue
		}
		if err := e.scores.DeleteScore(ctx, ownerID, row.TargetID); err != nil {
			stats.Failed++
			metrics.RecomputeFailures.WithLabelValues("incremental").Inc()
			e.logger.Error().Err(err).
				Str("owner_id", ownerID).
				Str("target_id", row.TargetID).
				Msg("Prune failed, continuing pass")
			continue
		}
		stats.Pruned++
	}

	return stats, nil
}

// RebuildOptions configures a full rebuild run.
type RebuildOptions struct {
	// BatchSize is the number of owners processed between progress
	// callbacks. Defaults to 100.
	BatchSize int

	// OnProgress, when set, is invoked after each batch.
	OnProgress func(models.RebuildProgress)

	// OwnersPerSecond paces the per-owner passes so a rebuild cannot
	// starve the serving process of store bandwidth. Zero means unpaced.
	OwnersPerSecond float64
}

// FullRebuild is the authoritative, self-healing recompute: a full pairwise
// pass over every user with at least one tag, in stable id order, paged by
// BatchSize. Unlike IncrementalUpdate it is not candidate-filtered, so it
// also deletes stored rows whose target no longer appears among current
// candidates. Run it whenever data may have drifted: migrations, bulk
// imports, suspected incremental gaps.
//
// Not resumable: a crash mid-run requires a fresh run, which is safe
// because every upsert is idempotent. Per-owner failures are logged and
// counted; one bad owner never aborts the rebuild.
func (e *Engine) FullRebuild(ctx context.Context, opts RebuildOptions) (models.RebuildStats, error) {
	start := time.Now()
	defer func() {
		metrics.RecomputeDuration.WithLabelValues("rebuild").Observe(time.Since(start).Seconds())
	}()

	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	var limiter *rate.Limiter
	if opts.OwnersPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.OwnersPerSecond), 1)
	}

	var stats models.RebuildStats

	total, err := e.users.CountUsersWithTags(ctx)
	if err != nil {
		return stats, fmt.Errorf("count users: %w", err)
	}
	stats.Total = total

	afterID := ""
	for {
		batch, hasMore, err := e.users.UsersWithTags(ctx, afterID, opts.BatchSize)
		if err != nil {
			return stats, fmt.Errorf("page users after %q: %w", afterID, err)
		}

		for _, owner := range batch {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return stats, err
				}
			}

			created, updated, deleted, err := e.rebuildOwner(ctx, owner)
			stats.Created += created
			stats.Updated += updated
			stats.Deleted += deleted
			if err != nil {
				stats.Failed++
				metrics.RecomputeFailures.WithLabelValues("rebuild").Inc()
				e.logger.Error().Err(err).
					Str("owner_id", owner.ID).
					Msg("Owner rebuild failed, continuing")
			}
			stats.Processed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(models.RebuildProgress{Processed: stats.Processed, Total: stats.Total})
		}
		if !hasMore {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	return stats, nil
}

// rebuildOwner runs the full pairwise pass for one owner: score every other
// user with tags, then delete stored rows for targets that fell out.
func (e *Engine) rebuildOwner(ctx context.Context, owner models.User) (created, updated, deleted int, err error) {
	keep := make(map[string]bool)

	afterID := ""
	for {
		batch, hasMore, err := e.users.UsersWithTags(ctx, afterID, 500)
		if err != nil {
			return created, updated, deleted, fmt.Errorf("page targets: %w", err)
		}

		for _, target := range batch {
			if target.ID == owner.ID {
				continue
			}
			score, shared := Overlap(owner.TagIDs, target.TagIDs)
			if shared == 0 {
				continue
			}

			wasCreated, err := e.scores.UpsertScore(ctx, models.MatchScore{
				OwnerID:        owner.ID,
				TargetID:       target.ID,
				Score:          score,
				SharedTagCount: shared,
				ComputedAt:     time.Now().UTC(),
			})
			if err != nil {
				return created, updated, deleted, fmt.Errorf("upsert %s->%s: %w", owner.ID, target.ID, err)
			}
			keep[target.ID] = true
			if wasCreated {
				created++
			} else {
				updated++
			}
		}

		if !hasMore {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	// Cleanup phase: diff existing rows against the keep set and delete
	// orphans (zero overlap now, or target vanished entirely).
	existing, err := e.scores.FindScoresForOwner(ctx, owner.ID)
	if err != nil {
		return created, updated, deleted, fmt.Errorf("list scores for cleanup: %w", err)
	}
	for _, row := range existing {
		if keep[row.TargetID] {
			continue
		}
		if err := e.scores.DeleteScore(ctx, owner.ID, row.TargetID); err != nil {
			return created, updated, deleted, fmt.Errorf("delete orphan %s->%s: %w", owner.ID, row.TargetID, err)
		}
		deleted++
	}

	return created, updated, deleted, nil
}
