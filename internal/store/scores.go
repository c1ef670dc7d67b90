// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
)

// UpsertScore atomically creates or replaces the match score for an ordered
// pair, keeping both sort index rows in step within the same transaction.
// Returns whether a new document was created (vs. an existing one updated).
//
// Safe under concurrent recomputes of the same pair: scoring is a pure
// function of current tags, so whichever writer lands last wins with an
// equally valid value. Last-writer-wins on computed_at, no merge logic.
func (s *Store) UpsertScore(ctx context.Context, score models.MatchScore) (bool, error) {
	data, err := json.Marshal(score)
	if err != nil {
		return false, fmt.Errorf("marshal match score: %w", err)
	}

	created := false
	err = s.db.Update(func(txn *badger.Txn) error {
		created = false

		item, err := txn.Get(scoreKey(score.OwnerID, score.TargetID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			created = true
		case err != nil:
			return fmt.Errorf("get existing score: %w", err)
		default:
			var existing models.MatchScore
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("decode existing score: %w", err)
			}
			// Drop index rows at the old sort position when it moved.
			if existing.Score != score.Score || existing.SharedTagCount != score.SharedTagCount {
				if err := deleteScoreIndexRows(txn, existing); err != nil {
					return err
				}
			}
		}

		if err := txn.Set(scoreKey(score.OwnerID, score.TargetID), data); err != nil {
			return fmt.Errorf("set score: %w", err)
		}
		if err := txn.Set(scoreIndexKeyScore(score.OwnerID, score.Score, score.TargetID),
			[]byte(score.TargetID)); err != nil {
			return fmt.Errorf("set score index row: %w", err)
		}
		if err := txn.Set(scoreIndexKeyShared(score.OwnerID, score.SharedTagCount, score.Score, score.TargetID),
			[]byte(score.TargetID)); err != nil {
			return fmt.Errorf("set shared index row: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func deleteScoreIndexRows(txn *badger.Txn, score models.MatchScore) error {
	if err := txn.Delete(scoreIndexKeyScore(score.OwnerID, score.Score, score.TargetID)); err != nil {
		return fmt.Errorf("delete score index row: %w", err)
	}
	if err := txn.Delete(scoreIndexKeyShared(score.OwnerID, score.SharedTagCount, score.Score, score.TargetID)); err != nil {
		return fmt.Errorf("delete shared index row: %w", err)
	}
	return nil
}

// GetScore retrieves the match score for an ordered pair.
func (s *Store) GetScore(ctx context.Context, ownerID, targetID string) (*models.MatchScore, error) {
	var score models.MatchScore
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(scoreKey(ownerID, targetID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrScoreNotFound
		}
		if err != nil {
			return fmt.Errorf("get score: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &score)
		})
	})
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// DeleteScore removes the match score for an ordered pair along with its
// index rows. Deleting an absent pair is a no-op: the recompute engine
// deletes during cleanup diffs where "already gone" is the desired state.
func (s *Store) DeleteScore(ctx context.Context, ownerID, targetID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(scoreKey(ownerID, targetID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get score: %w", err)
		}

		var existing models.MatchScore
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &existing)
		}); err != nil {
			return fmt.Errorf("decode score: %w", err)
		}

		if err := deleteScoreIndexRows(txn, existing); err != nil {
			return err
		}
		if err := txn.Delete(scoreKey(ownerID, targetID)); err != nil {
			return fmt.Errorf("delete score: %w", err)
		}
		return nil
	})
}

// DeleteAllScoresForOwner removes every match score owned by a user.
// Called when a user's tag set becomes empty. Returns the number deleted.
func (s *Store) DeleteAllScoresForOwner(ctx context.Context, ownerID string) (int, error) {
	scores, err := s.FindScoresForOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, score := range scores {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := s.DeleteScore(ctx, score.OwnerID, score.TargetID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// FindScoresForOwner returns every match score owned by a user, unbounded.
// Internal to recompute cleanup; listings go through PageMatches.
func (s *Store) FindScoresForOwner(ctx context.Context, ownerID string) ([]models.MatchScore, error) {
	var scores []models.MatchScore

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := scoreOwnerPrefix(ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var score models.MatchScore
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &score)
			}); err != nil {
				return fmt.Errorf("decode score: %w", err)
			}
			scores = append(scores, score)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scores for owner: %w", err)
	}
	return scores, nil
}

// PageMatches returns one page of an owner's match listing in the given
// sort mode, using keyset pagination. An empty cursor starts from the top.
//
// For in-memory sort modes (pagination.SortModeRecent) the scan runs in the
// fallback score order and the fetched page is re-sorted before returning;
// the next cursor tracks the fallback position, so page boundaries for those
// modes are not keyset-exact under concurrent recomputes.
func (s *Store) PageMatches(ctx context.Context, ownerID string, spec pagination.SortSpec, cursorToken string, limit int) ([]models.MatchScore, *string, bool, error) {
	scanMode := spec.Mode
	if spec.InMemory {
		scanMode = pagination.SortModeScore
	}

	var start []byte
	if cursorToken != "" {
		var cursor models.MatchCursor
		if err := pagination.DecodeCursor(cursorToken, &cursor); err != nil {
			return nil, nil, false, err
		}
		switch scanMode {
		case pagination.SortModeScore:
			start = seekAfter(scoreIndexKeyScore(ownerID, cursor.Score, cursor.TargetID))
		case pagination.SortModeShared:
			start = seekAfter(scoreIndexKeyShared(ownerID, cursor.SharedTagCount, cursor.Score, cursor.TargetID))
		}
	}

	items, err := s.scanMatchIndex(ctx, ownerID, scanMode, start, pagination.FetchLimit(limit))
	if err != nil {
		return nil, nil, false, err
	}

	items, hasMore := pagination.Trim(items, limit)

	var nextCursor *string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		cursor := models.MatchCursor{Score: last.Score, TargetID: last.TargetID}
		if scanMode == pagination.SortModeShared {
			cursor.SharedTagCount = last.SharedTagCount
		}
		encoded, err := pagination.EncodeCursor(cursor)
		if err != nil {
			return nil, nil, false, fmt.Errorf("encode next cursor: %w", err)
		}
		nextCursor = &encoded
	}

	if spec.InMemory {
		// Degraded mode: re-sort the fetched page only. The cursor above
		// was already built from the fallback order.
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].ComputedAt.Equal(items[j].ComputedAt) {
				return items[i].ComputedAt.After(items[j].ComputedAt)
			}
			return items[i].TargetID < items[j].TargetID
		})
	}

	return items, nextCursor, hasMore, nil
}

// scanMatchIndex walks one sort index in key order, resolving each index row
// to its score document inside the same read transaction.
func (s *Store) scanMatchIndex(ctx context.Context, ownerID, mode string, start []byte, fetch int) ([]models.MatchScore, error) {
	var items []models.MatchScore

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := scoreIndexModePrefix(ownerID, mode)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		if len(start) == 0 {
			start = prefix
		}

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.ValidForPrefix(prefix) && len(items) < fetch; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var targetID string
			if err := it.Item().Value(func(val []byte) error {
				targetID = string(val)
				return nil
			}); err != nil {
				return fmt.Errorf("read index row: %w", err)
			}

			item, err := txn.Get(scoreKey(ownerID, targetID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Unreachable while upserts are transactional; skip rather
				// than fail the whole page if it ever happens.
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve index row: %w", err)
			}

			var score models.MatchScore
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &score)
			}); err != nil {
				return fmt.Errorf("decode score: %w", err)
			}
			items = append(items, score)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan match index: %w", err)
	}
	return items, nil
}
