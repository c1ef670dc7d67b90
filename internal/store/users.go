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
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/models"
)

// PutUser stores a user document and keeps the tag membership index in sync
// with the new tag set, all within one transaction. It returns the previous
// tag set (nil for a new user) so callers can decide whether a recompute
// needs to be triggered.
func (s *Store) PutUser(ctx context.Context, user models.User) ([]string, error) {
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}

	var previousTags []string
	err = s.db.Update(func(txn *badger.Txn) error {
		previousTags = nil

		item, err := txn.Get(userKey(user.ID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// New user, no index rows to reconcile.
		case err != nil:
			return fmt.Errorf("get existing user: %w", err)
		default:
			var existing models.User
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("decode existing user: %w", err)
			}
			previousTags = existing.TagIDs
		}

		// Reconcile tag index rows: drop removed tags, add new ones.
		current := make(map[string]bool, len(user.TagIDs))
		for _, tag := range user.TagIDs {
			current[tag] = true
		}
		for _, tag := range previousTags {
			if !current[tag] {
				if err := txn.Delete(tagIndexKey(tag, user.ID)); err != nil {
					return fmt.Errorf("delete tag index row: %w", err)
				}
			}
		}
		for _, tag := range user.TagIDs {
			if err := txn.Set(tagIndexKey(tag, user.ID), nil); err != nil {
				return fmt.Errorf("set tag index row: %w", err)
			}
		}

		if err := txn.Set(userKey(user.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previousTags, nil
}

// GetUser retrieves a user document by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a user document exists without decoding it.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

// CandidatesSharingAnyTag returns every user (other than ownerID) that
// shares at least one of the given tags. This is the candidate filter that
// bounds incremental recompute: users with zero shared tags are never even
// visited.
func (s *Store) CandidatesSharingAnyTag(ctx context.Context, ownerID string, tagIDs []string) ([]models.User, error) {
	ids := make(map[string]bool)

	err := s.db.View(func(txn *badger.Txn) error {
		for _, tag := range tagIDs {
			if err := ctx.Err(); err != nil {
				return err
			}

			prefix := tagIndexPrefix(tag)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false

			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				userID := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
				if userID != ownerID {
					ids[userID] = true
				}
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan tag index: %w", err)
	}

	// Stable order keeps recompute passes deterministic and testable.
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	users := make([]models.User, 0, len(sorted))
	for _, id := range sorted {
		user, err := s.GetUser(ctx, id)
		if errors.Is(err, ErrUserNotFound) {
			// Stale index row; the user was removed mid-scan.
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// UsersWithTags returns the next batch of users carrying at least one tag,
// in stable id order. Pass the last id of the previous batch as afterID
// (empty for the first call). hasMore signals whether another batch exists.
func (s *Store) UsersWithTags(ctx context.Context, afterID string, batchSize int) ([]models.User, bool, error) {
	var users []models.User
	hasMore := false

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		start := prefix
		if afterID != "" {
			start = seekAfter(userKey(afterID))
		}

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var user models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			if !user.HasTags() {
				continue
			}

			if len(users) == batchSize {
				hasMore = true
				return nil
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("scan users: %w", err)
	}
	return users, hasMore, nil
}

// CountUsersWithTags counts users that participate in scoring. Used by the
// full rebuild to report progress against a stable total.
func (s *Store) CountUsersWithTags(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userKeyPrefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var user models.User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &user)
			}); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			if user.HasTags() {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
