// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
)

// RelationshipPayload is the caller-supplied part of a relationship record.
type RelationshipPayload struct {
	Remark string
	Notify bool
}

// UpsertRelationship idempotently creates or updates a relationship record
// on its unique (kind, owner, target) key. Calling it twice never creates
// two records; an update keeps the original created_at so the listing
// position stays stable.
//
// Rejects self-relationships with ErrSelfReference and unknown targets with
// ErrTargetNotFound. Relationship writes never trigger score recomputes;
// only tag changes do.
func (s *Store) UpsertRelationship(ctx context.Context, kind models.RelationKind, ownerID, targetID string, payload RelationshipPayload) (*models.Relationship, error) {
	if ownerID == targetID {
		return nil, ErrSelfReference
	}

	exists, err := s.UserExists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTargetNotFound
	}

	now := time.Now().UTC()
	rel := models.Relationship{
		Kind:      kind,
		OwnerID:   ownerID,
		TargetID:  targetID,
		Remark:    payload.Remark,
		Notify:    payload.Notify,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(relKey(kind, ownerID, targetID))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if err := txn.Set(relIndexKey(kind, ownerID, rel.CreatedAt, targetID),
				[]byte(targetID)); err != nil {
				return fmt.Errorf("set relationship index row: %w", err)
			}
		case err != nil:
			return fmt.Errorf("get existing relationship: %w", err)
		default:
			var existing models.Relationship
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return fmt.Errorf("decode existing relationship: %w", err)
			}
			rel.CreatedAt = existing.CreatedAt
		}

		data, err := json.Marshal(rel)
		if err != nil {
			return fmt.Errorf("marshal relationship: %w", err)
		}
		if err := txn.Set(relKey(kind, ownerID, targetID), data); err != nil {
			return fmt.Errorf("set relationship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// DeleteRelationship removes a relationship record. Deleting a record that
// does not exist returns ErrRelationshipNotFound rather than succeeding
// silently.
func (s *Store) DeleteRelationship(ctx context.Context, kind models.RelationKind, ownerID, targetID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(relKey(kind, ownerID, targetID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRelationshipNotFound
		}
		if err != nil {
			return fmt.Errorf("get relationship: %w", err)
		}

		var rel models.Relationship
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rel)
		}); err != nil {
			return fmt.Errorf("decode relationship: %w", err)
		}

		if err := txn.Delete(relIndexKey(kind, ownerID, rel.CreatedAt, targetID)); err != nil {
			return fmt.Errorf("delete relationship index row: %w", err)
		}
		if err := txn.Delete(relKey(kind, ownerID, targetID)); err != nil {
			return fmt.Errorf("delete relationship: %w", err)
		}
		return nil
	})
}

// RelationshipExists reports whether a (kind, owner, target) record exists.
func (s *Store) RelationshipExists(ctx context.Context, kind models.RelationKind, ownerID, targetID string) (bool, error) {
	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(relKey(kind, ownerID, targetID))
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
		return false, fmt.Errorf("check relationship existence: %w", err)
	}
	return exists, nil
}

// CountRelationships counts an owner's records of one kind, which equals the
// number of distinct targets (the pair key is unique).
func (s *Store) CountRelationships(ctx context.Context, kind models.RelationKind, ownerID string) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := relOwnerPrefix(kind, ownerID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count relationships: %w", err)
	}
	return count, nil
}

// PageRelationships returns one page of an owner's relationship listing of
// the given kind, ordered by (created_at desc, target_id asc), using keyset
// pagination. An empty cursor starts from the top.
func (s *Store) PageRelationships(ctx context.Context, kind models.RelationKind, ownerID, cursorToken string, limit int) ([]models.Relationship, *string, bool, error) {
	var start []byte
	if cursorToken != "" {
		var cursor models.RelationshipCursor
		if err := pagination.DecodeCursor(cursorToken, &cursor); err != nil {
			return nil, nil, false, err
		}
		start = seekAfter(relIndexKey(kind, ownerID, cursor.CreatedAt, cursor.TargetID))
	}

	var items []models.Relationship
	fetch := pagination.FetchLimit(limit)

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := relIndexOwnerPrefix(kind, ownerID)
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

			item, err := txn.Get(relKey(kind, ownerID, targetID))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve index row: %w", err)
			}

			var rel models.Relationship
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rel)
			}); err != nil {
				return fmt.Errorf("decode relationship: %w", err)
			}
			items = append(items, rel)
		}
		return nil
	})
	if err != nil {
		return nil, nil, false, fmt.Errorf("scan relationship index: %w", err)
	}

	items, hasMore := pagination.Trim(items, limit)

	var nextCursor *string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		encoded, err := pagination.EncodeCursor(models.RelationshipCursor{
			CreatedAt: last.CreatedAt,
			TargetID:  last.TargetID,
		})
		if err != nil {
			return nil, nil, false, fmt.Errorf("encode next cursor: %w", err)
		}
		nextCursor = &encoded
	}

	return items, nextCursor, hasMore, nil
}
