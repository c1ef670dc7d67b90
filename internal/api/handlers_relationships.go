// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
	"github.com/tomtom215/affinity/internal/store"
	"github.com/tomtom215/affinity/internal/validation"
)

// ListRelationships returns a handler serving GET /users/{id}/{collection}
// for one relationship kind, ordered by (created_at desc, target_id asc)
// with keyset pagination. All four collections share this implementation;
// only the kind differs.
func (h *Handler) ListRelationships(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}

		req, ok := parseListRequest(r)
		if !ok {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, "limit must be an integer")
			return
		}
		req.Sort = "" // relationship listings have a single sort order
		if err := validation.ValidateStruct(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
			return
		}

		limit := pagination.ClampLimit(req.Limit)
		items, nextCursor, hasMore, err := h.store.PageRelationships(r.Context(), kind, owner, req.Cursor, limit)
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}

		if items == nil {
			items = []models.Relationship{}
		}
		metrics.PagesServed.WithLabelValues(string(kind)).Inc()
		respondJSON(w, http.StatusOK, models.ListResponse{
			Items:      items,
			NextCursor: nextCursor,
			HasMore:    hasMore,
		})
	}
}

// UpsertRelationship returns a handler serving PUT
// /users/{id}/{collection}/{target}: idempotent create-or-update on the
// unique (owner, target) pair. Self-relationships and unknown targets are
// rejected with distinct error codes; relationship writes never trigger a
// score recompute.
func (h *Handler) UpsertRelationship(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		target, ok := targetID(w, r)
		if !ok {
			return
		}

		var req UpsertRelationshipRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, "malformed request body")
				return
			}
		}
		if err := validation.ValidateStruct(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
			return
		}

		rel, err := h.store.UpsertRelationship(r.Context(), kind, owner, target, store.RelationshipPayload{
			Remark: req.Remark,
			Notify: req.Notify,
		})
		if err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, rel)
	}
}

// DeleteRelationship returns a handler serving DELETE
// /users/{id}/{collection}/{target}. Deleting a record that does not exist
// is a 404, not a silent success, so callers can tell "already gone" from
// "nothing ever existed".
func (h *Handler) DeleteRelationship(kind models.RelationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerID(w, r)
		if !ok {
			return
		}
		target, ok := targetID(w, r)
		if !ok {
			return
		}

		if err := h.store.DeleteRelationship(r.Context(), kind, owner, target); err != nil {
			h.respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}
