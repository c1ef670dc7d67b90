// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/validation"
)

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerID(w, r)
	if !ok {
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ReplaceTags handles PUT /users/{id}/tags: replaces the user's interest
// tag set (creating the user document if absent) and emits TagsChanged for
// the recompute worker.
//
// The publish failure path is deliberately decoupled: the tag write already
// succeeded, so a dropped event is logged and counted but never turns the
// request into a failure. The next tag edit or full rebuild converges the
// scores.
func (h *Handler) ReplaceTags(w http.ResponseWriter, r *http.Request) {
	id, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req ReplaceTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeBadRequest, "malformed request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
		return
	}

	user := models.User{ID: id, TagIDs: req.TagIDs}
	if _, err := h.store.PutUser(r.Context(), user); err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	if err := h.publisher.PublishTagsChanged(events.NewTagsChanged(id)); err != nil {
		h.logger.Error().Err(err).Str("owner_id", id).Msg("TagsChanged publish failed after tag write")
	}

	respondJSON(w, http.StatusOK, user)
}
