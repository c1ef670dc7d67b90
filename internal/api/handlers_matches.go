// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
	"github.com/tomtom215/affinity/internal/validation"
)

// Matches handles GET /users/{id}/matches: one page of the owner's match
// listing using keyset pagination.
//
// Query parameters:
//   - sort: score (default) | shared | recent
//   - limit: page size, capped at pagination.MaxLimit
//   - cursor: opaque token from the previous response's next_cursor
//
// An empty result is a successful empty page, never an error. A malformed
// cursor is a validation failure; restarting from the first page silently
// would corrupt infinite scrolls.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	req, ok := parseListRequest(r)
	if !ok {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, "limit must be an integer")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
		return
	}

	spec, err := pagination.MatchSortSpec(req.Sort)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
		return
	}

	limit := pagination.ClampLimit(req.Limit)
	items, nextCursor, hasMore, err := h.store.PageMatches(r.Context(), owner, spec, req.Cursor, limit)
	if err != nil {
		h.respondDomainError(w, r, err)
		return
	}

	if items == nil {
		items = []models.MatchScore{}
	}
	metrics.PagesServed.WithLabelValues("matches").Inc()
	respondJSON(w, http.StatusOK, models.ListResponse{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}
