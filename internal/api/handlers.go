// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/events"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/models"
	"github.com/tomtom215/affinity/internal/pagination"
	"github.com/tomtom215/affinity/internal/store"
	"github.com/tomtom215/affinity/internal/validation"
)

// Handler carries the collaborators the HTTP endpoints need.
type Handler struct {
	store     *store.Store
	publisher *events.Publisher
	logger    zerolog.Logger
}

// NewHandler creates the endpoint handler set.
func NewHandler(st *store.Store, publisher *events.Publisher, logger zerolog.Logger) *Handler {
	return &Handler{
		store:     st,
		publisher: publisher,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Health reports service liveness and store availability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store.DB().IsClosed() {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "store is closed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ownerID extracts and validates the {id} route parameter.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validation.ValidIdentifier(id) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed,
			"id must be a non-empty id without ':' or control characters")
		return "", false
	}
	return id, true
}

// targetID extracts and validates the {target} route parameter.
func targetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "target")
	if !validation.ValidIdentifier(id) {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed,
			"target must be a non-empty id without ':' or control characters")
		return "", false
	}
	return id, true
}

// respondDomainError maps store and pagination errors onto the API error
// taxonomy. Anything unrecognized is an infrastructure failure: logged with
// its request id, reported as a 500 without internal detail.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pagination.ErrInvalidCursor):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, store.ErrSelfReference):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, store.ErrTargetNotFound),
		errors.Is(err, store.ErrRelationshipNotFound),
		errors.Is(err, store.ErrUserNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, err.Error())
	default:
		h.logger.Error().Err(err).
			Str("request_id", logging.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("Request failed")
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternalError, "internal error")
	}
}
