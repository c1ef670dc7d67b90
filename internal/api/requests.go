// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package api

import (
	"net/http"
	"strconv"
)

// ListRequest holds the validated query parameters common to every
// paginated listing endpoint.
//
// Fields:
//   - Limit: results per page (0 = default, capped by pagination.MaxLimit)
//   - Cursor: opaque base64url cursor from the previous response
//   - Sort: match sort mode (validated against the known modes by the handler)
type ListRequest struct {
	Limit  int    `validate:"min=0,max=1000"`
	Cursor string `validate:"omitempty,base64url"`
	Sort   string `validate:"omitempty,oneof=score shared recent"`
}

// parseListRequest extracts pagination parameters from the query string.
// A non-numeric limit is a validation failure, not a silent default.
func parseListRequest(r *http.Request) (ListRequest, bool) {
	req := ListRequest{
		Cursor: r.URL.Query().Get("cursor"),
		Sort:   r.URL.Query().Get("sort"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return req, false
		}
		req.Limit = limit
	}
	return req, true
}

// UpsertRelationshipRequest is the body of PUT relationship endpoints.
// Both fields are optional payload.
type UpsertRelationshipRequest struct {
	Remark string `json:"remark" validate:"omitempty,max=500"`
	Notify bool   `json:"notify"`
}

// ReplaceTagsRequest is the body of PUT /users/{id}/tags.
type ReplaceTagsRequest struct {
	TagIDs []string `json:"tag_ids" validate:"max=200,dive,identifier"`
}
