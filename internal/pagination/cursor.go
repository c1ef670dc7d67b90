// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
// Callers must surface this as a validation failure; silently restarting
// from the first page would hide client bugs and corrupt infinite scrolls.
var ErrInvalidCursor = errors.New("invalid cursor")

// EncodeCursor serializes a cursor struct to an opaque base64url token.
func EncodeCursor(cursor interface{}) (string, error) {
	data, err := json.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor parses an opaque token produced by EncodeCursor into the
// given cursor struct. Any malformed token yields ErrInvalidCursor.
func DecodeCursor(encoded string, cursor interface{}) error {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: invalid base64 encoding: %v", ErrInvalidCursor, err)
	}

	if err := json.Unmarshal(data, cursor); err != nil {
		return fmt.Errorf("%w: invalid cursor JSON: %v", ErrInvalidCursor, err)
	}

	return nil
}
