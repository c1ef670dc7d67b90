// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package pagination

import (
	"errors"
	"testing"
)

type testCursor struct {
	Score    int    `json:"s"`
	TargetID string `json:"t"`
}

func TestCursorRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		cursor testCursor
	}{
		{name: "typical", cursor: testCursor{Score: 40, TargetID: "user-9"}},
		{name: "zero values", cursor: testCursor{}},
		{name: "id with unicode", cursor: testCursor{Score: 100, TargetID: "usér-λ"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeCursor(tt.cursor)
			if err != nil {
				t.Fatalf("EncodeCursor() error = %v", err)
			}

			var decoded testCursor
			if err := DecodeCursor(encoded, &decoded); err != nil {
				t.Fatalf("DecodeCursor() error = %v", err)
			}
			if decoded != tt.cursor {
				t.Errorf("round trip = %+v, want %+v", decoded, tt.cursor)
			}
		})
	}
}

func TestDecodeCursorRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "!!!not-base64!!!"},
		{name: "base64 but not json", token: "bm90LWpzb24"},
		{name: "standard encoding padding", token: "eyJzIjo0MH0="},
		{name: "truncated json", token: "eyJzIjo0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded testCursor
			err := DecodeCursor(tt.token, &decoded)
			if err == nil {
				t.Fatal("DecodeCursor() expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidCursor) {
				t.Errorf("DecodeCursor() error = %v, want ErrInvalidCursor", err)
			}
		})
	}
}

func TestEncodedCursorIsURLSafe(t *testing.T) {
	// A cursor whose JSON would produce '+' or '/' under standard
	// base64 must still come out URL-safe.
	encoded, err := EncodeCursor(testCursor{Score: 63, TargetID: "???>>>"})
	if err != nil {
		t.Fatalf("EncodeCursor() error = %v", err)
	}
	for _, c := range encoded {
		if c == '+' || c == '/' || c == '=' {
			t.Errorf("encoded cursor contains %q, want unpadded URL-safe alphabet", c)
		}
	}
}
