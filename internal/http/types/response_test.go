// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name            string
		response        Response
		expectedMessage string
		expectedOutcome string
	}{
		{
			name:            "default message from status",
			response:        Response{Status: http.StatusForbidden},
			expectedMessage: "Forbidden",
		},
		{
			name:            "partial success keeps message and outcome",
			response:        Response{Status: http.StatusMultiStatus, Message: "role assignment failed", Outcome: "partial_success"},
			expectedMessage: "role assignment failed",
			expectedOutcome: "partial_success",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			if err := WriteJSON(w, tt.response); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if w.Code != tt.response.Status {
				t.Errorf("expected status %d, got %d", tt.response.Status, w.Code)
			}

			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected json content type, got %s", ct)
			}

			var body Response
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if body.Status != tt.response.Status || body.Message != tt.expectedMessage || body.Outcome != tt.expectedOutcome {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	if err := WriteError(w, http.StatusConflict, "duplicate email"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Status != http.StatusConflict || body.Message != "duplicate email" || body.Data != nil {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query    string
		expected int64
		wantErr  bool
	}{
		{"", 0, false},
		{"?page=3", 3, false},
		{"?page=-1", -1, false},
		{"?page=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)

			got, err := QueryInt(r, "page")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
