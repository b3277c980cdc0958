// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

func passthroughSpan(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func TestAPI_Me(t *testing.T) {
	tests := []struct {
		name                string
		principalID         string
		resolution          *Resolution
		expectedStatus      int
		expectedProvisioned bool
		expectedHighest     string
	}{
		{
			name:           "no principal",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:                "unprovisioned principal",
			principalID:         "principal-1",
			resolution:          emptyResolution(),
			expectedStatus:      http.StatusOK,
			expectedProvisioned: false,
			expectedHighest:     "",
		},
		{
			name:                "provisioned principal",
			principalID:         "principal-1",
			resolution:          resolutionWith(RoleAgent, RoleHRManager),
			expectedStatus:      http.StatusOK,
			expectedProvisioned: true,
			expectedHighest:     "hr_manager",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockResolver := NewMockResolverInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "access.API.me").DoAndReturn(passthroughSpan)
			if tt.resolution != nil {
				mockResolver.EXPECT().Resolve(gomock.Any(), tt.principalID).Return(tt.resolution, nil)
			}

			session := NewSession(mockResolver)
			session.Begin(tt.principalID)

			mux := chi.NewMux()
			NewAPI(mockTracer, mockLogger).RegisterEndpoints(mux)

			req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
			req = req.WithContext(WithSession(req.Context(), session))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var body struct {
				Data struct {
					Profile     json.RawMessage `json:"profile"`
					Roles       []Grant         `json:"roles"`
					HighestRole string          `json:"highest_role"`
					Provisioned bool            `json:"provisioned"`
				} `json:"data"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}

			if body.Data.Provisioned != tt.expectedProvisioned || body.Data.HighestRole != tt.expectedHighest {
				t.Errorf("unexpected body %+v", body.Data)
			}
			if !tt.expectedProvisioned && string(body.Data.Profile) != "null" {
				t.Errorf("expected null profile, got %s", body.Data.Profile)
			}
			if body.Data.Roles == nil {
				t.Error("expected roles array")
			}
		})
	}
}
