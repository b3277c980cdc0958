// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authentication -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func passthroughTracer(ctrl *gomock.Controller) *MockTracingInterface {
	tracer := NewMockTracingInterface(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)
	return tracer
}

// principalRecorder answers 200 and keeps the principal it saw.
func principalRecorder(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = GetPrincipalID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	tests := []struct {
		name              string
		authHeader        string
		setupMocks        func(*MockTokenVerifierInterface)
		expectedStatus    int
		expectedPrincipal string
	}{
		{
			name:           "missing header",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer token",
			authHeader:     "Basic dXNlcjpwYXNz",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty bearer token",
			authHeader:     "Bearer ",
			setupMocks:     func(*MockTokenVerifierInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "verification fails",
			authHeader: "Bearer expired",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "expired").Return(nil, errors.New("token is expired"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "token not authorized",
			authHeader: "Bearer no-scope",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "no-scope").Return(nil, ErrTokenNotAuthorized)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "valid token",
			authHeader: "Bearer valid",
			setupMocks: func(m *MockTokenVerifierInterface) {
				m.EXPECT().VerifyToken(gomock.Any(), "valid").Return(&Principal{ID: "identity-1", Scopes: []string{"erp"}}, nil)
			},
			expectedStatus:    http.StatusOK,
			expectedPrincipal: "identity-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockVerifier := NewMockTokenVerifierInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
			tt.setupMocks(mockVerifier)

			a := NewJWTAuthenticator(mockVerifier, passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), mockLogger)

			var principal string
			req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			a.Authenticate(principalRecorder(&principal)).ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if principal != tt.expectedPrincipal {
				t.Errorf("expected principal %q, got %q", tt.expectedPrincipal, principal)
			}
			if tt.expectedStatus == http.StatusUnauthorized && w.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected a JSON envelope, got content type %q", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestHeaderAuthenticator_Authenticate(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{name: "header set", header: "identity-1", expected: "identity-1"},
		{name: "header padded", header: "  identity-1 ", expected: "identity-1"},
		{name: "header blank", header: "   ", expected: ""},
		{name: "header missing", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			a := NewHeaderAuthenticator(passthroughTracer(ctrl), NewMockMonitorInterface(ctrl), NewMockLoggerInterface(ctrl))

			var principal string
			req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
			if tt.header != "" {
				req.Header.Set(IdentityHeader, tt.header)
			}
			w := httptest.NewRecorder()

			a.Authenticate(principalRecorder(&principal)).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected the request to go on, got status %d", w.Code)
			}
			if principal != tt.expected {
				t.Errorf("expected principal %q, got %q", tt.expected, principal)
			}
		})
	}
}

func TestGetPrincipalID(t *testing.T) {
	if _, ok := GetPrincipalID(context.Background()); ok {
		t.Error("expected no principal on a bare context")
	}

	if _, ok := GetPrincipalID(WithPrincipalID(context.Background(), "")); ok {
		t.Error("expected an empty principal to read as unauthenticated")
	}

	if id, ok := GetPrincipalID(WithPrincipalID(context.Background(), "identity-1")); !ok || id != "identity-1" {
		t.Errorf("expected identity-1, got %q (%v)", id, ok)
	}
}
