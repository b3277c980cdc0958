// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/access"
)

//go:generate mockgen -build_flags=--mod=mod -package web -destination ./mock_db.go -source=../../internal/db/interfaces.go

func rejectAll(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = httptypes.WriteError(w, http.StatusUnauthorized, "missing authorization header")
	})
}

func newTestRouter(t *testing.T) (http.Handler, *MockDBClientInterface) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockDBClientInterface(ctrl)

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("erp-access-service", logger)

	router := NewRouter(
		Services{},
		rejectAll,
		access.NewMiddleware(nil, access.NewGate(), tracer, monitor, logger),
		mockDB,
		nil,
		tracer,
		monitor,
		logger,
	)

	return router, mockDB
}

func TestNewRouter(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		setupMocks     func(*MockDBClientInterface)
		expectedStatus int
	}{
		{
			name:   "status is public",
			method: http.MethodGet,
			path:   "/api/v0/status",
			setupMocks: func(m *MockDBClientInterface) {
				m.EXPECT().Ping(gomock.Any()).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics are public",
			method:         http.MethodGet,
			path:           "/metrics",
			setupMocks:     func(*MockDBClientInterface) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "me needs a principal",
			method:         http.MethodGet,
			path:           "/api/v0/me",
			setupMocks:     func(*MockDBClientInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "provisioning needs a principal",
			method:         http.MethodPost,
			path:           "/api/v0/users",
			setupMocks:     func(*MockDBClientInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "organization listing needs a principal",
			method:         http.MethodGet,
			path:           "/api/v0/organizations",
			setupMocks:     func(*MockDBClientInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "team listing needs a principal",
			method:         http.MethodGet,
			path:           "/api/v0/teams/members",
			setupMocks:     func(*MockDBClientInterface) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB := newTestRouter(t)
			tt.setupMocks(mockDB)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestMiddlewareCORS(t *testing.T) {
	handler := middlewareCORS([]string{"https://erp.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v0/me", nil)
	req.Header.Set("Origin", "https://erp.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://erp.example.com" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}
