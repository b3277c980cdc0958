// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/authentication"
)

func passthrough(next http.Handler) http.Handler {
	return next
}

func newTestRouter(t *testing.T) (*chi.Mux, *MockServiceInterface) {
	ctrl := gomock.NewController(t)

	mockService := NewMockServiceInterface(ctrl)
	mockAccess := NewMockAccessMiddlewareInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockAccess.EXPECT().RequireRoles(gomock.Any()).Return(passthrough).Times(4)
	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()

	mux := chi.NewMux()
	mux.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authentication.WithPrincipalID(r.Context(), callerPrincipalID)))
		})
	})

	NewAPI(mockService, mockAccess, mockTracer, mockLogger).RegisterEndpoints(mux)

	return mux, mockService
}

func TestAPI_Routes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/v0/organizations?page=1&size=10",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListOrganizations(gomock.Any(), callerPrincipalID, &ListRequest{Page: 1, Size: 10}).
					Return([]*types.Organization{{ID: orgID, Name: "Acme"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "list with invalid size",
			method:         http.MethodGet,
			path:           "/api/v0/organizations?size=ten",
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/v0/organizations",
			body:   `{"name":"Acme"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateOrganization(gomock.Any(), callerPrincipalID, &Request{Name: "Acme"}).
					Return(&types.Organization{ID: orgID, Name: "Acme"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create with malformed body",
			method:         http.MethodPost,
			path:           "/api/v0/organizations",
			body:           "{",
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "create duplicate",
			method: http.MethodPost,
			path:   "/api/v0/organizations",
			body:   `{"name":"Acme"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateOrganization(gomock.Any(), callerPrincipalID, gomock.Any()).
					Return(nil, fmt.Errorf("%w: Acme", ErrDuplicateOrganization))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "rename",
			method: http.MethodPatch,
			path:   "/api/v0/organizations/" + orgID,
			body:   `{"name":"Globex"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().RenameOrganization(gomock.Any(), callerPrincipalID, orgID, &Request{Name: "Globex"}).
					Return(&types.Organization{ID: orgID, Name: "Globex"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "delete missing",
			method: http.MethodDelete,
			path:   "/api/v0/organizations/" + otherOrgID,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteOrganization(gomock.Any(), callerPrincipalID, otherOrgID).Return(ErrOrganizationNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "members forbidden",
			method: http.MethodGet,
			path:   "/api/v0/organizations/" + otherOrgID + "/members",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListMembers(gomock.Any(), callerPrincipalID, otherOrgID, &ListRequest{}).Return(nil, ErrUnauthorized)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "members storage failure",
			method: http.MethodGet,
			path:   "/api/v0/organizations/" + orgID + "/members",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListMembers(gomock.Any(), callerPrincipalID, orgID, gomock.Any()).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockService := newTestRouter(t)
			tt.setupMocks(mockService)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp httptypes.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Status != tt.expectedStatus {
				t.Errorf("expected envelope status %d, got %d", tt.expectedStatus, resp.Status)
			}
		})
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrUnauthorized, http.StatusForbidden},
		{ErrAccessPending, http.StatusServiceUnavailable},
		{ErrInvalidRequest, http.StatusBadRequest},
		{ErrOrganizationNotFound, http.StatusNotFound},
		{ErrDuplicateOrganization, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFromError(tt.err); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
