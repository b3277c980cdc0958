// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

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

	mockAccess.EXPECT().RequireRoles(gomock.Any()).Return(passthrough).Times(5)
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

func TestAPI_ProvisionUser(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		setupMocks      func(*MockServiceInterface)
		expectedStatus  int
		expectedOutcome string
	}{
		{
			name:            "malformed body",
			body:            "{",
			setupMocks:      func(*MockServiceInterface) {},
			expectedStatus:  http.StatusBadRequest,
			expectedOutcome: string(OutcomeInvalidRequest),
		},
		{
			name: "created",
			body: `{"email":"a@x.com","role":"agent"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ProvisionUser(gomock.Any(), callerPrincipalID, &Request{Email: email, Role: "agent"}).
					Return(&Result{Outcome: OutcomeSucceeded, PrincipalID: newPrincipalID, ProfileID: newProfileID}, nil)
			},
			expectedStatus:  http.StatusCreated,
			expectedOutcome: string(OutcomeSucceeded),
		},
		{
			name: "partial success",
			body: `{"email":"a@x.com","role":"agent"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ProvisionUser(gomock.Any(), callerPrincipalID, gomock.Any()).
					Return(partial(OutcomeRoleAssignmentFailed, StepAssignRole, newPrincipalID, newProfileID), fmt.Errorf("%w: assign_role", ErrPartialSuccess))
			},
			expectedStatus:  http.StatusMultiStatus,
			expectedOutcome: string(OutcomeRoleAssignmentFailed),
		},
		{
			name: "duplicate",
			body: `{"email":"a@x.com","role":"agent"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ProvisionUser(gomock.Any(), callerPrincipalID, gomock.Any()).
					Return(&Result{Outcome: OutcomeDuplicateEmail}, ErrDuplicateEmail)
			},
			expectedStatus:  http.StatusConflict,
			expectedOutcome: string(OutcomeDuplicateEmail),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockService := newTestRouter(t)
			tt.setupMocks(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/v0/users", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var resp httptypes.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if resp.Outcome != tt.expectedOutcome {
				t.Errorf("expected outcome %s, got %s", tt.expectedOutcome, resp.Outcome)
			}
		})
	}
}

func TestAPI_PartialSuccessBody(t *testing.T) {
	mux, mockService := newTestRouter(t)

	mockService.EXPECT().AddTeamMember(gomock.Any(), callerPrincipalID, gomock.Any()).
		Return(partial(OutcomeTeamLinkFailed, StepCreateTeamRelationship, "", newProfileID), ErrPartialSuccess)

	req := httptest.NewRequest(http.MethodPost, "/api/v0/teams/members", bytes.NewBufferString(`{"email":"a@x.com"}`))
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	var resp struct {
		Data Result `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Data.ProfileID != newProfileID {
		t.Errorf("expected profile %s, got %s", newProfileID, resp.Data.ProfileID)
	}

	if resp.Data.MissingStep != StepCreateTeamRelationship {
		t.Errorf("expected missing step %s, got %s", StepCreateTeamRelationship, resp.Data.MissingStep)
	}
}

func TestAPI_RoleRoutes(t *testing.T) {
	mux, mockService := newTestRouter(t)

	mockService.EXPECT().RetryRoleAssignment(gomock.Any(), callerPrincipalID, newProfileID, "agent").
		Return(&Result{Outcome: OutcomeSucceeded, ProfileID: newProfileID}, nil)
	mockService.EXPECT().RevokeRole(gomock.Any(), callerPrincipalID, newProfileID, "agent").
		Return(&Result{Outcome: OutcomeNotFound}, ErrRoleNotAssigned)
	mockService.EXPECT().RetryTeamLink(gomock.Any(), callerPrincipalID, "", newProfileID).
		Return(&Result{Outcome: OutcomeSucceeded, ProfileID: newProfileID}, nil)

	tests := []struct {
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{http.MethodPost, "/api/v0/users/" + newProfileID + "/roles", `{"role":"agent"}`, http.StatusOK},
		{http.MethodDelete, "/api/v0/users/" + newProfileID + "/roles/agent", "", http.StatusNotFound},
		{http.MethodPost, "/api/v0/teams/members/" + newProfileID + "/links", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
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
		{ErrProfileNotFound, http.StatusNotFound},
		{ErrRoleNotAssigned, http.StatusNotFound},
		{ErrDuplicateEmail, http.StatusConflict},
		{ErrCredentialCreationFailed, http.StatusBadGateway},
		{ErrProfileCreationFailed, http.StatusInternalServerError},
		{fmt.Errorf("%w: assign_role", ErrPartialSuccess), http.StatusMultiStatus},
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
