// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ory/hydra/v2/oauth2"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/erp-access-service/internal/db"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package webhooks -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func TestService_HandleRegistration(t *testing.T) {
	identityID := "identity-123"
	email := "user@example.com"
	pending := []*types.Profile{
		{ID: "profile-1", Email: email, OrganizationID: "org-1", IsActive: true},
		{ID: "profile-2", Email: email, OrganizationID: "org-2", IsActive: true},
	}

	testCases := []struct {
		name        string
		identityID  string
		email       string
		setupMocks  func(*MockStorageInterface, *MockAuthorizerInterface, *MockResolverInterface, *MockLoggerInterface, *MockSecurityLoggerInterface)
		expectedErr bool
	}{
		{
			name:       "success - links every pending profile",
			identityID: identityID,
			email:      "User@Example.com",
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), email).Return(pending, nil)
				for _, p := range pending {
					mockStorage.EXPECT().LinkPrincipal(gomock.Any(), p.ID, identityID).Return(nil)
					mockAuthz.EXPECT().LinkPrincipal(gomock.Any(), p.ID, identityID).Return(nil)
					mockSecurity.EXPECT().UserUpdated("system", p.ID, "principal_linked")
				}
				mockResolver.EXPECT().Invalidate(identityID)
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:       "success - no pending profiles",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), email).Return(nil, nil)
				mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any())
			},
			expectedErr: false,
		},
		{
			name:       "error - empty identity id",
			identityID: "",
			email:      email,
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: true,
		},
		{
			name:       "error - empty email",
			identityID: identityID,
			email:      "",
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
			},
			expectedErr: true,
		},
		{
			name:       "error - failed to list profiles",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), email).Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
		{
			name:       "error - failed to link profile",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), email).Return(pending, nil)
				mockStorage.EXPECT().LinkPrincipal(gomock.Any(), "profile-1", identityID).Return(errors.New("storage error"))
			},
			expectedErr: true,
		},
		{
			name:       "error - failed to write tuple",
			identityID: identityID,
			email:      email,
			setupMocks: func(mockStorage *MockStorageInterface, mockAuthz *MockAuthorizerInterface, mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface, mockSecurity *MockSecurityLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
				mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), email).Return(pending, nil)
				mockStorage.EXPECT().LinkPrincipal(gomock.Any(), "profile-1", identityID).Return(nil)
				mockAuthz.EXPECT().LinkPrincipal(gomock.Any(), "profile-1", identityID).Return(errors.New("authz error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAuthz := NewMockAuthorizerInterface(ctrl)
			mockResolver := NewMockResolverInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockSecurity := NewMockSecurityLoggerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)

			s := NewService(mockStorage, mockAuthz, mockResolver, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleRegistration").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
			tc.setupMocks(mockStorage, mockAuthz, mockResolver, mockLogger, mockSecurity)

			err := s.HandleRegistration(context.Background(), tc.identityID, tc.email)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestService_HandleRegistrationInvalidatesAfterCommit(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockStorage := NewMockStorageInterface(ctrl)
	mockAuthz := NewMockAuthorizerInterface(ctrl)
	mockResolver := NewMockResolverInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)
	mockSecurity := NewMockSecurityLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any(), gomock.Any())
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any(), gomock.Any())
	mockLogger.EXPECT().Security().Return(mockSecurity).AnyTimes()
	mockSecurity.EXPECT().UserUpdated("system", "profile-1", "principal_linked")
	mockStorage.EXPECT().ListPendingProfilesByEmail(gomock.Any(), "user@example.com").
		Return([]*types.Profile{{ID: "profile-1", Email: "user@example.com", OrganizationID: "org-1"}}, nil)
	mockStorage.EXPECT().LinkPrincipal(gomock.Any(), "profile-1", "identity-123").Return(nil)
	mockAuthz.EXPECT().LinkPrincipal(gomock.Any(), "profile-1", "identity-123").Return(nil)

	invalidated := false
	mockResolver.EXPECT().Invalidate("identity-123").Do(func(string) { invalidated = true })

	s := NewService(mockStorage, mockAuthz, mockResolver, mockTracer, NewMockMonitorInterface(ctrl), mockLogger)

	err := new(db.DBClient).WithTx(context.Background(), func(ctx context.Context) error {
		if err := s.HandleRegistration(ctx, "identity-123", "user@example.com"); err != nil {
			return err
		}

		if invalidated {
			t.Error("expected the cached resolution to outlive the open transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !invalidated {
		t.Error("expected the cached resolution to be dropped after commit")
	}
}

func TestService_HandleTokenHook(t *testing.T) {
	userID := "user-123"
	orgID := "org-1"
	resolution := &access.Resolution{
		Profile: &types.Profile{ID: "profile-1", PrincipalID: &userID, OrganizationID: orgID, IsActive: true},
		Roles: []access.Grant{
			{Role: access.RoleHRManager, RoleName: "hr_manager", OrganizationID: &orgID},
			{Role: access.RoleSuperAdmin, RoleName: "super_admin"},
		},
	}

	testCases := []struct {
		name         string
		request      *oauth2.TokenHookRequest
		setupMocks   func(*MockResolverInterface, *MockLoggerInterface)
		expectedErr  bool
		validateResp func(*testing.T, *TokenHookResponse)
	}{
		{
			name: "success - user with roles",
			request: &oauth2.TokenHookRequest{
				Session: oauth2.NewSession(userID),
			},
			setupMocks: func(mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).Times(2)
				mockResolver.EXPECT().Resolve(gomock.Any(), userID).Return(resolution, nil)
			},
			expectedErr: false,
			validateResp: func(t *testing.T, resp *TokenHookResponse) {
				if resp == nil {
					t.Fatal("expected response but got nil")
				}
				if !reflect.DeepEqual(resp.Session.IDToken[RolesClaim], []string{"hr_manager", "super_admin"}) {
					t.Errorf("unexpected roles in ID token %v", resp.Session.IDToken[RolesClaim])
				}
				if !reflect.DeepEqual(resp.Session.AccessToken[RolesClaim], []string{"hr_manager", "super_admin"}) {
					t.Errorf("unexpected roles in access token %v", resp.Session.AccessToken[RolesClaim])
				}
				if !reflect.DeepEqual(resp.Session.IDToken[OrganizationsClaim], []string{orgID}) {
					t.Errorf("unexpected organizations in ID token %v", resp.Session.IDToken[OrganizationsClaim])
				}
			},
		},
		{
			name: "success - unprovisioned user",
			request: &oauth2.TokenHookRequest{
				Session: oauth2.NewSession(userID),
			},
			setupMocks: func(mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).Times(2)
				mockResolver.EXPECT().Resolve(gomock.Any(), userID).Return(&access.Resolution{Roles: []access.Grant{}}, nil)
			},
			expectedErr: false,
			validateResp: func(t *testing.T, resp *TokenHookResponse) {
				if resp == nil {
					t.Fatal("expected response but got nil")
				}
				if resp.Session.IDToken[RolesClaim] != nil {
					t.Error("expected no roles key in ID token for empty list")
				}
				if resp.Session.AccessToken[OrganizationsClaim] != nil {
					t.Error("expected no organizations key in access token for empty list")
				}
			},
		},
		{
			name: "error - no user id in session",
			request: &oauth2.TokenHookRequest{
				Session: oauth2.NewSession(""),
			},
			setupMocks: func(mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedErr: true,
		},
		{
			name:    "error - nil session",
			request: &oauth2.TokenHookRequest{},
			setupMocks: func(mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
			},
			expectedErr: true,
		},
		{
			name: "error - resolver error",
			request: &oauth2.TokenHookRequest{
				Session: oauth2.NewSession(userID),
			},
			setupMocks: func(mockResolver *MockResolverInterface, mockLogger *MockLoggerInterface) {
				mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any())
				mockResolver.EXPECT().Resolve(gomock.Any(), userID).Return(nil, errors.New("storage error"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockAuthz := NewMockAuthorizerInterface(ctrl)
			mockResolver := NewMockResolverInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)

			s := NewService(mockStorage, mockAuthz, mockResolver, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "webhooks.Service.HandleTokenHook").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockResolver, mockLogger)

			resp, err := s.HandleTokenHook(context.Background(), tc.request)

			if tc.expectedErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tc.validateResp != nil {
				tc.validateResp(t, resp)
			}
		})
	}
}
