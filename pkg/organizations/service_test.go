// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/erp-access-service/internal/storage"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

//go:generate mockgen -build_flags=--mod=mod -package organizations -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package organizations -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package organizations -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package organizations -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

const (
	callerPrincipalID = "principal-caller"
	callerProfileID   = "profile-caller"
	orgID             = "org-1"
	otherOrgID        = "org-2"
)

type testMocks struct {
	storage  *MockStorageInterface
	authz    *MockAuthzInterface
	resolver *MockResolverInterface
	logger   *MockLoggerInterface
	security *MockSecurityLoggerInterface
	tracer   *MockTracingInterface
	monitor  *MockMonitorInterface
}

func strPtr(s string) *string {
	return &s
}

func callerWith(org string, roles ...access.Role) *access.Resolution {
	res := &access.Resolution{
		Profile: &types.Profile{ID: callerProfileID, PrincipalID: strPtr(callerPrincipalID), OrganizationID: org, IsActive: true},
		Roles:   []access.Grant{},
	}

	for _, role := range roles {
		grant := access.Grant{Role: role, RoleName: role.String(), OrganizationID: strPtr(org)}
		if role == access.RoleSuperAdmin {
			grant.OrganizationID = nil
		}
		res.Roles = append(res.Roles, grant)
	}

	return res
}

func newTestService(t *testing.T) (*Service, *testMocks) {
	ctrl := gomock.NewController(t)

	m := &testMocks{
		storage:  NewMockStorageInterface(ctrl),
		authz:    NewMockAuthzInterface(ctrl),
		resolver: NewMockResolverInterface(ctrl),
		logger:   NewMockLoggerInterface(ctrl),
		security: NewMockSecurityLoggerInterface(ctrl),
		tracer:   NewMockTracingInterface(ctrl),
		monitor:  NewMockMonitorInterface(ctrl),
	}

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(
		func(ctx context.Context, _ string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
			return ctx, trace.SpanFromContext(ctx)
		},
	)
	m.logger.EXPECT().Security().AnyTimes().Return(m.security)

	return NewService(m.storage, m.authz, m.resolver, m.tracer, m.monitor, m.logger), m
}

func TestService_CreateOrganization(t *testing.T) {
	created := &types.Organization{ID: "org-new", Name: "Acme"}

	tests := []struct {
		name        string
		caller      string
		req         *Request
		setupMocks  func(*testMocks)
		expectedErr error
	}{
		{
			name:        "unauthenticated",
			caller:      "",
			req:         &Request{Name: "Acme"},
			setupMocks:  func(*testMocks) {},
			expectedErr: ErrUnauthenticated,
		},
		{
			name:   "hr manager cannot create",
			caller: callerPrincipalID,
			req:    &Request{Name: "Acme"},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleHRManager), nil)
				m.security.EXPECT().AuthzFailureInsufficientRoles(callerPrincipalID, "organizations.Create", []string{"hr_manager"})
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:   "blank name",
			caller: callerPrincipalID,
			req:    &Request{Name: "   "},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name:   "name too long",
			caller: callerPrincipalID,
			req:    &Request{Name: strings.Repeat("a", 129)},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name:   "duplicate name",
			caller: callerPrincipalID,
			req:    &Request{Name: "Acme"},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().CreateOrganization(gomock.Any(), "Acme").Return(nil, fmt.Errorf("%w", storage.ErrDuplicateKey))
			},
			expectedErr: ErrDuplicateOrganization,
		},
		{
			name:   "trimmed name is stored",
			caller: callerPrincipalID,
			req:    &Request{Name: "  Acme "},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().CreateOrganization(gomock.Any(), "Acme").Return(created, nil)
				m.logger.EXPECT().Infof(gomock.Any(), gomock.Any())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setupMocks(m)

			org, err := s.CreateOrganization(context.Background(), tt.caller, tt.req)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if org.ID != created.ID {
				t.Errorf("expected organization %s, got %s", created.ID, org.ID)
			}
		})
	}
}

func TestService_RenameOrganization(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		setupMocks  func(*testMocks)
		expectedErr error
	}{
		{
			name: "missing id",
			id:   "",
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name: "not found",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().RenameOrganization(gomock.Any(), otherOrgID, "Globex").Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrOrganizationNotFound,
		},
		{
			name: "renamed and caches dropped",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().RenameOrganization(gomock.Any(), otherOrgID, "Globex").Return(&types.Organization{ID: otherOrgID, Name: "Globex"}, nil)
				m.resolver.EXPECT().InvalidateAll()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setupMocks(m)

			_, err := s.RenameOrganization(context.Background(), callerPrincipalID, tt.id, &Request{Name: "Globex"})

			if tt.expectedErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestService_DeleteOrganization(t *testing.T) {
	dbErr := errors.New("db down")

	tests := []struct {
		name        string
		id          string
		setupMocks  func(*testMocks)
		expectedErr error
	}{
		{
			name: "executive cannot delete",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleExecutive), nil)
				m.security.EXPECT().AuthzFailureInsufficientRoles(callerPrincipalID, "organizations.Delete", []string{"executive"})
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name: "own organization",
			id:   orgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name: "not found",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID).Return(storage.ErrNotFound)
			},
			expectedErr: ErrOrganizationNotFound,
		},
		{
			name: "storage error",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID).Return(dbErr)
			},
			expectedErr: dbErr,
		},
		{
			name: "deleted",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID).Return(nil)
				m.authz.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID, gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, roles []string) error {
						if len(roles) != len(access.KnownRoles()) {
							t.Errorf("expected tuples of %d roles to be dropped, got %v", len(access.KnownRoles()), roles)
						}
						return nil
					},
				)
				m.resolver.EXPECT().InvalidateAll()
				m.logger.EXPECT().Infof(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "authz cleanup fails",
			id:   otherOrgID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID).Return(nil)
				m.authz.EXPECT().DeleteOrganization(gomock.Any(), otherOrgID, gomock.Any()).Return(errors.New("openfga down"))
				m.logger.EXPECT().Errorf(gomock.Any(), gomock.Any())
				m.resolver.EXPECT().InvalidateAll()
				m.logger.EXPECT().Infof(gomock.Any(), gomock.Any())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setupMocks(m)

			err := s.DeleteOrganization(context.Background(), callerPrincipalID, tt.id)

			if tt.expectedErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestService_ListOrganizations(t *testing.T) {
	orgs := []*types.Organization{{ID: orgID, Name: "Acme"}}

	tests := []struct {
		name        string
		req         *ListRequest
		setupMocks  func(*testMocks)
		expectedErr error
	}{
		{
			name: "unprovisioned caller",
			req:  nil,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(&access.Resolution{Roles: []access.Grant{}}, nil)
				m.security.EXPECT().AuthzFailureInsufficientRoles(callerPrincipalID, "organizations.List", []string{})
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name: "super admin lists everything",
			req:  nil,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().ListOrganizations(gomock.Any(), gomock.Nil(), int64(0), int64(0)).Return(orgs, nil)
			},
		},
		{
			name: "employee lists own organizations",
			req:  &ListRequest{Page: 2, Size: 10},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleEmployee), nil)
				m.storage.EXPECT().ListOrganizations(gomock.Any(), []string{orgID}, int64(2), int64(10)).Return(orgs, nil)
			},
		},
		{
			name: "size over limit",
			req:  &ListRequest{Size: 500},
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleEmployee), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setupMocks(m)

			got, err := s.ListOrganizations(context.Background(), callerPrincipalID, tt.req)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(orgs) {
				t.Errorf("expected %d organizations, got %d", len(orgs), len(got))
			}
		})
	}
}

func TestService_ListMembers(t *testing.T) {
	profiles := []*types.Profile{{ID: "profile-1", OrganizationID: otherOrgID}}

	tests := []struct {
		name        string
		caller      *access.Resolution
		setupMocks  func(*testMocks)
		expectedErr error
	}{
		{
			name:   "hr manager of another organization",
			caller: callerWith(orgID, access.RoleHRManager),
			setupMocks: func(m *testMocks) {
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "organization:"+otherOrgID)
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name: "membership without a viewing role in the organization",
			caller: &access.Resolution{
				Profile: &types.Profile{ID: callerProfileID, OrganizationID: otherOrgID, IsActive: true},
				Roles: []access.Grant{
					{Role: access.RoleAgent, RoleName: "agent", OrganizationID: strPtr(otherOrgID)},
					{Role: access.RoleHRManager, RoleName: "hr_manager", OrganizationID: strPtr(orgID)},
				},
			},
			setupMocks: func(m *testMocks) {
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "organization:"+otherOrgID)
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:   "executive holding a role in the organization",
			caller: &access.Resolution{
				Profile: &types.Profile{ID: callerProfileID, OrganizationID: orgID, IsActive: true},
				Roles:   []access.Grant{{Role: access.RoleExecutive, RoleName: "executive", OrganizationID: strPtr(otherOrgID)}},
			},
			setupMocks: func(m *testMocks) {
				m.storage.EXPECT().ListProfilesByOrganizationID(gomock.Any(), otherOrgID, int64(0), int64(0)).Return(profiles, nil)
			},
		},
		{
			name:   "super admin",
			caller: callerWith(orgID, access.RoleSuperAdmin),
			setupMocks: func(m *testMocks) {
				m.storage.EXPECT().ListProfilesByOrganizationID(gomock.Any(), otherOrgID, int64(0), int64(0)).Return(profiles, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(tt.caller, nil)
			tt.setupMocks(m)

			got, err := s.ListMembers(context.Background(), callerPrincipalID, otherOrgID, nil)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(profiles) {
				t.Errorf("expected %d members, got %d", len(profiles), len(got))
			}
		})
	}
}
