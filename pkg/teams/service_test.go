// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/erp-access-service/internal/storage"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

//go:generate mockgen -build_flags=--mod=mod -package teams -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package teams -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package teams -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package teams -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

const (
	callerPrincipalID = "principal-caller"
	callerProfileID   = "profile-caller"
	memberPrincipalID = "principal-member"
	memberProfileID   = "profile-member"
	orgID             = "org-1"
	otherOrgID        = "org-2"
)

type testMocks struct {
	storage  *MockStorageInterface
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

// splitCaller has its profile in profileOrg where it is only an agent, and
// holds role in roleOrg.
func splitCaller(profileOrg, roleOrg string, role access.Role) *access.Resolution {
	res := callerWith(profileOrg, access.RoleAgent)
	res.Roles = append(res.Roles, access.Grant{Role: role, RoleName: role.String(), OrganizationID: strPtr(roleOrg)})
	return res
}

func member(org string, principalID *string) *types.Profile {
	return &types.Profile{ID: memberProfileID, PrincipalID: principalID, OrganizationID: org, IsActive: true}
}

func newTestService(t *testing.T) (*Service, *testMocks) {
	ctrl := gomock.NewController(t)

	m := &testMocks{
		storage:  NewMockStorageInterface(ctrl),
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

	return NewService(m.storage, m.resolver, m.tracer, m.monitor, m.logger), m
}

func TestService_Deactivate(t *testing.T) {
	tests := []struct {
		name        string
		caller      string
		memberID    string
		setupMocks  func(*testMocks)
		expected    *Result
		expectedErr error
	}{
		{
			name:        "unauthenticated",
			caller:      "",
			memberID:    memberProfileID,
			setupMocks:  func(*testMocks) {},
			expectedErr: ErrUnauthenticated,
		},
		{
			name:     "caller not resolved",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(nil, errors.New("no profile"))
			},
			expectedErr: ErrAccessPending,
		},
		{
			name:     "agent cannot deactivate",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleAgent), nil)
				m.security.EXPECT().AuthzFailureInsufficientRoles(callerPrincipalID, "teams.Deactivate", []string{"agent"})
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:     "missing member id",
			caller:   callerPrincipalID,
			memberID: "",
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSalesManager), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name:     "cannot deactivate self",
			caller:   callerPrincipalID,
			memberID: callerProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSalesManager), nil)
			},
			expectedErr: ErrInvalidRequest,
		},
		{
			name:     "member not found",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSalesManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(nil, storage.ErrNotFound)
			},
			expectedErr: ErrMemberNotFound,
		},
		{
			name:     "member in another organization",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleHRManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(otherOrgID, nil), nil)
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "teams.Deactivate")
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:     "hr manager grant does not reach the caller home organization",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(splitCaller(otherOrgID, orgID, access.RoleHRManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(otherOrgID, strPtr(memberPrincipalID)), nil)
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "teams.Deactivate")
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:     "hr manager deactivates a member in the organization of the grant",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(splitCaller(otherOrgID, orgID, access.RoleHRManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, strPtr(memberPrincipalID)), nil)
				m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, false).Return(int64(1), nil)
				m.storage.EXPECT().SetProfileActive(gomock.Any(), memberProfileID, false).Return(nil)
				m.security.EXPECT().UserUpdated(callerPrincipalID, memberProfileID, "deactivated")
				m.resolver.EXPECT().Invalidate(memberPrincipalID)
			},
			expected: &Result{MemberID: memberProfileID, Active: false, RelationshipsUpdated: 1, ProfileUpdated: true},
		},
		{
			name:     "manager outside own team",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSalesManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, nil), nil)
				m.storage.EXPECT().GetTeamRelationship(gomock.Any(), callerProfileID, memberProfileID).Return(nil, storage.ErrNotFound)
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "teams.Deactivate")
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:     "relationship update fails",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleHRManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, strPtr(memberPrincipalID)), nil)
				m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, false).Return(int64(0), errors.New("db down"))
			},
			expectedErr: ErrRelationshipUpdateFailed,
		},
		{
			name:     "profile update fails after relationships",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleHRManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, strPtr(memberPrincipalID)), nil)
				m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, false).Return(int64(2), nil)
				m.storage.EXPECT().SetProfileActive(gomock.Any(), memberProfileID, false).Return(errors.New("db down"))
				m.logger.EXPECT().Errorw("profile update failed after team relationships were updated", gomock.Any())
				m.resolver.EXPECT().Invalidate(memberPrincipalID)
			},
			expected:    &Result{MemberID: memberProfileID, Active: false, RelationshipsUpdated: 2, ProfileUpdated: false},
			expectedErr: ErrProfileUpdateFailed,
		},
		{
			name:     "manager deactivates own team member",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleMarketingManager), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, strPtr(memberPrincipalID)), nil)
				m.storage.EXPECT().GetTeamRelationship(gomock.Any(), callerProfileID, memberProfileID).
					Return(&types.TeamRelationship{ManagerID: callerProfileID, MemberID: memberProfileID, IsActive: true}, nil)
				m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, false).Return(int64(1), nil)
				m.storage.EXPECT().SetProfileActive(gomock.Any(), memberProfileID, false).Return(nil)
				m.security.EXPECT().UserUpdated(callerPrincipalID, memberProfileID, "deactivated")
				m.resolver.EXPECT().Invalidate(memberPrincipalID)
			},
			expected: &Result{MemberID: memberProfileID, Active: false, RelationshipsUpdated: 1, ProfileUpdated: true},
		},
		{
			name:     "super admin deactivates pending member across organizations",
			caller:   callerPrincipalID,
			memberID: memberProfileID,
			setupMocks: func(m *testMocks) {
				m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleSuperAdmin), nil)
				m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(otherOrgID, nil), nil)
				m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, false).Return(int64(0), nil)
				m.storage.EXPECT().SetProfileActive(gomock.Any(), memberProfileID, false).Return(nil)
				m.security.EXPECT().UserUpdated(callerPrincipalID, memberProfileID, "deactivated")
			},
			expected: &Result{MemberID: memberProfileID, Active: false, RelationshipsUpdated: 0, ProfileUpdated: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			tt.setupMocks(m)

			result, err := s.Deactivate(context.Background(), tt.caller, tt.memberID)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected no result, got %+v", result)
				}
				return
			}

			if result == nil || *result != *tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestService_Reactivate(t *testing.T) {
	s, m := newTestService(t)

	m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(callerWith(orgID, access.RoleHRManager), nil)
	m.storage.EXPECT().GetProfileByID(gomock.Any(), memberProfileID).Return(member(orgID, strPtr(memberPrincipalID)), nil)
	m.storage.EXPECT().SetTeamRelationshipsActive(gomock.Any(), memberProfileID, true).Return(int64(3), nil)
	m.storage.EXPECT().SetProfileActive(gomock.Any(), memberProfileID, true).Return(nil)
	m.security.EXPECT().UserUpdated(callerPrincipalID, memberProfileID, "reactivated")
	m.resolver.EXPECT().Invalidate(memberPrincipalID)

	result, err := s.Reactivate(context.Background(), callerPrincipalID, memberProfileID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Active || !result.ProfileUpdated || result.RelationshipsUpdated != 3 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestService_ListMembers(t *testing.T) {
	members := []*types.TeamMember{
		{Relationship: types.TeamRelationship{ManagerID: callerProfileID, MemberID: memberProfileID}, Profile: *member(orgID, nil)},
	}

	tests := []struct {
		name        string
		caller      *access.Resolution
		req         *ListRequest
		setupMocks  func(*testMocks)
		expectedLen int
		expectedErr error
	}{
		{
			name:   "own team with defaults",
			caller: callerWith(orgID, access.RoleSalesManager),
			req:    nil,
			setupMocks: func(m *testMocks) {
				m.storage.EXPECT().ListTeamMembers(gomock.Any(), callerProfileID, int64(0), int64(0)).Return(members, nil)
			},
			expectedLen: 1,
		},
		{
			name:        "page size over limit",
			caller:      callerWith(orgID, access.RoleSalesManager),
			req:         &ListRequest{Size: 500},
			setupMocks:  func(*testMocks) {},
			expectedErr: ErrInvalidRequest,
		},
		{
			name:   "manager cannot list another team",
			caller: callerWith(orgID, access.RoleSalesManager),
			req:    &ListRequest{ManagerID: "profile-other"},
			setupMocks: func(m *testMocks) {
				m.security.EXPECT().AuthzFailure(callerPrincipalID, "team:profile-other")
			},
			expectedErr: ErrUnauthorized,
		},
		{
			name:   "super admin lists another team",
			caller: callerWith(orgID, access.RoleSuperAdmin),
			req:    &ListRequest{ManagerID: "profile-other", Page: 2, Size: 10},
			setupMocks: func(m *testMocks) {
				m.storage.EXPECT().ListTeamMembers(gomock.Any(), "profile-other", int64(2), int64(10)).Return(members, nil)
			},
			expectedLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, m := newTestService(t)
			m.resolver.EXPECT().Resolve(gomock.Any(), callerPrincipalID).Return(tt.caller, nil)
			tt.setupMocks(m)

			result, err := s.ListMembers(context.Background(), callerPrincipalID, tt.req)

			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected error %v, got %v", tt.expectedErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result) != tt.expectedLen {
				t.Errorf("expected %d members, got %d", tt.expectedLen, len(result))
			}
		})
	}
}
