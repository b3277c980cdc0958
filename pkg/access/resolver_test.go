// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"

	"github.com/canonical/erp-access-service/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_logger.go -source=../../internal/logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_monitor.go -source=../../internal/monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package access -destination ./mock_tracing.go -source=../../internal/tracing/interfaces.go

func strPtr(s string) *string {
	return &s
}

func TestResolver_Resolve(t *testing.T) {
	principalID := "principal-1"
	active := &types.Profile{ID: "profile-1", PrincipalID: strPtr(principalID), OrganizationID: "org-1", IsActive: true}
	inactive := &types.Profile{ID: "profile-0", PrincipalID: strPtr(principalID), OrganizationID: "org-0", IsActive: false}

	tests := []struct {
		name          string
		principalID   string
		setupMocks    func(*MockStorageInterface, *MockLoggerInterface)
		expected      *Resolution
		expectedError bool
	}{
		{
			name:        "empty principal resolves to nothing",
			principalID: "",
			setupMocks:  func(*MockStorageInterface, *MockLoggerInterface) {},
			expected:    &Resolution{Profile: nil, Roles: []Grant{}},
		},
		{
			name:        "unprovisioned principal",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{}, nil)
			},
			expected: &Resolution{Profile: nil, Roles: []Grant{}},
		},
		{
			name:        "organization and global roles",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{active}, nil)
				s.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return([]*types.RoleGrant{
					{ProfileID: active.ID, RoleName: "agent", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")},
					{ProfileID: active.ID, RoleName: "super_admin"},
				}, nil)
			},
			expected: &Resolution{
				Profile: active,
				Roles: []Grant{
					{Role: RoleAgent, RoleName: "agent", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")},
					{Role: RoleSuperAdmin, RoleName: "super_admin"},
				},
			},
		},
		{
			name:        "unknown role is kept and logged",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, l *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{active}, nil)
				s.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return([]*types.RoleGrant{
					{ProfileID: active.ID, RoleName: "janitor", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")},
				}, nil)
				l.EXPECT().Warnf(gomock.Any(), gomock.Any()).Times(1)
			},
			expected: &Resolution{
				Profile: active,
				Roles: []Grant{
					{Role: RoleUnknown, RoleName: "janitor", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")},
				},
			},
		},
		{
			name:        "active profile is preferred",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{inactive, active}, nil)
				s.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return([]*types.RoleGrant{}, nil)
			},
			expected: &Resolution{Profile: active, Roles: []Grant{}},
		},
		{
			name:        "deactivated profile has no roles",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{inactive}, nil)
				s.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return([]*types.RoleGrant{}, nil)
			},
			expected: &Resolution{Profile: inactive, Roles: []Grant{}},
		},
		{
			name:        "profile lookup error",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
		{
			name:        "grant lookup error",
			principalID: principalID,
			setupMocks: func(s *MockStorageInterface, _ *MockLoggerInterface) {
				s.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{active}, nil)
				s.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "access.Resolver.Resolve").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tt.setupMocks(mockStorage, mockLogger)

			r := NewResolver(mockStorage, 0, mockTracer, mockMonitor, mockLogger)
			defer r.Close()

			res, err := r.Resolve(context.Background(), tt.principalID)

			if tt.expectedError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(res, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, res)
			}

			if res.Roles == nil {
				t.Error("roles must never be nil")
			}
		})
	}
}

func TestResolver_ResolveIsIdempotent(t *testing.T) {
	principalID := "principal-1"
	profile := &types.Profile{ID: "profile-1", PrincipalID: strPtr(principalID), IsActive: true}
	grants := []*types.RoleGrant{{ProfileID: profile.ID, RoleName: "hr_manager", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")}}

	tests := []struct {
		name          string
		ttl           time.Duration
		expectedLoads int
	}{
		{name: "cached", ttl: time.Minute, expectedLoads: 1},
		{name: "uncached", ttl: 0, expectedLoads: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStorage := NewMockStorageInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "access.Resolver.Resolve").
				Return(context.Background(), trace.SpanFromContext(context.Background())).Times(2)
			mockStorage.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{profile}, nil).Times(tt.expectedLoads)
			mockStorage.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return(grants, nil).Times(tt.expectedLoads)

			r := NewResolver(mockStorage, tt.ttl, mockTracer, mockMonitor, mockLogger)
			defer r.Close()

			first, err := r.Resolve(context.Background(), principalID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			second, err := r.Resolve(context.Background(), principalID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !reflect.DeepEqual(first, second) {
				t.Errorf("expected identical resolutions, got %+v and %+v", first, second)
			}
		})
	}
}

func TestResolver_Invalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	principalID := "principal-1"
	profile := &types.Profile{ID: "profile-1", PrincipalID: strPtr(principalID), IsActive: true}

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), "access.Resolver.Resolve").
		Return(context.Background(), trace.SpanFromContext(context.Background())).Times(2)

	gomock.InOrder(
		mockStorage.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{}, nil),
		mockStorage.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{profile}, nil),
	)
	mockStorage.EXPECT().ListRoleGrantsByPrincipalID(gomock.Any(), principalID).Return([]*types.RoleGrant{
		{ProfileID: profile.ID, RoleName: "employee", OrganizationID: strPtr("org-1"), OrganizationName: strPtr("org1")},
	}, nil)

	r := NewResolver(mockStorage, time.Hour, mockTracer, mockMonitor, mockLogger)
	defer r.Close()

	before, err := r.Resolve(context.Background(), principalID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.Profile != nil {
		t.Fatalf("expected unprovisioned principal, got %+v", before.Profile)
	}

	r.Invalidate(principalID)

	after, err := r.Resolve(context.Background(), principalID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.Profile == nil || !after.HasRole(RoleEmployee) {
		t.Errorf("expected fresh resolution after invalidation, got %+v", after)
	}
}

func TestResolver_InvalidateAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStorage := NewMockStorageInterface(ctrl)
	mockTracer := NewMockTracingInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockLogger := NewMockLoggerInterface(ctrl)

	mockTracer.EXPECT().Start(gomock.Any(), "access.Resolver.Resolve").
		Return(context.Background(), trace.SpanFromContext(context.Background())).Times(4)

	for _, principalID := range []string{"principal-1", "principal-2"} {
		mockStorage.EXPECT().ListProfilesByPrincipalID(gomock.Any(), principalID).Return([]*types.Profile{}, nil).Times(2)
	}

	r := NewResolver(mockStorage, time.Hour, mockTracer, mockMonitor, mockLogger)
	defer r.Close()

	for _, principalID := range []string{"principal-1", "principal-2"} {
		if _, err := r.Resolve(context.Background(), principalID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	r.InvalidateAll()

	for _, principalID := range []string{"principal-1", "principal-2"} {
		if _, err := r.Resolve(context.Background(), principalID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}
