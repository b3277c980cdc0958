// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"errors"
	"fmt"
	"testing"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/mock/gomock"
)

//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_interfaces.go -source=./interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_logger.go -source=../logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_monitor.go -source=../monitoring/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package authorization -destination ./mock_tracing.go -source=../tracing/interfaces.go

func TestAuthorizer_ValidateModel(t *testing.T) {
	testCases := []struct {
		name        string
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr error
	}{
		{
			name: "success - models match",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			expectedErr: nil,
		},
		{
			name: "error - models do not match",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			expectedErr: ErrInvalidAuthModel,
		},
		{
			name: "error - client error",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().CompareModel(gomock.Any(), gomock.Any()).Return(false, errors.New("client error"))
			},
			expectedErr: errors.New("client error"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := NewMockAuthzClientInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockMonitor := NewMockMonitorInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			a := NewAuthorizer(mockClient, mockTracer, mockMonitor, mockLogger)

			mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.ValidateModel").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			tc.setupMocks(mockClient)

			err := a.ValidateModel(context.Background())

			if tc.expectedErr != nil {
				if err == nil {
					t.Errorf("expected error %v but got none", tc.expectedErr)
				} else if tc.expectedErr == ErrInvalidAuthModel && err != ErrInvalidAuthModel {
					t.Errorf("expected ErrInvalidAuthModel but got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAuthorizer_TupleWrites(t *testing.T) {
	profileID := "profile-123"
	principalID := "principal-456"
	managerID := "profile-789"
	organizationID := "org-1"

	testCases := []struct {
		name       string
		spanName   string
		setupMocks func(*MockAuthzClientInterface, error)
		call       func(*Authorizer) error
	}{
		{
			name:     "assign organization role",
			spanName: "authorization.Authorizer.AssignRole",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "profile:profile-123", ASSIGNEE_RELATION, "role:org-1/hr_manager").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.AssignRole(context.Background(), profileID, organizationID, "hr_manager")
			},
		},
		{
			name:     "assign global role",
			spanName: "authorization.Authorizer.AssignRole",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "profile:profile-123", ASSIGNEE_RELATION, "role:global/super_admin").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.AssignRole(context.Background(), profileID, "", "super_admin")
			},
		},
		{
			name:     "remove role",
			spanName: "authorization.Authorizer.RemoveRole",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().DeleteTuple(gomock.Any(), "profile:profile-123", ASSIGNEE_RELATION, "role:org-1/agent").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.RemoveRole(context.Background(), profileID, organizationID, "agent")
			},
		},
		{
			name:     "organization member",
			spanName: "authorization.Authorizer.AssignOrganizationMember",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "profile:profile-123", MEMBER_RELATION, "organization:org-1").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.AssignOrganizationMember(context.Background(), organizationID, profileID)
			},
		},
		{
			name:     "link principal",
			spanName: "authorization.Authorizer.LinkPrincipal",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "user:principal-456", PRINCIPAL_RELATION, "profile:profile-123").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.LinkPrincipal(context.Background(), profileID, principalID)
			},
		},
		{
			name:     "link team member",
			spanName: "authorization.Authorizer.LinkTeamMember",
			setupMocks: func(mockClient *MockAuthzClientInterface, err error) {
				mockClient.EXPECT().WriteTuple(gomock.Any(), "profile:profile-789", MANAGER_RELATION, "profile:profile-123").Return(err)
			},
			call: func(a *Authorizer) error {
				return a.LinkTeamMember(context.Background(), managerID, profileID)
			},
		},
	}

	for _, tc := range testCases {
		for _, clientErr := range []error{nil, errors.New("write error")} {
			t.Run(fmt.Sprintf("%s - error %v", tc.name, clientErr), func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				mockClient := NewMockAuthzClientInterface(ctrl)
				mockTracer := NewMockTracingInterface(ctrl)
				mockMonitor := NewMockMonitorInterface(ctrl)
				mockLogger := NewMockLoggerInterface(ctrl)

				a := NewAuthorizer(mockClient, mockTracer, mockMonitor, mockLogger)

				mockTracer.EXPECT().Start(gomock.Any(), tc.spanName).
					Return(context.Background(), trace.SpanFromContext(context.Background()))
				tc.setupMocks(mockClient, clientErr)

				err := tc.call(a)

				if clientErr != nil && err == nil {
					t.Error("expected error but got none")
				} else if clientErr == nil && err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	}
}

func TestAuthorizationModelProvider_GetModel(t *testing.T) {
	model := NewAuthorizationModelProvider("v0").GetModel()

	if model.SchemaVersion != "1.1" {
		t.Errorf("expected schema version 1.1, got %s", model.SchemaVersion)
	}

	types := make(map[string]bool)
	for _, td := range model.TypeDefinitions {
		types[td.Type] = true
	}

	for _, expected := range []string{"user", "organization", "profile", ROLE_TYPE} {
		if !types[expected] {
			t.Errorf("expected type %s in model", expected)
		}
	}
}

func TestRoleTuple(t *testing.T) {
	if got := RoleTuple("", "super_admin"); got != "role:global/super_admin" {
		t.Errorf("unexpected global role tuple %s", got)
	}
	if got := RoleTuple("org-1", "agent"); got != "role:org-1/agent" {
		t.Errorf("unexpected role tuple %s", got)
	}
}

func TestAuthorizer_DeleteOrganization(t *testing.T) {
	orgObject := OrganizationTuple("org-1")
	roleObject := RoleTuple("org-1", "agent")

	page := func(token string, tuples ...fga.TupleKey) *client.ClientReadResponse {
		r := &client.ClientReadResponse{ContinuationToken: token, Tuples: []fga.Tuple{}}
		for _, k := range tuples {
			r.Tuples = append(r.Tuples, fga.Tuple{Key: k})
		}
		return r
	}

	testCases := []struct {
		name        string
		setupMocks  func(*MockAuthzClientInterface)
		expectedErr bool
	}{
		{
			name: "members and assignees dropped across pages",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				gomock.InOrder(
					mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", orgObject, "").
						Return(page("next", fga.TupleKey{User: "profile:p-1", Relation: MEMBER_RELATION, Object: orgObject}), nil),
					mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Len(1)).Return(nil),
					mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", orgObject, "next").
						Return(page("", fga.TupleKey{User: "profile:p-2", Relation: MEMBER_RELATION, Object: orgObject}), nil),
					mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Len(1)).Return(nil),
					mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", roleObject, "").
						Return(page("",
							fga.TupleKey{User: "profile:p-1", Relation: ASSIGNEE_RELATION, Object: roleObject},
							fga.TupleKey{User: "profile:p-2", Relation: ASSIGNEE_RELATION, Object: roleObject},
						), nil),
					mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Len(2)).Return(nil),
				)
			},
		},
		{
			name: "nothing to drop",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", orgObject, "").Return(page(""), nil)
				mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", roleObject, "").Return(page(""), nil)
			},
		},
		{
			name: "read fails",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", orgObject, "").Return(nil, errors.New("openfga down"))
			},
			expectedErr: true,
		},
		{
			name: "delete fails",
			setupMocks: func(mockClient *MockAuthzClientInterface) {
				mockClient.EXPECT().ReadTuples(gomock.Any(), "", "", orgObject, "").
					Return(page("", fga.TupleKey{User: "profile:p-1", Relation: MEMBER_RELATION, Object: orgObject}), nil)
				mockClient.EXPECT().DeleteTuples(gomock.Any(), gomock.Any()).Return(errors.New("openfga down"))
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockClient := NewMockAuthzClientInterface(ctrl)
			mockTracer := NewMockTracingInterface(ctrl)
			mockLogger := NewMockLoggerInterface(ctrl)

			mockTracer.EXPECT().Start(gomock.Any(), "authorization.Authorizer.DeleteOrganization").
				Return(context.Background(), trace.SpanFromContext(context.Background()))
			mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
			tc.setupMocks(mockClient)

			a := NewAuthorizer(mockClient, mockTracer, NewMockMonitorInterface(ctrl), mockLogger)
			err := a.DeleteOrganization(context.Background(), "org-1", []string{"agent"})

			if tc.expectedErr && err == nil {
				t.Error("expected error but got none")
			} else if !tc.expectedErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
