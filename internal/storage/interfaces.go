// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/erp-access-service/internal/types"
)

type StorageInterface interface {
	GetOrganizationByID(ctx context.Context, id string) (*types.Organization, error)
	CreateOrganization(ctx context.Context, name string) (*types.Organization, error)
	ListOrganizations(ctx context.Context, ids []string, page int64, size int64) ([]*types.Organization, error)
	RenameOrganization(ctx context.Context, id string, name string) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	GetRoleByName(ctx context.Context, name string) (*types.Role, error)

	CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*types.Profile, error)
	GetProfileByEmail(ctx context.Context, organizationID string, email string) (*types.Profile, error)
	ListProfilesByPrincipalID(ctx context.Context, principalID string) ([]*types.Profile, error)
	ListPendingProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	ListProfilesByOrganizationID(ctx context.Context, organizationID string, page int64, size int64) ([]*types.Profile, error)
	LinkPrincipal(ctx context.Context, profileID string, principalID string) error
	SetProfileActive(ctx context.Context, id string, active bool) error

	AssignRole(ctx context.Context, profileID string, roleID string, organizationID *string) (*types.RoleAssignment, error)
	RevokeRole(ctx context.Context, profileID string, roleID string) error
	ListRoleGrantsByPrincipalID(ctx context.Context, principalID string) ([]*types.RoleGrant, error)

	CreateTeamRelationship(ctx context.Context, managerID string, memberID string) (*types.TeamRelationship, error)
	GetTeamRelationship(ctx context.Context, managerID string, memberID string) (*types.TeamRelationship, error)
	SetTeamRelationshipsActive(ctx context.Context, memberID string, active bool) (int64, error)
	ListTeamMembers(ctx context.Context, managerID string, page int64, size int64) ([]*types.TeamMember, error)
}
