// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"net/http"

	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

type ServiceInterface interface {
	ProvisionUser(ctx context.Context, callerPrincipalID string, req *Request) (*Result, error)
	AddTeamMember(ctx context.Context, callerPrincipalID string, req *Request) (*Result, error)
	RetryRoleAssignment(ctx context.Context, callerPrincipalID, profileID, role string) (*Result, error)
	RetryTeamLink(ctx context.Context, callerPrincipalID, managerID, memberID string) (*Result, error)
	RevokeRole(ctx context.Context, callerPrincipalID, profileID, role string) (*Result, error)
}

type StorageInterface interface {
	GetOrganizationByID(ctx context.Context, id string) (*types.Organization, error)
	GetRoleByName(ctx context.Context, name string) (*types.Role, error)
	CreateProfile(ctx context.Context, p *types.Profile) (*types.Profile, error)
	GetProfileByID(ctx context.Context, id string) (*types.Profile, error)
	GetProfileByEmail(ctx context.Context, organizationID string, email string) (*types.Profile, error)
	ListProfilesByPrincipalID(ctx context.Context, principalID string) ([]*types.Profile, error)
	AssignRole(ctx context.Context, profileID string, roleID string, organizationID *string) (*types.RoleAssignment, error)
	RevokeRole(ctx context.Context, profileID string, roleID string) error
	CreateTeamRelationship(ctx context.Context, managerID string, memberID string) (*types.TeamRelationship, error)
}

type TxRunnerInterface interface {
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

type AuthzInterface interface {
	AssignRole(ctx context.Context, profileID, organizationID, role string) error
	RemoveRole(ctx context.Context, profileID, organizationID, role string) error
	AssignOrganizationMember(ctx context.Context, organizationID, profileID string) error
	LinkPrincipal(ctx context.Context, profileID, principalID string) error
	LinkTeamMember(ctx context.Context, managerID, memberID string) error
}

type IdentityProviderInterface interface {
	GetIdentityIDByEmail(ctx context.Context, email string) (string, error)
	CreateIdentity(ctx context.Context, email, password string) (string, error)
	DeleteIdentity(ctx context.Context, id string) error
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*access.Resolution, error)
	Invalidate(principalID string)
}

type AccessMiddlewareInterface interface {
	RequireRoles(allow ...access.Role) func(http.Handler) http.Handler
}
