// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

import (
	"context"
	"net/http"

	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

type ServiceInterface interface {
	Deactivate(ctx context.Context, callerPrincipalID, memberID string) (*Result, error)
	Reactivate(ctx context.Context, callerPrincipalID, memberID string) (*Result, error)
	ListMembers(ctx context.Context, callerPrincipalID string, req *ListRequest) ([]*types.TeamMember, error)
}

type StorageInterface interface {
	GetProfileByID(ctx context.Context, id string) (*types.Profile, error)
	SetProfileActive(ctx context.Context, id string, active bool) error
	GetTeamRelationship(ctx context.Context, managerID string, memberID string) (*types.TeamRelationship, error)
	SetTeamRelationshipsActive(ctx context.Context, memberID string, active bool) (int64, error)
	ListTeamMembers(ctx context.Context, managerID string, page int64, size int64) ([]*types.TeamMember, error)
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*access.Resolution, error)
	Invalidate(principalID string)
}

type AccessMiddlewareInterface interface {
	RequireRoles(allow ...access.Role) func(http.Handler) http.Handler
}
