// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

import (
	"context"
	"net/http"

	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

type ServiceInterface interface {
	CreateOrganization(ctx context.Context, callerPrincipalID string, req *Request) (*types.Organization, error)
	RenameOrganization(ctx context.Context, callerPrincipalID, id string, req *Request) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, callerPrincipalID, id string) error
	ListOrganizations(ctx context.Context, callerPrincipalID string, req *ListRequest) ([]*types.Organization, error)
	ListMembers(ctx context.Context, callerPrincipalID, id string, req *ListRequest) ([]*types.Profile, error)
}

type StorageInterface interface {
	CreateOrganization(ctx context.Context, name string) (*types.Organization, error)
	RenameOrganization(ctx context.Context, id, name string) (*types.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
	ListOrganizations(ctx context.Context, ids []string, page, size int64) ([]*types.Organization, error)
	ListProfilesByOrganizationID(ctx context.Context, organizationID string, page, size int64) ([]*types.Profile, error)
}

type AuthzInterface interface {
	DeleteOrganization(ctx context.Context, organizationID string, roles []string) error
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*access.Resolution, error)
	InvalidateAll()
}

type AccessMiddlewareInterface interface {
	RequireRoles(allow ...access.Role) func(http.Handler) http.Handler
}
