// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"

	"github.com/canonical/erp-access-service/internal/types"
)

type StorageInterface interface {
	ListProfilesByPrincipalID(ctx context.Context, principalID string) ([]*types.Profile, error)
	ListRoleGrantsByPrincipalID(ctx context.Context, principalID string) ([]*types.RoleGrant, error)
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*Resolution, error)
	Invalidate(principalID string)
}
