// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"slices"

	"github.com/samber/lo"

	"github.com/canonical/erp-access-service/internal/types"
)

// Grant is one role held by a profile, OrganizationID is nil for global roles.
type Grant struct {
	Role             Role    `json:"-"`
	RoleName         string  `json:"role_name"`
	OrganizationID   *string `json:"organization_id"`
	OrganizationName *string `json:"organization_name"`
}

// Resolution is the profile and roles of a principal. A nil Profile means the
// principal is not provisioned.
type Resolution struct {
	Profile *types.Profile `json:"profile"`
	Roles   []Grant        `json:"roles"`
}

func emptyResolution() *Resolution {
	return &Resolution{Profile: nil, Roles: []Grant{}}
}

func (r *Resolution) HasRole(role Role) bool {
	if r == nil {
		return false
	}

	return slices.ContainsFunc(r.Roles, func(g Grant) bool { return g.Role == role })
}

func (r *Resolution) IsSuperAdmin() bool {
	return r.HasRole(RoleSuperAdmin)
}

// HighestPriorityRole returns the first role of the precedence table held, or RoleNone.
func (r *Resolution) HighestPriorityRole() Role {
	for _, role := range precedence {
		if r.HasRole(role) {
			return role
		}
	}
	return RoleNone
}

// RoleNames returns the distinct role names held, unknown names included.
func (r *Resolution) RoleNames() []string {
	if r == nil {
		return []string{}
	}

	return lo.Uniq(lo.Map(r.Roles, func(g Grant, _ int) string { return g.RoleName }))
}

// OrganizationIDs returns the distinct organizations roles are scoped to.
func (r *Resolution) OrganizationIDs() []string {
	if r == nil {
		return []string{}
	}

	ids := lo.FilterMap(r.Roles, func(g Grant, _ int) (string, bool) {
		if g.OrganizationID == nil {
			return "", false
		}
		return *g.OrganizationID, true
	})

	return lo.Uniq(ids)
}

// InOrganization returns a copy holding only the global grants and the
// grants scoped to organizationID. The profile is kept as is.
func (r *Resolution) InOrganization(organizationID string) *Resolution {
	if r == nil {
		return emptyResolution()
	}

	return &Resolution{
		Profile: r.Profile,
		Roles: lo.Filter(r.Roles, func(g Grant, _ int) bool {
			return g.OrganizationID == nil || *g.OrganizationID == organizationID
		}),
	}
}

// Intersect returns the allowed roles held, in allow-list order.
func (r *Resolution) Intersect(allow ...Role) []Role {
	if r == nil {
		return nil
	}

	return lo.Filter(lo.Uniq(allow), func(role Role, _ int) bool { return r.HasRole(role) })
}
