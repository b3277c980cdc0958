// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"slices"
)

// Role is a role name as stored in the roles table.
type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleExecutive         Role = "executive"
	RoleHRManager         Role = "hr_manager"
	RoleProjectManager    Role = "project_manager"
	RoleMarketingManager  Role = "marketing_manager"
	RoleSalesManager      Role = "sales_manager"
	RoleInventoryManager  Role = "inventory_manager"
	RolePurchasingManager Role = "purchasing_manager"
	RoleFacilitiesManager Role = "facilities_manager"
	RoleAccountant        Role = "accountant"
	RoleAgent             Role = "agent"
	RoleEmployee          Role = "employee"

	// RoleUnknown is a stored role name this build does not know about
	RoleUnknown Role = "unknown"
	// RoleNone is returned when no role matches
	RoleNone Role = ""
)

// precedence is highest first.
var precedence = []Role{
	RoleSuperAdmin,
	RoleExecutive,
	RoleHRManager,
	RoleProjectManager,
	RoleMarketingManager,
	RoleSalesManager,
	RoleInventoryManager,
	RolePurchasingManager,
	RoleFacilitiesManager,
	RoleAccountant,
	RoleAgent,
	RoleEmployee,
}

// Allow-lists for the operations guarded by the service.
var (
	ProvisionUserRoles = []Role{RoleSuperAdmin, RoleHRManager}
	ManageRoleRoles    = []Role{RoleSuperAdmin, RoleHRManager}
	AddTeamMemberRoles = []Role{RoleSuperAdmin, RoleMarketingManager, RoleSalesManager}
	ManageTeamRoles    = []Role{RoleSuperAdmin, RoleHRManager, RoleMarketingManager, RoleSalesManager}

	ManageOrganizationRoles = []Role{RoleSuperAdmin}
	ViewOrganizationRoles   = []Role{RoleSuperAdmin, RoleExecutive, RoleHRManager}
)

// KnownRoles returns every known role in precedence order.
func KnownRoles() []Role {
	return slices.Clone(precedence)
}

// ParseRole maps a stored role name to a Role, unknown names map to RoleUnknown.
func ParseRole(name string) Role {
	r := Role(name)
	if r.Valid() {
		return r
	}
	return RoleUnknown
}

func (r Role) Valid() bool {
	return slices.Contains(precedence, r)
}

func (r Role) String() string {
	return string(r)
}

// Priority is the index in the precedence table, -1 for roles outside it.
func (r Role) Priority() int {
	return slices.Index(precedence, r)
}
