// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

const (
	PRINCIPAL_RELATION = "principal"
	MANAGER_RELATION   = "manager"
	MEMBER_RELATION    = "member"

	ASSIGNEE_RELATION = "assignee"

	ROLE_TYPE = "role"
)

// globalScope stands in for the organization of roles assigned without one.
const globalScope = "global"

func UserTuple(principalId string) string {
	return "user:" + principalId
}

func ProfileTuple(profileId string) string {
	return "profile:" + profileId
}

func OrganizationTuple(organizationId string) string {
	return "organization:" + organizationId
}

// RoleTuple scopes a role to an organization, an empty organization is global.
func RoleTuple(organizationId, role string) string {
	if organizationId == "" {
		organizationId = globalScope
	}
	return ROLE_TYPE + ":" + organizationId + "/" + role
}
