// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type Organization struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Role struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Profile is a person inside one organization, PrincipalID is nil until the
// person signs up with the identity provider
type Profile struct {
	ID             string    `db:"id" json:"id"`
	PrincipalID    *string   `db:"principal_id" json:"principal_id"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	Phone          string    `db:"phone" json:"phone"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

type RoleAssignment struct {
	ID             string    `db:"id" json:"id"`
	ProfileID      string    `db:"profile_id" json:"profile_id"`
	RoleID         string    `db:"role_id" json:"role_id"`
	OrganizationID *string   `db:"organization_id" json:"organization_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// RoleGrant is a role assignment joined with its role and organization names
type RoleGrant struct {
	ProfileID        string  `db:"profile_id" json:"profile_id"`
	RoleName         string  `db:"role_name" json:"role_name"`
	OrganizationID   *string `db:"organization_id" json:"organization_id"`
	OrganizationName *string `db:"organization_name" json:"organization_name"`
}

type TeamRelationship struct {
	ID         string    `db:"id" json:"id"`
	ManagerID  string    `db:"manager_id" json:"manager_id"`
	MemberID   string    `db:"member_id" json:"member_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// TeamMember is a team relationship joined with the member profile
type TeamMember struct {
	Relationship TeamRelationship `json:"relationship"`
	Profile      Profile          `json:"profile"`
}
