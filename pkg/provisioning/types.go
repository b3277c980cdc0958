// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

type Outcome string

const (
	OutcomeSucceeded                Outcome = "succeeded"
	OutcomeUnauthenticated          Outcome = "unauthenticated"
	OutcomeUnauthorized             Outcome = "unauthorized"
	OutcomePending                  Outcome = "pending"
	OutcomeInvalidRequest           Outcome = "invalid_request"
	OutcomeNotFound                 Outcome = "not_found"
	OutcomeDuplicateEmail           Outcome = "duplicate_email"
	OutcomeCredentialCreationFailed Outcome = "credential_creation_failed"
	OutcomeProfileCreationFailed    Outcome = "profile_creation_failed"
	OutcomeRoleAssignmentFailed     Outcome = "profile_created_role_assignment_failed"
	OutcomeTeamLinkFailed           Outcome = "profile_created_team_relationship_failed"
	OutcomeInternalError            Outcome = "internal_error"
)

// Step names the workflow steps, in execution order.
type Step string

const (
	StepAuthorizeCaller        Step = "authorize_caller"
	StepDuplicateCheck         Step = "duplicate_check"
	StepCreatePrincipal        Step = "create_principal"
	StepCreateProfile          Step = "create_profile"
	StepAssignRole             Step = "assign_role"
	StepCreateTeamRelationship Step = "create_team_relationship"
)

// Request describes the person to provision. OrganizationID defaults to the
// caller organization, only super admins may target another one. ManagerID
// is only honoured for super admins adding team members.
type Request struct {
	Email          string `json:"email" validate:"required,email,max=320"`
	Password       string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FullName       string `json:"full_name" validate:"max=256"`
	Phone          string `json:"phone" validate:"max=64"`
	Role           string `json:"role" validate:"required,known_role"`
	OrganizationID string `json:"organization_id,omitempty"`
	ManagerID      string `json:"manager_id,omitempty"`
}

// Result tells apart nothing happened from something happened. ProfileID and
// MissingStep are set on partial success so the missing step can be retried,
// steps after MissingStep were not attempted.
type Result struct {
	Outcome     Outcome `json:"outcome"`
	PrincipalID string  `json:"principal_id,omitempty"`
	ProfileID   string  `json:"profile_id,omitempty"`
	MissingStep Step    `json:"missing_step,omitempty"`
}
