// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

// constraintMessages describes the constraints of the access schema, keyed
// by the names postgres reports.
var constraintMessages = map[string]string{
	"organizations_name_key":                         "organization name already exists",
	"profiles_email_organization_key":                "profile email already exists in organization",
	"profiles_principal_organization_key":            "principal already linked in organization",
	"profiles_organization_id_fkey":                  "profile organization does not exist",
	"role_assignments_profile_role_organization_key": "role already assigned",
	"role_assignments_profile_id_fkey":               "role assignment profile does not exist",
	"role_assignments_role_id_fkey":                  "role does not exist",
	"role_assignments_organization_id_fkey":          "role assignment organization does not exist",
	"team_relationships_manager_member_key":          "member already in team",
	"team_relationships_manager_id_fkey":             "team manager does not exist",
	"team_relationships_member_id_fkey":              "team member does not exist",
}

// ConstraintError names the constraint a write violated. It unwraps to
// ErrDuplicateKey or ErrForeignKeyViolation.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	if msg, ok := constraintMessages[e.Constraint]; ok {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("constraint %s: %v", e.Constraint, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// wrapWriteError turns unique and foreign key violations into a
// ConstraintError, any other error is wrapped with action.
func wrapWriteError(err error, action string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrDuplicateKey}
		case pgErrCodeForeignKeyViolation:
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrForeignKeyViolation}
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
