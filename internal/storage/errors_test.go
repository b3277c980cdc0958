// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestWrapWriteError(t *testing.T) {
	tests := []struct {
		name               string
		err                error
		expectedSentinel   error
		expectedConstraint string
		expectedMessage    string
	}{
		{
			name:               "duplicate email",
			err:                &pgconn.PgError{Code: pgErrCodeUniqueViolation, ConstraintName: "profiles_email_organization_key"},
			expectedSentinel:   ErrDuplicateKey,
			expectedConstraint: "profiles_email_organization_key",
			expectedMessage:    "profile email already exists in organization: duplicate key violation",
		},
		{
			name:               "duplicate principal wrapped by the driver",
			err:                fmt.Errorf("scan: %w", &pgconn.PgError{Code: pgErrCodeUniqueViolation, ConstraintName: "profiles_principal_organization_key"}),
			expectedSentinel:   ErrDuplicateKey,
			expectedConstraint: "profiles_principal_organization_key",
			expectedMessage:    "principal already linked in organization: duplicate key violation",
		},
		{
			name:               "missing organization",
			err:                &pgconn.PgError{Code: pgErrCodeForeignKeyViolation, ConstraintName: "profiles_organization_id_fkey"},
			expectedSentinel:   ErrForeignKeyViolation,
			expectedConstraint: "profiles_organization_id_fkey",
			expectedMessage:    "profile organization does not exist: foreign key violation",
		},
		{
			name:               "unknown constraint",
			err:                &pgconn.PgError{Code: pgErrCodeUniqueViolation, ConstraintName: "some_new_key"},
			expectedSentinel:   ErrDuplicateKey,
			expectedConstraint: "some_new_key",
			expectedMessage:    "constraint some_new_key: duplicate key violation",
		},
		{
			name:            "other postgres error",
			err:             &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"},
			expectedMessage: "failed to write: : canceling statement due to statement timeout (SQLSTATE 57014)",
		},
		{
			name:            "not a postgres error",
			err:             errors.New("connection reset"),
			expectedMessage: "failed to write: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapWriteError(tt.err, "failed to write")

			if tt.expectedSentinel != nil && !errors.Is(err, tt.expectedSentinel) {
				t.Errorf("expected %v, got %v", tt.expectedSentinel, err)
			}

			var constraintErr *ConstraintError
			if errors.As(err, &constraintErr) != (tt.expectedConstraint != "") {
				t.Fatalf("unexpected constraint error state for %v", err)
			}
			if constraintErr != nil && constraintErr.Constraint != tt.expectedConstraint {
				t.Errorf("expected constraint %q, got %q", tt.expectedConstraint, constraintErr.Constraint)
			}

			if err.Error() != tt.expectedMessage {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, err.Error())
			}
		})
	}
}
