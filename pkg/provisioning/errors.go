// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"errors"
)

var (
	ErrUnauthenticated          = errors.New("caller is not authenticated")
	ErrUnauthorized             = errors.New("caller lacks a required role")
	ErrAccessPending            = errors.New("caller roles could not be resolved")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrProfileNotFound          = errors.New("profile not found")
	ErrDuplicateEmail           = errors.New("email already provisioned in organization")
	ErrCredentialCreationFailed = errors.New("failed to create credential")
	ErrProfileCreationFailed    = errors.New("failed to create profile")
	ErrPartialSuccess           = errors.New("profile created but a step failed")
	ErrRoleNotAssigned          = errors.New("role not assigned to profile")
)
