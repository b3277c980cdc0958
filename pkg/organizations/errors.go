// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

import "errors"

var (
	ErrUnauthenticated       = errors.New("caller is not authenticated")
	ErrUnauthorized          = errors.New("caller may not manage organizations")
	ErrAccessPending         = errors.New("caller roles could not be resolved")
	ErrInvalidRequest        = errors.New("invalid request")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrDuplicateOrganization = errors.New("organization name already exists")
)
