// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

import "errors"

var (
	ErrUnauthenticated          = errors.New("caller is not authenticated")
	ErrUnauthorized             = errors.New("caller may not manage this member")
	ErrAccessPending            = errors.New("caller roles could not be resolved")
	ErrInvalidRequest           = errors.New("invalid request")
	ErrMemberNotFound           = errors.New("member not found")
	ErrRelationshipUpdateFailed = errors.New("failed to update team relationships")
	ErrProfileUpdateFailed      = errors.New("team relationships updated but profile update failed")
)
