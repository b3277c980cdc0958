// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "errors"

var (
	ErrMissingIssuer      = errors.New("issuer is required for JWT authentication")
	ErrMissingSubject     = errors.New("token has no subject")
	ErrTokenNotAuthorized = errors.New("token subject not allowed or required scope missing")
)
