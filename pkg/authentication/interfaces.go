// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"net/http"
)

type TokenVerifierInterface interface {
	// VerifyToken checks a raw JWT and returns the principal it was issued to
	// when the token satisfies the access policy.
	VerifyToken(ctx context.Context, rawToken string) (*Principal, error)
}

type AuthenticatorInterface interface {
	// Authenticate stores the principal of the request in its context.
	Authenticate(next http.Handler) http.Handler
}
