// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import "context"

type contextKey struct{}

var principalContextKey = contextKey{}

// Principal is the authenticated caller. For users its ID is the Kratos
// identity their profiles are linked to, for service clients the client ID.
type Principal struct {
	ID     string
	Scopes []string
}

// WithPrincipalID returns a copy of ctx carrying the principal ID.
func WithPrincipalID(ctx context.Context, principalID string) context.Context {
	return context.WithValue(ctx, principalContextKey, principalID)
}

// GetPrincipalID returns the principal ID of the request, false when the
// request was not authenticated.
func GetPrincipalID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalContextKey).(string)
	return id, ok && id != ""
}
