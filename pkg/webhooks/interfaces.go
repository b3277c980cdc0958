// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

// StorageInterface defines the storage operations required by the webhooks package.
// It is a subset of the internal/storage interface.
type StorageInterface interface {
	ListPendingProfilesByEmail(ctx context.Context, email string) ([]*types.Profile, error)
	LinkPrincipal(ctx context.Context, profileID, principalID string) error
}

// AuthorizerInterface defines the authorization operations required by the webhooks package.
// It is a subset of the internal/authorization interface.
type AuthorizerInterface interface {
	LinkPrincipal(ctx context.Context, profileID, principalID string) error
}

type ResolverInterface interface {
	Resolve(ctx context.Context, principalID string) (*access.Resolution, error)
	Invalidate(principalID string)
}

// ServiceInterface defines the webhook service operations.
type ServiceInterface interface {
	HandleRegistration(ctx context.Context, identityID, email string) error
	HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error)
}
