// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	fga "github.com/openfga/go-sdk"
	"github.com/openfga/go-sdk/client"

	"github.com/canonical/erp-access-service/internal/openfga"
)

type AuthorizerInterface interface {
	ValidateModel(context.Context) error

	// AssignRole mirrors a role assignment, organizationID may be empty for global roles.
	AssignRole(ctx context.Context, profileID, organizationID, role string) error
	RemoveRole(ctx context.Context, profileID, organizationID, role string) error
	AssignOrganizationMember(ctx context.Context, organizationID, profileID string) error
	LinkPrincipal(ctx context.Context, profileID, principalID string) error
	LinkTeamMember(ctx context.Context, managerID, memberID string) error
	// DeleteOrganization drops the tuples whose object is the organization or
	// one of the given roles scoped to it.
	DeleteOrganization(ctx context.Context, organizationID string, roles []string) error
}

type AuthzClientInterface interface {
	ReadModel(context.Context) (*fga.AuthorizationModel, error)
	CompareModel(context.Context, fga.AuthorizationModel) (bool, error)
	ReadTuples(ctx context.Context, user, relation, object, continuationToken string) (*client.ClientReadResponse, error)
	WriteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuples(context.Context, ...openfga.Tuple) error
}
