// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/openfga"
	"github.com/canonical/erp-access-service/internal/tracing"
)

var ErrInvalidAuthModel = fmt.Errorf("invalid authorization model schema")

// Authorizer mirrors role assignments into OpenFGA so downstream services can
// check them without reading the ERP database.
type Authorizer struct {
	client AuthzClientInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) ValidateModel(ctx context.Context) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.ValidateModel")
	defer span.End()

	v0AuthzModel := NewAuthorizationModelProvider("v0")
	model := *v0AuthzModel.GetModel()

	eq, err := a.client.CompareModel(ctx, model)
	if err != nil {
		return err
	}
	if !eq {
		return ErrInvalidAuthModel
	}
	return nil
}

func (a *Authorizer) AssignRole(ctx context.Context, profileID, organizationID, role string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AssignRole")
	defer span.End()

	return a.client.WriteTuple(ctx, ProfileTuple(profileID), ASSIGNEE_RELATION, RoleTuple(organizationID, role))
}

func (a *Authorizer) RemoveRole(ctx context.Context, profileID, organizationID, role string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.RemoveRole")
	defer span.End()

	return a.client.DeleteTuple(ctx, ProfileTuple(profileID), ASSIGNEE_RELATION, RoleTuple(organizationID, role))
}

func (a *Authorizer) AssignOrganizationMember(ctx context.Context, organizationID, profileID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.AssignOrganizationMember")
	defer span.End()

	return a.client.WriteTuple(ctx, ProfileTuple(profileID), MEMBER_RELATION, OrganizationTuple(organizationID))
}

func (a *Authorizer) LinkPrincipal(ctx context.Context, profileID, principalID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.LinkPrincipal")
	defer span.End()

	return a.client.WriteTuple(ctx, UserTuple(principalID), PRINCIPAL_RELATION, ProfileTuple(profileID))
}

func (a *Authorizer) LinkTeamMember(ctx context.Context, managerID, memberID string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.LinkTeamMember")
	defer span.End()

	return a.client.WriteTuple(ctx, ProfileTuple(managerID), MANAGER_RELATION, ProfileTuple(memberID))
}

func (a *Authorizer) DeleteOrganization(ctx context.Context, organizationID string, roles []string) error {
	ctx, span := a.tracer.Start(ctx, "authorization.Authorizer.DeleteOrganization")
	defer span.End()

	objects := []string{OrganizationTuple(organizationID)}
	for _, role := range roles {
		objects = append(objects, RoleTuple(organizationID, role))
	}

	for _, object := range objects {
		if err := a.deleteObjectTuples(ctx, object); err != nil {
			return err
		}
	}

	return nil
}

// deleteObjectTuples pages through the tuples of object and deletes each page.
func (a *Authorizer) deleteObjectTuples(ctx context.Context, object string) error {
	cToken := ""
	for {
		r, err := a.client.ReadTuples(ctx, "", "", object, cToken)
		if err != nil {
			a.logger.Errorf("error when retrieving tuples of %s: %s", object, err)
			return err
		}
		if len(r.Tuples) == 0 {
			return nil
		}

		ts := make([]openfga.Tuple, len(r.Tuples))
		for i, t := range r.Tuples {
			ts[i] = *openfga.NewTuple(t.Key.User, t.Key.Relation, t.Key.Object)
		}
		if err := a.client.DeleteTuples(ctx, ts...); err != nil {
			a.logger.Errorf("error when deleting tuples of %s: %s", object, err)
			return err
		}

		if r.ContinuationToken == "" {
			return nil
		}
		cToken = r.ContinuationToken
	}
}

func NewAuthorizer(client AuthzClientInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.client = client
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
