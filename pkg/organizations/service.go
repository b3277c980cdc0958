// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/storage"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage  StorageInterface
	authz    AuthzInterface
	resolver ResolverInterface

	gate     *access.Gate
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) CreateOrganization(ctx context.Context, callerPrincipalID string, req *Request) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organizations.Service.CreateOrganization")
	defer span.End()

	if _, err := s.authorizeCaller(ctx, callerPrincipalID, "organizations.Create", access.ManageOrganizationRoles...); err != nil {
		return nil, err
	}

	name, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	org, err := s.storage.CreateOrganization(ctx, name)
	if errors.Is(err, storage.ErrDuplicateKey) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrganization, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	s.logger.Infof("organization %s created by %s", org.ID, callerPrincipalID)

	return org, nil
}

func (s *Service) RenameOrganization(ctx context.Context, callerPrincipalID, id string, req *Request) (*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organizations.Service.RenameOrganization")
	defer span.End()

	if _, err := s.authorizeCaller(ctx, callerPrincipalID, "organizations.Rename", access.ManageOrganizationRoles...); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidRequest)
	}

	name, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	org, err := s.storage.RenameOrganization(ctx, id, name)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: %s", ErrOrganizationNotFound, id)
	case errors.Is(err, storage.ErrDuplicateKey):
		return nil, fmt.Errorf("%w: %s", ErrDuplicateOrganization, name)
	case err != nil:
		return nil, fmt.Errorf("failed to rename organization: %w", err)
	}

	// grants carry the organization name
	s.resolver.InvalidateAll()

	return org, nil
}

// DeleteOrganization removes the organization together with its profiles, so
// every cached resolution is dropped afterwards.
func (s *Service) DeleteOrganization(ctx context.Context, callerPrincipalID, id string) error {
	ctx, span := s.tracer.Start(ctx, "organizations.Service.DeleteOrganization")
	defer span.End()

	caller, err := s.authorizeCaller(ctx, callerPrincipalID, "organizations.Delete", access.ManageOrganizationRoles...)
	if err != nil {
		return err
	}

	if id == "" {
		return fmt.Errorf("%w: organization id is required", ErrInvalidRequest)
	}

	if id == caller.Profile.OrganizationID {
		return fmt.Errorf("%w: callers cannot delete their own organization", ErrInvalidRequest)
	}

	err = s.storage.DeleteOrganization(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrOrganizationNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	roles := lo.Map(access.KnownRoles(), func(r access.Role, _ int) string { return r.String() })
	if err := s.authz.DeleteOrganization(ctx, id, roles); err != nil {
		// the rows are gone, stale tuples no longer resolve to a profile
		s.logger.Errorf("failed to delete organization %s from authz: %v", id, err)
	}

	s.resolver.InvalidateAll()
	s.logger.Infof("organization %s deleted by %s", id, callerPrincipalID)

	return nil
}

// ListOrganizations returns every organization to super admins and only the
// organizations the caller belongs to or holds roles in to anyone else.
func (s *Service) ListOrganizations(ctx context.Context, callerPrincipalID string, req *ListRequest) ([]*types.Organization, error) {
	ctx, span := s.tracer.Start(ctx, "organizations.Service.ListOrganizations")
	defer span.End()

	caller, err := s.authorizeCaller(ctx, callerPrincipalID, "organizations.List", access.KnownRoles()...)
	if err != nil {
		return nil, err
	}

	req, err = s.validateList(req)
	if err != nil {
		return nil, err
	}

	var ids []string
	if !caller.IsSuperAdmin() {
		ids = lo.Uniq(append(caller.OrganizationIDs(), caller.Profile.OrganizationID))
	}

	orgs, err := s.storage.ListOrganizations(ctx, ids, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, nil
}

func (s *Service) ListMembers(ctx context.Context, callerPrincipalID, id string, req *ListRequest) ([]*types.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "organizations.Service.ListMembers")
	defer span.End()

	caller, err := s.authorizeCaller(ctx, callerPrincipalID, "organizations.ListMembers", access.ViewOrganizationRoles...)
	if err != nil {
		return nil, err
	}

	if id == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrInvalidRequest)
	}

	req, err = s.validateList(req)
	if err != nil {
		return nil, err
	}

	if decision := s.gate.Evaluate(caller.InOrganization(id), access.ViewOrganizationRoles...); !decision.Permitted() {
		s.logger.Security().AuthzFailure(callerPrincipalID, "organization:"+id)
		return nil, fmt.Errorf("%w: organization %s", ErrUnauthorized, id)
	}

	members, err := s.storage.ListProfilesByOrganizationID(ctx, id, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}

	return members, nil
}

func (s *Service) authorizeCaller(ctx context.Context, callerPrincipalID, resource string, allow ...access.Role) (*access.Resolution, error) {
	if callerPrincipalID == "" {
		return nil, ErrUnauthenticated
	}

	caller, err := s.resolver.Resolve(ctx, callerPrincipalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessPending, err)
	}

	if decision := s.gate.Evaluate(caller, allow...); !decision.Permitted() {
		s.logger.Security().AuthzFailureInsufficientRoles(callerPrincipalID, resource, caller.RoleNames())
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, decision.Fallback)
	}

	return caller, nil
}

func (s *Service) validateRequest(req *Request) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}

	name := strings.TrimSpace(req.Name)
	if err := s.validate.Struct(&Request{Name: name}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return name, nil
}

func (s *Service) validateList(req *ListRequest) (*ListRequest, error) {
	if req == nil {
		return new(ListRequest), nil
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return req, nil
}

func NewService(
	storage StorageInterface,
	authz AuthzInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		authz:    authz,
		resolver: resolver,
		gate:     access.NewGate(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
