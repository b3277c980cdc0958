// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

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
	resolver ResolverInterface

	gate     *access.Gate
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Deactivate(ctx context.Context, callerPrincipalID, memberID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "teams.Service.Deactivate")
	defer span.End()

	return s.setActive(ctx, callerPrincipalID, memberID, false)
}

func (s *Service) Reactivate(ctx context.Context, callerPrincipalID, memberID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "teams.Service.Reactivate")
	defer span.End()

	return s.setActive(ctx, callerPrincipalID, memberID, true)
}

// ListMembers lists the team of the caller, super admins may list the team
// of any manager.
func (s *Service) ListMembers(ctx context.Context, callerPrincipalID string, req *ListRequest) ([]*types.TeamMember, error) {
	ctx, span := s.tracer.Start(ctx, "teams.Service.ListMembers")
	defer span.End()

	caller, err := s.authorizeCaller(ctx, callerPrincipalID, "teams.ListMembers")
	if err != nil {
		return nil, err
	}

	if req == nil {
		req = new(ListRequest)
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	managerID := caller.Profile.ID
	if req.ManagerID != "" && req.ManagerID != managerID {
		if !caller.IsSuperAdmin() {
			s.logger.Security().AuthzFailure(callerPrincipalID, "team:"+req.ManagerID)
			return nil, fmt.Errorf("%w: team of %s", ErrUnauthorized, req.ManagerID)
		}
		managerID = req.ManagerID
	}

	members, err := s.storage.ListTeamMembers(ctx, managerID, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return members, nil
}

// setActive updates the relationships first and the profile second. A profile
// failure is reported and logged, the relationship change stays.
func (s *Service) setActive(ctx context.Context, callerPrincipalID, memberID string, active bool) (*Result, error) {
	resource := "teams.Deactivate"
	change := "deactivated"
	if active {
		resource = "teams.Reactivate"
		change = "reactivated"
	}

	caller, err := s.authorizeCaller(ctx, callerPrincipalID, resource)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Var(memberID, "required"); err != nil {
		return nil, fmt.Errorf("%w: member id: %v", ErrInvalidRequest, err)
	}

	if memberID == caller.Profile.ID {
		return nil, fmt.Errorf("%w: callers cannot change their own state", ErrInvalidRequest)
	}

	member, err := s.storage.GetProfileByID(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	if err := s.checkScope(ctx, caller, callerPrincipalID, resource, member); err != nil {
		return nil, err
	}

	result := &Result{MemberID: member.ID, Active: active}

	result.RelationshipsUpdated, err = s.storage.SetTeamRelationshipsActive(ctx, member.ID, active)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelationshipUpdateFailed, err)
	}

	if member.PrincipalID != nil {
		defer s.resolver.Invalidate(*member.PrincipalID)
	}

	if err := s.storage.SetProfileActive(ctx, member.ID, active); err != nil {
		s.logger.Errorw(
			"profile update failed after team relationships were updated",
			"member_id", member.ID,
			"active", active,
			"relationships_updated", result.RelationshipsUpdated,
			"error", err,
		)
		return result, fmt.Errorf("%w: %v", ErrProfileUpdateFailed, err)
	}

	result.ProfileUpdated = true
	s.logger.Security().UserUpdated(callerPrincipalID, member.ID, change)

	return result, nil
}

// checkScope lets super admins manage anyone, HR managers anyone in the
// organization of their grant and other managers their own team only. Only
// grants scoped to the member organization count.
func (s *Service) checkScope(ctx context.Context, caller *access.Resolution, callerPrincipalID, resource string, member *types.Profile) error {
	scoped := caller.InOrganization(member.OrganizationID)

	if scoped.IsSuperAdmin() {
		return nil
	}

	if decision := s.gate.Evaluate(scoped, access.ManageTeamRoles...); !decision.Permitted() {
		s.logger.Security().AuthzFailure(callerPrincipalID, resource)
		return fmt.Errorf("%w: member %s is in another organization", ErrUnauthorized, member.ID)
	}

	if scoped.HasRole(access.RoleHRManager) {
		return nil
	}

	_, err := s.storage.GetTeamRelationship(ctx, caller.Profile.ID, member.ID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Security().AuthzFailure(callerPrincipalID, resource)
		return fmt.Errorf("%w: member %s is not in the caller team", ErrUnauthorized, member.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get team relationship: %w", err)
	}

	return nil
}

func (s *Service) authorizeCaller(ctx context.Context, callerPrincipalID, resource string) (*access.Resolution, error) {
	if callerPrincipalID == "" {
		return nil, ErrUnauthenticated
	}

	caller, err := s.resolver.Resolve(ctx, callerPrincipalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessPending, err)
	}

	if decision := s.gate.Evaluate(caller, access.ManageTeamRoles...); !decision.Permitted() {
		s.logger.Security().AuthzFailureInsufficientRoles(callerPrincipalID, resource, caller.RoleNames())
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, decision.Fallback)
	}

	return caller, nil
}

func NewService(
	storage StorageInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		resolver: resolver,
		gate:     access.NewGate(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
