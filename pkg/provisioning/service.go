// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/canonical/erp-access-service/internal/kratos"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/storage"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/internal/types"
	"github.com/canonical/erp-access-service/pkg/access"
)

var _ ServiceInterface = (*Service)(nil)

const defaultTeamMemberRole = access.RoleAgent

type Service struct {
	storage  StorageInterface
	tx       TxRunnerInterface
	authz    AuthzInterface
	idp      IdentityProviderInterface
	resolver ResolverInterface

	gate     *access.Gate
	validate *validator.Validate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// ProvisionUser creates a principal, its profile in the target organization
// and the requested role.
func (s *Service) ProvisionUser(ctx context.Context, callerPrincipalID string, req *Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.ProvisionUser")
	defer span.End()

	caller, result, err := s.authorizeCaller(ctx, callerPrincipalID, "provisioning.ProvisionUser", access.ProvisionUserRoles)
	if err != nil {
		return result, err
	}

	if result, err := s.validateRequest(req); err != nil {
		return result, err
	}

	organizationID, result, err := s.targetOrganization(ctx, caller, callerPrincipalID, req.OrganizationID)
	if err != nil {
		return result, err
	}

	scoped, result, err := s.authorizeIn(caller, callerPrincipalID, "provisioning.ProvisionUser", organizationID, access.ProvisionUserRoles)
	if err != nil {
		return result, err
	}

	role := access.Role(req.Role)
	if result, err := s.checkGrant(scoped, callerPrincipalID, role); err != nil {
		return result, err
	}

	if result, err := s.duplicateCheck(ctx, organizationID, req.Email); err != nil {
		return result, err
	}

	principalID, created, result, err := s.findOrCreatePrincipal(ctx, callerPrincipalID, organizationID, req)
	if err != nil {
		return result, err
	}

	profile, err := s.createProfile(ctx, req, organizationID, &principalID)
	if err != nil {
		if created {
			s.compensatePrincipal(ctx, principalID, err)
		}

		if errors.Is(err, storage.ErrDuplicateKey) {
			return &Result{Outcome: OutcomeDuplicateEmail}, fmt.Errorf("%w: %s", ErrDuplicateEmail, req.Email)
		}

		return &Result{Outcome: OutcomeProfileCreationFailed}, fmt.Errorf("%w: %v", ErrProfileCreationFailed, err)
	}

	defer s.resolver.Invalidate(principalID)

	if err := s.assignRole(ctx, profile, role); err != nil {
		s.logger.Errorf("profile %s created without role %s: %v", profile.ID, role, err)
		return partial(OutcomeRoleAssignmentFailed, StepAssignRole, principalID, profile.ID), fmt.Errorf("%w: %s: %v", ErrPartialSuccess, StepAssignRole, err)
	}

	s.logger.Security().PrivilegeGranted(callerPrincipalID, profile.ID, role.String())

	return &Result{Outcome: OutcomeSucceeded, PrincipalID: principalID, ProfileID: profile.ID}, nil
}

// AddTeamMember creates a profile, its role and the relationship to the
// manager. A principal already registered for the email is linked right away,
// otherwise the person signs up later and the registration hook links it.
func (s *Service) AddTeamMember(ctx context.Context, callerPrincipalID string, req *Request) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.AddTeamMember")
	defer span.End()

	caller, result, err := s.authorizeCaller(ctx, callerPrincipalID, "provisioning.AddTeamMember", access.AddTeamMemberRoles)
	if err != nil {
		return result, err
	}

	if req != nil && req.Role == "" {
		req.Role = defaultTeamMemberRole.String()
	}

	if result, err := s.validateRequest(req); err != nil {
		return result, err
	}

	manager, result, err := s.manager(ctx, caller, callerPrincipalID, req.ManagerID)
	if err != nil {
		return result, err
	}

	organizationID := manager.OrganizationID
	if req.OrganizationID != "" && req.OrganizationID != organizationID {
		return &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: manager %s is not in organization %s", ErrInvalidRequest, manager.ID, req.OrganizationID)
	}

	scoped, result, err := s.authorizeIn(caller, callerPrincipalID, "provisioning.AddTeamMember", organizationID, access.AddTeamMemberRoles)
	if err != nil {
		return result, err
	}

	role := access.Role(req.Role)
	if result, err := s.checkGrant(scoped, callerPrincipalID, role); err != nil {
		return result, err
	}

	if result, err := s.duplicateCheck(ctx, organizationID, req.Email); err != nil {
		return result, err
	}

	principalID, result, err := s.existingPrincipal(ctx, organizationID, req.Email)
	if err != nil {
		return result, err
	}

	var linked *string
	if principalID != "" {
		linked = &principalID
		defer s.resolver.Invalidate(principalID)
	}

	profile, err := s.createProfile(ctx, req, organizationID, linked)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return &Result{Outcome: OutcomeDuplicateEmail}, fmt.Errorf("%w: %s", ErrDuplicateEmail, req.Email)
		}

		s.logger.Errorf("failed to create profile for %s: %v", req.Email, err)
		return &Result{Outcome: OutcomeProfileCreationFailed}, fmt.Errorf("%w: %v", ErrProfileCreationFailed, err)
	}

	if err := s.assignRole(ctx, profile, role); err != nil {
		s.logger.Errorf("profile %s created without role %s: %v", profile.ID, role, err)
		return partial(OutcomeRoleAssignmentFailed, StepAssignRole, principalID, profile.ID), fmt.Errorf("%w: %s: %v", ErrPartialSuccess, StepAssignRole, err)
	}

	s.logger.Security().PrivilegeGranted(callerPrincipalID, profile.ID, role.String())

	if err := s.linkTeamMember(ctx, manager.ID, profile.ID); err != nil {
		s.logger.Errorf("profile %s created without manager %s: %v", profile.ID, manager.ID, err)
		return partial(OutcomeTeamLinkFailed, StepCreateTeamRelationship, principalID, profile.ID), fmt.Errorf("%w: %s: %v", ErrPartialSuccess, StepCreateTeamRelationship, err)
	}

	return &Result{Outcome: OutcomeSucceeded, PrincipalID: principalID, ProfileID: profile.ID}, nil
}

// RetryRoleAssignment assigns a role to an existing profile, an assignment
// that already exists counts as success.
func (s *Service) RetryRoleAssignment(ctx context.Context, callerPrincipalID, profileID, role string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.RetryRoleAssignment")
	defer span.End()

	_, profile, result, err := s.authorizeRoleChange(ctx, callerPrincipalID, "provisioning.RetryRoleAssignment", profileID, role)
	if err != nil {
		return result, err
	}

	principalID := ptrValue(profile.PrincipalID)

	err = s.assignRole(ctx, profile, access.Role(role))
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Errorf("failed to assign role %s to profile %s: %v", role, profile.ID, err)
		return partial(OutcomeRoleAssignmentFailed, StepAssignRole, principalID, profile.ID), fmt.Errorf("%w: %s: %v", ErrPartialSuccess, StepAssignRole, err)
	}

	if err == nil {
		s.logger.Security().PrivilegeGranted(callerPrincipalID, profile.ID, role)
	}

	s.resolver.Invalidate(principalID)

	return &Result{Outcome: OutcomeSucceeded, PrincipalID: principalID, ProfileID: profile.ID}, nil
}

// RetryTeamLink links a member to a manager, an existing relationship counts
// as success. Only super admins may link members of another manager.
func (s *Service) RetryTeamLink(ctx context.Context, callerPrincipalID, managerID, memberID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.RetryTeamLink")
	defer span.End()

	caller, result, err := s.authorizeCaller(ctx, callerPrincipalID, "provisioning.RetryTeamLink", access.AddTeamMemberRoles)
	if err != nil {
		return result, err
	}

	manager, result, err := s.manager(ctx, caller, callerPrincipalID, managerID)
	if err != nil {
		return result, err
	}

	if _, result, err := s.authorizeIn(caller, callerPrincipalID, "provisioning.RetryTeamLink", manager.OrganizationID, access.AddTeamMemberRoles); err != nil {
		return result, err
	}

	member, err := s.storage.GetProfileByID(ctx, memberID)
	if err != nil {
		return s.profileLookupFailure(memberID, err)
	}

	if member.OrganizationID != manager.OrganizationID {
		return &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: member %s and manager %s are in different organizations", ErrInvalidRequest, member.ID, manager.ID)
	}

	err = s.linkTeamMember(ctx, manager.ID, member.ID)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Errorf("failed to link profile %s to manager %s: %v", member.ID, manager.ID, err)
		return partial(OutcomeTeamLinkFailed, StepCreateTeamRelationship, ptrValue(member.PrincipalID), member.ID), fmt.Errorf("%w: %s: %v", ErrPartialSuccess, StepCreateTeamRelationship, err)
	}

	return &Result{Outcome: OutcomeSucceeded, PrincipalID: ptrValue(member.PrincipalID), ProfileID: member.ID}, nil
}

// RevokeRole removes a role assignment from a profile.
func (s *Service) RevokeRole(ctx context.Context, callerPrincipalID, profileID, role string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "provisioning.Service.RevokeRole")
	defer span.End()

	_, profile, result, err := s.authorizeRoleChange(ctx, callerPrincipalID, "provisioning.RevokeRole", profileID, role)
	if err != nil {
		return result, err
	}

	principalID := ptrValue(profile.PrincipalID)

	if err := s.removeRole(ctx, profile, access.Role(role)); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Result{Outcome: OutcomeNotFound, ProfileID: profile.ID}, fmt.Errorf("%w: %s", ErrRoleNotAssigned, role)
		}

		s.logger.Errorf("failed to revoke role %s from profile %s: %v", role, profile.ID, err)
		return &Result{Outcome: OutcomeInternalError, ProfileID: profile.ID}, fmt.Errorf("failed to revoke role: %w", err)
	}

	s.resolver.Invalidate(principalID)
	s.logger.Security().PrivilegeRevoked(callerPrincipalID, profile.ID, role)

	return &Result{Outcome: OutcomeSucceeded, PrincipalID: principalID, ProfileID: profile.ID}, nil
}

// authorizeCaller runs before any write. An unprovisioned caller is denied the
// same way as a caller without the roles.
func (s *Service) authorizeCaller(ctx context.Context, callerPrincipalID, resource string, allow []access.Role) (*access.Resolution, *Result, error) {
	if callerPrincipalID == "" {
		return nil, &Result{Outcome: OutcomeUnauthenticated}, ErrUnauthenticated
	}

	caller, err := s.resolver.Resolve(ctx, callerPrincipalID)
	if err != nil {
		s.logger.Errorf("failed to resolve roles of %s: %v", callerPrincipalID, err)
		return nil, &Result{Outcome: OutcomePending}, fmt.Errorf("%w: %v", ErrAccessPending, err)
	}

	decision := s.gate.Evaluate(caller, allow...)
	if !decision.Permitted() {
		s.logger.Security().AuthzFailureInsufficientRoles(callerPrincipalID, resource, caller.RoleNames())
		return nil, &Result{Outcome: OutcomeUnauthorized}, fmt.Errorf("%w: %s", ErrUnauthorized, decision.Fallback)
	}

	return caller, nil, nil
}

func (s *Service) authorizeRoleChange(ctx context.Context, callerPrincipalID, resource, profileID, role string) (*access.Resolution, *types.Profile, *Result, error) {
	caller, result, err := s.authorizeCaller(ctx, callerPrincipalID, resource, access.ManageRoleRoles)
	if err != nil {
		return nil, nil, result, err
	}

	if err := s.validate.Var(role, "required,known_role"); err != nil {
		return nil, nil, &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	profile, err := s.storage.GetProfileByID(ctx, profileID)
	if err != nil {
		result, err := s.profileLookupFailure(profileID, err)
		return nil, nil, result, err
	}

	scoped, result, err := s.authorizeIn(caller, callerPrincipalID, resource, profile.OrganizationID, access.ManageRoleRoles)
	if err != nil {
		return nil, nil, result, err
	}

	if result, err := s.checkGrant(scoped, callerPrincipalID, access.Role(role)); err != nil {
		return nil, nil, result, err
	}

	return scoped, profile, nil, nil
}

// authorizeIn narrows the caller to the global grants and the grants scoped to
// organizationID, and evaluates allow against them.
func (s *Service) authorizeIn(caller *access.Resolution, callerPrincipalID, resource, organizationID string, allow []access.Role) (*access.Resolution, *Result, error) {
	scoped := caller.InOrganization(organizationID)

	decision := s.gate.Evaluate(scoped, allow...)
	if !decision.Permitted() {
		s.logger.Security().AuthzFailureInsufficientRoles(callerPrincipalID, resource+":"+organizationID, scoped.RoleNames())
		return nil, &Result{Outcome: OutcomeUnauthorized}, fmt.Errorf("%w: %s in organization %s", ErrUnauthorized, decision.Fallback, organizationID)
	}

	return scoped, nil, nil
}

func (s *Service) validateRequest(req *Request) (*Result, error) {
	if req == nil {
		return &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}

	req.normalize()

	if err := s.validate.Struct(req); err != nil {
		return &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return nil, nil
}

// checkGrant stops callers from granting roles ranked above their own, only
// super admins grant super admin. caller must already be narrowed to the
// target organization.
func (s *Service) checkGrant(caller *access.Resolution, callerPrincipalID string, role access.Role) (*Result, error) {
	if caller.IsSuperAdmin() {
		return nil, nil
	}

	highest := caller.HighestPriorityRole()
	if role == access.RoleSuperAdmin || role.Priority() < highest.Priority() {
		s.logger.Security().AuthzFailure(callerPrincipalID, "role:"+role.String())
		return &Result{Outcome: OutcomeUnauthorized}, fmt.Errorf("%w: %s may not grant %s", ErrUnauthorized, highest, role)
	}

	return nil, nil
}

// targetOrganization defaults to the caller organization. Super admins may
// pick any organization, other callers one they hold grants in.
func (s *Service) targetOrganization(ctx context.Context, caller *access.Resolution, callerPrincipalID, organizationID string) (string, *Result, error) {
	if organizationID == "" || organizationID == caller.Profile.OrganizationID {
		return caller.Profile.OrganizationID, nil, nil
	}

	if !caller.IsSuperAdmin() && !slices.Contains(caller.OrganizationIDs(), organizationID) {
		s.logger.Security().AuthzFailure(callerPrincipalID, "organization:"+organizationID)
		return "", &Result{Outcome: OutcomeUnauthorized}, fmt.Errorf("%w: organization %s", ErrUnauthorized, organizationID)
	}

	org, err := s.storage.GetOrganizationByID(ctx, organizationID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", &Result{Outcome: OutcomeInvalidRequest}, fmt.Errorf("%w: unknown organization %s", ErrInvalidRequest, organizationID)
	}
	if err != nil {
		return "", &Result{Outcome: OutcomeInternalError}, fmt.Errorf("failed to get organization: %w", err)
	}

	return org.ID, nil, nil
}

// manager is the caller profile unless a super admin names another one.
func (s *Service) manager(ctx context.Context, caller *access.Resolution, callerPrincipalID, managerID string) (*types.Profile, *Result, error) {
	if managerID == "" || managerID == caller.Profile.ID {
		return caller.Profile, nil, nil
	}

	if !caller.IsSuperAdmin() {
		s.logger.Security().AuthzFailure(callerPrincipalID, "profile:"+managerID)
		return nil, &Result{Outcome: OutcomeUnauthorized}, fmt.Errorf("%w: manager %s", ErrUnauthorized, managerID)
	}

	manager, err := s.storage.GetProfileByID(ctx, managerID)
	if err != nil {
		result, err := s.profileLookupFailure(managerID, err)
		return nil, result, err
	}

	return manager, nil, nil
}

// duplicateCheck performs no writes. Concurrent calls can both pass it, the
// unique constraints on profiles and identities settle the race.
func (s *Service) duplicateCheck(ctx context.Context, organizationID, email string) (*Result, error) {
	_, err := s.storage.GetProfileByEmail(ctx, organizationID, email)
	if err == nil {
		return &Result{Outcome: OutcomeDuplicateEmail}, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return &Result{Outcome: OutcomeInternalError}, fmt.Errorf("failed to look up profile: %w", err)
	}

	return nil, nil
}

// existingPrincipal returns the identity registered for email, or "" when
// there is none. An identity that already owns a profile in organizationID
// is a duplicate.
func (s *Service) existingPrincipal(ctx context.Context, organizationID, email string) (string, *Result, error) {
	principalID, err := s.idp.GetIdentityIDByEmail(ctx, email)
	if err != nil {
		return "", &Result{Outcome: OutcomeInternalError}, fmt.Errorf("failed to look up identity: %w", err)
	}
	if principalID == "" {
		return "", nil, nil
	}

	profiles, err := s.storage.ListProfilesByPrincipalID(ctx, principalID)
	if err != nil {
		return "", &Result{Outcome: OutcomeInternalError}, fmt.Errorf("failed to look up profiles of %s: %w", principalID, err)
	}

	if lo.ContainsBy(profiles, func(p *types.Profile) bool { return p.OrganizationID == organizationID }) {
		return "", &Result{Outcome: OutcomeDuplicateEmail}, fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
	}

	return principalID, nil, nil
}

// findOrCreatePrincipal links the identity registered for the email or
// creates one. created reports whether the principal belongs to this call
// and has to be compensated.
func (s *Service) findOrCreatePrincipal(ctx context.Context, callerPrincipalID, organizationID string, req *Request) (string, bool, *Result, error) {
	principalID, result, err := s.existingPrincipal(ctx, organizationID, req.Email)
	if err != nil {
		return "", false, result, err
	}

	if principalID != "" {
		s.logger.Infof("linking existing principal %s to a new profile in %s", principalID, organizationID)
		return principalID, false, nil, nil
	}

	principalID, err = s.idp.CreateIdentity(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, kratos.ErrIdentityExists) {
			return "", false, &Result{Outcome: OutcomeDuplicateEmail}, fmt.Errorf("%w: %s", ErrDuplicateEmail, req.Email)
		}

		s.logger.Errorf("failed to create principal for %s: %v", req.Email, err)
		return "", false, &Result{Outcome: OutcomeCredentialCreationFailed}, fmt.Errorf("%w: %v", ErrCredentialCreationFailed, err)
	}

	s.logger.Security().UserCreated(callerPrincipalID, principalID)

	return principalID, true, nil, nil
}

// createProfile writes the profile row and its tuples in one transaction.
func (s *Service) createProfile(ctx context.Context, req *Request, organizationID string, principalID *string) (*types.Profile, error) {
	var profile *types.Profile

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error

		profile, err = s.storage.CreateProfile(ctx, &types.Profile{
			PrincipalID:    principalID,
			Email:          req.Email,
			FullName:       req.FullName,
			Phone:          req.Phone,
			OrganizationID: organizationID,
			IsActive:       true,
		})
		if err != nil {
			return err
		}

		if err := s.authz.AssignOrganizationMember(ctx, organizationID, profile.ID); err != nil {
			return fmt.Errorf("failed to write organization tuple: %w", err)
		}

		if principalID == nil {
			return nil
		}

		if err := s.authz.LinkPrincipal(ctx, profile.ID, *principalID); err != nil {
			return fmt.Errorf("failed to write principal tuple: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return profile, nil
}

// compensatePrincipal deletes a principal created by this workflow, once.
// Request cancellation does not stop it.
func (s *Service) compensatePrincipal(ctx context.Context, principalID string, cause error) {
	ctx = context.WithoutCancel(ctx)

	if err := s.idp.DeleteIdentity(ctx, principalID); err != nil {
		s.logger.Errorw(
			"compensation failed, principal left without profile",
			"principal_id", principalID,
			"error", err,
			"cause", cause,
		)
		return
	}

	s.logger.Warnw(
		"principal deleted after profile creation failure",
		"principal_id", principalID,
		"cause", cause,
	)
	s.logger.Security().UserDeleted("system", principalID)
}

// assignRole writes the assignment row and the role tuple in one transaction.
// Super admin is global, other roles are scoped to the profile organization.
func (s *Service) assignRole(ctx context.Context, profile *types.Profile, role access.Role) error {
	r, err := s.storage.GetRoleByName(ctx, role.String())
	if err != nil {
		return fmt.Errorf("failed to get role %s: %w", role, err)
	}

	organizationID := roleScope(profile, role)

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.storage.AssignRole(ctx, profile.ID, r.ID, organizationID); err != nil {
			return err
		}

		return s.authz.AssignRole(ctx, profile.ID, ptrValue(organizationID), role.String())
	})
}

func (s *Service) removeRole(ctx context.Context, profile *types.Profile, role access.Role) error {
	r, err := s.storage.GetRoleByName(ctx, role.String())
	if err != nil {
		return fmt.Errorf("failed to get role %s: %w", role, err)
	}

	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.storage.RevokeRole(ctx, profile.ID, r.ID); err != nil {
			return err
		}

		return s.authz.RemoveRole(ctx, profile.ID, ptrValue(roleScope(profile, role)), role.String())
	})
}

func (s *Service) linkTeamMember(ctx context.Context, managerID, memberID string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.storage.CreateTeamRelationship(ctx, managerID, memberID); err != nil {
			return err
		}

		return s.authz.LinkTeamMember(ctx, managerID, memberID)
	})
}

func (s *Service) profileLookupFailure(profileID string, err error) (*Result, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return &Result{Outcome: OutcomeNotFound}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}

	return &Result{Outcome: OutcomeInternalError}, fmt.Errorf("failed to get profile: %w", err)
}

func roleScope(profile *types.Profile, role access.Role) *string {
	if role == access.RoleSuperAdmin {
		return nil
	}

	organizationID := profile.OrganizationID
	return &organizationID
}

func partial(outcome Outcome, step Step, principalID, profileID string) *Result {
	return &Result{Outcome: outcome, PrincipalID: principalID, ProfileID: profileID, MissingStep: step}
}

func ptrValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewService(
	storage StorageInterface,
	tx TxRunnerInterface,
	authz AuthzInterface,
	idp IdentityProviderInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		tx:       tx,
		authz:    authz,
		idp:      idp,
		resolver: resolver,
		gate:     access.NewGate(),
		validate: newValidator(),
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
