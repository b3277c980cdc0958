// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/ory/hydra/v2/oauth2"

	"github.com/canonical/erp-access-service/internal/db"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

type Service struct {
	storage  StorageInterface
	authz    AuthorizerInterface
	resolver ResolverInterface
	tracer   tracing.TracingInterface
	monitor  monitoring.MonitorInterface
	logger   logging.LoggerInterface
}

func NewService(
	storage StorageInterface,
	authz AuthorizerInterface,
	resolver ResolverInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	return &Service{
		storage:  storage,
		authz:    authz,
		resolver: resolver,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

// HandleRegistration links every pending profile with the registered email to
// the new identity. The route runs inside one transaction so either all
// profiles are linked or none.
func (s *Service) HandleRegistration(ctx context.Context, identityID, email string) error {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleRegistration")
	defer span.End()

	s.logger.Debugf("Handling registration for identity %s with email %s", identityID, email)

	if identityID == "" || email == "" {
		return fmt.Errorf("identity ID or email is empty")
	}

	profiles, err := s.storage.ListPendingProfilesByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to list pending profiles: %w", err)
	}

	if len(profiles) == 0 {
		s.logger.Infof("Identity %s registered without pending profiles", identityID)
		return nil
	}

	for _, p := range profiles {
		if err := s.storage.LinkPrincipal(ctx, p.ID, identityID); err != nil {
			return fmt.Errorf("failed to link profile %s: %w", p.ID, err)
		}

		if err := s.authz.LinkPrincipal(ctx, p.ID, identityID); err != nil {
			return fmt.Errorf("failed to write principal tuple for profile %s: %w", p.ID, err)
		}

		s.logger.Security().UserUpdated("system", p.ID, "principal_linked")
	}

	// a resolution cached before the commit would still see no profile
	db.AfterCommit(ctx, func() { s.resolver.Invalidate(identityID) })

	s.logger.Infof("Linked %d profiles to identity %s", len(profiles), identityID)
	return nil
}

// HandleTokenHook adds the role names and organizations of the subject to
// the ID and access tokens. Unprovisioned subjects get no extra claims.
func (s *Service) HandleTokenHook(ctx context.Context, req *oauth2.TokenHookRequest) (*TokenHookResponse, error) {
	ctx, span := s.tracer.Start(ctx, "webhooks.Service.HandleTokenHook")
	defer span.End()

	s.logger.Debugf("Handling token hook %v", req)

	if req == nil || req.Session == nil || req.Session.DefaultSession == nil {
		return nil, fmt.Errorf("token hook request has no session")
	}

	subject := req.Session.DefaultSession.Subject
	if subject == "" {
		return nil, fmt.Errorf("token hook session has no subject")
	}

	res, err := s.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve roles of %s: %w", subject, err)
	}

	roles := res.RoleNames()
	organizations := res.OrganizationIDs()

	s.logger.Debugf("Subject %s holds roles %v in organizations %v", subject, roles, organizations)

	resp := new(TokenHookResponse)
	resp.Session.IDToken = make(map[string]interface{})
	resp.Session.AccessToken = make(map[string]interface{})

	if len(roles) > 0 {
		resp.Session.IDToken[RolesClaim] = roles
		resp.Session.AccessToken[RolesClaim] = roles
	}

	if len(organizations) > 0 {
		resp.Session.IDToken[OrganizationsClaim] = organizations
		resp.Session.AccessToken[OrganizationsClaim] = organizations
	}

	return resp, nil
}
