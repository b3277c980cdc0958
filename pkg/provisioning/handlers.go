// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package provisioning

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/authentication"
)

type RoleRequest struct {
	Role string `json:"role"`
}

type TeamLinkRequest struct {
	ManagerID string `json:"manager_id,omitempty"`
}

type API struct {
	service ServiceInterface
	access  AccessMiddlewareInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// RegisterEndpoints guards every route with the role gate, the service
// repeats the check before writing.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.With(a.access.RequireRoles(access.ProvisionUserRoles...)).Post("/api/v0/users", a.provisionUser)
	mux.With(a.access.RequireRoles(access.ManageRoleRoles...)).Post("/api/v0/users/{profileID}/roles", a.assignRole)
	mux.With(a.access.RequireRoles(access.ManageRoleRoles...)).Delete("/api/v0/users/{profileID}/roles/{role}", a.revokeRole)
	mux.With(a.access.RequireRoles(access.AddTeamMemberRoles...)).Post("/api/v0/teams/members", a.addTeamMember)
	mux.With(a.access.RequireRoles(access.AddTeamMemberRoles...)).Post("/api/v0/teams/members/{memberID}/links", a.linkTeamMember)
}

func (a *API) provisionUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.provisionUser")
	defer span.End()

	req := new(Request)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body", Outcome: string(OutcomeInvalidRequest)})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.ProvisionUser(ctx, principalID, req)

	a.respond(w, http.StatusCreated, result, err)
}

func (a *API) addTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.addTeamMember")
	defer span.End()

	req := new(Request)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body", Outcome: string(OutcomeInvalidRequest)})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.AddTeamMember(ctx, principalID, req)

	a.respond(w, http.StatusCreated, result, err)
}

func (a *API) assignRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.assignRole")
	defer span.End()

	req := new(RoleRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body", Outcome: string(OutcomeInvalidRequest)})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.RetryRoleAssignment(ctx, principalID, chi.URLParam(r, "profileID"), req.Role)

	a.respond(w, http.StatusOK, result, err)
}

func (a *API) revokeRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.revokeRole")
	defer span.End()

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.RevokeRole(ctx, principalID, chi.URLParam(r, "profileID"), chi.URLParam(r, "role"))

	a.respond(w, http.StatusOK, result, err)
}

func (a *API) linkTeamMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "provisioning.API.linkTeamMember")
	defer span.End()

	req := new(TeamLinkRequest)
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body", Outcome: string(OutcomeInvalidRequest)})
			return
		}
	}

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.RetryTeamLink(ctx, principalID, req.ManagerID, chi.URLParam(r, "memberID"))

	a.respond(w, http.StatusOK, result, err)
}

func (a *API) respond(w http.ResponseWriter, successStatus int, result *Result, err error) {
	if err == nil {
		a.write(w, httptypes.Response{Status: successStatus, Outcome: string(result.Outcome), Data: result})
		return
	}

	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		a.logger.Errorf("provisioning failed: %v", err)
	}

	outcome := OutcomeInternalError
	if result != nil {
		outcome = result.Outcome
	}

	a.write(w, httptypes.Response{Status: status, Message: err.Error(), Outcome: string(outcome), Data: result})
}

func (a *API) write(w http.ResponseWriter, r httptypes.Response) {
	if err := httptypes.WriteJSON(w, r); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrAccessPending):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrRoleNotAssigned):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, ErrCredentialCreationFailed):
		return http.StatusBadGateway
	case errors.Is(err, ErrPartialSuccess):
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func NewAPI(service ServiceInterface, mw AccessMiddlewareInterface, tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		access:  mw,
		tracer:  tracer,
		logger:  logger,
	}
}
