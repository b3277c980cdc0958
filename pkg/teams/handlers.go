// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package teams

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/authentication"
)

type API struct {
	service ServiceInterface
	access  AccessMiddlewareInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.With(a.access.RequireRoles(access.ManageTeamRoles...)).Get("/api/v0/teams/members", a.listMembers)
	mux.With(a.access.RequireRoles(access.ManageTeamRoles...)).Post("/api/v0/teams/members/{memberID}/deactivate", a.deactivate)
	mux.With(a.access.RequireRoles(access.ManageTeamRoles...)).Post("/api/v0/teams/members/{memberID}/reactivate", a.reactivate)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "teams.API.listMembers")
	defer span.End()

	req := &ListRequest{ManagerID: r.URL.Query().Get("manager_id")}

	var err error
	if req.Page, err = httptypes.QueryInt(r, "page"); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid page"})
		return
	}
	if req.Size, err = httptypes.QueryInt(r, "size"); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid size"})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)

	members, err := a.service.ListMembers(ctx, principalID, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{
		Status: http.StatusOK,
		Data:   members,
		Meta:   &httptypes.Meta{Page: req.Page, Size: req.Size},
	})
}

func (a *API) deactivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "teams.API.deactivate")
	defer span.End()

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.Deactivate(ctx, principalID, chi.URLParam(r, "memberID"))

	a.respond(w, result, err)
}

func (a *API) reactivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "teams.API.reactivate")
	defer span.End()

	principalID, _ := authentication.GetPrincipalID(ctx)
	result, err := a.service.Reactivate(ctx, principalID, chi.URLParam(r, "memberID"))

	a.respond(w, result, err)
}

func (a *API) respond(w http.ResponseWriter, result *Result, err error) {
	if err == nil {
		a.write(w, httptypes.Response{Status: http.StatusOK, Data: result})
		return
	}

	if errors.Is(err, ErrProfileUpdateFailed) {
		a.write(w, httptypes.Response{Status: http.StatusMultiStatus, Message: err.Error(), Data: result})
		return
	}

	a.writeError(w, err)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		a.logger.Errorf("team request failed: %v", err)
	}

	a.write(w, httptypes.Response{Status: status, Message: err.Error()})
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
	case errors.Is(err, ErrMemberNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrProfileUpdateFailed):
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
