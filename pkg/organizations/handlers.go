// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package organizations

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

type API struct {
	service ServiceInterface
	access  AccessMiddlewareInterface

	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

// RegisterEndpoints leaves the organization list unguarded, the service
// narrows it down to the organizations of the caller.
func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/organizations", a.listOrganizations)
	mux.With(a.access.RequireRoles(access.ManageOrganizationRoles...)).Post("/api/v0/organizations", a.createOrganization)
	mux.With(a.access.RequireRoles(access.ManageOrganizationRoles...)).Patch("/api/v0/organizations/{organizationID}", a.renameOrganization)
	mux.With(a.access.RequireRoles(access.ManageOrganizationRoles...)).Delete("/api/v0/organizations/{organizationID}", a.deleteOrganization)
	mux.With(a.access.RequireRoles(access.ViewOrganizationRoles...)).Get("/api/v0/organizations/{organizationID}/members", a.listMembers)
}

func (a *API) listOrganizations(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "organizations.API.listOrganizations")
	defer span.End()

	req, ok := a.listRequest(w, r)
	if !ok {
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)

	orgs, err := a.service.ListOrganizations(ctx, principalID, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusOK, Data: orgs, Meta: &httptypes.Meta{Page: req.Page, Size: req.Size}})
}

func (a *API) createOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "organizations.API.createOrganization")
	defer span.End()

	req := new(Request)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body"})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)

	org, err := a.service.CreateOrganization(ctx, principalID, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusCreated, Data: org})
}

func (a *API) renameOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "organizations.API.renameOrganization")
	defer span.End()

	req := new(Request)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body"})
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)

	org, err := a.service.RenameOrganization(ctx, principalID, chi.URLParam(r, "organizationID"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusOK, Data: org})
}

func (a *API) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "organizations.API.deleteOrganization")
	defer span.End()

	principalID, _ := authentication.GetPrincipalID(ctx)

	if err := a.service.DeleteOrganization(ctx, principalID, chi.URLParam(r, "organizationID")); err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusOK})
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "organizations.API.listMembers")
	defer span.End()

	req, ok := a.listRequest(w, r)
	if !ok {
		return
	}

	principalID, _ := authentication.GetPrincipalID(ctx)

	members, err := a.service.ListMembers(ctx, principalID, chi.URLParam(r, "organizationID"), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusOK, Data: members, Meta: &httptypes.Meta{Page: req.Page, Size: req.Size}})
}

func (a *API) listRequest(w http.ResponseWriter, r *http.Request) (*ListRequest, bool) {
	req := new(ListRequest)

	var err error
	if req.Page, err = httptypes.QueryInt(r, "page"); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid page"})
		return nil, false
	}
	if req.Size, err = httptypes.QueryInt(r, "size"); err != nil {
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid size"})
		return nil, false
	}

	return req, true
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		a.logger.Errorf("organization request failed: %v", err)
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
	case errors.Is(err, ErrOrganizationNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateOrganization):
		return http.StatusConflict
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
