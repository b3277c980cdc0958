// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/tracing"
)

type Me struct {
	*Resolution
	HighestRole string `json:"highest_role"`
	Provisioned bool   `json:"provisioned"`
}

type API struct {
	tracer tracing.TracingInterface
	logger logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/me", a.me)
}

// me answers 200 with a null profile for unprovisioned principals.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "access.API.me")
	defer span.End()

	session, ok := GetSession(ctx)
	if !ok || session.PrincipalID() == "" {
		a.write(w, httptypes.Response{Status: http.StatusUnauthorized, Message: "missing principal"})
		return
	}

	res, err := session.Resolution(ctx)
	if err != nil {
		a.logger.Errorf("failed to resolve %s: %v", session.PrincipalID(), err)
		a.write(w, httptypes.Response{Status: http.StatusServiceUnavailable, Message: "access check pending", Outcome: OutcomePending})
		return
	}

	a.write(w, httptypes.Response{
		Status: http.StatusOK,
		Data: Me{
			Resolution:  res,
			HighestRole: res.HighestPriorityRole().String(),
			Provisioned: res.Profile != nil,
		},
	})
}

func (a *API) write(w http.ResponseWriter, r httptypes.Response) {
	if err := httptypes.WriteJSON(w, r); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(tracer tracing.TracingInterface, logger logging.LoggerInterface) *API {
	return &API{
		tracer: tracer,
		logger: logger,
	}
}
