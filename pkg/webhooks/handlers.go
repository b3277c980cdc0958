// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package webhooks

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ory/hydra/v2/oauth2"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
)

type API struct {
	service ServiceInterface
	logger  logging.LoggerInterface
}

func NewAPI(service ServiceInterface, logger logging.LoggerInterface) *API {
	return &API{
		service: service,
		logger:  logger,
	}
}

// RegisterEndpoints mounts the hooks, registrationMiddlewares wrap only the
// registration hook.
func (a *API) RegisterEndpoints(mux chi.Router, registrationMiddlewares ...func(http.Handler) http.Handler) {
	mux.With(registrationMiddlewares...).Post("/webhooks/registration", a.registration)
	mux.Post("/webhooks/token", a.tokenHook)
}

func (a *API) registration(w http.ResponseWriter, r *http.Request) {
	var identity KratosIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		a.logger.Errorf("failed to decode registration hook: %v", err)
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body"})
		return
	}

	a.logger.Debugf("registration hook for identity %s", identity.ID)

	if err := a.service.HandleRegistration(r.Context(), identity.ID, identity.Email); err != nil {
		a.logger.Errorf("registration hook failed: %v", err)
		a.write(w, httptypes.Response{Status: http.StatusInternalServerError, Message: err.Error()})
		return
	}

	a.write(w, httptypes.Response{Status: http.StatusOK})
}

func (a *API) tokenHook(w http.ResponseWriter, r *http.Request) {
	req := new(oauth2.TokenHookRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		a.logger.Errorf("failed to decode token hook: %v", err)
		a.write(w, httptypes.Response{Status: http.StatusBadRequest, Message: "invalid request body"})
		return
	}

	resp, err := a.service.HandleTokenHook(r.Context(), req)
	if err != nil {
		a.logger.Errorf("token hook failed: %v", err)
		a.write(w, httptypes.Response{Status: http.StatusInternalServerError, Message: err.Error()})
		return
	}

	// Hydra expects the bare session document, not the API envelope
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Errorf("failed to encode token hook response: %v", err)
	}
}

func (a *API) write(w http.ResponseWriter, r httptypes.Response) {
	if err := httptypes.WriteJSON(w, r); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}
