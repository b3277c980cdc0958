// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/internal/version"
)

type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type BuildInfo struct {
	Version string `json:"version"`
	Name    string `json:"name"`
}

type API struct {
	db PingerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/api/v0/status", a.alive)
	mux.Get("/api/v0/version", a.version)
}

func (a *API) alive(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.alive")
	defer span.End()

	status := Status{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database ping failed: %v", err)
		status = Status{Status: "degraded", Database: "unavailable"}
		code = http.StatusServiceUnavailable
	}

	a.write(w, httptypes.Response{Status: code, Data: status})
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.version")
	defer span.End()

	a.write(w, httptypes.Response{
		Status: http.StatusOK,
		Data:   BuildInfo{Version: version.Version, Name: a.monitor.GetService()},
	})
}

func (a *API) write(w http.ResponseWriter, r httptypes.Response) {
	if err := httptypes.WriteJSON(w, r); err != nil {
		a.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewAPI(db PingerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	return &API{
		db:      db,
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
