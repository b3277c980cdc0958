// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/canonical/erp-access-service/internal/db"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/access"
	"github.com/canonical/erp-access-service/pkg/metrics"
	"github.com/canonical/erp-access-service/pkg/organizations"
	"github.com/canonical/erp-access-service/pkg/provisioning"
	"github.com/canonical/erp-access-service/pkg/status"
	"github.com/canonical/erp-access-service/pkg/teams"
	"github.com/canonical/erp-access-service/pkg/webhooks"
)

// Services groups the business services the router exposes.
type Services struct {
	Organizations organizations.ServiceInterface
	Provisioning  provisioning.ServiceInterface
	Teams         teams.ServiceInterface
	Webhooks      webhooks.ServiceInterface
}

// NewRouter serves status, metrics and the identity hooks without a
// principal; every other route needs authn to set one.
func NewRouter(
	services Services,
	authn func(http.Handler) http.Handler,
	accessMiddleware *access.Middleware,
	dbClient db.DBClientInterface,
	allowedOrigins []string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(allowedOrigins),
	)

	router.Use(middlewares...)

	metrics.NewAPI(logger).RegisterEndpoints(router)
	status.NewAPI(dbClient, tracer, monitor, logger).RegisterEndpoints(router)
	webhooks.NewAPI(services.Webhooks, logger).RegisterEndpoints(router, db.TransactionMiddleware(dbClient, logger))

	router.Group(func(r chi.Router) {
		r.Use(authn, accessMiddleware.SessionMiddleware())

		access.NewAPI(tracer, logger).RegisterEndpoints(r)
		organizations.NewAPI(services.Organizations, accessMiddleware, tracer, logger).RegisterEndpoints(r)
		provisioning.NewAPI(services.Provisioning, accessMiddleware, tracer, logger).RegisterEndpoints(r)
		teams.NewAPI(services.Teams, accessMiddleware, tracer, logger).RegisterEndpoints(r)
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}
