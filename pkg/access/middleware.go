// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"net/http"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
	"github.com/canonical/erp-access-service/pkg/authentication"
)

const (
	OutcomePending   = "pending"
	OutcomeForbidden = "forbidden"
)

type Middleware struct {
	resolver ResolverInterface
	gate     *Gate

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// SessionMiddleware begins a session for the authenticated principal and ends
// it once the request is served.
func (m *Middleware) SessionMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principalID, _ := authentication.GetPrincipalID(r.Context())

			session := NewSession(m.resolver)
			session.Begin(principalID)
			defer session.End()

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireRoles lets the request through iff the caller holds one of the roles.
// Resolution failures answer 503 pending, they neither grant nor deny.
func (m *Middleware) RequireRoles(allow ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := m.tracer.Start(r.Context(), "access.Middleware.RequireRoles")
			defer span.End()

			session, ok := GetSession(ctx)
			if !ok || session.PrincipalID() == "" {
				m.write(w, httptypes.Response{Status: http.StatusUnauthorized, Message: "missing principal"})
				return
			}

			res, err := session.Resolution(ctx)
			if err != nil {
				m.logger.Errorf("failed to resolve roles of %s: %v", session.PrincipalID(), err)
				m.write(w, httptypes.Response{Status: http.StatusServiceUnavailable, Message: "access check pending", Outcome: OutcomePending})
				return
			}

			decision := m.gate.Evaluate(res, allow...)

			switch decision.State {
			case DecisionPermitted:
				next.ServeHTTP(w, r.WithContext(ctx))
			case DecisionForbidden:
				m.logger.Security().AuthzFailureInsufficientRoles(session.PrincipalID(), r.URL.Path, res.RoleNames())
				m.write(w, httptypes.Response{Status: http.StatusForbidden, Message: decision.Fallback, Outcome: OutcomeForbidden})
			default:
				m.write(w, httptypes.Response{Status: http.StatusServiceUnavailable, Message: "access check pending", Outcome: OutcomePending})
			}
		})
	}
}

func (m *Middleware) write(w http.ResponseWriter, r httptypes.Response) {
	if err := httptypes.WriteJSON(w, r); err != nil {
		m.logger.Errorf("failed to encode response: %v", err)
	}
}

func NewMiddleware(resolver ResolverInterface, gate *Gate, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		resolver: resolver,
		gate:     gate,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}
