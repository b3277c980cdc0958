// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"net/http"
	"strings"

	httptypes "github.com/canonical/erp-access-service/internal/http/types"
	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

// IdentityHeader is set by the identity proxy to the authenticated Kratos
// identity.
const IdentityHeader = "X-Kratos-Authenticated-Identity-Id"

// JWTAuthenticator rejects requests without a valid bearer token.
type JWTAuthenticator struct {
	verifier TokenVerifierInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *JWTAuthenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.tracer.Start(r.Context(), "authentication.JWTAuthenticator.Authenticate")
		defer span.End()

		token, found := bearerToken(r.Header)
		if !found {
			a.unauthorized(w, "missing bearer token")
			return
		}

		principal, err := a.verifier.VerifyToken(ctx, token)
		if err != nil {
			a.logger.Debugf("JWT verification failed: %v", err)
			a.unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipalID(ctx, principal.ID)))
	})
}

func (a *JWTAuthenticator) unauthorized(w http.ResponseWriter, message string) {
	if err := httptypes.WriteError(w, http.StatusUnauthorized, message); err != nil {
		a.logger.Errorf("failed to encode unauthorized response: %v", err)
	}
}

// HeaderAuthenticator trusts the identity proxy in front of the service, it
// must not be exposed without one. A request without the header goes on
// unauthenticated and the role checks answer 401.
type HeaderAuthenticator struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *HeaderAuthenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.tracer.Start(r.Context(), "authentication.HeaderAuthenticator.Authenticate")
		defer span.End()

		if principalID := strings.TrimSpace(r.Header.Get(IdentityHeader)); principalID != "" {
			ctx = WithPrincipalID(ctx, principalID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken only accepts the "Bearer <token>" form of RFC 6750.
func bearerToken(headers http.Header) (string, bool) {
	token, found := strings.CutPrefix(headers.Get("Authorization"), "Bearer ")
	return token, found && token != ""
}

func NewJWTAuthenticator(verifier TokenVerifierInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *JWTAuthenticator {
	return &JWTAuthenticator{
		verifier: verifier,
		tracer:   tracer,
		monitor:  monitor,
		logger:   logger,
	}
}

func NewHeaderAuthenticator(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *HeaderAuthenticator {
	return &HeaderAuthenticator{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}
