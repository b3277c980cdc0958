// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

var otelHTTPClient = http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

// NewAuthenticator returns the JWT authenticator when authentication is
// enabled, otherwise the identity proxy header is trusted.
func NewAuthenticator(
	ctx context.Context,
	cfg Config,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (AuthenticatorInterface, error) {
	if !cfg.Enabled {
		logger.Infof("Trusting the %s header for authentication", IdentityHeader)
		return NewHeaderAuthenticator(tracer, monitor, logger), nil
	}

	verifier, err := newIDTokenVerifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewJWTAuthenticator(
		NewJWTVerifier(verifier, cfg.AllowedSubjects, cfg.RequiredScope, tracer, monitor, logger),
		tracer,
		monitor,
		logger,
	), nil
}

// newIDTokenVerifier uses the JWKS URL when configured and OIDC discovery on
// the issuer otherwise.
func newIDTokenVerifier(ctx context.Context, cfg Config, logger logging.LoggerInterface) (*oidc.IDTokenVerifier, error) {
	if cfg.Issuer == "" {
		return nil, ErrMissingIssuer
	}

	ctx = oidc.ClientContext(ctx, &otelHTTPClient)
	config := &oidc.Config{SkipClientIDCheck: true}

	if cfg.JWKSURL != "" {
		logger.Infof("JWT authentication is enabled with JWKS URL %s", cfg.JWKSURL)
		return oidc.NewVerifier(cfg.Issuer, oidc.NewRemoteKeySet(ctx, cfg.JWKSURL), config), nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	logger.Infof("JWT authentication is enabled with OIDC discovery for %s", cfg.Issuer)
	return provider.Verifier(config), nil
}
