// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/samber/lo"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

const apiResource = "erp_api_access"

type tokenClaims struct {
	Subject string   `json:"sub"`
	Scope   string   `json:"scope"`
	Scopes  []string `json:"scp"`
}

// scopes merges the space separated scope claim with the scp array that
// Hydra emits for access tokens.
func (c *tokenClaims) scopes() []string {
	return lo.Uniq(append(strings.Fields(c.Scope), c.Scopes...))
}

type JWTVerifier struct {
	verifier        *oidc.IDTokenVerifier
	allowedSubjects []string
	requiredScope   string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (*Principal, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}

	claims := new(tokenClaims)
	if err := token.Claims(claims); err != nil {
		return nil, fmt.Errorf("failed to read token claims: %w", err)
	}

	principal := &Principal{ID: claims.Subject, Scopes: claims.scopes()}
	if principal.ID == "" {
		return nil, ErrMissingSubject
	}

	if !v.authorized(principal) {
		v.logger.Security().AuthzFailure(principal.ID, apiResource)
		return nil, ErrTokenNotAuthorized
	}

	return principal, nil
}

// authorized admits allow-listed subjects and tokens carrying the required
// scope. With neither configured no token is admitted.
func (v *JWTVerifier) authorized(p *Principal) bool {
	if slices.Contains(v.allowedSubjects, p.ID) {
		return true
	}

	return v.requiredScope != "" && slices.Contains(p.Scopes, v.requiredScope)
}

func NewJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	allowedSubjects []string,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	return &JWTVerifier{
		verifier:        verifier,
		allowedSubjects: allowedSubjects,
		requiredScope:   requiredScope,
		tracer:          tracer,
		monitor:         monitor,
		logger:          logger,
	}
}
