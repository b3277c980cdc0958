// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/canonical/erp-access-service/internal/logging"
	"github.com/canonical/erp-access-service/internal/monitoring"
	"github.com/canonical/erp-access-service/internal/tracing"
)

func TestTokenClaims_Scopes(t *testing.T) {
	tests := []struct {
		name     string
		claims   tokenClaims
		expected []string
	}{
		{name: "none", claims: tokenClaims{}, expected: []string{}},
		{name: "scope string", claims: tokenClaims{Scope: "openid erp"}, expected: []string{"openid", "erp"}},
		{name: "scp array", claims: tokenClaims{Scopes: []string{"erp"}}, expected: []string{"erp"}},
		{name: "both merged", claims: tokenClaims{Scope: "openid erp", Scopes: []string{"erp", "offline"}}, expected: []string{"openid", "erp", "offline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.claims.scopes(); !slices.Equal(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestJWTVerifier_Authorized(t *testing.T) {
	tests := []struct {
		name            string
		allowedSubjects []string
		requiredScope   string
		principal       Principal
		expected        bool
	}{
		{
			name:      "no policy",
			principal: Principal{ID: "identity-1", Scopes: []string{"erp"}},
			expected:  false,
		},
		{
			name:            "allow-listed subject",
			allowedSubjects: []string{"erp-cli"},
			principal:       Principal{ID: "erp-cli"},
			expected:        true,
		},
		{
			name:          "required scope present",
			requiredScope: "erp",
			principal:     Principal{ID: "identity-1", Scopes: []string{"openid", "erp"}},
			expected:      true,
		},
		{
			name:            "required scope missing",
			allowedSubjects: []string{"erp-cli"},
			requiredScope:   "erp",
			principal:       Principal{ID: "identity-1", Scopes: []string{"openid"}},
			expected:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewJWTVerifier(nil, tt.allowedSubjects, tt.requiredScope, nil, nil, nil)

			if got := v.authorized(&tt.principal); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestNewAuthenticator(t *testing.T) {
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	t.Run("disabled trusts the identity header", func(t *testing.T) {
		a, err := NewAuthenticator(context.Background(), Config{}, tracer, monitor, logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := a.(*HeaderAuthenticator); !ok {
			t.Errorf("expected a header authenticator, got %T", a)
		}
	})

	t.Run("enabled without issuer", func(t *testing.T) {
		_, err := NewAuthenticator(context.Background(), Config{Enabled: true}, tracer, monitor, logger)
		if !errors.Is(err, ErrMissingIssuer) {
			t.Errorf("expected ErrMissingIssuer, got %v", err)
		}
	})

	t.Run("enabled with JWKS URL", func(t *testing.T) {
		a, err := NewAuthenticator(
			context.Background(),
			Config{Enabled: true, Issuer: "https://hydra.example.internal", JWKSURL: "https://hydra.example.internal/.well-known/jwks.json"},
			tracer,
			monitor,
			logger,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := a.(*JWTAuthenticator); !ok {
			t.Errorf("expected a JWT authenticator, got %T", a)
		}
	})
}
